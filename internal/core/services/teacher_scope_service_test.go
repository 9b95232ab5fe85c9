package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/services"
)

// TestTeacherScope_ListClassrooms verifies a teacher only sees their own classrooms.
func TestTeacherScope_ListClassrooms(t *testing.T) {
	svc := services.NewTeacherScopeService(seedSchool(), nil, nil)

	views, err := svc.ListClassrooms(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 classrooms, got %d", len(views))
	}
	for _, v := range views {
		if v.TeacherID != "t1" {
			t.Errorf("expected only t1 classrooms, got %s", v.ID)
		}
	}
}

// TestTeacherScope_ListStudents covers ownership and missing classrooms.
func TestTeacherScope_ListStudents(t *testing.T) {
	store := seedSchool()
	store.SeedStudent(domain.Student{ID: "s1", Name: "A", ClassroomID: "x"})
	store.SeedStudent(domain.Student{ID: "s2", Name: "B", ClassroomID: "z"})
	svc := services.NewTeacherScopeService(store, nil, nil)
	ctx := context.Background()

	students, err := svc.ListStudents(ctx, "t1", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(students) != 1 || students[0].ID != "s1" {
		t.Errorf("expected [s1], got %+v", students)
	}

	empty, err := svc.ListStudents(ctx, "t1", "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}

	if _, err := svc.ListStudents(ctx, "t1", "z"); !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Errorf("expected ErrNotClassroomOwner, got %v", err)
	}
	if _, err := svc.ListStudents(ctx, "t1", "ghost"); !errors.Is(err, domain.ErrClassroomNotFound) {
		t.Errorf("expected ErrClassroomNotFound, got %v", err)
	}
}

// TestTeacherScope_CreateStudent_NotOwner verifies nothing is written for a foreign classroom.
func TestTeacherScope_CreateStudent_NotOwner(t *testing.T) {
	store := seedSchool()
	svc := services.NewTeacherScopeService(store, nil, nil)

	_, err := svc.CreateStudent(context.Background(), "t1", studentIn("A", "z"))
	if !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Fatalf("expected ErrNotClassroomOwner, got %v", err)
	}
	if got := store.Occupancy("z"); got != 0 {
		t.Errorf("expected occupancy 0, got %d", got)
	}
}

// TestTeacherScope_CapacityScenario walks one teacher through filling and
// swapping seats across two single-seat classrooms.
func TestTeacherScope_CapacityScenario(t *testing.T) {
	store := seedSchool()
	svc := services.NewTeacherScopeService(store, nil, nil)
	ctx := context.Background()

	s1, err := svc.CreateStudent(ctx, "t1", studentIn("S1", "x"))
	if err != nil {
		t.Fatalf("add S1 to X: %v", err)
	}

	if _, err := svc.CreateStudent(ctx, "t1", studentIn("S2", "x")); !errors.Is(err, domain.ErrClassroomFull) {
		t.Fatalf("add S2 to X: expected ErrClassroomFull, got %v", err)
	}

	s2, err := svc.CreateStudent(ctx, "t1", studentIn("S2", "y"))
	if err != nil {
		t.Fatalf("add S2 to Y: %v", err)
	}

	if _, err := svc.UpdateStudent(ctx, "t1", s1.ID, studentIn("S1", "y")); !errors.Is(err, domain.ErrClassroomFull) {
		t.Fatalf("move S1 to Y: expected ErrClassroomFull, got %v", err)
	}

	if err := svc.DeleteStudent(ctx, "t1", s2.ID); err != nil {
		t.Fatalf("delete S2: %v", err)
	}

	moved, err := svc.UpdateStudent(ctx, "t1", s1.ID, studentIn("S1", "y"))
	if err != nil {
		t.Fatalf("move S1 to Y after delete: %v", err)
	}
	if moved.ClassroomID != "y" {
		t.Errorf("expected S1 in y, got %s", moved.ClassroomID)
	}
	if store.Occupancy("x") != 0 || store.Occupancy("y") != 1 {
		t.Errorf("expected occupancy x=0 y=1, got x=%d y=%d", store.Occupancy("x"), store.Occupancy("y"))
	}
}

// TestTeacherScope_MoveRequiresBothOwnerships covers moves into and out of foreign classrooms.
func TestTeacherScope_MoveRequiresBothOwnerships(t *testing.T) {
	store := seedSchool()
	store.SeedStudent(domain.Student{ID: "mine", Name: "A", ClassroomID: "x"})
	store.SeedStudent(domain.Student{ID: "theirs", Name: "B", ClassroomID: "z"})
	svc := services.NewTeacherScopeService(store, nil, nil)
	ctx := context.Background()

	if _, err := svc.UpdateStudent(ctx, "t1", "mine", studentIn("A", "z")); !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Errorf("move out to foreign classroom: expected ErrNotClassroomOwner, got %v", err)
	}
	if _, err := svc.UpdateStudent(ctx, "t1", "theirs", studentIn("B", "y")); !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Errorf("move in from foreign classroom: expected ErrNotClassroomOwner, got %v", err)
	}
	if err := svc.DeleteStudent(ctx, "t1", "theirs"); !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Errorf("delete foreign student: expected ErrNotClassroomOwner, got %v", err)
	}
	if _, ok := store.Student("theirs"); !ok {
		t.Error("expected foreign student to survive")
	}
}

// TestTeacherScope_LocksStudentBeforeOwnershipCheck verifies update and delete
// read the student under its row lock before any classroom is locked.
func TestTeacherScope_LocksStudentBeforeOwnershipCheck(t *testing.T) {
	store := seedSchool()
	store.SeedStudent(domain.Student{ID: "s1", Name: "A", ClassroomID: "x"})
	svc := services.NewTeacherScopeService(store, nil, nil)
	ctx := context.Background()

	if _, err := svc.UpdateStudent(ctx, "t1", "s1", studentIn("A", "y")); err != nil {
		t.Fatalf("move: unexpected error: %v", err)
	}
	if err := svc.DeleteStudent(ctx, "t1", "s1"); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}

	if store.Calls["LockStudent"] != 2 {
		t.Errorf("expected student lock on update and delete, got %d", store.Calls["LockStudent"])
	}
	if store.Calls["GetStudent"] != 0 {
		t.Errorf("expected no unlocked student reads, got %d", store.Calls["GetStudent"])
	}
	want := []string{"x", "y", "y"}
	if len(store.LockedOrder) != len(want) {
		t.Fatalf("expected locks %v, got %v", want, store.LockedOrder)
	}
	for i := range want {
		if store.LockedOrder[i] != want[i] {
			t.Errorf("expected locks %v, got %v", want, store.LockedOrder)
			break
		}
	}
}

// TestTeacherScope_LockedStudentMissing maps a vanished row to not found.
func TestTeacherScope_LockedStudentMissing(t *testing.T) {
	svc := services.NewTeacherScopeService(seedSchool(), nil, nil)
	ctx := context.Background()

	if _, err := svc.UpdateStudent(ctx, "t1", "ghost", studentIn("A", "x")); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Errorf("update: expected ErrStudentNotFound, got %v", err)
	}
	if err := svc.DeleteStudent(ctx, "t1", "ghost"); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Errorf("delete: expected ErrStudentNotFound, got %v", err)
	}
}

// TestTeacherScope_ConcurrentAdmissions verifies parallel admissions never
// overfill a classroom.
func TestTeacherScope_ConcurrentAdmissions(t *testing.T) {
	store := seedSchool()
	svc := services.NewTeacherScopeService(store, nil, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateStudent(context.Background(), "t2", studentIn("S", "z")); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 2 {
		t.Errorf("expected 2 admissions, got %d", admitted)
	}
	if got := store.Occupancy("z"); got != 2 {
		t.Errorf("expected occupancy 2, got %d", got)
	}
}

// TestGate covers the role checks in front of both surfaces.
func TestGate(t *testing.T) {
	admin := domain.Identity{Kind: domain.IdentityAdmin}
	teacher := domain.Identity{Kind: domain.IdentityTeacher, TeacherID: "t1"}
	plain := domain.Identity{Kind: domain.IdentityPlainUser}

	if err := services.RequireAdmin(admin); err != nil {
		t.Errorf("admin: unexpected error %v", err)
	}
	for _, id := range []domain.Identity{teacher, plain} {
		if err := services.RequireAdmin(id); !errors.Is(err, domain.ErrAdminRequired) {
			t.Errorf("%s: expected ErrAdminRequired, got %v", id.Kind, err)
		}
	}

	if _, err := services.TeacherContext(admin); !errors.Is(err, domain.ErrWrongSurface) {
		t.Errorf("admin: expected ErrWrongSurface, got %v", err)
	}
	if _, err := services.TeacherContext(plain); !errors.Is(err, domain.ErrNotATeacher) {
		t.Errorf("plain: expected ErrNotATeacher, got %v", err)
	}
	if id, err := services.TeacherContext(teacher); err != nil || id != "t1" {
		t.Errorf("teacher: expected t1, got %q (%v)", id, err)
	}

	if err := services.AuthorizeClassroom("t1", domain.Classroom{TeacherID: "t2"}); !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Errorf("expected ErrNotClassroomOwner, got %v", err)
	}
	if err := services.AuthorizeClassroom("", domain.Classroom{}); !errors.Is(err, domain.ErrNotClassroomOwner) {
		t.Errorf("expected ErrNotClassroomOwner for empty teacher id, got %v", err)
	}
}
