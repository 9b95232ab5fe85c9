package mocks

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

// MockStore is an in-memory ports.Store. Transactions run one at a time
// against a copy of the data that replaces it only on commit, so a failed
// operation leaves nothing behind. Constraint backstops mirror the
// PostgreSQL schema.
type MockStore struct {
	mu    sync.Mutex
	state storeState

	// Errors injects a failure into the named Tx method, e.g. "CreateStudent".
	Errors map[string]error

	// Track calls
	Calls       map[string]int
	Commits     int
	Rollbacks   int
	LockedOrder []string
}

type storeState struct {
	users      map[string]domain.User
	teachers   map[string]domain.Teacher
	classrooms map[string]domain.Classroom
	students   map[string]domain.Student
	outbox     []domain.OutboxEvent
}

var _ ports.Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		state: storeState{
			users:      map[string]domain.User{},
			teachers:   map[string]domain.Teacher{},
			classrooms: map[string]domain.Classroom{},
			students:   map[string]domain.Student{},
		},
		Errors: map[string]error{},
		Calls:  map[string]int{},
	}
}

func (s storeState) clone() storeState {
	return storeState{
		users:      maps.Clone(s.users),
		teachers:   maps.Clone(s.teachers),
		classrooms: maps.Clone(s.classrooms),
		students:   maps.Clone(s.students),
		outbox:     slices.Clone(s.outbox),
	}
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{store: m, state: m.state.clone()}
	if err := fn(tx); err != nil {
		m.Rollbacks++
		return err
	}
	m.state = tx.state
	m.Commits++
	return nil
}

// Seed helpers write committed rows directly.

func (m *MockStore) SeedUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.users[u.ID] = u
}

func (m *MockStore) SeedTeacher(t domain.Teacher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.teachers[t.ID] = t
}

func (m *MockStore) SeedClassroom(c domain.Classroom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.classrooms[c.ID] = c
}

func (m *MockStore) SeedStudent(st domain.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.students[st.ID] = st
}

// Snapshot accessors read committed rows.

func (m *MockStore) Users() []domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Collect(maps.Values(m.state.users))
}

func (m *MockStore) Teachers() []domain.Teacher {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Collect(maps.Values(m.state.teachers))
}

func (m *MockStore) Classroom(id string) (domain.Classroom, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.state.classrooms[id]
	return c, ok
}

func (m *MockStore) Student(id string) (domain.Student, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state.students[id]
	return st, ok
}

func (m *MockStore) Occupancy(classroomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.occupancy(classroomID)
}

func (m *MockStore) Outbox() []domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.outbox)
}

func (s storeState) occupancy(classroomID string) int {
	n := 0
	for _, st := range s.students {
		if st.ClassroomID == classroomID {
			n++
		}
	}
	return n
}

// memTx runs while MockStore.mu is held, so it touches the store's
// tracking fields without further locking.
type memTx struct {
	store *MockStore
	state storeState
}

func (t *memTx) call(name string) error {
	t.store.Calls[name]++
	return t.store.Errors[name]
}

// Users

func (t *memTx) LockRegistrations(ctx context.Context) error {
	return t.call("LockRegistrations")
}

func (t *memTx) CountUsers(ctx context.Context) (int, error) {
	if err := t.call("CountUsers"); err != nil {
		return 0, err
	}
	return len(t.state.users), nil
}

func (t *memTx) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := t.call("FindUserByEmail"); err != nil {
		return nil, err
	}
	for _, u := range t.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := t.call("GetUser"); err != nil {
		return nil, err
	}
	u, ok := t.state.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (t *memTx) CreateUser(ctx context.Context, user domain.User) error {
	if err := t.call("CreateUser"); err != nil {
		return err
	}
	for _, u := range t.state.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	t.state.users[user.ID] = user
	return nil
}

// Teachers

func (t *memTx) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	if err := t.call("ListTeachers"); err != nil {
		return nil, err
	}
	teachers := slices.Collect(maps.Values(t.state.teachers))
	slices.SortFunc(teachers, func(a, b domain.Teacher) int {
		return strings.Compare(a.Name+a.ID, b.Name+b.ID)
	})
	return teachers, nil
}

func (t *memTx) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	if err := t.call("GetTeacher"); err != nil {
		return nil, err
	}
	teacher, ok := t.state.teachers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &teacher, nil
}

func (t *memTx) FindTeacherByEmail(ctx context.Context, email string) (*domain.Teacher, error) {
	if err := t.call("FindTeacherByEmail"); err != nil {
		return nil, err
	}
	for _, teacher := range t.state.teachers {
		if teacher.Email != nil && *teacher.Email == email {
			return &teacher, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) FindTeacherByUserID(ctx context.Context, userID string) (*domain.Teacher, error) {
	if err := t.call("FindTeacherByUserID"); err != nil {
		return nil, err
	}
	for _, teacher := range t.state.teachers {
		if teacher.UserID != nil && *teacher.UserID == userID {
			return &teacher, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) CreateTeacher(ctx context.Context, teacher domain.Teacher) error {
	if err := t.call("CreateTeacher"); err != nil {
		return err
	}
	if err := t.checkTeacherUnique(teacher); err != nil {
		return err
	}
	t.state.teachers[teacher.ID] = teacher
	return nil
}

func (t *memTx) UpdateTeacher(ctx context.Context, teacher domain.Teacher) error {
	if err := t.call("UpdateTeacher"); err != nil {
		return err
	}
	if _, ok := t.state.teachers[teacher.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := t.checkTeacherUnique(teacher); err != nil {
		return err
	}
	t.state.teachers[teacher.ID] = teacher
	return nil
}

func (t *memTx) checkTeacherUnique(teacher domain.Teacher) error {
	for _, other := range t.state.teachers {
		if other.ID == teacher.ID {
			continue
		}
		if teacher.Email != nil && other.Email != nil && *teacher.Email == *other.Email {
			return domain.ErrEmailTaken
		}
		if teacher.UserID != nil && other.UserID != nil && *teacher.UserID == *other.UserID {
			return domain.ErrUserAlreadyLinked
		}
	}
	return nil
}

func (t *memTx) DeleteTeacher(ctx context.Context, id string) error {
	if err := t.call("DeleteTeacher"); err != nil {
		return err
	}
	if _, ok := t.state.teachers[id]; !ok {
		return domain.ErrNotFound
	}
	for _, c := range t.state.classrooms {
		if c.TeacherID == id {
			return domain.ErrStorageConflict
		}
	}
	delete(t.state.teachers, id)
	return nil
}

func (t *memTx) CountClassroomsByTeacher(ctx context.Context, teacherID string) (int, error) {
	if err := t.call("CountClassroomsByTeacher"); err != nil {
		return 0, err
	}
	n := 0
	for _, c := range t.state.classrooms {
		if c.TeacherID == teacherID {
			n++
		}
	}
	return n, nil
}

// Classrooms

func (t *memTx) sortedClassrooms(keep func(domain.Classroom) bool) []domain.Classroom {
	var out []domain.Classroom
	for _, c := range t.state.classrooms {
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Classroom) int {
		if a.Grade != b.Grade {
			return a.Grade - b.Grade
		}
		return strings.Compare(a.Name+a.ID, b.Name+b.ID)
	})
	return out
}

func (t *memTx) ListClassrooms(ctx context.Context) ([]domain.Classroom, error) {
	if err := t.call("ListClassrooms"); err != nil {
		return nil, err
	}
	return t.sortedClassrooms(func(domain.Classroom) bool { return true }), nil
}

func (t *memTx) ListClassroomsByTeacher(ctx context.Context, teacherID string) ([]domain.Classroom, error) {
	if err := t.call("ListClassroomsByTeacher"); err != nil {
		return nil, err
	}
	return t.sortedClassrooms(func(c domain.Classroom) bool { return c.TeacherID == teacherID }), nil
}

func (t *memTx) GetClassroom(ctx context.Context, id string) (*domain.Classroom, error) {
	if err := t.call("GetClassroom"); err != nil {
		return nil, err
	}
	c, ok := t.state.classrooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) LockClassroom(ctx context.Context, id string) (*domain.Classroom, error) {
	if err := t.call("LockClassroom"); err != nil {
		return nil, err
	}
	t.store.LockedOrder = append(t.store.LockedOrder, id)
	c, ok := t.state.classrooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) CreateClassroom(ctx context.Context, classroom domain.Classroom) error {
	if err := t.call("CreateClassroom"); err != nil {
		return err
	}
	if err := t.checkClassroom(classroom); err != nil {
		return err
	}
	t.state.classrooms[classroom.ID] = classroom
	return nil
}

func (t *memTx) UpdateClassroom(ctx context.Context, classroom domain.Classroom) error {
	if err := t.call("UpdateClassroom"); err != nil {
		return err
	}
	if _, ok := t.state.classrooms[classroom.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := t.checkClassroom(classroom); err != nil {
		return err
	}
	t.state.classrooms[classroom.ID] = classroom
	return nil
}

func (t *memTx) checkClassroom(classroom domain.Classroom) error {
	if classroom.Capacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	if _, ok := t.state.teachers[classroom.TeacherID]; !ok {
		return domain.ErrStorageConflict
	}
	return nil
}

func (t *memTx) DeleteClassroom(ctx context.Context, id string) error {
	if err := t.call("DeleteClassroom"); err != nil {
		return err
	}
	if _, ok := t.state.classrooms[id]; !ok {
		return domain.ErrNotFound
	}
	if t.state.occupancy(id) > 0 {
		return domain.ErrStorageConflict
	}
	delete(t.state.classrooms, id)
	return nil
}

func (t *memTx) CountStudents(ctx context.Context, classroomID string) (int, error) {
	if err := t.call("CountStudents"); err != nil {
		return 0, err
	}
	return t.state.occupancy(classroomID), nil
}

func (t *memTx) OccupancyByClassroom(ctx context.Context) (map[string]int, error) {
	if err := t.call("OccupancyByClassroom"); err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, st := range t.state.students {
		counts[st.ClassroomID]++
	}
	return counts, nil
}

// Students

func (t *memTx) sortedStudents(keep func(domain.Student) bool) []domain.Student {
	var out []domain.Student
	for _, st := range t.state.students {
		if keep(st) {
			out = append(out, st)
		}
	}
	slices.SortFunc(out, func(a, b domain.Student) int {
		return strings.Compare(a.Name+a.ID, b.Name+b.ID)
	})
	return out
}

func (t *memTx) ListStudents(ctx context.Context) ([]domain.Student, error) {
	if err := t.call("ListStudents"); err != nil {
		return nil, err
	}
	return t.sortedStudents(func(domain.Student) bool { return true }), nil
}

func (t *memTx) ListStudentsByClassroom(ctx context.Context, classroomID string) ([]domain.Student, error) {
	if err := t.call("ListStudentsByClassroom"); err != nil {
		return nil, err
	}
	return t.sortedStudents(func(st domain.Student) bool { return st.ClassroomID == classroomID }), nil
}

func (t *memTx) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	if err := t.call("GetStudent"); err != nil {
		return nil, err
	}
	st, ok := t.state.students[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (t *memTx) LockStudent(ctx context.Context, id string) (*domain.Student, error) {
	if err := t.call("LockStudent"); err != nil {
		return nil, err
	}
	st, ok := t.state.students[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (t *memTx) CreateStudent(ctx context.Context, student domain.Student) error {
	if err := t.call("CreateStudent"); err != nil {
		return err
	}
	if _, ok := t.state.classrooms[student.ClassroomID]; !ok {
		return domain.ErrStorageConflict
	}
	t.state.students[student.ID] = student
	return nil
}

func (t *memTx) UpdateStudent(ctx context.Context, student domain.Student) error {
	if err := t.call("UpdateStudent"); err != nil {
		return err
	}
	if _, ok := t.state.students[student.ID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := t.state.classrooms[student.ClassroomID]; !ok {
		return domain.ErrStorageConflict
	}
	t.state.students[student.ID] = student
	return nil
}

func (t *memTx) DeleteStudent(ctx context.Context, id string) error {
	if err := t.call("DeleteStudent"); err != nil {
		return err
	}
	if _, ok := t.state.students[id]; !ok {
		return domain.ErrNotFound
	}
	delete(t.state.students, id)
	return nil
}

// Outbox

func (t *memTx) EnqueueEvent(ctx context.Context, evt domain.OutboxEvent) error {
	if err := t.call("EnqueueEvent"); err != nil {
		return err
	}
	t.state.outbox = append(t.state.outbox, evt)
	return nil
}
