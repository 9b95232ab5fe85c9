package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
	"github.com/google/uuid"
)

const (
	admissionAdmitted = "admitted"
	admissionFull     = "full"
)

// classroomCheck narrows which classrooms a caller may touch. A nil check
// allows every classroom.
type classroomCheck func(domain.Classroom) error

func (c classroomCheck) apply(classroom domain.Classroom) error {
	if c == nil {
		return nil
	}
	return c(classroom)
}

// admissions holds the student write paths shared by the admin and teacher
// surfaces. Every method runs inside the caller's transaction.
type admissions struct {
	observer ports.AdmissionObserver
	now      func() time.Time
}

func (a admissions) observe(outcome string) {
	if a.observer != nil {
		a.observer.ObserveAdmission(outcome)
	}
}

// lockClassroom takes the row lock that serializes every seat count on the
// classroom until the transaction ends.
func lockClassroom(ctx context.Context, tx ports.Tx, id string) (*domain.Classroom, error) {
	classroom, err := tx.LockClassroom(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrClassroomNotFound
	}
	return classroom, err
}

// admit fails with ErrClassroomFull when the locked classroom has no free seat.
func (a admissions) admit(ctx context.Context, tx ports.Tx, classroom domain.Classroom) error {
	occupancy, err := tx.CountStudents(ctx, classroom.ID)
	if err != nil {
		return err
	}
	if !classroom.HasRoom(occupancy) {
		a.observe(admissionFull)
		return domain.ErrClassroomFull
	}
	a.observe(admissionAdmitted)
	return nil
}

func (a admissions) create(ctx context.Context, tx ports.Tx, in ports.StudentInput, check classroomCheck) (*domain.Student, error) {
	if err := validateStudent(in); err != nil {
		return nil, err
	}

	classroom, err := lockClassroom(ctx, tx, in.ClassroomID)
	if err != nil {
		return nil, err
	}
	if err := check.apply(*classroom); err != nil {
		return nil, err
	}
	if err := a.admit(ctx, tx, *classroom); err != nil {
		return nil, err
	}

	student := domain.Student{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
		IsEnrolled:  in.IsEnrolled,
		ClassroomID: classroom.ID,
	}
	if err := tx.CreateStudent(ctx, student); err != nil {
		return nil, err
	}
	if err := a.enqueue(ctx, tx, domain.EventStudentEnrolled, domain.StudentEvent{
		StudentID:   student.ID,
		ClassroomID: student.ClassroomID,
	}); err != nil {
		return nil, err
	}
	return &student, nil
}

// lockStudent holds the student's row lock so its classroom cannot change
// under the ownership and capacity checks that follow. Student rows are
// always locked before classroom rows.
func lockStudent(ctx context.Context, tx ports.Tx, id string) (*domain.Student, error) {
	student, err := tx.LockStudent(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrStudentNotFound
	}
	return student, err
}

// update replaces the student's fields. Moving to another classroom locks
// both classrooms in id order and re-checks the destination's occupancy;
// staying in the same classroom never changes occupancy and skips the check.
func (a admissions) update(ctx context.Context, tx ports.Tx, id string, in ports.StudentInput, check classroomCheck) (*domain.Student, error) {
	if err := validateStudent(in); err != nil {
		return nil, err
	}

	current, err := lockStudent(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	moving := in.ClassroomID != current.ClassroomID

	var source, destination *domain.Classroom
	if moving {
		source, destination, err = lockPair(ctx, tx, current.ClassroomID, in.ClassroomID)
	} else {
		source, err = lockClassroom(ctx, tx, current.ClassroomID)
		destination = source
	}
	if err != nil {
		return nil, err
	}

	if err := check.apply(*source); err != nil {
		return nil, err
	}
	if moving {
		if err := check.apply(*destination); err != nil {
			return nil, err
		}
		if err := a.admit(ctx, tx, *destination); err != nil {
			return nil, err
		}
	}

	updated := domain.Student{
		ID:          current.ID,
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
		IsEnrolled:  in.IsEnrolled,
		ClassroomID: destination.ID,
	}
	if err := tx.UpdateStudent(ctx, updated); err != nil {
		return nil, err
	}
	if moving {
		if err := a.enqueue(ctx, tx, domain.EventStudentTransferred, domain.StudentEvent{
			StudentID:       updated.ID,
			ClassroomID:     destination.ID,
			FromClassroomID: source.ID,
		}); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

func (a admissions) remove(ctx context.Context, tx ports.Tx, id string, check classroomCheck) error {
	student, err := lockStudent(ctx, tx, id)
	if err != nil {
		return err
	}

	if check != nil {
		classroom, err := lockClassroom(ctx, tx, student.ClassroomID)
		if err != nil {
			return err
		}
		if err := check.apply(*classroom); err != nil {
			return err
		}
	}

	if err := tx.DeleteStudent(ctx, student.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrStudentNotFound
		}
		return err
	}
	return a.enqueue(ctx, tx, domain.EventStudentRemoved, domain.StudentEvent{
		StudentID:   student.ID,
		ClassroomID: student.ClassroomID,
	})
}

func (a admissions) enqueue(ctx context.Context, tx ports.Tx, eventType string, evt domain.StudentEvent) error {
	now := a.now().UTC()
	evt.OccurredAt = now
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return tx.EnqueueEvent(ctx, domain.OutboxEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Payload:   payload,
		CreatedAt: now,
	})
}

// lockPair locks two distinct classrooms in ascending id order so that two
// opposite moves cannot deadlock, and returns them as (from, to).
func lockPair(ctx context.Context, tx ports.Tx, fromID, toID string) (*domain.Classroom, *domain.Classroom, error) {
	ids := []string{fromID, toID}
	sort.Strings(ids)

	locked := make(map[string]*domain.Classroom, 2)
	for _, id := range ids {
		classroom, err := lockClassroom(ctx, tx, id)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = classroom
	}
	return locked[fromID], locked[toID], nil
}

func validateStudent(in ports.StudentInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "is required"}
	}
	if in.Age < 0 {
		return &domain.ValidationError{Field: "age", Message: "must not be negative"}
	}
	if err := checkInt32("age", in.Age); err != nil {
		return err
	}
	if strings.TrimSpace(in.ClassroomID) == "" {
		return &domain.ValidationError{Field: "classroom_id", Message: "is required"}
	}
	return nil
}
