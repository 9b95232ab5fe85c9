package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

// TeacherScopeService serves the self-service routes. Every operation takes
// the caller's teacher id and only touches classrooms that teacher owns.
type TeacherScopeService struct {
	store      ports.Store
	admissions admissions
	logger     *slog.Logger
}

var _ ports.TeacherScopeService = (*TeacherScopeService)(nil)

func NewTeacherScopeService(store ports.Store, observer ports.AdmissionObserver, logger *slog.Logger) *TeacherScopeService {
	return &TeacherScopeService{
		store:      store,
		admissions: admissions{observer: observer, now: time.Now},
		logger:     resolveLogger(logger),
	}
}

func (s *TeacherScopeService) withinTx(ctx context.Context, event, teacherID string, fn func(tx ports.Tx) error) error {
	return logUnexpected(s.logger, event, s.store.WithinTx(ctx, fn), "teacher_id", teacherID)
}

func (s *TeacherScopeService) ListClassrooms(ctx context.Context, teacherID string) ([]ports.ClassroomView, error) {
	var views []ports.ClassroomView
	err := s.withinTx(ctx, "my_list_classrooms_failed", teacherID, func(tx ports.Tx) error {
		classrooms, err := tx.ListClassroomsByTeacher(ctx, teacherID)
		if err != nil {
			return err
		}
		views, err = withOccupancy(ctx, tx, classrooms)
		return err
	})
	return views, err
}

func (s *TeacherScopeService) ListStudents(ctx context.Context, teacherID, classroomID string) ([]domain.Student, error) {
	var students []domain.Student
	err := s.withinTx(ctx, "my_list_students_failed", teacherID, func(tx ports.Tx) error {
		classroom, err := tx.GetClassroom(ctx, classroomID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrClassroomNotFound
		}
		if err != nil {
			return err
		}
		if err := AuthorizeClassroom(teacherID, *classroom); err != nil {
			return err
		}
		students, err = tx.ListStudentsByClassroom(ctx, classroom.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(students), nil
}

func (s *TeacherScopeService) CreateStudent(ctx context.Context, teacherID string, in ports.StudentInput) (*domain.Student, error) {
	var student *domain.Student
	err := s.withinTx(ctx, "my_create_student_failed", teacherID, func(tx ports.Tx) error {
		var err error
		student, err = s.admissions.create(ctx, tx, in, ownedBy(teacherID))
		return err
	})
	return student, err
}

// UpdateStudent requires the teacher to own the student's current classroom
// and, on a move, the destination classroom as well.
func (s *TeacherScopeService) UpdateStudent(ctx context.Context, teacherID, studentID string, in ports.StudentInput) (*domain.Student, error) {
	var student *domain.Student
	err := s.withinTx(ctx, "my_update_student_failed", teacherID, func(tx ports.Tx) error {
		var err error
		student, err = s.admissions.update(ctx, tx, studentID, in, ownedBy(teacherID))
		return err
	})
	return student, err
}

func (s *TeacherScopeService) DeleteStudent(ctx context.Context, teacherID, studentID string) error {
	return s.withinTx(ctx, "my_delete_student_failed", teacherID, func(tx ports.Tx) error {
		return s.admissions.remove(ctx, tx, studentID, ownedBy(teacherID))
	})
}
