package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
	"github.com/google/uuid"
)

// SchoolService implements the admin CRUD surface together with the
// referential, uniqueness and capacity rules on every write.
type SchoolService struct {
	store      ports.Store
	admissions admissions
	logger     *slog.Logger
}

var _ ports.SchoolService = (*SchoolService)(nil)

func NewSchoolService(store ports.Store, observer ports.AdmissionObserver, logger *slog.Logger) *SchoolService {
	return &SchoolService{
		store:      store,
		admissions: admissions{observer: observer, now: time.Now},
		logger:     resolveLogger(logger),
	}
}

func (s *SchoolService) withinTx(ctx context.Context, event string, fn func(tx ports.Tx) error) error {
	return logUnexpected(s.logger, event, s.store.WithinTx(ctx, fn))
}

// Teachers

func (s *SchoolService) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	var teachers []domain.Teacher
	err := s.withinTx(ctx, "school_list_teachers_failed", func(tx ports.Tx) error {
		var err error
		teachers, err = tx.ListTeachers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(teachers), nil
}

func (s *SchoolService) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	var teacher *domain.Teacher
	err := s.withinTx(ctx, "school_get_teacher_failed", func(tx ports.Tx) error {
		var err error
		teacher, err = getTeacher(ctx, tx, id)
		return err
	})
	return teacher, err
}

func (s *SchoolService) CreateTeacher(ctx context.Context, in ports.TeacherInput) (*domain.Teacher, error) {
	teacher, err := newTeacher(uuid.NewString(), in)
	if err != nil {
		return nil, err
	}

	err = s.withinTx(ctx, "school_create_teacher_failed", func(tx ports.Tx) error {
		if err := checkTeacherUniqueness(ctx, tx, teacher); err != nil {
			return err
		}
		return tx.CreateTeacher(ctx, teacher)
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (s *SchoolService) UpdateTeacher(ctx context.Context, id string, in ports.TeacherInput) (*domain.Teacher, error) {
	teacher, err := newTeacher(id, in)
	if err != nil {
		return nil, err
	}

	err = s.withinTx(ctx, "school_update_teacher_failed", func(tx ports.Tx) error {
		if _, err := getTeacher(ctx, tx, id); err != nil {
			return err
		}
		if err := checkTeacherUniqueness(ctx, tx, teacher); err != nil {
			return err
		}
		return tx.UpdateTeacher(ctx, teacher)
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// DeleteTeacher refuses to orphan classrooms.
func (s *SchoolService) DeleteTeacher(ctx context.Context, id string) error {
	return s.withinTx(ctx, "school_delete_teacher_failed", func(tx ports.Tx) error {
		if _, err := getTeacher(ctx, tx, id); err != nil {
			return err
		}
		owned, err := tx.CountClassroomsByTeacher(ctx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return domain.ErrTeacherHasClassrooms
		}
		return tx.DeleteTeacher(ctx, id)
	})
}

// Classrooms

func (s *SchoolService) ListClassrooms(ctx context.Context) ([]ports.ClassroomView, error) {
	var views []ports.ClassroomView
	err := s.withinTx(ctx, "school_list_classrooms_failed", func(tx ports.Tx) error {
		classrooms, err := tx.ListClassrooms(ctx)
		if err != nil {
			return err
		}
		views, err = withOccupancy(ctx, tx, classrooms)
		return err
	})
	return views, err
}

func (s *SchoolService) GetClassroom(ctx context.Context, id string) (*ports.ClassroomView, error) {
	var view *ports.ClassroomView
	err := s.withinTx(ctx, "school_get_classroom_failed", func(tx ports.Tx) error {
		classroom, err := tx.GetClassroom(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrClassroomNotFound
		}
		if err != nil {
			return err
		}
		occupancy, err := tx.CountStudents(ctx, id)
		if err != nil {
			return err
		}
		view = &ports.ClassroomView{Classroom: *classroom, Occupancy: occupancy}
		return nil
	})
	return view, err
}

func (s *SchoolService) CreateClassroom(ctx context.Context, in ports.ClassroomInput) (*domain.Classroom, error) {
	classroom, err := newClassroom(uuid.NewString(), in)
	if err != nil {
		return nil, err
	}

	err = s.withinTx(ctx, "school_create_classroom_failed", func(tx ports.Tx) error {
		if _, err := getTeacher(ctx, tx, classroom.TeacherID); err != nil {
			return err
		}
		return tx.CreateClassroom(ctx, classroom)
	})
	if err != nil {
		return nil, err
	}
	return &classroom, nil
}

// UpdateClassroom replaces the classroom's fields. Lowering the capacity is
// checked against the occupancy counted under the classroom's row lock.
func (s *SchoolService) UpdateClassroom(ctx context.Context, id string, in ports.ClassroomInput) (*domain.Classroom, error) {
	classroom, err := newClassroom(id, in)
	if err != nil {
		return nil, err
	}

	err = s.withinTx(ctx, "school_update_classroom_failed", func(tx ports.Tx) error {
		current, err := lockClassroom(ctx, tx, id)
		if err != nil {
			return err
		}
		if classroom.TeacherID != current.TeacherID {
			if _, err := getTeacher(ctx, tx, classroom.TeacherID); err != nil {
				return err
			}
		}
		if classroom.Capacity < current.Capacity {
			occupancy, err := tx.CountStudents(ctx, id)
			if err != nil {
				return err
			}
			if classroom.Capacity < occupancy {
				return domain.ErrCapacityBelowOccupancy
			}
		}
		return tx.UpdateClassroom(ctx, classroom)
	})
	if err != nil {
		return nil, err
	}
	return &classroom, nil
}

// DeleteClassroom refuses to orphan students.
func (s *SchoolService) DeleteClassroom(ctx context.Context, id string) error {
	return s.withinTx(ctx, "school_delete_classroom_failed", func(tx ports.Tx) error {
		if _, err := lockClassroom(ctx, tx, id); err != nil {
			return err
		}
		occupancy, err := tx.CountStudents(ctx, id)
		if err != nil {
			return err
		}
		if occupancy > 0 {
			return domain.ErrClassroomHasStudents
		}
		return tx.DeleteClassroom(ctx, id)
	})
}

// Students

func (s *SchoolService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student
	err := s.withinTx(ctx, "school_list_students_failed", func(tx ports.Tx) error {
		var err error
		students, err = tx.ListStudents(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(students), nil
}

func (s *SchoolService) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	var student *domain.Student
	err := s.withinTx(ctx, "school_get_student_failed", func(tx ports.Tx) error {
		var err error
		student, err = tx.GetStudent(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrStudentNotFound
		}
		return err
	})
	return student, err
}

func (s *SchoolService) CreateStudent(ctx context.Context, in ports.StudentInput) (*domain.Student, error) {
	var student *domain.Student
	err := s.withinTx(ctx, "school_create_student_failed", func(tx ports.Tx) error {
		var err error
		student, err = s.admissions.create(ctx, tx, in, nil)
		return err
	})
	return student, err
}

func (s *SchoolService) UpdateStudent(ctx context.Context, id string, in ports.StudentInput) (*domain.Student, error) {
	var student *domain.Student
	err := s.withinTx(ctx, "school_update_student_failed", func(tx ports.Tx) error {
		var err error
		student, err = s.admissions.update(ctx, tx, id, in, nil)
		return err
	})
	return student, err
}

func (s *SchoolService) DeleteStudent(ctx context.Context, id string) error {
	return s.withinTx(ctx, "school_delete_student_failed", func(tx ports.Tx) error {
		return s.admissions.remove(ctx, tx, id, nil)
	})
}

func getTeacher(ctx context.Context, tx ports.Tx, id string) (*domain.Teacher, error) {
	teacher, err := tx.GetTeacher(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTeacherNotFound
	}
	return teacher, err
}

// checkTeacherUniqueness enforces unique email and unique user link across
// teachers other than the one being written.
func checkTeacherUniqueness(ctx context.Context, tx ports.Tx, teacher domain.Teacher) error {
	if teacher.UserID != nil {
		if _, err := tx.GetUser(ctx, *teacher.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		linked, err := tx.FindTeacherByUserID(ctx, *teacher.UserID)
		switch {
		case err == nil && linked.ID != teacher.ID:
			return domain.ErrUserAlreadyLinked
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}

	if teacher.Email != nil {
		existing, err := tx.FindTeacherByEmail(ctx, *teacher.Email)
		switch {
		case err == nil && existing.ID != teacher.ID:
			return domain.ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}
	return nil
}

func newTeacher(id string, in ports.TeacherInput) (domain.Teacher, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Teacher{}, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	return domain.Teacher{
		ID:     id,
		Name:   name,
		Email:  optional(in.Email),
		UserID: optional(in.UserID),
	}, nil
}

func newClassroom(id string, in ports.ClassroomInput) (domain.Classroom, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Classroom{}, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	if in.Capacity <= 0 {
		return domain.Classroom{}, domain.ErrInvalidCapacity
	}
	if err := checkInt32("capacity", in.Capacity); err != nil {
		return domain.Classroom{}, err
	}
	if err := checkInt32("grade", in.Grade); err != nil {
		return domain.Classroom{}, err
	}
	teacherID := strings.TrimSpace(in.TeacherID)
	if teacherID == "" {
		return domain.Classroom{}, &domain.ValidationError{Field: "teacher_id", Message: "is required"}
	}
	return domain.Classroom{
		ID:        id,
		Name:      name,
		Grade:     in.Grade,
		Capacity:  in.Capacity,
		TeacherID: teacherID,
	}, nil
}

func withOccupancy(ctx context.Context, tx ports.Tx, classrooms []domain.Classroom) ([]ports.ClassroomView, error) {
	counts, err := tx.OccupancyByClassroom(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ports.ClassroomView, 0, len(classrooms))
	for _, c := range classrooms {
		views = append(views, ports.ClassroomView{Classroom: c, Occupancy: counts[c.ID]})
	}
	return views, nil
}

// checkInt32 rejects values the INTEGER columns cannot hold.
func checkInt32(field string, v int) error {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return &domain.ValidationError{Field: field, Message: "is out of range"}
	}
	return nil
}

// optional trims v and treats blank values as absent.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
