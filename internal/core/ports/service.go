package ports

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims TokenClaims) error
}

type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (domain.Identity, error)
}

type TeacherInput struct {
	Name   string
	Email  *string
	UserID *string
}

type ClassroomInput struct {
	Name      string
	Grade     int
	Capacity  int
	TeacherID string
}

type StudentInput struct {
	Name        string
	Age         int
	IsEnrolled  bool
	ClassroomID string
}

// ClassroomView is a classroom together with its live occupancy.
type ClassroomView struct {
	domain.Classroom
	Occupancy int `json:"occupancy"`
}

// SchoolService is the unrestricted surface used by admins.
type SchoolService interface {
	ListTeachers(ctx context.Context) ([]domain.Teacher, error)
	GetTeacher(ctx context.Context, id string) (*domain.Teacher, error)
	CreateTeacher(ctx context.Context, in TeacherInput) (*domain.Teacher, error)
	UpdateTeacher(ctx context.Context, id string, in TeacherInput) (*domain.Teacher, error)
	DeleteTeacher(ctx context.Context, id string) error

	ListClassrooms(ctx context.Context) ([]ClassroomView, error)
	GetClassroom(ctx context.Context, id string) (*ClassroomView, error)
	CreateClassroom(ctx context.Context, in ClassroomInput) (*domain.Classroom, error)
	UpdateClassroom(ctx context.Context, id string, in ClassroomInput) (*domain.Classroom, error)
	DeleteClassroom(ctx context.Context, id string) error

	ListStudents(ctx context.Context) ([]domain.Student, error)
	GetStudent(ctx context.Context, id string) (*domain.Student, error)
	CreateStudent(ctx context.Context, in StudentInput) (*domain.Student, error)
	UpdateStudent(ctx context.Context, id string, in StudentInput) (*domain.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// TeacherScopeService is the self-service surface, narrowed to the classrooms
// owned by teacherID.
type TeacherScopeService interface {
	ListClassrooms(ctx context.Context, teacherID string) ([]ClassroomView, error)
	ListStudents(ctx context.Context, teacherID, classroomID string) ([]domain.Student, error)
	CreateStudent(ctx context.Context, teacherID string, in StudentInput) (*domain.Student, error)
	UpdateStudent(ctx context.Context, teacherID, studentID string, in StudentInput) (*domain.Student, error)
	DeleteStudent(ctx context.Context, teacherID, studentID string) error
}
