package ports

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

// Store opens request-scoped transactions. fn's Tx must not be used after fn
// returns; the transaction commits when fn returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is every storage operation available inside one transaction. Lookups of
// a single row return domain.ErrNotFound when the row does not exist.
type Tx interface {
	UserRepository
	TeacherRepository
	ClassroomRepository
	StudentRepository
	OutboxWriter
}

type UserRepository interface {
	// LockRegistrations serializes registrations for the rest of the transaction.
	LockRegistrations(ctx context.Context) error
	CountUsers(ctx context.Context) (int, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) error
}

type TeacherRepository interface {
	ListTeachers(ctx context.Context) ([]domain.Teacher, error)
	GetTeacher(ctx context.Context, id string) (*domain.Teacher, error)
	FindTeacherByEmail(ctx context.Context, email string) (*domain.Teacher, error)
	FindTeacherByUserID(ctx context.Context, userID string) (*domain.Teacher, error)
	CreateTeacher(ctx context.Context, teacher domain.Teacher) error
	UpdateTeacher(ctx context.Context, teacher domain.Teacher) error
	DeleteTeacher(ctx context.Context, id string) error
	CountClassroomsByTeacher(ctx context.Context, teacherID string) (int, error)
}

type ClassroomRepository interface {
	ListClassrooms(ctx context.Context) ([]domain.Classroom, error)
	ListClassroomsByTeacher(ctx context.Context, teacherID string) ([]domain.Classroom, error)
	GetClassroom(ctx context.Context, id string) (*domain.Classroom, error)
	// LockClassroom reads the classroom and holds a row lock on it until the
	// transaction ends.
	LockClassroom(ctx context.Context, id string) (*domain.Classroom, error)
	CreateClassroom(ctx context.Context, classroom domain.Classroom) error
	UpdateClassroom(ctx context.Context, classroom domain.Classroom) error
	DeleteClassroom(ctx context.Context, id string) error
	CountStudents(ctx context.Context, classroomID string) (int, error)
	// OccupancyByClassroom counts students per classroom id; empty classrooms
	// are absent from the map.
	OccupancyByClassroom(ctx context.Context) (map[string]int, error)
}

type StudentRepository interface {
	ListStudents(ctx context.Context) ([]domain.Student, error)
	ListStudentsByClassroom(ctx context.Context, classroomID string) ([]domain.Student, error)
	GetStudent(ctx context.Context, id string) (*domain.Student, error)
	// LockStudent reads the student and holds its row lock until the
	// transaction ends.
	LockStudent(ctx context.Context, id string) (*domain.Student, error)
	CreateStudent(ctx context.Context, student domain.Student) error
	UpdateStudent(ctx context.Context, student domain.Student) error
	DeleteStudent(ctx context.Context, id string) error
}

type OutboxWriter interface {
	EnqueueEvent(ctx context.Context, evt domain.OutboxEvent) error
}
