package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAdminRequired     = errors.New("admin privileges required")
	ErrNotATeacher       = errors.New("not a teacher account")
	ErrNotClassroomOwner = errors.New("classroom does not belong to you")
	ErrWrongSurface      = errors.New("admins must use admin routes")

	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrTeacherNotFound   = errors.New("teacher not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrStudentNotFound   = errors.New("student not found")

	ErrEmailTaken           = errors.New("email already in use")
	ErrUserAlreadyLinked    = errors.New("user already linked to a teacher")
	ErrTeacherHasClassrooms = errors.New("teacher still has classrooms")
	ErrClassroomHasStudents = errors.New("classroom still has students")

	ErrValidation             = errors.New("validation failed")
	ErrInvalidCapacity        = errors.New("capacity must be greater than zero")
	ErrClassroomFull          = errors.New("classroom is full")
	ErrCapacityBelowOccupancy = errors.New("capacity cannot be lower than current occupancy")

	ErrStorageConflict = errors.New("concurrent update conflict")
	ErrUnavailable     = errors.New("dependency unavailable")
)

// ValidationError carries a field-level message and matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsRejection reports whether err is a business outcome rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var rejections = []error{
	ErrUnauthenticated, ErrInvalidToken, ErrInvalidCredentials,
	ErrAdminRequired, ErrNotATeacher, ErrNotClassroomOwner, ErrWrongSurface,
	ErrNotFound, ErrUserNotFound, ErrTeacherNotFound, ErrClassroomNotFound, ErrStudentNotFound,
	ErrEmailTaken, ErrUserAlreadyLinked, ErrTeacherHasClassrooms, ErrClassroomHasStudents,
	ErrValidation, ErrInvalidCapacity, ErrClassroomFull, ErrCapacityBelowOccupancy,
	ErrStorageConflict,
}
