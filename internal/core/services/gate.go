package services

import "github.com/AchilleasB/school-admin/school-service/internal/core/domain"

// RequireAdmin allows only admins onto the admin surface.
func RequireAdmin(identity domain.Identity) error {
	if identity.Kind != domain.IdentityAdmin {
		return domain.ErrAdminRequired
	}
	return nil
}

// TeacherContext returns the caller's teacher id for the self-service surface.
func TeacherContext(identity domain.Identity) (string, error) {
	switch identity.Kind {
	case domain.IdentityAdmin:
		return "", domain.ErrWrongSurface
	case domain.IdentityTeacher:
		return identity.TeacherID, nil
	default:
		return "", domain.ErrNotATeacher
	}
}

// AuthorizeClassroom fails unless teacherID owns the classroom.
func AuthorizeClassroom(teacherID string, classroom domain.Classroom) error {
	if teacherID == "" || classroom.TeacherID != teacherID {
		return domain.ErrNotClassroomOwner
	}
	return nil
}

func ownedBy(teacherID string) classroomCheck {
	return func(c domain.Classroom) error {
		return AuthorizeClassroom(teacherID, c)
	}
}
