package domain

type IdentityKind int

const (
	IdentityPlainUser IdentityKind = iota
	IdentityAdmin
	IdentityTeacher
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityAdmin:
		return "admin"
	case IdentityTeacher:
		return "teacher"
	default:
		return "user"
	}
}

// Identity is the resolved caller of a request. TeacherID is set only when
// Kind is IdentityTeacher.
type Identity struct {
	User      User
	Kind      IdentityKind
	TeacherID string
}

// NewIdentity derives the caller's role. Admin status wins over a teacher link.
func NewIdentity(user User, teacher *Teacher) Identity {
	switch {
	case user.IsAdmin:
		return Identity{User: user, Kind: IdentityAdmin}
	case teacher != nil:
		return Identity{User: user, Kind: IdentityTeacher, TeacherID: teacher.ID}
	default:
		return Identity{User: user, Kind: IdentityPlainUser}
	}
}
