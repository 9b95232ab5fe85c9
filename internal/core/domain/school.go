package domain

// Teacher may be linked to a User through UserID, which enables the
// self-service routes for that user.
type Teacher struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	UserID *string `json:"user_id"`
}

type Classroom struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Grade     int    `json:"grade"`
	Capacity  int    `json:"capacity"`
	TeacherID string `json:"teacher_id"`
}

// HasRoom reports whether one more student fits given the current occupancy.
func (c Classroom) HasRoom(occupancy int) bool {
	return occupancy < c.Capacity
}

type Student struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	IsEnrolled  bool   `json:"is_enrolled"`
	ClassroomID string `json:"classroom_id"`
}
