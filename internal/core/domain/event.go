package domain

import "time"

const (
	EventStudentEnrolled    = "student.enrolled"
	EventStudentTransferred = "student.transferred"
	EventStudentRemoved     = "student.removed"
)

// StudentEvent is the payload written to the outbox whenever classroom
// occupancy changes.
type StudentEvent struct {
	StudentID       string    `json:"student_id"`
	ClassroomID     string    `json:"classroom_id"`
	FromClassroomID string    `json:"from_classroom_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type OutboxEvent struct {
	ID        string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}
