package repository

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

const classroomColumns = "id, name, grade, capacity, teacher_id"

func scanClassroom(row rowScanner) (*domain.Classroom, error) {
	var c domain.Classroom
	if err := row.Scan(&c.ID, &c.Name, &c.Grade, &c.Capacity, &c.TeacherID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *sqlTx) listClassrooms(ctx context.Context, query string, args ...any) ([]domain.Classroom, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var classrooms []domain.Classroom
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, *c)
	}
	return classrooms, rows.Err()
}

func (t *sqlTx) ListClassrooms(ctx context.Context) ([]domain.Classroom, error) {
	return t.listClassrooms(ctx, "SELECT "+classroomColumns+" FROM classrooms ORDER BY grade, name, id")
}

func (t *sqlTx) ListClassroomsByTeacher(ctx context.Context, teacherID string) ([]domain.Classroom, error) {
	return t.listClassrooms(ctx,
		"SELECT "+classroomColumns+" FROM classrooms WHERE teacher_id = $1 ORDER BY grade, name, id",
		teacherID,
	)
}

func (t *sqlTx) GetClassroom(ctx context.Context, id string) (*domain.Classroom, error) {
	c, err := scanClassroom(t.tx.QueryRowContext(ctx,
		"SELECT "+classroomColumns+" FROM classrooms WHERE id = $1", id))
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

// LockClassroom holds the row lock until commit or rollback, so every
// count-then-write on this classroom is serialized while other classrooms
// are unaffected.
func (t *sqlTx) LockClassroom(ctx context.Context, id string) (*domain.Classroom, error) {
	c, err := scanClassroom(t.tx.QueryRowContext(ctx,
		"SELECT "+classroomColumns+" FROM classrooms WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (t *sqlTx) CreateClassroom(ctx context.Context, c domain.Classroom) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO classrooms (id, name, grade, capacity, teacher_id) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.Name, c.Grade, c.Capacity, c.TeacherID,
	)
	return classify(err)
}

func (t *sqlTx) UpdateClassroom(ctx context.Context, c domain.Classroom) error {
	return t.execOne(ctx,
		"UPDATE classrooms SET name = $2, grade = $3, capacity = $4, teacher_id = $5 WHERE id = $1",
		c.ID, c.Name, c.Grade, c.Capacity, c.TeacherID,
	)
}

func (t *sqlTx) DeleteClassroom(ctx context.Context, id string) error {
	return t.execOne(ctx, "DELETE FROM classrooms WHERE id = $1", id)
}

func (t *sqlTx) CountStudents(ctx context.Context, classroomID string) (int, error) {
	return t.count(ctx, "SELECT COUNT(*) FROM students WHERE classroom_id = $1", classroomID)
}

func (t *sqlTx) OccupancyByClassroom(ctx context.Context) (map[string]int, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT classroom_id, COUNT(*) FROM students GROUP BY classroom_id")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
