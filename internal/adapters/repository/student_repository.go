package repository

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

const studentColumns = "id, name, age, is_enrolled, classroom_id"

func scanStudent(row rowScanner) (*domain.Student, error) {
	var s domain.Student
	if err := row.Scan(&s.ID, &s.Name, &s.Age, &s.IsEnrolled, &s.ClassroomID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *sqlTx) listStudents(ctx context.Context, query string, args ...any) ([]domain.Student, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

func (t *sqlTx) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return t.listStudents(ctx, "SELECT "+studentColumns+" FROM students ORDER BY name, id")
}

func (t *sqlTx) ListStudentsByClassroom(ctx context.Context, classroomID string) ([]domain.Student, error) {
	return t.listStudents(ctx,
		"SELECT "+studentColumns+" FROM students WHERE classroom_id = $1 ORDER BY name, id",
		classroomID,
	)
}

func (t *sqlTx) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	s, err := scanStudent(t.tx.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = $1", id))
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (t *sqlTx) LockStudent(ctx context.Context, id string) (*domain.Student, error) {
	s, err := scanStudent(t.tx.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (t *sqlTx) CreateStudent(ctx context.Context, s domain.Student) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO students (id, name, age, is_enrolled, classroom_id) VALUES ($1, $2, $3, $4, $5)",
		s.ID, s.Name, s.Age, s.IsEnrolled, s.ClassroomID,
	)
	return classify(err)
}

func (t *sqlTx) UpdateStudent(ctx context.Context, s domain.Student) error {
	return t.execOne(ctx,
		"UPDATE students SET name = $2, age = $3, is_enrolled = $4, classroom_id = $5 WHERE id = $1",
		s.ID, s.Name, s.Age, s.IsEnrolled, s.ClassroomID,
	)
}

func (t *sqlTx) DeleteStudent(ctx context.Context, id string) error {
	return t.execOne(ctx, "DELETE FROM students WHERE id = $1", id)
}
