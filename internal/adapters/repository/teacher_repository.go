package repository

import (
	"context"
	"database/sql"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

const teacherColumns = "id, name, email, user_id"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeacher(row rowScanner) (*domain.Teacher, error) {
	var (
		teacher domain.Teacher
		email   sql.NullString
		userID  sql.NullString
	)
	if err := row.Scan(&teacher.ID, &teacher.Name, &email, &userID); err != nil {
		return nil, err
	}
	if email.Valid {
		teacher.Email = &email.String
	}
	if userID.Valid {
		teacher.UserID = &userID.String
	}
	return &teacher, nil
}

func (t *sqlTx) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT "+teacherColumns+" FROM teachers ORDER BY name, id")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var teachers []domain.Teacher
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *teacher)
	}
	return teachers, rows.Err()
}

func (t *sqlTx) getTeacherWhere(ctx context.Context, where string, arg string) (*domain.Teacher, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+teacherColumns+" FROM teachers WHERE "+where, arg)
	teacher, err := scanTeacher(row)
	if err != nil {
		return nil, classify(err)
	}
	return teacher, nil
}

func (t *sqlTx) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	return t.getTeacherWhere(ctx, "id = $1", id)
}

func (t *sqlTx) FindTeacherByEmail(ctx context.Context, email string) (*domain.Teacher, error) {
	return t.getTeacherWhere(ctx, "email = $1", email)
}

func (t *sqlTx) FindTeacherByUserID(ctx context.Context, userID string) (*domain.Teacher, error) {
	return t.getTeacherWhere(ctx, "user_id = $1", userID)
}

func (t *sqlTx) CreateTeacher(ctx context.Context, teacher domain.Teacher) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO teachers (id, name, email, user_id) VALUES ($1, $2, $3, $4)",
		teacher.ID,
		teacher.Name,
		nullString(teacher.Email),
		nullString(teacher.UserID),
	)
	return classify(err)
}

func (t *sqlTx) UpdateTeacher(ctx context.Context, teacher domain.Teacher) error {
	return t.execOne(ctx,
		"UPDATE teachers SET name = $2, email = $3, user_id = $4 WHERE id = $1",
		teacher.ID,
		teacher.Name,
		nullString(teacher.Email),
		nullString(teacher.UserID),
	)
}

func (t *sqlTx) DeleteTeacher(ctx context.Context, id string) error {
	return t.execOne(ctx, "DELETE FROM teachers WHERE id = $1", id)
}

func (t *sqlTx) CountClassroomsByTeacher(ctx context.Context, teacherID string) (int, error) {
	return t.count(ctx, "SELECT COUNT(*) FROM classrooms WHERE teacher_id = $1", teacherID)
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
