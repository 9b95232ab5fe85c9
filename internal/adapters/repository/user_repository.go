package repository

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

func (t *sqlTx) LockRegistrations(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", registrationLockKey)
	return classify(err)
}

func (t *sqlTx) CountUsers(ctx context.Context) (int, error) {
	return t.count(ctx, "SELECT COUNT(*) FROM users")
}

func (t *sqlTx) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return t.scanUser(ctx,
		"SELECT id, email, password_hash, is_admin, created_at FROM users WHERE email = $1",
		email,
	)
}

func (t *sqlTx) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return t.scanUser(ctx,
		"SELECT id, email, password_hash, is_admin, created_at FROM users WHERE id = $1",
		id,
	)
}

func (t *sqlTx) scanUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	err := t.tx.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (t *sqlTx) CreateUser(ctx context.Context, user domain.User) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, is_admin, created_at) VALUES ($1, $2, $3, $4, $5)",
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt,
	)
	return classify(err)
}
