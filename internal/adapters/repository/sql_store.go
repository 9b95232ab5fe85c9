package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/school-admin/school-service/internal/config"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

// registrationLockKey is the advisory lock taken while deciding whether a
// new user is the first one.
const registrationLockKey = 72210001

// SQLStore runs each unit of work in its own PostgreSQL transaction.
type SQLStore struct {
	db     *sql.DB
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

var _ ports.Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:     db,
		cb:     config.NewCircuitBreaker("PostgreSQL", breakerSuccess),
		logger: logger,
	}
}

// WithinTx commits when fn returns nil and rolls back on every other path.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.runTx(ctx, fn)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}

func (s *SQLStore) runTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// breakerSuccess keeps business rejections and cancelled requests from
// tripping the breaker.
func breakerSuccess(err error) bool {
	return err == nil ||
		domain.IsRejection(err) ||
		errors.Is(err, context.Canceled)
}

// classify maps PostgreSQL failures onto domain errors, keeping the driver
// error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "users_email_key", "teachers_email_key":
			return fmt.Errorf("%w: %w", domain.ErrEmailTaken, err)
		case "teachers_user_id_key":
			return fmt.Errorf("%w: %w", domain.ErrUserAlreadyLinked, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrStorageConflict, err)
	case "23514": // check_violation
		if pqErr.Constraint == "classrooms_capacity_check" {
			return fmt.Errorf("%w: %w", domain.ErrInvalidCapacity, err)
		}
	case "22001", // string_data_right_truncation
		"22003": // numeric_value_out_of_range
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	case "22P02": // invalid_text_representation, a malformed uuid
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case "23503", // foreign_key_violation
		"40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03": // lock_not_available
		return fmt.Errorf("%w: %w", domain.ErrStorageConflict, err)
	}
	return err
}

// sqlTx implements ports.Tx on top of one *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

var _ ports.Tx = (*sqlTx)(nil)

// execOne runs a statement that must touch exactly one row.
func (t *sqlTx) execOne(ctx context.Context, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *sqlTx) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}
