package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

// TestClassify covers the SQLSTATE to domain error mapping.
func TestClassify(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, domain.ErrNotFound},
		{"user email unique", &pq.Error{Code: "23505", Constraint: "users_email_key"}, domain.ErrEmailTaken},
		{"teacher email unique", &pq.Error{Code: "23505", Constraint: "teachers_email_key"}, domain.ErrEmailTaken},
		{"teacher user unique", &pq.Error{Code: "23505", Constraint: "teachers_user_id_key"}, domain.ErrUserAlreadyLinked},
		{"other unique", &pq.Error{Code: "23505", Constraint: "students_pkey"}, domain.ErrStorageConflict},
		{"capacity check", &pq.Error{Code: "23514", Constraint: "classrooms_capacity_check"}, domain.ErrInvalidCapacity},
		{"malformed uuid", &pq.Error{Code: "22P02"}, domain.ErrNotFound},
		{"integer out of range", &pq.Error{Code: "22003"}, domain.ErrValidation},
		{"string too long", &pq.Error{Code: "22001"}, domain.ErrValidation},
		{"foreign key", &pq.Error{Code: "23503"}, domain.ErrStorageConflict},
		{"serialization", &pq.Error{Code: "40001"}, domain.ErrStorageConflict},
		{"deadlock", &pq.Error{Code: "40P01"}, domain.ErrStorageConflict},
		{"unrelated", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if classify(nil) != nil {
		t.Error("expected nil for nil")
	}

	var pqErr *pq.Error
	if !errors.As(classify(&pq.Error{Code: "23503"}), &pqErr) {
		t.Error("expected driver error to stay in the chain")
	}
}

// TestBreakerSuccess verifies rejections do not count as failures.
func TestBreakerSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"classroom full", domain.ErrClassroomFull, true},
		{"validation", &domain.ValidationError{Field: "name", Message: "is required"}, true},
		{"cancelled", context.Canceled, true},
		{"storage conflict", domain.ErrStorageConflict, true},
		{"out of range value", classify(&pq.Error{Code: "22003"}), true},
		{"connection refused", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := breakerSuccess(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
