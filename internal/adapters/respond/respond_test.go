package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

// TestStatusFor covers every error kind and wrapped errors.
func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantDetail string
	}{
		{domain.ErrInvalidToken, http.StatusUnauthorized, "Could not validate credentials"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{domain.ErrAdminRequired, http.StatusForbidden, "Admin privileges required"},
		{domain.ErrNotATeacher, http.StatusForbidden, "Not a teacher account"},
		{domain.ErrNotClassroomOwner, http.StatusForbidden, "Classroom does not belong to you"},
		{domain.ErrWrongSurface, http.StatusBadRequest, "Admins must use admin routes"},
		{domain.ErrClassroomNotFound, http.StatusNotFound, "Classroom not found"},
		{domain.ErrEmailTaken, http.StatusConflict, "Email already in use"},
		{fmt.Errorf("%w: pq detail", domain.ErrEmailTaken), http.StatusConflict, "Email already in use"},
		{domain.ErrStorageConflict, http.StatusConflict, "Conflicting concurrent update, please retry"},
		{domain.ErrClassroomFull, http.StatusBadRequest, "Classroom is full"},
		{domain.ErrCapacityBelowOccupancy, http.StatusBadRequest, "Capacity cannot be lower than current occupancy"},
		{&domain.ValidationError{Field: "name", Message: "is required"}, http.StatusBadRequest, "name: is required"},
		{fmt.Errorf("%w: pq detail", domain.ErrValidation), http.StatusBadRequest, "Value out of range"},
		{domain.ErrUnavailable, http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, detail := respond.StatusFor(tt.err)
			if status != tt.wantStatus || detail != tt.wantDetail {
				t.Errorf("expected %d %q, got %d %q", tt.wantStatus, tt.wantDetail, status, detail)
			}
		})
	}
}

// TestError verifies the body shape and the 401 challenge header.
func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil), domain.ErrInvalidToken)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("expected WWW-Authenticate header")
	}
	var body respond.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Detail != "Could not validate credentials" {
		t.Errorf("unexpected detail %q", body.Detail)
	}
}
