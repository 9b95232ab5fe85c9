// Package respond writes JSON bodies and maps domain errors onto HTTP
// status codes with a {"detail": ...} body.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response",
			"event", "http_encode_response_failed",
			"module", "adapters/respond",
			"layer", "transport",
			"error", err.Error(),
		)
	}
}

func Detail(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorResponse{Detail: detail})
}

type mapping struct {
	target error
	status int
	detail string
}

// mappings is ordered: the first matching target wins.
var mappings = []mapping{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "Could not validate credentials"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "Could not validate credentials"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},

	{domain.ErrAdminRequired, http.StatusForbidden, "Admin privileges required"},
	{domain.ErrNotATeacher, http.StatusForbidden, "Not a teacher account"},
	{domain.ErrNotClassroomOwner, http.StatusForbidden, "Classroom does not belong to you"},
	{domain.ErrWrongSurface, http.StatusBadRequest, "Admins must use admin routes"},

	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrTeacherNotFound, http.StatusNotFound, "Teacher not found"},
	{domain.ErrClassroomNotFound, http.StatusNotFound, "Classroom not found"},
	{domain.ErrStudentNotFound, http.StatusNotFound, "Student not found"},

	{domain.ErrEmailTaken, http.StatusConflict, "Email already in use"},
	{domain.ErrUserAlreadyLinked, http.StatusConflict, "User already linked to a teacher"},
	{domain.ErrTeacherHasClassrooms, http.StatusConflict, "Teacher still has classrooms"},
	{domain.ErrClassroomHasStudents, http.StatusConflict, "Classroom still has students"},
	{domain.ErrStorageConflict, http.StatusConflict, "Conflicting concurrent update, please retry"},

	{domain.ErrInvalidCapacity, http.StatusBadRequest, "Capacity must be greater than zero"},
	{domain.ErrClassroomFull, http.StatusBadRequest, "Classroom is full"},
	{domain.ErrCapacityBelowOccupancy, http.StatusBadRequest, "Capacity cannot be lower than current occupancy"},

	{domain.ErrValidation, http.StatusBadRequest, "Value out of range"},
	{domain.ErrNotFound, http.StatusNotFound, "Not found"},
	{domain.ErrUnavailable, http.StatusServiceUnavailable, "Service temporarily unavailable"},
}

// StatusFor returns the HTTP status and detail message for err.
func StatusFor(err error) (int, string) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error()
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, m.detail
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// Error writes err as a detail response. Unmapped errors become 500 and are
// logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("unhandled request error",
			"event", "http_unhandled_error",
			"module", "adapters/respond",
			"layer", "transport",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	Detail(w, status, detail)
}
