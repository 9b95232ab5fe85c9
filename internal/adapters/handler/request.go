package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads one JSON object from the body into dst. Unknown fields,
// including client-supplied ids, are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Field: "body", Message: "is required"}
		}
		return &domain.ValidationError{Field: "body", Message: "is not valid JSON"}
	}
	return nil
}

type deletedResponse struct {
	OK bool `json:"ok"`
}
