package handler

import (
	"net/http"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/middleware"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

// MyHandler serves the teacher self-service routes behind
// AuthMiddleware.RequireTeacher.
type MyHandler struct {
	scope ports.TeacherScopeService
}

func NewMyHandler(scope ports.TeacherScopeService) *MyHandler {
	return &MyHandler{scope: scope}
}

func (h *MyHandler) ListClassrooms(w http.ResponseWriter, r *http.Request) {
	classrooms, err := h.scope.ListClassrooms(r.Context(), middleware.TeacherIDFrom(r.Context()))
	write(w, r, classrooms, err)
}

func (h *MyHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.scope.ListStudents(r.Context(), middleware.TeacherIDFrom(r.Context()), r.PathValue("id"))
	write(w, r, students, err)
}

func (h *MyHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeStudent(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	student, err := h.scope.CreateStudent(r.Context(), middleware.TeacherIDFrom(r.Context()), in)
	write(w, r, student, err)
}

func (h *MyHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeStudent(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	student, err := h.scope.UpdateStudent(r.Context(), middleware.TeacherIDFrom(r.Context()), r.PathValue("id"), in)
	write(w, r, student, err)
}

func (h *MyHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, r, h.scope.DeleteStudent(r.Context(), middleware.TeacherIDFrom(r.Context()), r.PathValue("id")))
}
