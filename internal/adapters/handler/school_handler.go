package handler

import (
	"net/http"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

// SchoolHandler serves the admin CRUD routes. Authorization happens in
// AuthMiddleware.RequireAdmin before any of these run.
type SchoolHandler struct {
	school ports.SchoolService
}

func NewSchoolHandler(school ports.SchoolService) *SchoolHandler {
	return &SchoolHandler{school: school}
}

type TeacherRequest struct {
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	UserID *string `json:"user_id"`
}

func (req TeacherRequest) input() ports.TeacherInput {
	return ports.TeacherInput{Name: req.Name, Email: req.Email, UserID: req.UserID}
}

type ClassroomRequest struct {
	Name      string `json:"name"`
	Grade     int    `json:"grade"`
	Capacity  int    `json:"capacity"`
	TeacherID string `json:"teacher_id"`
}

func (req ClassroomRequest) input() ports.ClassroomInput {
	return ports.ClassroomInput{
		Name:      req.Name,
		Grade:     req.Grade,
		Capacity:  req.Capacity,
		TeacherID: req.TeacherID,
	}
}

type StudentRequest struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	IsEnrolled  *bool  `json:"is_enrolled"`
	ClassroomID string `json:"classroom_id"`
}

func (req StudentRequest) input() (ports.StudentInput, error) {
	if req.IsEnrolled == nil {
		return ports.StudentInput{}, &domain.ValidationError{Field: "is_enrolled", Message: "is required"}
	}
	return ports.StudentInput{
		Name:        req.Name,
		Age:         req.Age,
		IsEnrolled:  *req.IsEnrolled,
		ClassroomID: req.ClassroomID,
	}, nil
}

// write sends body with 200, or the mapped error.
func write(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, body)
}

func writeDeleted(w http.ResponseWriter, r *http.Request, err error) {
	write(w, r, deletedResponse{OK: true}, err)
}

// Teachers

func (h *SchoolHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.school.ListTeachers(r.Context())
	write(w, r, teachers, err)
}

func (h *SchoolHandler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	teacher, err := h.school.GetTeacher(r.Context(), r.PathValue("id"))
	write(w, r, teacher, err)
}

func (h *SchoolHandler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req TeacherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	teacher, err := h.school.CreateTeacher(r.Context(), req.input())
	write(w, r, teacher, err)
}

func (h *SchoolHandler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req TeacherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	teacher, err := h.school.UpdateTeacher(r.Context(), r.PathValue("id"), req.input())
	write(w, r, teacher, err)
}

func (h *SchoolHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, r, h.school.DeleteTeacher(r.Context(), r.PathValue("id")))
}

// Classrooms

func (h *SchoolHandler) ListClassrooms(w http.ResponseWriter, r *http.Request) {
	classrooms, err := h.school.ListClassrooms(r.Context())
	write(w, r, classrooms, err)
}

func (h *SchoolHandler) GetClassroom(w http.ResponseWriter, r *http.Request) {
	classroom, err := h.school.GetClassroom(r.Context(), r.PathValue("id"))
	write(w, r, classroom, err)
}

func (h *SchoolHandler) CreateClassroom(w http.ResponseWriter, r *http.Request) {
	var req ClassroomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	classroom, err := h.school.CreateClassroom(r.Context(), req.input())
	write(w, r, classroom, err)
}

func (h *SchoolHandler) UpdateClassroom(w http.ResponseWriter, r *http.Request) {
	var req ClassroomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	classroom, err := h.school.UpdateClassroom(r.Context(), r.PathValue("id"), req.input())
	write(w, r, classroom, err)
}

func (h *SchoolHandler) DeleteClassroom(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, r, h.school.DeleteClassroom(r.Context(), r.PathValue("id")))
}

// Students

func (h *SchoolHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.school.ListStudents(r.Context())
	write(w, r, students, err)
}

func (h *SchoolHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.school.GetStudent(r.Context(), r.PathValue("id"))
	write(w, r, student, err)
}

func (h *SchoolHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeStudent(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	student, err := h.school.CreateStudent(r.Context(), in)
	write(w, r, student, err)
}

func (h *SchoolHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeStudent(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	student, err := h.school.UpdateStudent(r.Context(), r.PathValue("id"), in)
	write(w, r, student, err)
}

func (h *SchoolHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, r, h.school.DeleteStudent(r.Context(), r.PathValue("id")))
}

func decodeStudent(w http.ResponseWriter, r *http.Request) (ports.StudentInput, error) {
	var req StudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return ports.StudentInput{}, err
	}
	return req.input()
}
