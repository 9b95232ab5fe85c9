package handler

import (
	"net/http"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/middleware"
)

// Router groups everything NewRouter mounts.
type Router struct {
	Auth    *AuthHandler
	School  *SchoolHandler
	My      *MyHandler
	Health  *HealthHandler
	Gate    *middleware.AuthMiddleware
	Metrics http.Handler
}

// NewRouter registers every route on a ServeMux. Admin routes go through
// RequireAdmin, /my routes through RequireTeacher.
func NewRouter(rt Router) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", rt.Auth.Register)
	mux.HandleFunc("POST /auth/login", rt.Auth.Login)
	mux.Handle("GET /auth/me", rt.Gate.Authenticate(http.HandlerFunc(rt.Auth.Me)))
	mux.Handle("POST /auth/logout", rt.Gate.Authenticate(http.HandlerFunc(rt.Auth.Logout)))

	admin := rt.Gate.RequireAdmin
	mux.Handle("GET /teachers", admin(rt.School.ListTeachers))
	mux.Handle("POST /teachers", admin(rt.School.CreateTeacher))
	mux.Handle("GET /teachers/{id}", admin(rt.School.GetTeacher))
	mux.Handle("PUT /teachers/{id}", admin(rt.School.UpdateTeacher))
	mux.Handle("DELETE /teachers/{id}", admin(rt.School.DeleteTeacher))

	mux.Handle("GET /classrooms", admin(rt.School.ListClassrooms))
	mux.Handle("POST /classrooms", admin(rt.School.CreateClassroom))
	mux.Handle("GET /classrooms/{id}", admin(rt.School.GetClassroom))
	mux.Handle("PUT /classrooms/{id}", admin(rt.School.UpdateClassroom))
	mux.Handle("DELETE /classrooms/{id}", admin(rt.School.DeleteClassroom))

	mux.Handle("GET /students", admin(rt.School.ListStudents))
	mux.Handle("POST /students", admin(rt.School.CreateStudent))
	mux.Handle("GET /students/{id}", admin(rt.School.GetStudent))
	mux.Handle("PUT /students/{id}", admin(rt.School.UpdateStudent))
	mux.Handle("DELETE /students/{id}", admin(rt.School.DeleteStudent))

	teacher := rt.Gate.RequireTeacher
	mux.Handle("GET /my/classrooms", teacher(rt.My.ListClassrooms))
	mux.Handle("GET /my/classrooms/{id}/students", teacher(rt.My.ListStudents))
	mux.Handle("POST /my/students", teacher(rt.My.CreateStudent))
	mux.Handle("PUT /my/students/{id}", teacher(rt.My.UpdateStudent))
	mux.Handle("DELETE /my/students/{id}", teacher(rt.My.DeleteStudent))

	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /health/live", rt.Health.Live)
		mux.HandleFunc("GET /health/ready", rt.Health.Ready)
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}
	return mux
}
