package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/handler"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/middleware"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/services"
	"github.com/AchilleasB/school-admin/school-service/test/mocks"
)

type testServer struct {
	t        *testing.T
	store    *mocks.MockStore
	denylist *mocks.MockTokenDenylist
	tokens   *mocks.MockTokenService
	mux      http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := mocks.NewMockStore()
	tokens := mocks.NewMockTokenService()
	denylist := mocks.NewMockTokenDenylist()

	auth := services.NewAuthService(store, &mocks.MockPasswordHasher{}, tokens, denylist, nil)
	resolver := services.NewIdentityResolver(store, nil)

	mux := handler.NewRouter(handler.Router{
		Auth:   handler.NewAuthHandler(auth),
		School: handler.NewSchoolHandler(services.NewSchoolService(store, nil, nil)),
		My:     handler.NewMyHandler(services.NewTeacherScopeService(store, nil, nil)),
		Health: handler.NewHealthHandler("test"),
		Gate:   middleware.NewAuthMiddleware(tokens, denylist, resolver, nil),
	})

	return &testServer{t: t, store: store, denylist: denylist, tokens: tokens, mux: mux}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

// login registers email and returns a bearer token for it.
func (s *testServer) login(email string) string {
	s.t.Helper()

	creds := map[string]string{"email": email, "password": "password1"}
	if rec := s.do(http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusOK {
		s.t.Fatalf("register %s: expected 200, got %d: %s", email, rec.Code, rec.Body)
	}
	rec := s.do(http.MethodPost, "/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body)
	}
	var resp handler.TokenResponse
	decode(s.t, rec, &resp)
	if resp.TokenType != "bearer" {
		s.t.Errorf("expected token_type bearer, got %q", resp.TokenType)
	}
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func expectDetail(t *testing.T, rec *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &body)
	if body.Detail != detail {
		t.Errorf("expected detail %q, got %q", detail, body.Detail)
	}
}

// TestRouter_AdminAndPlainUser verifies the first user administers and the second does not.
func TestRouter_AdminAndPlainUser(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("a@x.io")
	plainToken := s.login("b@x.io")

	rec := s.do(http.MethodGet, "/auth/me", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var me handler.UserResponse
	decode(t, rec, &me)
	if !me.IsAdmin || me.Email != "a@x.io" {
		t.Errorf("unexpected /auth/me body %+v", me)
	}

	expectDetail(t, s.do(http.MethodGet, "/teachers", plainToken, nil), http.StatusForbidden, "Admin privileges required")

	rec = s.do(http.MethodGet, "/teachers", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var teachers []domain.Teacher
	decode(t, rec, &teachers)
	if len(teachers) != 0 {
		t.Errorf("expected empty list, got %d", len(teachers))
	}

	expectDetail(t, s.do(http.MethodGet, "/my/classrooms", adminToken, nil), http.StatusBadRequest, "Admins must use admin routes")
	expectDetail(t, s.do(http.MethodGet, "/my/classrooms", plainToken, nil), http.StatusForbidden, "Not a teacher account")
}

// TestRouter_Authentication covers missing, unknown and revoked tokens.
func TestRouter_Authentication(t *testing.T) {
	s := newTestServer(t)
	token := s.login("a@x.io")

	rec := s.do(http.MethodGet, "/auth/me", "", nil)
	expectDetail(t, rec, http.StatusUnauthorized, "Not authenticated")
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("expected WWW-Authenticate header")
	}

	expectDetail(t, s.do(http.MethodGet, "/auth/me", "forged", nil), http.StatusUnauthorized, "Could not validate credentials")

	if rec := s.do(http.MethodPost, "/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	expectDetail(t, s.do(http.MethodGet, "/auth/me", token, nil), http.StatusUnauthorized, "Could not validate credentials")
}

// TestRouter_LoginFailures covers wrong passwords and duplicate registrations.
func TestRouter_LoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.login("a@x.io")

	rec := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.io", "password": "wrong-pass"})
	expectDetail(t, rec, http.StatusUnauthorized, "Invalid email or password")

	rec = s.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "a@x.io", "password": "password1"})
	expectDetail(t, rec, http.StatusConflict, "Email already in use")

	rec = s.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "c@x.io", "password": "short"})
	expectDetail(t, rec, http.StatusBadRequest, "password: must be between 8 and 72 characters")
}

// TestRouter_TeacherSelfService walks an admin through setting up a teacher
// who then manages their own classroom.
func TestRouter_TeacherSelfService(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("a@x.io")
	teacherToken := s.login("t@x.io")

	var teacherUser handler.UserResponse
	decode(t, s.do(http.MethodGet, "/auth/me", teacherToken, nil), &teacherUser)

	rec := s.do(http.MethodPost, "/teachers", adminToken, map[string]any{
		"name": "T1", "email": "t1@school.io", "user_id": teacherUser.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create teacher: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var teacher domain.Teacher
	decode(t, rec, &teacher)

	rec = s.do(http.MethodPost, "/teachers", adminToken, map[string]any{"name": "Dup", "email": "t1@school.io"})
	expectDetail(t, rec, http.StatusConflict, "Email already in use")

	rec = s.do(http.MethodPost, "/classrooms", adminToken, map[string]any{
		"id": "client-chosen", "name": "X", "grade": 1, "capacity": 1, "teacher_id": teacher.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create classroom: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var classroom domain.Classroom
	decode(t, rec, &classroom)
	if classroom.ID == "client-chosen" {
		t.Error("expected server-generated classroom id")
	}

	rec = s.do(http.MethodPost, "/classrooms", adminToken, map[string]any{
		"name": "Bad", "grade": 1, "capacity": 0, "teacher_id": teacher.ID,
	})
	expectDetail(t, rec, http.StatusBadRequest, "Capacity must be greater than zero")

	student := map[string]any{"name": "S1", "age": 8, "is_enrolled": true, "classroom_id": classroom.ID}
	if rec := s.do(http.MethodPost, "/my/students", teacherToken, student); rec.Code != http.StatusOK {
		t.Fatalf("add S1: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	student["name"] = "S2"
	expectDetail(t, s.do(http.MethodPost, "/my/students", teacherToken, student), http.StatusBadRequest, "Classroom is full")

	student["age"] = 3000000000
	expectDetail(t, s.do(http.MethodPost, "/my/students", teacherToken, student), http.StatusBadRequest, "age: is out of range")
	student["age"] = 8

	rec = s.do(http.MethodGet, "/my/classrooms", teacherToken, nil)
	var views []struct {
		ID        string `json:"id"`
		Occupancy int    `json:"occupancy"`
	}
	decode(t, rec, &views)
	if len(views) != 1 || views[0].Occupancy != 1 {
		t.Errorf("expected one classroom with occupancy 1, got %+v", views)
	}

	rec = s.do(http.MethodGet, "/my/classrooms/"+classroom.ID+"/students", teacherToken, nil)
	var students []domain.Student
	decode(t, rec, &students)
	if len(students) != 1 || students[0].Name != "S1" {
		t.Errorf("expected [S1], got %+v", students)
	}

	expectDetail(t, s.do(http.MethodDelete, "/classrooms/"+classroom.ID, adminToken, nil), http.StatusConflict, "Classroom still has students")
	expectDetail(t, s.do(http.MethodDelete, "/teachers/"+teacher.ID, adminToken, nil), http.StatusConflict, "Teacher still has classrooms")
}

// TestRouter_NotFoundAndValidation covers unknown ids and malformed payloads.
func TestRouter_NotFoundAndValidation(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("a@x.io")

	expectDetail(t, s.do(http.MethodGet, "/classrooms/ghost", adminToken, nil), http.StatusNotFound, "Classroom not found")
	expectDetail(t, s.do(http.MethodGet, "/students/ghost", adminToken, nil), http.StatusNotFound, "Student not found")
	expectDetail(t, s.do(http.MethodDelete, "/teachers/ghost", adminToken, nil), http.StatusNotFound, "Teacher not found")

	rec := s.do(http.MethodPost, "/students", adminToken, map[string]any{"name": "S", "age": 8, "classroom_id": "x"})
	expectDetail(t, rec, http.StatusBadRequest, "is_enrolled: is required")

	req := httptest.NewRequest(http.MethodPost, "/teachers", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	expectDetail(t, rec, http.StatusBadRequest, "body: is not valid JSON")
}

// TestRouter_MethodNotAllowed verifies the mux rejects unregistered methods.
func TestRouter_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPatch, "/teachers", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
