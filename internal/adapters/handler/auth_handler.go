package handler

import (
	"net/http"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/middleware"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(auth ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: auth}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, userResponse(*user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me must sit behind AuthMiddleware.Authenticate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, r, domain.ErrUnauthenticated)
		return
	}
	respond.JSON(w, http.StatusOK, userResponse(identity.User))
}

// Logout must sit behind AuthMiddleware.Authenticate.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, r, domain.ErrUnauthenticated)
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, deletedResponse{OK: true})
}
