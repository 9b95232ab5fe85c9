package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
	"github.com/AchilleasB/school-admin/school-service/internal/core/services"
)

// AuthMiddleware authenticates bearer tokens, resolves the caller's identity
// and gates the admin and teacher surfaces.
type AuthMiddleware struct {
	tokens   ports.TokenService
	denylist ports.TokenDenylist
	resolver ports.IdentityResolver
	logger   *slog.Logger
}

func NewAuthMiddleware(
	tokens ports.TokenService,
	denylist ports.TokenDenylist,
	resolver ports.IdentityResolver,
	logger *slog.Logger,
) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		tokens:   tokens,
		denylist: denylist,
		resolver: resolver,
		logger:   logger,
	}
}

type contextKey string

const (
	identityKey  contextKey = "identity"
	claimsKey    contextKey = "claims"
	teacherIDKey contextKey = "teacherID"
)

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// ClaimsFrom returns the validated token claims stored by Authenticate.
func ClaimsFrom(ctx context.Context) (ports.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(ports.TokenClaims)
	return claims, ok
}

// TeacherIDFrom returns the caller's teacher id stored by RequireTeacher.
func TeacherIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(teacherIDKey).(string)
	return id
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respond.Detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := m.tokens.Validate(tokenString)
		if err != nil {
			m.reject(w, r, "auth_token_invalid", err)
			return
		}

		revoked, err := m.denylist.IsRevoked(r.Context(), claims.TokenID)
		if err != nil {
			m.reject(w, r, "auth_denylist_unavailable", domain.ErrUnavailable)
			return
		}
		if revoked {
			m.reject(w, r, "auth_token_revoked", domain.ErrInvalidToken)
			return
		}

		identity, err := m.resolver.Resolve(r.Context(), claims.Subject)
		if err != nil {
			m.reject(w, r, "auth_identity_unresolved", err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, *claims)
		ctx = context.WithValue(ctx, identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin admits only admin identities.
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		if err := services.RequireAdmin(identity); err != nil {
			m.reject(w, r, "auth_admin_required", err)
			return
		}
		next(w, r)
	}))
}

// RequireTeacher admits only teacher-linked identities and stores their
// teacher id for the handler.
func (m *AuthMiddleware) RequireTeacher(next http.HandlerFunc) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		teacherID, err := services.TeacherContext(identity)
		if err != nil {
			m.reject(w, r, "auth_teacher_required", err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), teacherIDKey, teacherID)))
	}))
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, event string, err error) {
	m.logger.Info("request rejected",
		"event", event,
		"module", "adapters/middleware",
		"layer", "transport",
		"method", r.Method,
		"path", r.URL.Path,
		"reason", err.Error(),
	)
	respond.Error(w, r, err)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
