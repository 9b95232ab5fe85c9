package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72

	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

type AuthService struct {
	store    ports.Store
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	denylist ports.TokenDenylist
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	store ports.Store,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	denylist ports.TokenDenylist,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		logger:   resolveLogger(logger),
		now:      time.Now,
	}
}

// Register creates a user. The first user ever registered becomes the admin.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, logUnexpected(s.logger, "auth_hash_password_failed", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}

	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		if err := tx.LockRegistrations(ctx); err != nil {
			return err
		}

		_, err := tx.FindUserByEmail(ctx, email)
		switch {
		case err == nil:
			return domain.ErrEmailTaken
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		count, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		user.IsAdmin = count == 0

		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "auth_register_failed", err, "email", email)
	}

	s.logger.Info("user registered",
		"event", "auth_user_registered",
		"module", "core/services",
		"layer", "application",
		"user_id", user.ID,
		"is_admin", user.IsAdmin,
	)
	return &user, nil
}

// Login verifies the credentials and returns a signed access token whose
// subject is the user's email.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	var user *domain.User
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		found, err := tx.FindUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", logUnexpected(s.logger, "auth_login_lookup_failed", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, s.now())
	if err != nil {
		return "", logUnexpected(s.logger, "auth_issue_token_failed", err, "user_id", user.ID)
	}
	return token, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims ports.TokenClaims) error {
	if claims.TokenID == "" {
		return domain.ErrInvalidToken
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return logUnexpected(s.logger, "auth_revoke_token_failed", err, "token_id", claims.TokenID)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return &domain.ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &domain.ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

func validatePassword(password string) error {
	if n := utf8.RuneCountInString(password); n < minPasswordLength || n > maxPasswordLength {
		return &domain.ValidationError{Field: "password", Message: "must be between 8 and 72 characters"}
	}
	if len(password) > maxPasswordBytes {
		return &domain.ValidationError{Field: "password", Message: "must not exceed 72 bytes"}
	}
	return nil
}
