package ports

import (
	"context"
	"time"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenClaims is what a validated access token asserts.
type TokenClaims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

type TokenService interface {
	Issue(subject string, now time.Time) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// TokenDenylist remembers revoked token ids until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
