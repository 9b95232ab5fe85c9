package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

const hashPrefix = "hashed:"

// MockPasswordHasher stores passwords with a readable prefix instead of bcrypt.
type MockPasswordHasher struct {
	HashError error
	HashCalls int
}

var _ ports.PasswordHasher = (*MockPasswordHasher)(nil)

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	m.HashCalls++
	if m.HashError != nil {
		return "", m.HashError
	}
	return hashPrefix + password, nil
}

func (m *MockPasswordHasher) Verify(password, digest string) bool {
	return strings.HasPrefix(digest, hashPrefix) && digest == hashPrefix+password
}

// MockTokenService issues opaque tokens and remembers their claims.
type MockTokenService struct {
	mu     sync.Mutex
	TTL    time.Duration
	issued map[string]ports.TokenClaims
	next   int

	IssueError error
	// Now overrides the clock used by Validate.
	Now func() time.Time
}

var _ ports.TokenService = (*MockTokenService)(nil)

func NewMockTokenService() *MockTokenService {
	return &MockTokenService{TTL: time.Hour, issued: map[string]ports.TokenClaims{}}
}

func (m *MockTokenService) Issue(subject string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IssueError != nil {
		return "", m.IssueError
	}
	m.next++
	token := fmt.Sprintf("token-%d", m.next)
	m.issued[token] = ports.TokenClaims{
		Subject:   subject,
		TokenID:   fmt.Sprintf("jti-%d", m.next),
		ExpiresAt: now.Add(m.TTL),
	}
	return token, nil
}

func (m *MockTokenService) Validate(token string) (*ports.TokenClaims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	claims, ok := m.issued[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	if !now.Before(claims.ExpiresAt) {
		return nil, domain.ErrInvalidToken
	}
	return &claims, nil
}

// MockTokenDenylist keeps revoked token ids in memory.
type MockTokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration

	RevokeError    error
	IsRevokedError error
}

var _ ports.TokenDenylist = (*MockTokenDenylist)(nil)

func NewMockTokenDenylist() *MockTokenDenylist {
	return &MockTokenDenylist{revoked: map[string]time.Duration{}}
}

func (m *MockTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.revoked[tokenID] = ttl
	return nil
}

func (m *MockTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsRevokedError != nil {
		return false, m.IsRevokedError
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// RevokedTTL returns the ttl recorded for tokenID.
func (m *MockTokenDenylist) RevokedTTL(tokenID string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.revoked[tokenID]
	return ttl, ok
}
