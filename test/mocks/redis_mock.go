package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements cache.RedisClient in memory with expiry.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]mockRedisValue

	// Error injection
	SetError    error
	ExistsError error

	// Track calls
	SetCalls    int
	ExistsCalls int
	LastTTL     time.Duration
}

type mockRedisValue struct {
	value     string
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]mockRedisValue),
	}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++
	m.LastTTL = expiration

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	expiresAt := time.Time{}
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	m.data[key] = mockRedisValue{value: fmt.Sprint(value), expiresAt: expiresAt}

	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExistsCalls++

	cmd := redis.NewIntCmd(ctx)
	if m.ExistsError != nil {
		cmd.SetErr(m.ExistsError)
		return cmd
	}

	var n int64
	for _, key := range keys {
		if m.live(key) {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

// HasKey reports whether key is present and unexpired.
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live(key)
}

func (m *MockRedisClient) live(key string) bool {
	val, ok := m.data[key]
	if !ok {
		return false
	}
	return val.expiresAt.IsZero() || time.Now().Before(val.expiresAt)
}
