package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/cache"
	"github.com/AchilleasB/school-admin/school-service/test/mocks"
)

// TestRedisTokenDenylist_RevokeAndCheck verifies revoked ids are found with their ttl.
func TestRedisTokenDenylist_RevokeAndCheck(t *testing.T) {
	client := mocks.NewMockRedisClient()
	denylist := cache.NewRedisTokenDenylist(client)
	ctx := context.Background()

	if err := denylist.Revoke(ctx, "jti-1", 10*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.HasKey("auth:revoked:jti-1") {
		t.Error("expected prefixed key to be stored")
	}
	if client.LastTTL != 10*time.Minute {
		t.Errorf("expected ttl 10m, got %v", client.LastTTL)
	}

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Errorf("expected jti-1 revoked, got %v (%v)", revoked, err)
	}
	revoked, err = denylist.IsRevoked(ctx, "jti-2")
	if err != nil || revoked {
		t.Errorf("expected jti-2 not revoked, got %v (%v)", revoked, err)
	}
}

// TestRedisTokenDenylist_EmptyID verifies tokens without an id skip Redis.
func TestRedisTokenDenylist_EmptyID(t *testing.T) {
	client := mocks.NewMockRedisClient()
	denylist := cache.NewRedisTokenDenylist(client)

	revoked, err := denylist.IsRevoked(context.Background(), "")
	if err != nil || revoked {
		t.Errorf("expected not revoked, got %v (%v)", revoked, err)
	}
	if client.ExistsCalls != 0 {
		t.Errorf("expected no Redis calls, got %d", client.ExistsCalls)
	}
}

// TestRedisTokenDenylist_Errors verifies Redis failures propagate and trip the breaker.
func TestRedisTokenDenylist_Errors(t *testing.T) {
	client := mocks.NewMockRedisClient()
	client.ExistsError = errors.New("connection refused")
	denylist := cache.NewRedisTokenDenylist(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := denylist.IsRevoked(ctx, "jti"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	client.ExistsError = nil
	if _, err := denylist.IsRevoked(ctx, "jti"); err == nil {
		t.Error("expected open breaker to reject the call")
	}
	if client.ExistsCalls != 3 {
		t.Errorf("expected 3 Redis calls before the breaker opened, got %d", client.ExistsCalls)
	}
}
