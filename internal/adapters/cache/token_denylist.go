package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/school-admin/school-service/internal/config"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

const revokedKeyPrefix = "auth:revoked:"

// RedisClient is the subset of *redis.Client the denylist needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTokenDenylist keeps revoked token ids in Redis with a TTL equal to the
// token's remaining lifetime, so entries vanish once the token would have
// expired anyway.
type RedisTokenDenylist struct {
	client RedisClient
	cb     *gobreaker.CircuitBreaker
}

var _ ports.TokenDenylist = (*RedisTokenDenylist)(nil)

func NewRedisTokenDenylist(client RedisClient) *RedisTokenDenylist {
	return &RedisTokenDenylist{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Auth", nil),
	}
}

func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	_, err := d.cb.Execute(func() (interface{}, error) {
		return nil, d.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
	})
	return err
}

func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	})
	if err != nil {
		return false, err
	}
	return res.(int64) > 0, nil
}
