package revocations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vincentino1/account-service/internal/logging"
)

const keyPrefix = "revoked:"

// Connect creates a Redis client from a redis:// URL and verifies
// connectivity.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisCache fronts a durable Repository with Redis. Only positive lookups
// are cached, so a fresh revocation is visible immediately. Any Redis error
// falls through to the durable store.
type RedisCache struct {
	next   Repository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time
}

// NewRedisCache wraps next. ttl caps how long an entry stays cached; entries
// never outlive the token's own expiry when it is known.
func NewRedisCache(next Repository, rdb redis.Cmdable, ttl time.Duration, logger logging.Logger) *RedisCache {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &RedisCache{next: next, rdb: rdb, ttl: ttl, logger: logger, now: time.Now}
}

func key(tokenID string) string { return keyPrefix + tokenID }

func (c *RedisCache) Revoke(ctx context.Context, tokenID string, expiresAt *time.Time) error {
	if err := c.next.Revoke(ctx, tokenID, expiresAt); err != nil {
		return err
	}

	ttl := c.ttl
	if expiresAt != nil {
		if left := expiresAt.Sub(c.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	if err := c.rdb.Set(ctx, key(tokenID), 1, ttl).Err(); err != nil {
		c.logger.Warn(ctx, "revocation cache write failed", "jti", tokenID, "error", err)
	}
	return nil
}

func (c *RedisCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key(tokenID)).Result()
	switch {
	case err == nil && n > 0:
		return true, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn(ctx, "revocation cache read failed", "jti", tokenID, "error", err)
	}

	revoked, err := c.next.IsRevoked(ctx, tokenID)
	if err != nil || !revoked {
		return revoked, err
	}

	if c.ttl > 0 {
		if err := c.rdb.Set(ctx, key(tokenID), 1, c.ttl).Err(); err != nil {
			c.logger.Warn(ctx, "revocation cache write failed", "jti", tokenID, "error", err)
		}
	}
	return true, nil
}

// PurgeExpired only touches the durable store; cached keys expire on their
// own TTL.
func (c *RedisCache) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return c.next.PurgeExpired(ctx, before)
}
