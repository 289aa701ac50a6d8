package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("quote: cache miss")

// Cache stores serialized parse results. Purely an optimization; a failing
// cache must never fail a parse.
type Cache interface {
	// Get returns the cached payload or [ErrCacheMiss].
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the payload under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a [Cache] backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// Compile-time interface check.
var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps the given Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("quote: cache get: %w", err)
	}
	return val, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("quote: cache set: %w", err)
	}
	return nil
}
