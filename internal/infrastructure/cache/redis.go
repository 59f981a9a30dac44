package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compareit/backend/internal/domain"
)

var _ domain.CacheRepository = (*RedisCache)(nil)

// RedisCache stores aggregated search results in Redis, JSON-encoded, with
// TTL expiry handled by Redis itself. Useful when several service instances
// should share one result cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache from a connection URL
// (e.g. "redis://localhost:6379/0").
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Ping checks the connection to the Redis server.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get retrieves a stored result, or ErrCacheMiss when absent.
func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.CanonicalProduct, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var products []domain.CanonicalProduct
	if err := json.Unmarshal(payload, &products); err != nil {
		// A corrupt entry is as good as a miss; let the caller recompute.
		return nil, domain.ErrCacheMiss
	}
	return products, nil
}

// Set stores a result under key with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, products []domain.CanonicalProduct, ttl time.Duration) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a stored result.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
