// internal/domain/forecast/cache.go
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reportCacheKey = "forecast:report"

// Cache stores a computed report for a short while
type Cache interface {
	Get(ctx context.Context) ([]Row, bool, error)
	Set(ctx context.Context, rows []Row) error
	Invalidate(ctx context.Context) error
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context) ([]Row, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, []Row) error         { return nil }
func (NoopCache) Invalidate(context.Context) error         { return nil }

// RedisCache keeps the report as JSON under a single key
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis backed report cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached report if present
func (c *RedisCache) Get(ctx context.Context) ([]Row, bool, error) {
	raw, err := c.client.Get(ctx, reportCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read forecast cache: %w", err)
	}

	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false, fmt.Errorf("failed to decode forecast cache: %w", err)
	}
	return rows, true, nil
}

// Set stores the report until the TTL expires
func (c *RedisCache) Set(ctx context.Context, rows []Row) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode forecast cache: %w", err)
	}
	if err := c.client.Set(ctx, reportCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write forecast cache: %w", err)
	}
	return nil
}

// Invalidate drops the stored report
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, reportCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate forecast cache: %w", err)
	}
	return nil
}
