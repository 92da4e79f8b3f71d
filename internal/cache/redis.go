// Package cache keeps resolved guest names in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "invitation:guest:"

// Open parses a redis:// URL and checks the server answers.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return client, nil
}

// GuestCache stores guest names by slug with a fixed TTL.
type GuestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuestCache wraps client. A non-positive ttl keeps entries forever.
func NewGuestCache(client *redis.Client, ttl time.Duration) *GuestCache {
	if ttl < 0 {
		ttl = 0
	}
	return &GuestCache{client: client, ttl: ttl}
}

// GetName returns the cached name for slug and whether it was present.
func (c *GuestCache) GetName(ctx context.Context, slug string) (string, bool, error) {
	name, err := c.client.Get(ctx, key(slug)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read guest cache: %w", err)
	}
	return name, true, nil
}

// SetName caches name under slug.
func (c *GuestCache) SetName(ctx context.Context, slug, name string) error {
	if err := c.client.Set(ctx, key(slug), name, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write guest cache: %w", err)
	}
	return nil
}

func key(slug string) string {
	return keyPrefix + slug
}
