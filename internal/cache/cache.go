// Package cache provides an optional Redis read cache for public
// booking-page lookups. A nil *Cache is a valid no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing Redis client. Returns nil when the client is nil
// or the TTL is not positive, which disables caching for all callers.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// SlotsKey is the cache key for the open slots of one booking page + day.
func SlotsKey(slug, date string) string {
	return fmt.Sprintf("slots:%s:%s", slug, date)
}

// Get loads a cached value into out. Any miss, decode failure or Redis
// error reads as a plain miss.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if c == nil {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

// Set stores a value under key with the configured TTL. Best effort.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}

// Invalidate drops keys, typically after a booking changes a day's slots.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// Ping reports backend health for the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
