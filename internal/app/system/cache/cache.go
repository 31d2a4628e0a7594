// Package cache is a thin JSON cache over Redis, used for expensive
// read-mostly values like search filter options and analytics rollups.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache struct {
	rdb *redis.Client
}

// New creates a Cache. A nil client yields a no-op cache: Get always
// misses and Set does nothing.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Get unmarshals the cached value for key into out. Returns false on
// miss or decode failure (a corrupt entry is treated as a miss).
func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Set stores v under key with the given TTL. Failures are ignored; the
// cache is best-effort.
func (c *Cache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, ttl)
}

// Invalidate removes a cached key.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, key)
}
