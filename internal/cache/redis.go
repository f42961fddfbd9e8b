package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/hunter/pkg/redis"
)

// RedisBackend stores entries in Redis so several processes share one cache.
// Redis expires keys itself; ExpiresAt travels inside the stored envelope.
type RedisBackend struct {
	cache *redis.Cache
}

// NewRedisBackend wraps a pkg/redis cache helper
func NewRedisBackend(c *redis.Cache) *RedisBackend {
	return &RedisBackend{cache: c}
}

// Load returns the entry for key
func (r *RedisBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	data, found, err := r.cache.GetBytes(ctx, key)
	if err != nil || !found {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode redis entry %s: %w", key, err)
	}
	return e, true, nil
}

// Save writes the entry with the given TTL
func (r *RedisBackend) Save(ctx context.Context, entry Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode redis entry %s: %w", entry.Key, err)
	}
	return r.cache.SetBytes(ctx, entry.Key, data, ttl)
}
