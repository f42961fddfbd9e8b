package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores opaque provider payloads under "<prefix>:cache:<key>".
// Expiry is left to Redis.
// ⭐ SSOT: Redis 캐시 접근은 여기서만
type Cache struct {
	client *Client
}

// NewCache creates the payload cache over client
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// GetBytes returns the payload for key. A miss or a disabled client is (nil, false, nil).
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.client.Enabled() {
		return nil, false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.client.Key("cache", key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// SetBytes stores value for ttl. A non-positive ttl stores nothing,
// since a key without expiry would never refresh.
func (c *Cache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.client.Enabled() || ttl <= 0 {
		return nil
	}

	if err := c.client.Redis().Set(ctx, c.client.Key("cache", key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
