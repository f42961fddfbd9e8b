package redis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/hunter/pkg/config"
)

const defaultKeyPrefix = "hunter"

// Client is the shared Redis connection behind the cache backend and the
// cross-process rate limiter. A disabled client turns every helper into a no-op.
// ⭐ SSOT: Redis 연결과 키 네임스페이스는 여기서만 관리
type Client struct {
	rdb    *redis.Client
	prefix string
	addr   string
}

// New connects when rc.Enabled and verifies the server answers PING
func New(ctx context.Context, rc config.RedisConfig) (*Client, error) {
	prefix := strings.Trim(rc.KeyPrefix, ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	addr := net.JoinHostPort(rc.Host, rc.Port)

	if !rc.Enabled {
		return &Client{prefix: prefix, addr: addr}, nil
	}

	timeout := rc.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     rc.Password,
		DB:           rc.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	c := &Client{rdb: rdb, prefix: prefix, addr: addr}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	return c, nil
}

// Enabled reports whether a live connection backs the client
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Addr returns host:port, also for a disabled client
func (c *Client) Addr() string {
	return c.addr
}

// Key joins parts under the client namespace: Key("cache", "price:AAPL")
// gives "hunter:cache:price:AAPL".
func (c *Client) Key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

// Ping round-trips to the server
func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return fmt.Errorf("redis disabled")
	}
	return c.rdb.Ping(ctx).Err()
}

// HealthCheck reports latency and pool usage for /health
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{Addr: c.addr, Timestamp: time.Now()}

	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status
	}
	status.ResponseTime = time.Since(start)

	stats := c.rdb.PoolStats()
	status.TotalConns = stats.TotalConns
	status.IdleConns = stats.IdleConns
	status.Timeouts = stats.Timeouts
	status.Healthy = true

	return status
}

// HealthStatus is the Redis section of /health
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Addr         string        `json:"addr"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	TotalConns   uint32        `json:"total_conns"`
	IdleConns    uint32        `json:"idle_conns"`
	Timeouts     uint32        `json:"timeouts"`
}

// Close closes the connection; safe on a disabled client
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Redis exposes the raw client to the helpers in this package
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
