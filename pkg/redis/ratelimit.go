package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig is one provider's shared request window
type RateLimitConfig struct {
	Key    string // provider name, e.g. "fmp"
	Limit  int    // requests allowed per Window
	Window time.Duration
}

// slidingWindow keeps one sorted-set member per request scored by its
// timestamp. Returns {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, ARGV[4])
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window_ms
	if oldest[2] then
		retry = tonumber(oldest[2]) + window_ms - now
	end
	return {0, 0, retry}
`)

// minRetry bounds Wait's sleep when the script reports a zero or negative delay
const minRetry = 10 * time.Millisecond

// RateLimiter is a sliding-window limiter shared by every hunter process
// pointing at the same Redis, so one API key is not overspent.
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
}

// NewRateLimiter creates a limiter keyed under "<prefix>:ratelimit:"
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Allow records a request if the window has room.
// A disabled client always allows.
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (Decision, error) {
	if !r.client.Enabled() {
		return Decision{Allowed: true, Remaining: cfg.Limit}, nil
	}

	res, err := slidingWindow.Run(ctx, r.client.Redis(),
		[]string{r.client.Key("ratelimit", cfg.Key)},
		time.Now().UnixMilli(),
		cfg.Window.Milliseconds(),
		cfg.Limit,
		uuid.NewString(), // 같은 ms 안의 요청이 서로 덮어쓰지 않도록
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", cfg.Key, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit %s: unexpected reply %v", cfg.Key, res)
	}

	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Wait blocks until the window admits a request or ctx ends
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		d, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if d.Allowed {
			return nil
		}

		delay := d.RetryAfter
		if delay < minRetry {
			delay = minRetry
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Shared windows for the providers with hard quotas.
// They sit below the free-tier limits.
var (
	// FMP free tier: 250 req/day, bursts tolerated at ~5/sec
	FMPRateLimit = RateLimitConfig{Key: "fmp", Limit: 5, Window: time.Second}

	// Alpha Vantage free tier: 5 req/min
	AlphaVantageRateLimit = RateLimitConfig{Key: "alphavantage", Limit: 5, Window: time.Minute}

	// Yahoo Finance: unofficial, throttles aggressively above ~10/sec
	YahooRateLimit = RateLimitConfig{Key: "yahoo", Limit: 10, Window: time.Second}
)

// ForProvider returns the shared window for a provider name, if one is defined
func ForProvider(name string) (RateLimitConfig, bool) {
	for _, w := range []RateLimitConfig{FMPRateLimit, AlphaVantageRateLimit, YahooRateLimit} {
		if w.Key == name {
			return w, true
		}
	}
	return RateLimitConfig{}, false
}
