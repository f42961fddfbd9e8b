package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/pkg/config"
)

func disabledClient(t *testing.T, prefix string) *Client {
	t.Helper()
	client, err := New(context.Background(), config.RedisConfig{Host: "cache.internal", Port: "6380", KeyPrefix: prefix})
	require.NoError(t, err)
	return client
}

func TestNew_Disabled(t *testing.T) {
	client := disabledClient(t, "")

	assert.False(t, client.Enabled())
	assert.Equal(t, "cache.internal:6380", client.Addr())
	assert.Error(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())

	status := client.HealthCheck(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "redis disabled", status.Error)
}

func TestClient_Key(t *testing.T) {
	tests := []struct {
		prefix string
		parts  []string
		want   string
	}{
		{"", []string{"cache", "price:AAPL"}, "hunter:cache:price:AAPL"},
		{"staging", []string{"ratelimit", "fmp"}, "staging:ratelimit:fmp"},
		{"team:", []string{"cache", "universe:sp500"}, "team:cache:universe:sp500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, disabledClient(t, tt.prefix).Key(tt.parts...))
		})
	}
}

func TestCache_DisabledIsNoop(t *testing.T) {
	cache := NewCache(disabledClient(t, ""))
	ctx := context.Background()

	require.NoError(t, cache.SetBytes(ctx, "price:AAPL", []byte("payload"), time.Hour))

	data, found, err := cache.GetBytes(ctx, "price:AAPL")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestRateLimiter_DisabledAllows(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t, ""))

	d, err := limiter.Allow(context.Background(), FMPRateLimit)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, FMPRateLimit.Limit, d.Remaining)
	assert.Zero(t, d.RetryAfter)

	assert.NoError(t, limiter.Wait(context.Background(), AlphaVantageRateLimit))
}

func TestForProvider(t *testing.T) {
	tests := []struct {
		name   string
		wantOK bool
		want   RateLimitConfig
	}{
		{"fmp", true, FMPRateLimit},
		{"alphavantage", true, AlphaVantageRateLimit},
		{"yahoo", true, YahooRateLimit},
		{"stooq", false, RateLimitConfig{}},
		{"", false, RateLimitConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ForProvider(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// liveClient connects to REDIS_HOST when set; keys go under a throwaway prefix
func liveClient(t *testing.T) *Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" || testing.Short() {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client, err := New(context.Background(), config.RedisConfig{
		Host:      host,
		Port:      port,
		Enabled:   true,
		KeyPrefix: "hunter-test-" + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimiter_WindowLive(t *testing.T) {
	limiter := NewRateLimiter(liveClient(t))
	ctx := context.Background()
	window := RateLimitConfig{Key: "probe", Limit: 2, Window: 500 * time.Millisecond}

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, window)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, window)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, window.Window)

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, window))
	assert.Less(t, time.Since(start), 2*window.Window)
}

func TestCache_Live(t *testing.T) {
	client := liveClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.SetBytes(ctx, "price:AAPL", []byte(`{"close":1}`), time.Minute))

	data, found, err := cache.GetBytes(ctx, "price:AAPL")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"close":1}`, string(data))

	ttl, err := client.Redis().TTL(ctx, client.Key("cache", "price:AAPL")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	assert.True(t, client.HealthCheck(ctx).Healthy)
}
