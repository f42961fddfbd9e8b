package universe

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/provider"
	"github.com/wonny/hunter/pkg/logger"
)

type stubSource struct {
	symbols []string
	err     error
	calls   int32
}

func (s *stubSource) List(ctx context.Context, category string) ([]string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.symbols, s.err
}

func newResolver(src *stubSource) *Resolver {
	chain := provider.NewChain(contracts.KindUniverse, time.Second, logger.Nop(),
		provider.UniverseMember("stub", src))
	store := cache.NewStore(cache.NewMemoryBackend(), cache.DefaultTTLs(), logger.Nop())
	return NewResolver(chain, store, logger.Nop())
}

func TestResolve_FromProvider(t *testing.T) {
	src := &stubSource{symbols: []string{"AAPL", "MSFT"}}
	r := newResolver(src)

	got := r.Resolve(context.Background(), "sp500")
	assert.False(t, got.Degraded)
	assert.Equal(t, "stub", got.Source)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got.Symbols)

	// cached for the universe TTL
	again := r.Resolve(context.Background(), "sp500")
	assert.Equal(t, got, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
}

func TestResolve_OutageFallsBack(t *testing.T) {
	tests := []struct {
		name string
		src  *stubSource
	}{
		{"error", &stubSource{err: errors.New("403 forbidden")}},
		{"empty list", &stubSource{symbols: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(tt.src)

			for _, category := range Categories() {
				got := r.Resolve(context.Background(), category)
				assert.True(t, got.Degraded, category)
				assert.NotEmpty(t, got.Symbols, category)
				assert.NotEmpty(t, got.Reason, category)
				assert.Equal(t, SourceStatic, got.Source)
			}
		})
	}
}

func TestResolve_FallbackNotCached(t *testing.T) {
	src := &stubSource{err: errors.New("timeout")}
	r := newResolver(src)

	first := r.Resolve(context.Background(), "nasdaq100")
	require.True(t, first.Degraded)

	src.err = nil
	src.symbols = []string{"AAPL"}

	second := r.Resolve(context.Background(), "nasdaq100")
	assert.False(t, second.Degraded)
	assert.Equal(t, []string{"AAPL"}, second.Symbols)
}

func TestResolve_UnknownCategory(t *testing.T) {
	r := newResolver(&stubSource{symbols: []string{"X"}})

	assert.False(t, r.Supports("ftse-250"))
	got := r.Resolve(context.Background(), "ftse-250")
	assert.True(t, got.Degraded)
	assert.Empty(t, got.Symbols)
}

func TestFallback_ReturnsCopy(t *testing.T) {
	a, ok := Fallback("sp500")
	require.True(t, ok)
	a[0] = "MUTATED"

	b, _ := Fallback("sp500")
	assert.NotEqual(t, "MUTATED", b[0])

	combined, ok := Fallback("nifty-smallmid")
	require.True(t, ok)
	small, _ := Fallback("nifty-smallcap-250")
	mid, _ := Fallback("nifty-midcap-150")
	assert.Len(t, combined, len(small)+len(mid))
}
