package market_regime

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/scoring"
	"github.com/wonny/hunter/pkg/logger"
)

type fakePrices struct {
	series *contracts.PriceSeries
	err    error
	calls  atomic.Int32
}

func (f *fakePrices) Prices(ctx context.Context, symbol string, lookback contracts.Lookback) (*contracts.PriceSeries, string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.series, "yahoo", nil
}

func seriesFrom(n int, price func(i int) float64) *contracts.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.PriceBar, n)
	for i := range bars {
		bars[i] = contracts.PriceBar{Date: start.AddDate(0, 0, i), Close: price(i), Volume: 1000}
	}
	return &contracts.PriceSeries{Symbol: "^GSPC", Bars: bars}
}

func rising(n int) *contracts.PriceSeries {
	return seriesFrom(n, func(i int) float64 { return 4000 * math.Pow(1.001, float64(i)) })
}

func falling(n int) *contracts.PriceSeries {
	return seriesFrom(n, func(i int) float64 { return 5000 * math.Pow(0.998, float64(i)) })
}

func newDetector(f *fakePrices) *Detector {
	store := cache.NewStore(cache.NewMemoryBackend(), cache.DefaultTTLs(), logger.Nop())
	return NewDetector("", f, store, scoring.DefaultThresholds().Overall, logger.Nop())
}

func TestEvaluate(t *testing.T) {
	th := scoring.DefaultThresholds().Overall

	tests := []struct {
		name     string
		series   *contracts.PriceSeries
		state    State
		dampener float64
	}{
		{"rising index", rising(260), StateBullish, 1.0},
		{"falling index", falling(260), StateBearish, 0.85},
		{"short history", rising(120), StateUnknown, 1.0},
		{"no history", nil, StateUnknown, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate("^GSPC", tt.series, th)
			assert.Equal(t, tt.state, r.State)
			assert.Equal(t, tt.dampener, r.Dampener)
			assert.Equal(t, tt.state == StateBearish, r.Bearish())
		})
	}
}

func TestDetector_DefaultIndex(t *testing.T) {
	d := newDetector(&fakePrices{})
	assert.Equal(t, DefaultIndex, d.Index())
}

func TestDetector_AssessCachesKnownRegime(t *testing.T) {
	f := &fakePrices{series: falling(260)}
	d := newDetector(f)

	first := d.Assess(context.Background(), contracts.Lookback1Y)
	second := d.Assess(context.Background(), contracts.Lookback1Y)

	assert.Equal(t, StateBearish, first.State)
	assert.Equal(t, 0.85, first.Dampener)
	assert.Equal(t, "yahoo", first.Source)
	assert.Equal(t, first.State, second.State)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestDetector_AssessUnavailableIsNeutral(t *testing.T) {
	f := &fakePrices{err: errors.New("all providers down")}
	d := newDetector(f)

	r := d.Assess(context.Background(), contracts.Lookback1Y)
	assert.Equal(t, StateUnknown, r.State)
	assert.Equal(t, 1.0, r.Dampener)
	assert.Contains(t, r.Reason, "all providers down")

	// failures are not cached
	d.Assess(context.Background(), contracts.Lookback1Y)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestDetector_AssessShortIndexIsNeutral(t *testing.T) {
	d := newDetector(&fakePrices{series: rising(50)})

	r := d.Assess(context.Background(), contracts.Lookback1Y)
	assert.Equal(t, StateUnknown, r.State)
	assert.Equal(t, 1.0, r.Dampener)
}

func TestBeta(t *testing.T) {
	// index alternates +1% / -0.5%, stock moves exactly twice as much
	n := 120
	idx := make([]float64, n)
	stk := make([]float64, n)
	idx[0], stk[0] = 100, 50
	for i := 1; i < n; i++ {
		r := 0.01
		if i%2 == 0 {
			r = -0.005
		}
		idx[i] = idx[i-1] * (1 + r)
		stk[i] = stk[i-1] * (1 + 2*r)
	}
	index := seriesFrom(n, func(i int) float64 { return idx[i] })
	stock := seriesFrom(n, func(i int) float64 { return stk[i] })

	beta, ok := Beta(stock, index)
	require.True(t, ok)
	assert.InDelta(t, 2.0, beta, 1e-9)

	t.Run("too few observations", func(t *testing.T) {
		_, ok := Beta(seriesFrom(30, func(i int) float64 { return stk[i] }), index)
		assert.False(t, ok)
	})

	t.Run("flat index", func(t *testing.T) {
		flat := seriesFrom(n, func(int) float64 { return 100 })
		_, ok := Beta(stock, flat)
		assert.False(t, ok)
	})

	t.Run("nil series", func(t *testing.T) {
		_, ok := Beta(nil, index)
		assert.False(t, ok)
	})
}
