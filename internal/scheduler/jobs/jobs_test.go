package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/market_regime"
	"github.com/wonny/hunter/internal/universe"
	"github.com/wonny/hunter/pkg/logger"
)

type fakeResolver struct {
	degraded map[string]bool
	seen     []string
}

func (f *fakeResolver) Resolve(_ context.Context, category string) universe.Result {
	f.seen = append(f.seen, category)
	if f.degraded[category] {
		return universe.Result{Category: category, Symbols: []string{"AAPL"}, Source: universe.SourceStatic, Degraded: true, Reason: "providers down"}
	}
	return universe.Result{Category: category, Symbols: []string{"AAPL", "MSFT"}, Source: "fmp"}
}

func TestUniverseWarmupJob(t *testing.T) {
	t.Run("all categories resolved", func(t *testing.T) {
		r := &fakeResolver{}
		job := NewUniverseWarmupJob(r, "", logger.Nop())

		assert.Equal(t, "universe_warmup", job.Name())
		assert.Equal(t, DefaultWarmupSchedule, job.Schedule())
		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, universe.Categories(), r.seen)
	})

	t.Run("degraded category fails the run", func(t *testing.T) {
		categories := universe.Categories()
		require.NotEmpty(t, categories)

		r := &fakeResolver{degraded: map[string]bool{categories[0]: true}}
		job := NewUniverseWarmupJob(r, "0 0 5 * * *", logger.Nop())

		assert.Equal(t, "0 0 5 * * *", job.Schedule())
		err := job.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), categories[0])
		assert.Len(t, r.seen, len(categories))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := &fakeResolver{}
		err := NewUniverseWarmupJob(r, "", logger.Nop()).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, r.seen)
	})
}

type fakeRegime struct {
	regime   market_regime.Regime
	lookback contracts.Lookback
}

func (f *fakeRegime) Assess(_ context.Context, lookback contracts.Lookback) market_regime.Regime {
	f.lookback = lookback
	return f.regime
}

func TestRegimeWarmupJob(t *testing.T) {
	tests := []struct {
		name    string
		state   market_regime.State
		wantErr bool
	}{
		{"bullish", market_regime.StateBullish, false},
		{"bearish", market_regime.StateBearish, false},
		{"unknown", market_regime.StateUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRegime{regime: market_regime.Regime{Index: "^GSPC", State: tt.state, Dampener: 1, Reason: "index unavailable"}}
			job := NewRegimeWarmupJob(f, contracts.Lookback2Y, "", logger.Nop())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.ErrorContains(t, err, "^GSPC")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, contracts.Lookback2Y, f.lookback)
		})
	}
}

type fakePruner struct {
	removed int
	err     error
}

func (f fakePruner) Prune(context.Context) (int, error) { return f.removed, f.err }

func TestCachePruneJob(t *testing.T) {
	job := NewCachePruneJob(fakePruner{removed: 3}, logger.Nop())
	assert.Equal(t, "cache_prune", job.Name())
	assert.Equal(t, "0 5 * * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))

	err := NewCachePruneJob(fakePruner{err: errors.New("db down")}, logger.Nop()).Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}
