package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/market_regime"
	"github.com/wonny/hunter/internal/universe"
	"github.com/wonny/hunter/pkg/logger"
)

// DefaultWarmupSchedule runs before the US pre-market (server local time)
const DefaultWarmupSchedule = "0 30 6 * * *"

// UniverseResolver resolves a category to symbols
type UniverseResolver interface {
	Resolve(ctx context.Context, category string) universe.Result
}

// UniverseWarmupJob resolves every category so scans start from a warm cache
type UniverseWarmupJob struct {
	resolver   UniverseResolver
	categories []string
	schedule   string
	logger     *logger.Logger
}

// NewUniverseWarmupJob creates a new universe warmup job.
// An empty schedule falls back to DefaultWarmupSchedule.
func NewUniverseWarmupJob(resolver UniverseResolver, schedule string, log *logger.Logger) *UniverseWarmupJob {
	if schedule == "" {
		schedule = DefaultWarmupSchedule
	}
	return &UniverseWarmupJob{
		resolver:   resolver,
		categories: universe.Categories(),
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *UniverseWarmupJob) Name() string {
	return "universe_warmup"
}

// Schedule returns the cron schedule
func (j *UniverseWarmupJob) Schedule() string {
	return j.schedule
}

// Run resolves each category. Degraded categories are not cached, so the
// job fails and the scheduler retries them.
func (j *UniverseWarmupJob) Run(ctx context.Context) error {
	j.logger.Info("Starting universe warmup")

	var degraded []string
	total := 0
	for _, category := range j.categories {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := j.resolver.Resolve(ctx, category)
		total += len(res.Symbols)
		if res.Degraded {
			degraded = append(degraded, category)
			j.logger.WithFields(map[string]interface{}{
				"category": category,
				"reason":   res.Reason,
			}).Warn("Universe served from static list")
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"category": category,
			"source":   res.Source,
			"symbols":  len(res.Symbols),
		}).Debug("Universe resolved")
	}

	j.logger.WithFields(map[string]interface{}{
		"categories": len(j.categories),
		"symbols":    total,
		"degraded":   len(degraded),
	}).Info("Universe warmup completed")

	if len(degraded) > 0 {
		return fmt.Errorf("universe degraded for: %s", strings.Join(degraded, ", "))
	}
	return nil
}

// RegimeAssessor classifies the market regime
type RegimeAssessor interface {
	Assess(ctx context.Context, lookback contracts.Lookback) market_regime.Regime
}

// RegimeWarmupJob refreshes the cached market regime
type RegimeWarmupJob struct {
	regime   RegimeAssessor
	lookback contracts.Lookback
	schedule string
	logger   *logger.Logger
}

// NewRegimeWarmupJob creates a new regime warmup job
func NewRegimeWarmupJob(regime RegimeAssessor, lookback contracts.Lookback, schedule string, log *logger.Logger) *RegimeWarmupJob {
	if schedule == "" {
		schedule = DefaultWarmupSchedule
	}
	return &RegimeWarmupJob{
		regime:   regime,
		lookback: lookback,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RegimeWarmupJob) Name() string {
	return "regime_warmup"
}

// Schedule returns the cron schedule
func (j *RegimeWarmupJob) Schedule() string {
	return j.schedule
}

// Run assesses the regime; an unknown regime is reported as a failure
func (j *RegimeWarmupJob) Run(ctx context.Context) error {
	r := j.regime.Assess(ctx, j.lookback)

	if r.State == market_regime.StateUnknown {
		return fmt.Errorf("market regime unknown for %s: %s", r.Index, r.Reason)
	}

	j.logger.WithFields(map[string]interface{}{
		"index":    r.Index,
		"state":    r.State,
		"dampener": r.Dampener,
		"source":   r.Source,
	}).Info("Market regime refreshed")

	return nil
}
