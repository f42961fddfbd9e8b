package screener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/dispatcher"
	"github.com/wonny/hunter/internal/market_regime"
	"github.com/wonny/hunter/internal/scoring"
	"github.com/wonny/hunter/internal/selection"
	"github.com/wonny/hunter/internal/strategyconfig"
	"github.com/wonny/hunter/internal/universe"
	"github.com/wonny/hunter/pkg/logger"
)

// Fetcher collects per-symbol bundles; *dispatcher.Dispatcher implements it
type Fetcher interface {
	Scan(ctx context.Context, symbols []string, opts dispatcher.Options) dispatcher.Result
	FetchOne(ctx context.Context, symbol string, lookback contracts.Lookback) (contracts.Bundle, error)
}

// UniverseResolver turns categories into symbols; *universe.Resolver implements it
type UniverseResolver interface {
	Supports(category string) bool
	Resolve(ctx context.Context, category string) universe.Result
}

// RegimeAssessor evaluates the broad market; *market_regime.Detector implements it
type RegimeAssessor interface {
	Assess(ctx context.Context, lookback contracts.Lookback) market_regime.Regime
	IndexSeries(ctx context.Context, lookback contracts.Lookback) (*contracts.PriceSeries, error)
}

// Deps are the collaborators of a Screener. Regime is optional.
type Deps struct {
	Fetcher  Fetcher
	Universe UniverseResolver
	Regime   RegimeAssessor
}

// Screener runs scans end to end: universe → fetch → score → rank
// ⭐ SSOT: 스캔 파이프라인 진입점은 Screener만
type Screener struct {
	deps     Deps
	engine   *scoring.Engine
	strategy *strategyconfig.Config
	hash     string
	defaults Defaults
	logger   *logger.Logger
	nowFunc  func() time.Time
}

// New creates a screener. Defaults.Weights is replaced by the strategy weights
// when left zero.
func New(deps Deps, strategy *strategyconfig.Config, defaults Defaults, log *logger.Logger) (*Screener, error) {
	if deps.Fetcher == nil || deps.Universe == nil {
		return nil, errors.New("screener: fetcher and universe are required")
	}
	if strategy == nil {
		strategy = strategyconfig.Default()
	}
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("screener: %w", err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("screener: hash strategy: %w", err)
	}

	if defaults.Weights == (contracts.Weights{}) {
		defaults.Weights = strategy.Weights.Contract()
	}

	return &Screener{
		deps:     deps,
		engine:   scoring.NewEngine(strategy.Scoring),
		strategy: strategy,
		hash:     hash,
		defaults: defaults,
		logger:   log.ForModule("screener"),
		nowFunc:  time.Now,
	}, nil
}

// Defaults returns the request defaults in use
func (s *Screener) Defaults() Defaults {
	return s.defaults
}

// Validate checks a request without running it
func (s *Screener) Validate(req ScanRequest) error {
	_, err := resolvePlan(req, s.defaults, s.deps.Universe.Supports)
	return err
}

// Scan runs one scan. The only error is *ConfigurationError; provider
// failures, deadlines and empty results are reported in the ScanReport.
func (s *Screener) Scan(ctx context.Context, req ScanRequest) (*ScanReport, error) {
	p, err := resolvePlan(req, s.defaults, s.deps.Universe.Supports)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{
		ID:           uuid.NewString(),
		StartedAt:    s.nowFunc().UTC(),
		Weights:      p.weights,
		MinThreshold: p.minThreshold,
		Lookback:     p.lookback,
		StrategyID:   s.strategy.Meta.StrategyID,
		StrategyHash: s.hash,
	}
	log := s.logger.WithScan(report.ID)

	// 1. Universe (outside the scan deadline)
	symbols := p.symbols
	report.Universe = UniverseInfo{Source: SourceRequest}
	if p.category != "" {
		res := s.deps.Universe.Resolve(ctx, p.category)
		symbols = normalizeSymbols(res.Symbols)
		report.Universe = UniverseInfo{
			Category: res.Category,
			Source:   res.Source,
			Degraded: res.Degraded,
			Reason:   res.Reason,
		}
	}
	report.Universe.Size = len(symbols)
	symbols = capSymbols(symbols, p.maxSymbols)
	report.Requested = len(symbols)

	if p.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	log.WithFields(map[string]interface{}{
		"category":  p.category,
		"symbols":   len(symbols),
		"degraded":  report.Universe.Degraded,
		"lookback":  string(p.lookback),
		"threshold": p.minThreshold,
	}).Info("Scan started")

	// 2. Market regime (스캔당 1회)
	report.Regime = s.assessRegime(ctx, p.lookback)

	// 3. Fetch
	fetched := s.deps.Fetcher.Scan(ctx, symbols, dispatcher.Options{
		Concurrency: p.concurrency,
		Lookback:    p.lookback,
		OnProgress:  p.onProgress,
	})
	report.Fetched = len(fetched.Bundles)
	report.Dropped = fetched.Dropped
	report.Truncated = fetched.Truncated

	// 4. Score
	index := s.indexSeries(ctx, p.lookback, fetched.Bundles)
	records := make([]contracts.ScoreRecord, 0, len(fetched.Bundles))
	for _, b := range fetched.Bundles {
		records = append(records, s.engine.Score(withBeta(b, index), p.weights, report.Regime.Dampener))
	}
	report.Scored = len(records)

	// 5. Rank
	report.Records = selection.Aggregate(records, p.minThreshold)

	switch {
	case report.Fetched == 0:
		report.Outcome = OutcomeNoData
		report.Message = MessageNoData
	case len(report.Records) == 0:
		report.Outcome = OutcomeNoneQualified
		report.Message = fmt.Sprintf("No symbol scored at or above %.0f%%", p.minThreshold)
	default:
		report.Outcome = OutcomeResults
	}
	report.FinishedAt = s.nowFunc().UTC()

	log.WithFields(map[string]interface{}{
		"requested": report.Requested,
		"fetched":   report.Fetched,
		"qualified": len(report.Records),
		"truncated": report.Truncated,
		"outcome":   string(report.Outcome),
		"duration":  report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Scan completed")

	return report, nil
}

// AnalyzeOne scores a single symbol. A symbol without price history returns
// an error wrapping provider.ErrDataUnavailable.
func (s *Screener) AnalyzeOne(ctx context.Context, symbol string, weights *contracts.Weights) (contracts.ScoreRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return contracts.ScoreRecord{}, configErr("symbol", "required")
	}
	w := s.defaults.Weights
	if weights != nil {
		w = *weights
	}
	if err := w.Validate(); err != nil {
		return contracts.ScoreRecord{}, configErr("weights", "%s", err.Error())
	}

	lookback := s.defaults.Lookback
	if lookback == "" {
		lookback = contracts.Lookback2Y
	}

	regime := s.assessRegime(ctx, lookback)

	b, err := s.deps.Fetcher.FetchOne(ctx, symbol, lookback)
	if err != nil {
		return contracts.ScoreRecord{}, fmt.Errorf("analyze %s: %w", symbol, err)
	}

	index := s.indexSeries(ctx, lookback, []contracts.Bundle{b})
	return s.engine.Score(withBeta(b, index), w, regime.Dampener), nil
}

func (s *Screener) assessRegime(ctx context.Context, lookback contracts.Lookback) market_regime.Regime {
	if s.deps.Regime == nil {
		return market_regime.Regime{State: market_regime.StateUnknown, Dampener: 1.0, Reason: "regime disabled"}
	}
	return s.deps.Regime.Assess(ctx, lookback)
}

// indexSeries loads the index only when some profile is missing its beta
func (s *Screener) indexSeries(ctx context.Context, lookback contracts.Lookback, bundles []contracts.Bundle) *contracts.PriceSeries {
	if s.deps.Regime == nil {
		return nil
	}
	needed := false
	for _, b := range bundles {
		if b.Profile != nil && !b.Profile.Beta.Valid {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}
	index, err := s.deps.Regime.IndexSeries(ctx, lookback)
	if err != nil {
		s.logger.WithError(err).Debug("Index series unavailable, no beta fallback")
		return nil
	}
	return index
}

// withBeta fills a missing profile beta from price history against the index
func withBeta(b contracts.Bundle, index *contracts.PriceSeries) contracts.Bundle {
	if index == nil || b.Profile == nil || b.Profile.Beta.Valid {
		return b
	}
	beta, ok := market_regime.Beta(b.Prices, index)
	if !ok {
		return b
	}
	profile := *b.Profile
	profile.Beta = null.FloatFrom(beta)
	b.Profile = &profile
	return b
}
