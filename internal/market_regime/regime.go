package market_regime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/cache"
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/scoring"
	"github.com/wonny/hunter/pkg/logger"
)

// DefaultIndex is the broad market index used when none is configured
const DefaultIndex = "^GSPC"

// State of the broad market
type State string

const (
	StateBullish State = "bullish"
	StateBearish State = "bearish"
	StateUnknown State = "unknown"
)

// Regime is the market condition applied to one scan
type Regime struct {
	Index         string     `json:"index"`
	State         State      `json:"state"`
	Dampener      float64    `json:"dampener"`
	LastClose     null.Float `json:"last_close"`
	MovingAverage null.Float `json:"moving_average"`
	Period        int        `json:"period"`
	Source        string     `json:"source,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	AsOf          time.Time  `json:"as_of"`
}

// Bearish reports whether the dampener applies
func (r Regime) Bearish() bool {
	return r.State == StateBearish
}

// PriceFetcher returns (cached) price history; the dispatcher implements it
type PriceFetcher interface {
	Prices(ctx context.Context, symbol string, lookback contracts.Lookback) (*contracts.PriceSeries, string, error)
}

// Detector evaluates the trend of a broad market index
// ⭐ SSOT: 스캔당 1회 평가, 지수 시계열은 price 캐시를 공유
type Detector struct {
	index   string
	prices  PriceFetcher
	store   *cache.Store
	th      scoring.OverallThresholds
	logger  *logger.Logger
	nowFunc func() time.Time
}

// NewDetector creates a detector for index (DefaultIndex when empty)
func NewDetector(index string, prices PriceFetcher, store *cache.Store, th scoring.OverallThresholds, log *logger.Logger) *Detector {
	index = strings.TrimSpace(index)
	if index == "" {
		index = DefaultIndex
	}
	return &Detector{
		index:   index,
		prices:  prices,
		store:   store,
		th:      th,
		logger:  log.ForModule("market_regime"),
		nowFunc: time.Now,
	}
}

// Index returns the index symbol
func (d *Detector) Index() string {
	return d.index
}

// Assess returns the current regime. It never fails: when the index cannot be
// fetched the regime is unknown and the dampener is neutral. Known regimes are
// cached for the regime TTL; unknown ones are not.
func (d *Detector) Assess(ctx context.Context, lookback contracts.Lookback) Regime {
	key := cache.Key(contracts.KindRegime, d.index, fmt.Sprintf("ma%d", d.th.RegimeMAPeriod))

	r, err := cache.GetOrFetch(ctx, d.store, contracts.KindRegime, key, func(ctx context.Context) (Regime, error) {
		series, source, err := d.prices.Prices(ctx, d.index, lookback)
		if err != nil {
			return Regime{}, err
		}
		r := Evaluate(d.index, series, d.th)
		if r.State == StateUnknown {
			return Regime{}, errors.New(r.Reason)
		}
		r.Source = source
		r.AsOf = d.nowFunc().UTC()
		return r, nil
	})
	if err != nil {
		d.logger.WithError(err).WithField("index", d.index).Warn("Market regime unavailable, dampener neutral")
		return Regime{
			Index:    d.index,
			State:    StateUnknown,
			Dampener: 1.0,
			Period:   d.th.RegimeMAPeriod,
			Reason:   err.Error(),
			AsOf:     d.nowFunc().UTC(),
		}
	}

	d.logger.WithFields(map[string]interface{}{
		"index":    r.Index,
		"state":    string(r.State),
		"dampener": r.Dampener,
	}).Debug("Market regime assessed")
	return r
}

// IndexSeries returns the index history (from the price cache) for beta estimates
func (d *Detector) IndexSeries(ctx context.Context, lookback contracts.Lookback) (*contracts.PriceSeries, error) {
	series, _, err := d.prices.Prices(ctx, d.index, lookback)
	return series, err
}

// Evaluate classifies an index series: bearish when the last close is below
// its moving average. Series shorter than the period are unknown.
func Evaluate(index string, series *contracts.PriceSeries, th scoring.OverallThresholds) Regime {
	r := Regime{Index: index, State: StateUnknown, Dampener: 1.0, Period: th.RegimeMAPeriod}

	closes := series.Closes()
	if len(closes) < th.RegimeMAPeriod || th.RegimeMAPeriod <= 0 {
		r.Reason = fmt.Sprintf("index history %d bars, need %d", len(closes), th.RegimeMAPeriod)
		return r
	}

	ma := mean(closes[len(closes)-th.RegimeMAPeriod:])
	last := closes[len(closes)-1]
	r.LastClose = null.FloatFrom(last)
	r.MovingAverage = null.FloatFrom(ma)

	// 지수 종가 < MA200 → 약세장
	bearish := last < ma
	if bearish {
		r.State = StateBearish
	} else {
		r.State = StateBullish
	}
	r.Dampener = scoring.Dampener(bearish, th)
	return r
}
