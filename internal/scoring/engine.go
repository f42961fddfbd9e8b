package scoring

import (
	"maps"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
)

// Engine scores bundles with a fixed set of thresholds.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	th Thresholds
}

// NewEngine creates an engine; th is assumed to be validated
func NewEngine(th Thresholds) *Engine {
	return &Engine{th: th}
}

// Thresholds returns the thresholds in use
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Score produces the ScoreRecord for one bundle
func (e *Engine) Score(b contracts.Bundle, w contracts.Weights, dampener float64) contracts.ScoreRecord {
	t := Technical(b.Prices, e.th.Technical)
	f := Fundamental(b.Profile, e.th.Fundamental)
	r := Risk(b.Profile, b.Statement, e.th.Risk)

	reasons := make([]string, 0, len(t.Reasons)+len(f.Reasons)+len(r.Reasons))
	reasons = append(reasons, t.Reasons...)
	reasons = append(reasons, f.Reasons...)
	reasons = append(reasons, r.Reasons...)

	return contracts.ScoreRecord{
		Symbol:      b.Symbol,
		Technical:   t,
		Fundamental: f,
		Risk:        r,
		Overall:     Overall(t, f, r, w, dampener, e.th.Overall),
		Dampener:    dampener,
		Reasons:     reasons,
		Snapshot:    e.snapshot(b),
		Sources:     maps.Clone(b.Sources),
	}
}

func (e *Engine) snapshot(b contracts.Bundle) contracts.Snapshot {
	var snap contracts.Snapshot

	if last, ok := b.Prices.Last(); ok {
		snap.LastClose = null.FloatFrom(last.Close)
	}
	closes := b.Prices.Closes()
	if ret, ok := periodReturn(closes, e.th.Technical.MomentumBars); ok {
		snap.Return1M = null.FloatFrom(ret)
	}
	if rsi, ok := lastRSI(closes, e.th.Technical.RSIPeriod); ok {
		snap.RSI14 = null.FloatFrom(rsi)
	}

	if p := b.Profile; p != nil {
		snap.MarketCap = p.MarketCap
		snap.TrailingPE = p.TrailingPE
		snap.ROE = p.ROE
		snap.DebtToEquity = p.DebtToEquity
		snap.Beta = p.Beta
		snap.Sector = p.Sector
		snap.Name = p.Name
	}
	if !snap.DebtToEquity.Valid {
		snap.DebtToEquity = b.Statement.DebtToEquity()
	}
	return snap
}
