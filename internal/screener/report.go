package screener

import (
	"time"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/dispatcher"
	"github.com/wonny/hunter/internal/market_regime"
)

// Outcome tells an empty result apart from a failed one
type Outcome string

const (
	// OutcomeResults means at least one record passed the threshold
	OutcomeResults Outcome = "results"
	// OutcomeNoneQualified means data was fetched but nothing passed the threshold
	OutcomeNoneQualified Outcome = "none_qualified"
	// OutcomeNoData means no symbol returned usable price history
	OutcomeNoData Outcome = "no_data"
)

// MessageNoData is shown when no symbol could be fetched
const MessageNoData = "No data returned – check API key or rate limit"

// SourceRequest marks a universe given explicitly as symbols
const SourceRequest = "request"

// UniverseInfo describes where the scanned symbols came from
type UniverseInfo struct {
	Category string `json:"category,omitempty"`
	Source   string `json:"source"`
	Size     int    `json:"size"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// ScanReport is the ranked result of one scan
type ScanReport struct {
	ID           string                  `json:"id"`
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
	Records      []contracts.ScoreRecord `json:"records"`
	Universe     UniverseInfo            `json:"universe"`
	Requested    int                     `json:"requested"`
	Fetched      int                     `json:"fetched"`
	Scored       int                     `json:"scored"`
	Dropped      []dispatcher.Drop       `json:"dropped,omitempty"`
	Truncated    bool                    `json:"truncated"`
	Regime       market_regime.Regime    `json:"regime"`
	Weights      contracts.Weights       `json:"weights"`
	MinThreshold float64                 `json:"min_threshold"`
	Lookback     contracts.Lookback      `json:"lookback"`
	Outcome      Outcome                 `json:"outcome"`
	Message      string                  `json:"message,omitempty"`
	StrategyID   string                  `json:"strategy_id"`
	StrategyHash string                  `json:"strategy_hash"`
}

// UniverseDegraded reports whether the static fallback list was scanned
func (r *ScanReport) UniverseDegraded() bool {
	return r.Universe.Degraded
}
