package contracts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
)

// SubScore is one scoring dimension with the reasons for every unmet criterion
type SubScore struct {
	Score   float64  `json:"score"`
	Max     float64  `json:"max"`
	Reasons []string `json:"reasons"`
}

// Fraction returns Score/Max in [0,1]
func (s SubScore) Fraction() float64 {
	if s.Max <= 0 {
		return 0
	}
	f := s.Score / s.Max
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Snapshot carries raw values for display next to a score
type Snapshot struct {
	LastClose    null.Float  `json:"last_close"`
	Return1M     null.Float  `json:"return_1m"`
	RSI14        null.Float  `json:"rsi_14"`
	MarketCap    null.Float  `json:"market_cap"`
	TrailingPE   null.Float  `json:"trailing_pe"`
	ROE          null.Float  `json:"roe"`
	DebtToEquity null.Float  `json:"debt_to_equity"`
	Beta         null.Float  `json:"beta"`
	Sector       null.String `json:"sector"`
	Name         null.String `json:"name"`
}

// ScoreRecord is the explainable result for one symbol
// ⭐ SSOT: 생성 후 변경 불가 (Aggregate는 복사본에 순위만 부여)
type ScoreRecord struct {
	Symbol      string              `json:"symbol"`
	Rank        int                 `json:"rank,omitempty"` // 1-based, set by the aggregator
	Technical   SubScore            `json:"technical"`
	Fundamental SubScore            `json:"fundamental"`
	Risk        SubScore            `json:"risk"`
	Overall     float64             `json:"overall"` // bounded probability in percent
	Dampener    float64             `json:"dampener"`
	Reasons     []string            `json:"reasons"`
	Snapshot    Snapshot            `json:"snapshot"`
	Sources     map[DataKind]string `json:"sources,omitempty"`
}

// Weights are the relative importance of the three sub-scores.
// Each must be in [0,1]; they are normalized by their sum.
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Risk        float64 `json:"risk"`
}

// DefaultWeights weighs every dimension equally
func DefaultWeights() Weights {
	return Weights{Technical: 1, Fundamental: 1, Risk: 1}
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Technical + w.Fundamental + w.Risk
}

// Validate checks the range of every weight and that at least one is positive
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"technical":   w.Technical,
		"fundamental": w.Fundamental,
		"risk":        w.Risk,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s weight %v is not a finite number", name, v)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("%s weight %.3f out of range [0,1]", name, v)
		}
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}

// ParseWeights reads "technical,fundamental,risk"
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Weights{}, fmt.Errorf("weights %q: want three comma-separated values", s)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Weights{}, fmt.Errorf("weights %q: %w", s, err)
		}
		vals[i] = v
	}

	w := Weights{Technical: vals[0], Fundamental: vals[1], Risk: vals[2]}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
