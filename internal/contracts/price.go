package contracts

import (
	"fmt"
	"time"
)

// PriceBar is one daily OHLCV observation
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is a date-ordered run of bars for one symbol
// ⭐ SSOT: 날짜는 항상 오름차순 (non-decreasing)
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Len returns the number of bars
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes returns the closing prices in date order
func (s *PriceSeries) Closes() []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volumes in date order
func (s *PriceSeries) Volumes() []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent bar
func (s *PriceSeries) Last() (PriceBar, bool) {
	if s.Len() == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Validate checks the ordering invariant
func (s *PriceSeries) Validate() error {
	for i := 1; i < s.Len(); i++ {
		if s.Bars[i].Date.Before(s.Bars[i-1].Date) {
			return fmt.Errorf("price series %s: bar %d (%s) before bar %d (%s)",
				s.Symbol, i, s.Bars[i].Date.Format("2006-01-02"),
				i-1, s.Bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Lookback is the requested history window
type Lookback string

const (
	Lookback1Y Lookback = "1y"
	Lookback2Y Lookback = "2y"
	Lookback3Y Lookback = "3y"
	Lookback5Y Lookback = "5y"
)

// ParseLookback validates a lookback string
func ParseLookback(s string) (Lookback, error) {
	switch l := Lookback(s); l {
	case Lookback1Y, Lookback2Y, Lookback3Y, Lookback5Y:
		return l, nil
	default:
		return "", fmt.Errorf("unsupported lookback %q (want 1y, 2y, 3y or 5y)", s)
	}
}

// Years returns the window length in years
func (l Lookback) Years() int {
	switch l {
	case Lookback1Y:
		return 1
	case Lookback3Y:
		return 3
	case Lookback5Y:
		return 5
	default:
		return 2
	}
}

// Since returns the first calendar day covered by the window
func (l Lookback) Since(now time.Time) time.Time {
	return now.AddDate(-l.Years(), 0, 0)
}
