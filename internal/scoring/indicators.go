package scoring

import (
	"math"

	"github.com/markcheno/go-talib"
)

// talib pads the warm-up window with zeros, so only the last value is read
// and callers guard the length first.

func lastSMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	return last(talib.Sma(closes, period))
}

func lastRSI(closes []float64, period int) (float64, bool) {
	if period <= 1 || len(closes) <= period {
		return 0, false
	}
	return last(talib.Rsi(closes, period))
}

// lastMACD returns the MACD line and its signal line at the last bar
func lastMACD(closes []float64, fast, slow, signal int) (float64, float64, bool) {
	if len(closes) < slow+signal {
		return 0, 0, false
	}
	line, sig, _ := talib.Macd(closes, fast, slow, signal)
	m, ok := last(line)
	if !ok {
		return 0, 0, false
	}
	s, ok := last(sig)
	if !ok {
		return 0, 0, false
	}
	return m, s, true
}

// periodReturn is close[n-1]/close[n-1-bars] - 1
func periodReturn(closes []float64, bars int) (float64, bool) {
	if bars <= 0 || len(closes) <= bars {
		return 0, false
	}
	base := closes[len(closes)-1-bars]
	if base <= 0 {
		return 0, false
	}
	return closes[len(closes)-1]/base - 1, true
}

func last(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v := values[len(values)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
