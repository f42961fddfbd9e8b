package market_regime

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/hunter/internal/contracts"
)

// MinBetaObservations is the fewest overlapping daily returns Beta accepts
const MinBetaObservations = 60

// Beta estimates cov(stock, index) / var(index) over daily returns on the
// dates both series share.
func Beta(stock, index *contracts.PriceSeries) (float64, bool) {
	if stock.Len() < 2 || index.Len() < 2 {
		return 0, false
	}

	indexByDate := make(map[time.Time]float64, index.Len())
	for _, b := range index.Bars {
		indexByDate[day(b.Date)] = b.Close
	}

	var xs, ys []float64
	var prevStock, prevIndex float64
	havePrev := false
	for _, b := range stock.Bars {
		ic, ok := indexByDate[day(b.Date)]
		if !ok || ic <= 0 || b.Close <= 0 {
			continue
		}
		if havePrev {
			ys = append(ys, b.Close/prevStock-1)
			xs = append(xs, ic/prevIndex-1)
		}
		prevStock, prevIndex, havePrev = b.Close, ic, true
	}

	if len(xs) < MinBetaObservations {
		return 0, false
	}

	variance := stat.Variance(xs, nil)
	if variance <= 0 {
		return 0, false
	}
	return stat.Covariance(ys, xs, nil) / variance, true
}

func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
