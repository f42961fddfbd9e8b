package scoring

import (
	"math"

	"github.com/wonny/hunter/internal/contracts"
)

// Overall blends the sub-scores into a probability in [Floor, Ceiling].
// Each sub-score is normalized by its cap, weights by their sum.
func Overall(t, f, r contracts.SubScore, w contracts.Weights, dampener float64, th OverallThresholds) float64 {
	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) {
		return th.Floor
	}

	blended := (w.Technical*t.Fraction() + w.Fundamental*f.Fraction() + w.Risk*r.Fraction()) / sum
	prob := blended * 100 * dampener

	return clamp(prob, th.Floor, th.Ceiling)
}

// Dampener returns the multiplier for the current market regime
func Dampener(bearish bool, th OverallThresholds) float64 {
	if bearish {
		return th.BearishDampener
	}
	return 1.0
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
