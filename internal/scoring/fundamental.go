package scoring

import (
	"fmt"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
)

// ReasonFundamentalsUnavailable is given when no profile could be fetched
const ReasonFundamentalsUnavailable = "fundamentals unavailable"

// Fundamental scores profitability, growth and valuation
func Fundamental(profile *contracts.CompanyProfile, th FundamentalThresholds) contracts.SubScore {
	pts := th.Points
	sub := contracts.SubScore{Max: pts.Max()}

	if profile == nil {
		sub.Reasons = []string{ReasonFundamentalsUnavailable}
		return sub
	}

	c := checker{sub: &sub}
	c.above(profile.ROE, th.ROEMin, pts.ROE, "ROE", pct)
	c.above(profile.RevenueGrowth, th.RevenueGrowthMin, pts.RevenueGrowth, "revenue growth", pct)
	c.above(profile.ProfitMargin, th.ProfitMarginMin, pts.ProfitMargin, "profit margin", pct)

	// 적자 기업(PE <= 0)은 밸류에이션 통과 불가
	switch {
	case !profile.TrailingPE.Valid:
		c.miss("P/E unknown")
	case profile.TrailingPE.Float64 <= 0 || profile.TrailingPE.Float64 >= th.PEMax:
		c.miss(fmt.Sprintf("P/E %.1f outside (0, %.0f)", profile.TrailingPE.Float64, th.PEMax))
	default:
		c.hit(pts.PE)
	}

	c.above(profile.ROA, th.ROAMin, pts.ROA, "ROA", pct)
	c.above(profile.EarningsGrowth, th.EarningsGrowthMin, pts.EarningsGrowth, "earnings growth", pct)

	switch {
	case !profile.MarketCap.Valid:
		c.miss("market cap unknown")
	case profile.MarketCap.Float64 < th.MarketCapMin || profile.MarketCap.Float64 > th.MarketCapMax:
		c.miss(fmt.Sprintf("market cap %s outside %s-%s",
			compact(profile.MarketCap.Float64), compact(th.MarketCapMin), compact(th.MarketCapMax)))
	default:
		c.hit(pts.MarketCap)
	}

	return sub
}

// checker accumulates points and reasons for one sub-score
type checker struct {
	sub *contracts.SubScore
}

func (c checker) hit(points float64) {
	c.sub.Score += points
}

func (c checker) miss(reason string) {
	c.sub.Reasons = append(c.sub.Reasons, reason)
}

// above awards points when v is known and strictly greater than floor
func (c checker) above(v null.Float, floor, points float64, label string, format func(float64) string) {
	switch {
	case !v.Valid:
		c.miss(label + " unknown")
	case v.Float64 > floor:
		c.hit(points)
	default:
		c.miss(fmt.Sprintf("%s %s not above %s", label, format(v.Float64), format(floor)))
	}
}

// below awards points when v is known and strictly less than limit
func (c checker) below(v null.Float, limit, points float64, label string, format func(float64) string) {
	switch {
	case !v.Valid:
		c.miss(label + " unknown")
	case v.Float64 < limit:
		c.hit(points)
	default:
		c.miss(fmt.Sprintf("%s %s not below %s", label, format(v.Float64), format(limit)))
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// compact renders large amounts as 12.3B / 450.0M / 120.0K
func compact(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.1fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
