package scoring

import (
	"fmt"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
)

// ReasonFinancialsUnavailable is given when neither profile nor statement could be fetched
const ReasonFinancialsUnavailable = "financials unavailable"

// Risk scores leverage, volatility, cash generation and liquidity.
// Statement values win over profile values where both exist.
func Risk(profile *contracts.CompanyProfile, statement *contracts.FinancialStatement, th RiskThresholds) contracts.SubScore {
	pts := th.Points
	sub := contracts.SubScore{Max: pts.Max()}

	if profile == nil && statement == nil {
		sub.Reasons = []string{ReasonFinancialsUnavailable}
		return sub
	}

	var p contracts.CompanyProfile
	if profile != nil {
		p = *profile
	}

	c := checker{sub: &sub}

	debtToEquity := p.DebtToEquity
	if !debtToEquity.Valid {
		debtToEquity = statement.DebtToEquity()
	}
	c.below(debtToEquity, th.DebtToEquityMax, pts.DebtToEquity, "debt/equity", num)
	c.below(p.Beta, th.BetaMax, pts.Beta, "beta", num)

	ocf := p.OperatingCashFlow
	if statement != nil && statement.OperatingCashFlow.Valid {
		ocf = statement.OperatingCashFlow
	}
	c.above(ocf, 0, pts.OperatingCashFlow, "operating cash flow", compact)
	c.above(p.AverageVolume, th.AverageVolumeMin, pts.AverageVolume, "average volume", compact)

	// 자기자본 > 고정자산: 재무제표에만 있는 항목
	if statement == nil {
		c.miss("equity vs fixed assets unknown")
	} else {
		equity, fixed := statement.TotalEquity, statement.FixedAssets
		switch {
		case !equity.Valid || !fixed.Valid:
			c.miss("equity vs fixed assets unknown")
		case equity.Float64 > fixed.Float64:
			c.hit(pts.EquityOverFixed)
		default:
			c.miss(fmt.Sprintf("equity %s not above fixed assets %s", compact(equity.Float64), compact(fixed.Float64)))
		}
	}

	var currentRatio null.Float
	if statement != nil {
		currentRatio = statement.CurrentRatio()
	}
	c.above(currentRatio, th.CurrentRatioMin, pts.CurrentRatio, "current ratio", num)

	return sub
}
