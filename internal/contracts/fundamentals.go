package contracts

import "github.com/guregu/null/v6"

// CompanyProfile holds descriptive and ratio data for one company.
// Ratios are fractions (ROE 25% = 0.25). DebtToEquity is a plain ratio.
// An invalid field means "unknown", never zero.
type CompanyProfile struct {
	Symbol            string      `json:"symbol"`
	Name              null.String `json:"name"`
	Sector            null.String `json:"sector"`
	Currency          null.String `json:"currency"`
	MarketCap         null.Float  `json:"market_cap"`
	TrailingPE        null.Float  `json:"trailing_pe"`
	ROE               null.Float  `json:"roe"`
	ROA               null.Float  `json:"roa"`
	ProfitMargin      null.Float  `json:"profit_margin"`
	RevenueGrowth     null.Float  `json:"revenue_growth"`
	EarningsGrowth    null.Float  `json:"earnings_growth"`
	DebtToEquity      null.Float  `json:"debt_to_equity"`
	Beta              null.Float  `json:"beta"`
	AverageVolume     null.Float  `json:"average_volume"`
	OperatingCashFlow null.Float  `json:"operating_cash_flow"`
}

// HasData reports whether at least one scoring field is known
func (p *CompanyProfile) HasData() bool {
	if p == nil {
		return false
	}
	for _, f := range []null.Float{
		p.MarketCap, p.TrailingPE, p.ROE, p.ROA, p.ProfitMargin, p.RevenueGrowth,
		p.EarningsGrowth, p.DebtToEquity, p.Beta, p.AverageVolume, p.OperatingCashFlow,
	} {
		if f.Valid {
			return true
		}
	}
	return false
}

// FinancialStatement is the most recent balance sheet + cash flow snapshot
type FinancialStatement struct {
	Symbol             string      `json:"symbol"`
	PeriodEnd          null.String `json:"period_end"`
	TotalDebt          null.Float  `json:"total_debt"`
	TotalEquity        null.Float  `json:"total_equity"`
	FixedAssets        null.Float  `json:"fixed_assets"`
	CurrentAssets      null.Float  `json:"current_assets"`
	CurrentLiabilities null.Float  `json:"current_liabilities"`
	OperatingCashFlow  null.Float  `json:"operating_cash_flow"`
}

// HasData reports whether at least one line item is known
func (s *FinancialStatement) HasData() bool {
	if s == nil {
		return false
	}
	return s.TotalDebt.Valid || s.TotalEquity.Valid || s.FixedAssets.Valid ||
		s.CurrentAssets.Valid || s.CurrentLiabilities.Valid || s.OperatingCashFlow.Valid
}

// CurrentRatio returns current assets / current liabilities when both are known
func (s *FinancialStatement) CurrentRatio() null.Float {
	if s == nil || !s.CurrentAssets.Valid || !s.CurrentLiabilities.Valid || s.CurrentLiabilities.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(s.CurrentAssets.Float64 / s.CurrentLiabilities.Float64)
}

// DebtToEquity returns total debt / total equity when both are known and equity is positive
func (s *FinancialStatement) DebtToEquity() null.Float {
	if s == nil || !s.TotalDebt.Valid || !s.TotalEquity.Valid || s.TotalEquity.Float64 <= 0 {
		return null.Float{}
	}
	return null.FloatFrom(s.TotalDebt.Float64 / s.TotalEquity.Float64)
}
