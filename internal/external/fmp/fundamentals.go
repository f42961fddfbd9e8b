package fmp

import (
	"context"
	"net/url"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
)

type ratiosTTM struct {
	ReturnOnEquityTTM     *float64 `json:"returnOnEquityTTM"`
	ReturnOnAssetsTTM     *float64 `json:"returnOnAssetsTTM"`
	NetProfitMarginTTM    *float64 `json:"netProfitMarginTTM"`
	PriceEarningsRatioTTM *float64 `json:"priceEarningsRatioTTM"`
	DebtEquityRatioTTM    *float64 `json:"debtEquityRatioTTM"`
}

type companyProfile struct {
	CompanyName string   `json:"companyName"`
	Currency    string   `json:"currency"`
	Sector      string   `json:"sector"`
	MktCap      *float64 `json:"mktCap"`
	Beta        *float64 `json:"beta"`
	VolAvg      *float64 `json:"volAvg"`
}

type financialGrowth struct {
	RevenueGrowth   *float64 `json:"revenueGrowth"`
	NetIncomeGrowth *float64 `json:"netIncomeGrowth"`
}

// Profile combines ratios-ttm, profile and financial-growth.
// It fails only when all three endpoints fail.
func (c *Client) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	path := url.PathEscape(symbol)
	p := &contracts.CompanyProfile{Symbol: symbol}

	var ratios []ratiosTTM
	ratiosErr := c.get(ctx, "/ratios-ttm/"+path, nil, &ratios)
	if ratiosErr == nil && len(ratios) > 0 {
		r := ratios[0]
		p.ROE = null.FloatFromPtr(r.ReturnOnEquityTTM)
		p.ROA = null.FloatFromPtr(r.ReturnOnAssetsTTM)
		p.ProfitMargin = null.FloatFromPtr(r.NetProfitMarginTTM)
		p.TrailingPE = null.FloatFromPtr(r.PriceEarningsRatioTTM)
		p.DebtToEquity = null.FloatFromPtr(r.DebtEquityRatioTTM)
	}

	var profiles []companyProfile
	profileErr := c.get(ctx, "/profile/"+path, nil, &profiles)
	if profileErr == nil && len(profiles) > 0 {
		cp := profiles[0]
		p.Name = nonEmpty(cp.CompanyName)
		p.Currency = nonEmpty(cp.Currency)
		p.Sector = nonEmpty(cp.Sector)
		p.MarketCap = null.FloatFromPtr(cp.MktCap)
		p.Beta = null.FloatFromPtr(cp.Beta)
		p.AverageVolume = null.FloatFromPtr(cp.VolAvg)
	}

	params := url.Values{}
	params.Set("limit", "1")
	var growth []financialGrowth
	growthErr := c.get(ctx, "/financial-growth/"+path, params, &growth)
	if growthErr == nil && len(growth) > 0 {
		p.RevenueGrowth = null.FloatFromPtr(growth[0].RevenueGrowth)
		p.EarningsGrowth = null.FloatFromPtr(growth[0].NetIncomeGrowth)
	}

	if ratiosErr != nil && profileErr != nil && growthErr != nil {
		return nil, ratiosErr
	}
	return p, nil
}

type balanceSheet struct {
	Date                      string   `json:"date"`
	TotalDebt                 *float64 `json:"totalDebt"`
	TotalStockholdersEquity   *float64 `json:"totalStockholdersEquity"`
	PropertyPlantEquipmentNet *float64 `json:"propertyPlantEquipmentNet"`
	TotalCurrentAssets        *float64 `json:"totalCurrentAssets"`
	TotalCurrentLiabilities   *float64 `json:"totalCurrentLiabilities"`
}

type cashFlow struct {
	OperatingCashFlow *float64 `json:"operatingCashFlow"`
}

// Statements fetches the latest quarterly balance sheet and cash flow statement
func (c *Client) Statements(ctx context.Context, symbol string) (*contracts.FinancialStatement, error) {
	path := url.PathEscape(symbol)
	params := url.Values{}
	params.Set("period", "quarter")
	params.Set("limit", "1")

	var sheets []balanceSheet
	if err := c.get(ctx, "/balance-sheet-statement/"+path, params, &sheets); err != nil {
		return nil, err
	}

	s := &contracts.FinancialStatement{Symbol: symbol}
	if len(sheets) > 0 {
		b := sheets[0]
		s.PeriodEnd = nonEmpty(b.Date)
		s.TotalDebt = null.FloatFromPtr(b.TotalDebt)
		s.TotalEquity = null.FloatFromPtr(b.TotalStockholdersEquity)
		s.FixedAssets = null.FloatFromPtr(b.PropertyPlantEquipmentNet)
		s.CurrentAssets = null.FloatFromPtr(b.TotalCurrentAssets)
		s.CurrentLiabilities = null.FloatFromPtr(b.TotalCurrentLiabilities)
	}

	var flows []cashFlow
	if err := c.get(ctx, "/cash-flow-statement/"+path, params, &flows); err != nil {
		c.logger.WithError(err).WithSymbol(symbol).Debug("Cash flow statement unavailable")
	} else if len(flows) > 0 {
		s.OperatingCashFlow = null.FloatFromPtr(flows[0].OperatingCashFlow)
	}

	return s, nil
}

func nonEmpty(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
