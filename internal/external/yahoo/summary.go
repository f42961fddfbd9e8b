package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
)

// raw is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper. Missing values arrive as {}.
type raw struct {
	Raw *float64 `json:"raw"`
}

func (r raw) value() null.Float {
	if r.Raw == nil {
		return null.Float{}
	}
	return null.FloatFrom(*r.Raw)
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		ShortName string `json:"shortName"`
		Currency  string `json:"currency"`
		MarketCap raw    `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		TrailingPE    raw `json:"trailingPE"`
		Beta          raw `json:"beta"`
		AverageVolume raw `json:"averageVolume"`
		MarketCap     raw `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		Beta raw `json:"beta"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		ReturnOnEquity    raw `json:"returnOnEquity"`
		ReturnOnAssets    raw `json:"returnOnAssets"`
		ProfitMargins     raw `json:"profitMargins"`
		RevenueGrowth     raw `json:"revenueGrowth"`
		EarningsGrowth    raw `json:"earningsGrowth"`
		DebtToEquity      raw `json:"debtToEquity"` // percent
		OperatingCashflow raw `json:"operatingCashflow"`
	} `json:"financialData"`
	AssetProfile struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`
	BalanceSheetHistoryQuarterly struct {
		BalanceSheetStatements []balanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistoryQuarterly"`
	CashflowStatementHistoryQuarterly struct {
		CashflowStatements []struct {
			TotalCashFromOperatingActivities raw `json:"totalCashFromOperatingActivities"`
		} `json:"cashflowStatements"`
	} `json:"cashflowStatementHistoryQuarterly"`
}

type balanceSheet struct {
	EndDate struct {
		Fmt string `json:"fmt"`
	} `json:"endDate"`
	ShortLongTermDebt       raw `json:"shortLongTermDebt"`
	LongTermDebt            raw `json:"longTermDebt"`
	TotalStockholderEquity  raw `json:"totalStockholderEquity"`
	PropertyPlantEquipment  raw `json:"propertyPlantEquipment"`
	TotalCurrentAssets      raw `json:"totalCurrentAssets"`
	TotalCurrentLiabilities raw `json:"totalCurrentLiabilities"`
}

var (
	profileModules   = []string{"price", "summaryDetail", "defaultKeyStatistics", "financialData", "assetProfile"}
	statementModules = []string{"balanceSheetHistoryQuarterly", "cashflowStatementHistoryQuarterly"}
)

func (c *Client) quoteSummary(ctx context.Context, symbol string, modules []string) (*quoteSummaryResult, error) {
	params := url.Values{}
	params.Set("modules", strings.Join(modules, ","))

	var resp quoteSummaryResponse
	if err := c.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}
	return &resp.QuoteSummary.Result[0], nil
}

// Profile fetches ratio and descriptive data
func (c *Client) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	r, err := c.quoteSummary(ctx, symbol, profileModules)
	if err != nil || r == nil {
		return nil, err
	}
	return toProfile(symbol, r), nil
}

func toProfile(symbol string, r *quoteSummaryResult) *contracts.CompanyProfile {
	p := &contracts.CompanyProfile{
		Symbol:            symbol,
		Name:              nonEmpty(r.Price.ShortName),
		Currency:          nonEmpty(r.Price.Currency),
		Sector:            nonEmpty(r.AssetProfile.Sector),
		MarketCap:         firstValid(r.Price.MarketCap.value(), r.SummaryDetail.MarketCap.value()),
		TrailingPE:        r.SummaryDetail.TrailingPE.value(),
		ROE:               r.FinancialData.ReturnOnEquity.value(),
		ROA:               r.FinancialData.ReturnOnAssets.value(),
		ProfitMargin:      r.FinancialData.ProfitMargins.value(),
		RevenueGrowth:     r.FinancialData.RevenueGrowth.value(),
		EarningsGrowth:    r.FinancialData.EarningsGrowth.value(),
		Beta:              firstValid(r.SummaryDetail.Beta.value(), r.DefaultKeyStatistics.Beta.value()),
		AverageVolume:     r.SummaryDetail.AverageVolume.value(),
		OperatingCashFlow: r.FinancialData.OperatingCashflow.value(),
	}

	if de := r.FinancialData.DebtToEquity.value(); de.Valid {
		p.DebtToEquity = null.FloatFrom(de.Float64 / 100)
	}
	return p
}

// Statements fetches the latest quarterly balance sheet and cash flow
func (c *Client) Statements(ctx context.Context, symbol string) (*contracts.FinancialStatement, error) {
	r, err := c.quoteSummary(ctx, symbol, statementModules)
	if err != nil || r == nil {
		return nil, err
	}
	return toStatement(symbol, r), nil
}

func toStatement(symbol string, r *quoteSummaryResult) *contracts.FinancialStatement {
	s := &contracts.FinancialStatement{Symbol: symbol}

	if sheets := r.BalanceSheetHistoryQuarterly.BalanceSheetStatements; len(sheets) > 0 {
		b := sheets[0] // most recent first
		s.PeriodEnd = nonEmpty(b.EndDate.Fmt)
		s.TotalDebt = sum(b.ShortLongTermDebt.value(), b.LongTermDebt.value())
		s.TotalEquity = b.TotalStockholderEquity.value()
		s.FixedAssets = b.PropertyPlantEquipment.value()
		s.CurrentAssets = b.TotalCurrentAssets.value()
		s.CurrentLiabilities = b.TotalCurrentLiabilities.value()
	}
	if flows := r.CashflowStatementHistoryQuarterly.CashflowStatements; len(flows) > 0 {
		s.OperatingCashFlow = flows[0].TotalCashFromOperatingActivities.value()
	}
	return s
}

func nonEmpty(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

func firstValid(values ...null.Float) null.Float {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return null.Float{}
}

// sum adds the known parts; unknown when none is known
func sum(values ...null.Float) null.Float {
	total, known := 0.0, false
	for _, v := range values {
		if v.Valid {
			total += v.Float64
			known = true
		}
	}
	if !known {
		return null.Float{}
	}
	return null.FloatFrom(total)
}
