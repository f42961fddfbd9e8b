package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

const (
	// ProviderName is the chain name of this client
	ProviderName = "alphavantage"

	// DefaultBaseURL is the query endpoint
	DefaultBaseURL = "https://www.alphavantage.co/query"
)

var (
	// ErrMissingAPIKey is returned when the client was built without a key
	ErrMissingAPIKey = errors.New("alphavantage: api key not configured")

	// ErrThrottled is returned for the 200-status "Note"/"Information" quota bodies
	ErrThrottled = errors.New("alphavantage: request quota exhausted")
)

// Client is an Alpha Vantage fundamentals client
// ⭐ SSOT: Alpha Vantage 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new Alpha Vantage client
func NewClient(httpClient *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.ForModule("alphavantage"),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// query calls one function and decodes the JSON body into out
func (c *Client) query(ctx context.Context, function, symbol string, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	body, err := c.httpClient.GetBytes(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return err
	}

	var notice struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	switch {
	case notice.Note != "" || notice.Information != "":
		return fmt.Errorf("%w: %s%s", ErrThrottled, notice.Note, notice.Information)
	case notice.ErrorMessage != "":
		return fmt.Errorf("alphavantage %s: %s", function, notice.ErrorMessage)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// number parses Alpha Vantage's string numerics; "None", "-" and "" are unknown
func number(s string) null.Float {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return null.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func text(s string) null.String {
	if s == "" || s == "None" {
		return null.String{}
	}
	return null.StringFrom(s)
}

type overview struct {
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	Currency                   string `json:"Currency"`
	Sector                     string `json:"Sector"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	PERatio                    string `json:"PERatio"`
	ReturnOnEquityTTM          string `json:"ReturnOnEquityTTM"`
	ReturnOnAssetsTTM          string `json:"ReturnOnAssetsTTM"`
	ProfitMargin               string `json:"ProfitMargin"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
	Beta                       string `json:"Beta"`
}

// Profile fetches the OVERVIEW function. An unknown symbol yields an empty profile.
func (c *Client) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	var o overview
	if err := c.query(ctx, "OVERVIEW", symbol, &o); err != nil {
		return nil, err
	}

	return &contracts.CompanyProfile{
		Symbol:         symbol,
		Name:           text(o.Name),
		Currency:       text(o.Currency),
		Sector:         text(o.Sector),
		MarketCap:      number(o.MarketCapitalization),
		TrailingPE:     number(o.PERatio),
		ROE:            number(o.ReturnOnEquityTTM),
		ROA:            number(o.ReturnOnAssetsTTM),
		ProfitMargin:   number(o.ProfitMargin),
		RevenueGrowth:  number(o.QuarterlyRevenueGrowthYOY),
		EarningsGrowth: number(o.QuarterlyEarningsGrowthYOY),
		Beta:           number(o.Beta),
	}, nil
}

type balanceSheetResponse struct {
	QuarterlyReports []struct {
		FiscalDateEnding        string `json:"fiscalDateEnding"`
		ShortLongTermDebtTotal  string `json:"shortLongTermDebtTotal"`
		TotalShareholderEquity  string `json:"totalShareholderEquity"`
		PropertyPlantEquipment  string `json:"propertyPlantEquipment"`
		TotalCurrentAssets      string `json:"totalCurrentAssets"`
		TotalCurrentLiabilities string `json:"totalCurrentLiabilities"`
	} `json:"quarterlyReports"`
}

type cashFlowResponse struct {
	QuarterlyReports []struct {
		OperatingCashflow string `json:"operatingCashflow"`
	} `json:"quarterlyReports"`
}

// Statements fetches BALANCE_SHEET and CASH_FLOW and keeps the latest quarter
func (c *Client) Statements(ctx context.Context, symbol string) (*contracts.FinancialStatement, error) {
	var bs balanceSheetResponse
	if err := c.query(ctx, "BALANCE_SHEET", symbol, &bs); err != nil {
		return nil, err
	}

	s := &contracts.FinancialStatement{Symbol: symbol}
	if len(bs.QuarterlyReports) > 0 {
		r := bs.QuarterlyReports[0]
		s.PeriodEnd = text(r.FiscalDateEnding)
		s.TotalDebt = number(r.ShortLongTermDebtTotal)
		s.TotalEquity = number(r.TotalShareholderEquity)
		s.FixedAssets = number(r.PropertyPlantEquipment)
		s.CurrentAssets = number(r.TotalCurrentAssets)
		s.CurrentLiabilities = number(r.TotalCurrentLiabilities)
	}

	var cf cashFlowResponse
	if err := c.query(ctx, "CASH_FLOW", symbol, &cf); err != nil {
		c.logger.WithError(err).WithSymbol(symbol).Debug("Cash flow unavailable")
	} else if len(cf.QuarterlyReports) > 0 {
		s.OperatingCashFlow = number(cf.QuarterlyReports[0].OperatingCashflow)
	}

	return s, nil
}
