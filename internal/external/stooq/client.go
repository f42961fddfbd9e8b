package stooq

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

// ProviderName is the chain name of this client
const ProviderName = "stooq"

// ErrUnsupportedSymbol is returned for exchanges stooq does not carry
var ErrUnsupportedSymbol = errors.New("symbol not served by stooq")

// indexSymbols maps Yahoo-style index tickers to stooq names
var indexSymbols = map[string]string{
	"^GSPC": "^spx",
	"^NDX":  "^ndx",
	"^DJI":  "^dji",
	"^RUT":  "^rut",
}

// Client downloads keyless daily CSV history from stooq
// ⭐ SSOT: stooq 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new stooq client. An empty baseURL uses the public host.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.ForModule("stooq"),
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// stooqSymbol converts AAPL -> aapl.us, ^GSPC -> ^spx
func stooqSymbol(symbol string) (string, error) {
	if s, ok := indexSymbols[strings.ToUpper(symbol)]; ok {
		return s, nil
	}
	if strings.ContainsAny(symbol, ".^") {
		return "", ErrUnsupportedSymbol
	}
	return strings.ToLower(strings.ReplaceAll(symbol, "-", ".")) + ".us", nil
}

// History fetches daily bars covering the lookback window
func (c *Client) History(ctx context.Context, symbol string, lookback contracts.Lookback) (*contracts.PriceSeries, error) {
	s, err := stooqSymbol(symbol)
	if err != nil {
		return nil, err
	}

	now := c.now()
	params := url.Values{}
	params.Set("s", s)
	params.Set("i", "d")
	params.Set("d1", lookback.Since(now).Format("20060102"))
	params.Set("d2", now.Format("20060102"))

	body, err := c.httpClient.GetBytes(ctx, c.baseURL+"/q/d/l/?"+params.Encode())
	if err != nil {
		return nil, err
	}

	bars, err := parseCSV(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(bars),
	}).Debug("Fetched history")
	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// parseCSV reads Date,Open,High,Low,Close,Volume rows. "No data" bodies yield no bars.
func parseCSV(body []byte) ([]contracts.PriceBar, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.HasPrefix(trimmed, []byte("No data")) {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(trimmed))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	if len(header) < 5 || !strings.EqualFold(header[0], "Date") {
		return nil, fmt.Errorf("malformed payload: unexpected header %v", header)
	}

	var bars []contracts.PriceBar
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed payload: %w", err)
		}

		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(row[4], 64)
		if err != nil || closePrice <= 0 {
			continue
		}

		bar := contracts.PriceBar{Date: date, Close: closePrice}
		bar.Open, _ = strconv.ParseFloat(row[1], 64)
		bar.High, _ = strconv.ParseFloat(row[2], 64)
		bar.Low, _ = strconv.ParseFloat(row[3], 64)
		if len(row) > 5 {
			bar.Volume, _ = strconv.ParseFloat(row[5], 64)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
