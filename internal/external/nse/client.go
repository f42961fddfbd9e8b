package nse

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

const (
	// ProviderName is the chain name of this client
	ProviderName = "nse"

	// DefaultBaseURL hosts the index constituent CSVs
	DefaultBaseURL = "https://archives.nseindia.com/content/indices"

	// Suffix marks NSE listings for the price and profile providers
	Suffix = ".NS"
)

// categoryFiles maps universe categories to constituent CSVs.
// nifty-smallmid is the union of both lists.
var categoryFiles = map[string][]string{
	"nifty-smallcap-250": {"ind_niftysmallcap250list.csv"},
	"nifty-midcap-150":   {"ind_niftymidcap150list.csv"},
	"nifty-smallmid":     {"ind_niftysmallcap250list.csv", "ind_niftymidcap150list.csv"},
}

// Client downloads NSE index constituent lists
// ⭐ SSOT: NSE 지수 구성종목 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new NSE archive client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.ForModule("nse"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Supports reports whether the category is an NSE index
func (c *Client) Supports(category string) bool {
	_, ok := categoryFiles[category]
	return ok
}

// List returns SYMBOL.NS tickers for the category, de-duplicated in file order
func (c *Client) List(ctx context.Context, category string) ([]string, error) {
	files, ok := categoryFiles[category]
	if !ok {
		return nil, fmt.Errorf("nse: unsupported category %q", category)
	}

	seen := make(map[string]bool)
	var symbols []string
	for _, file := range files {
		body, err := c.httpClient.GetBytes(ctx, c.baseURL+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("nse %s: %w", file, err)
		}

		list, err := parseConstituents(body)
		if err != nil {
			return nil, fmt.Errorf("nse %s: %w", file, err)
		}

		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				symbols = append(symbols, s)
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"category": category,
		"count":    len(symbols),
	}).Debug("Fetched constituents")
	return symbols, nil
}

// parseConstituents reads the Symbol column of an index CSV
func parseConstituents(body []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "Symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("malformed payload: no Symbol column in %v", header)
	}

	var symbols []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed payload: %w", err)
		}
		if col >= len(row) {
			continue
		}
		if s := strings.TrimSpace(row[col]); s != "" {
			symbols = append(symbols, s+Suffix)
		}
	}
	return symbols, nil
}
