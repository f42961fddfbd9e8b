package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

const (
	// ProviderName is the chain name of this client
	ProviderName = "wikipedia"

	// DefaultBaseURL is the article root
	DefaultBaseURL = "https://en.wikipedia.org/wiki"
)

// categoryPages maps universe categories to constituent list articles
var categoryPages = map[string]string{
	"sp500":          "List_of_S%26P_500_companies",
	"sp400-midcap":   "List_of_S%26P_400_companies",
	"sp600-smallcap": "List_of_S%26P_600_companies",
	"nasdaq100":      "Nasdaq-100",
}

// Client scrapes index constituent tables from Wikipedia
// ⭐ SSOT: Wikipedia 구성종목 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Wikipedia client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.ForModule("wikipedia"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Supports reports whether a constituents article is known for the category
func (c *Client) Supports(category string) bool {
	_, ok := categoryPages[category]
	return ok
}

// List scrapes the category's constituents table
func (c *Client) List(ctx context.Context, category string) ([]string, error) {
	page, ok := categoryPages[category]
	if !ok {
		return nil, fmt.Errorf("wikipedia: unsupported category %q", category)
	}

	body, err := c.httpClient.GetBytes(ctx, c.baseURL+"/"+page)
	if err != nil {
		return nil, err
	}

	symbols, err := parseConstituents(body)
	if err != nil {
		return nil, fmt.Errorf("wikipedia %s: %w", page, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"category": category,
		"count":    len(symbols),
	}).Debug("Scraped constituents")
	return symbols, nil
}

// parseConstituents takes the first wikitable with a Symbol or Ticker column.
// Class-share dots become dashes (BRK.B -> BRK-B) to match quote providers.
func parseConstituents(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}

	var symbols []string
	found := false

	doc.Find("table.wikitable").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			h := strings.ToLower(strings.TrimSpace(th.Text()))
			if col < 0 && (h == "symbol" || h == "ticker" || strings.HasPrefix(h, "ticker symbol")) {
				col = i
			}
		})
		if col < 0 {
			return true
		}

		found = true
		seen := make(map[string]bool)
		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return // header
			}
			cell := tr.Children().Eq(col)
			s := strings.TrimSpace(cell.Text())
			if s == "" || seen[s] {
				return
			}
			seen[s] = true
			symbols = append(symbols, strings.ReplaceAll(s, ".", "-"))
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("malformed payload: no constituents table")
	}
	return symbols, nil
}
