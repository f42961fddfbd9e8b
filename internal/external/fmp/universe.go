package fmp

import (
	"context"
	"fmt"
)

// constituentEndpoints maps universe categories to FMP list endpoints
var constituentEndpoints = map[string]string{
	"sp500":     "/sp500_constituent",
	"nasdaq100": "/nasdaq_constituent",
}

type constituent struct {
	Symbol string `json:"symbol"`
}

// Supports reports whether FMP publishes a constituent list for the category
func (c *Client) Supports(category string) bool {
	_, ok := constituentEndpoints[category]
	return ok && c.apiKey != ""
}

// List fetches the constituents of an index category
func (c *Client) List(ctx context.Context, category string) ([]string, error) {
	path, ok := constituentEndpoints[category]
	if !ok {
		return nil, fmt.Errorf("fmp: unsupported category %q", category)
	}

	var rows []constituent
	if err := c.get(ctx, path, nil, &rows); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Symbol != "" {
			symbols = append(symbols, r.Symbol)
		}
	}
	return symbols, nil
}
