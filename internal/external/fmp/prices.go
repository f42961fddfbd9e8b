package fmp

import (
	"context"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/hunter/internal/contracts"
)

type historicalResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"historical"`
}

// History fetches daily bars covering the lookback window
func (c *Client) History(ctx context.Context, symbol string, lookback contracts.Lookback) (*contracts.PriceSeries, error) {
	now := time.Now()
	params := url.Values{}
	params.Set("from", lookback.Since(now).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	var resp historicalResponse
	if err := c.get(ctx, "/historical-price-full/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}

	bars := make([]contracts.PriceBar, 0, len(resp.Historical))
	for _, h := range resp.Historical {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil || h.Close <= 0 {
			continue
		}
		bars = append(bars, contracts.PriceBar{
			Date:   date,
			Open:   h.Open,
			High:   h.High,
			Low:    h.Low,
			Close:  h.Close,
			Volume: h.Volume,
		})
	}

	// FMP returns newest first
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}, nil
}
