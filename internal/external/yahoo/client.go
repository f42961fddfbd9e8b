package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

// ProviderName is the chain name of this client
const ProviderName = "yahoo"

// Client handles communication with the public Yahoo Finance endpoints
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL points the client at another host (tests use httptest)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithClock injects the time source used to build history windows
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log.ForModule("yahoo"),
		baseURL:    "https://query1.finance.yahoo.com",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches path and decodes the body into out
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}
