package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

const (
	// ProviderName is the chain name of this client
	ProviderName = "fmp"

	// DefaultBaseURL is the v3 API root
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"
)

// ErrMissingAPIKey is returned when the client was built without a key
var ErrMissingAPIKey = errors.New("fmp: api key not configured")

// APIError is FMP's {"Error Message": "..."} body, sent with a 200 status
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fmp %s: %s", e.Endpoint, e.Message)
}

// Client is a Financial Modeling Prep API client
// ⭐ SSOT: FMP 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new FMP client
func NewClient(httpClient *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.ForModule("fmp"),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// get performs a GET request to the API and decodes the JSON body
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	body, err := c.httpClient.GetBytes(ctx, fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode()))
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var apiErr struct {
			Message string `json:"Error Message"`
		}
		if json.Unmarshal(trimmed, &apiErr) == nil && apiErr.Message != "" {
			return &APIError{Endpoint: path, Message: apiErr.Message}
		}
	}

	if err := json.Unmarshal(trimmed, result); err != nil {
		return fmt.Errorf("malformed payload from %s: %w", path, err)
	}
	return nil
}
