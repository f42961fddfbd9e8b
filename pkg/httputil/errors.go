package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.RateLimited() {
		return fmt.Sprintf("%s: rate limited (HTTP %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// RateLimited reports whether the provider throttled the request
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRateLimited reports whether err (or anything it wraps) is a 429
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.RateLimited()
}

// redactURL drops credential query parameters before logging
func redactURL(u *url.URL) string {
	q := u.Query()
	redacted := false
	for _, key := range []string{"apikey", "api_key", "token"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			redacted = true
		}
	}
	if !redacted {
		return u.String()
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}
