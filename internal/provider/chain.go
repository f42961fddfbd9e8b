package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/pkg/logger"
)

// Request identifies what a chain should fetch
type Request struct {
	Subject  string // symbol or universe category
	Lookback contracts.Lookback
}

// Member is one provider in a chain
type Member[T any] struct {
	Name  string
	Fetch func(ctx context.Context, req Request) (T, error)
	// Empty reports a payload that arrived but holds no data. nil means never empty.
	Empty func(T) bool
	// Supports filters subjects (e.g. universe categories). nil means all.
	Supports func(subject string) bool
}

// Chain tries its members in strict priority order. The first success wins;
// any failure advances to the next member without retrying the same one.
// ⭐ SSOT: provider fallback 순서는 체인 구성에서만 결정
type Chain[T any] struct {
	kind    contracts.DataKind
	members []Member[T]
	timeout time.Duration
	logger  *logger.Logger
}

// NewChain creates a chain. timeout bounds each attempt; 0 disables it.
func NewChain[T any](kind contracts.DataKind, timeout time.Duration, log *logger.Logger, members ...Member[T]) *Chain[T] {
	return &Chain[T]{
		kind:    kind,
		members: members,
		timeout: timeout,
		logger:  log.ForModule("provider").WithField("kind", string(kind)),
	}
}

// Names returns the member names in priority order
func (c *Chain[T]) Names() []string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name
	}
	return names
}

// Supports reports whether any member serves the subject
func (c *Chain[T]) Supports(subject string) bool {
	for _, m := range c.members {
		if m.Supports == nil || m.Supports(subject) {
			return true
		}
	}
	return false
}

// Fetch returns the first successful payload and the name of the provider that served it
func (c *Chain[T]) Fetch(ctx context.Context, req Request) (T, string, error) {
	var zero T
	subject := req.Subject
	unavailable := &DataUnavailableError{Kind: c.kind, Subject: subject}

	for _, m := range c.members {
		if m.Supports != nil && !m.Supports(subject) {
			continue
		}
		if err := ctx.Err(); err != nil {
			unavailable.Attempts = append(unavailable.Attempts, &TransientError{
				Provider: m.Name, Kind: c.kind, Subject: subject, Err: err,
			})
			return zero, "", unavailable
		}

		value, err := c.attempt(ctx, m, req)
		if err == nil {
			return value, m.Name, nil
		}

		c.logger.WithProvider(m.Name).WithError(err).
			WithField("subject", subject).
			Debug("Provider failed, trying next")

		unavailable.Attempts = append(unavailable.Attempts, &TransientError{
			Provider: m.Name, Kind: c.kind, Subject: subject, Err: err,
		})
	}

	return zero, "", unavailable
}

func (c *Chain[T]) attempt(ctx context.Context, m Member[T], req Request) (value T, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	value, err = m.Fetch(ctx, req)
	if err != nil {
		return value, err
	}
	if m.Empty != nil && m.Empty(value) {
		return value, ErrEmptyPayload
	}
	return value, nil
}
