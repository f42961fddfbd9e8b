package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/hunter/internal/contracts"
)

// ErrDataUnavailable is matched by errors.Is for any exhausted chain
var ErrDataUnavailable = errors.New("data unavailable")

// ErrEmptyPayload marks a 2xx response that carried nothing usable
var ErrEmptyPayload = errors.New("empty payload")

// TransientError is one provider's failure. The chain absorbs it and moves on.
type TransientError struct {
	Provider string
	Kind     contracts.DataKind
	Subject  string // symbol or category
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Provider, e.Kind, e.Subject, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// DataUnavailableError is returned when every provider in a chain failed
type DataUnavailableError struct {
	Kind     contracts.DataKind
	Subject  string
	Attempts []*TransientError
}

func (e *DataUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s %s: no providers configured", e.Kind, e.Subject)
	}
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Provider
	}
	return fmt.Sprintf("%s %s unavailable after %s: %v",
		e.Kind, e.Subject, strings.Join(names, ", "), e.Attempts[len(e.Attempts)-1].Err)
}

// Is makes errors.Is(err, ErrDataUnavailable) work
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// Unwrap exposes the last attempt so callers can see why the chain ended
func (e *DataUnavailableError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// IsDataUnavailable reports whether err is an exhausted chain
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
