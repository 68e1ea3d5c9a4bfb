// Package services defines the business logic for query submission and
// resolution. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrQueryNotFound indicates that the requested query record does not
	// exist.
	ErrQueryNotFound = errors.New("query not found")

	// ErrEmptyQuery is returned when a submission contains no text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrQueryTooLong is returned when a submission exceeds the configured
	// length ceiling.
	ErrQueryTooLong = errors.New("query too long")

	// ErrNoSubject is returned when the classifier found no identifiable
	// subject in the query text.
	ErrNoSubject = errors.New("no identifiable subject")

	// ErrDataUnavailable is returned when the provider fetch failed or
	// returned nothing after a cache miss.
	ErrDataUnavailable = errors.New("entity data unavailable")
)

// RateLimitError reports an exhausted search budget. Authenticated
// distinguishes the user-facing remedy: signed-in callers wait for the
// window to roll, anonymous callers can sign in for a higher budget.
type RateLimitError struct {
	Authenticated bool
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Authenticated {
		return "usage limit exceeded, try again later"
	}
	return "usage limit exceeded, sign in for higher limits"
}

// AsRateLimitError unwraps err into a *RateLimitError when applicable.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// wrap annotates err with a short stage label while preserving its
// sentinel for errors.Is checks.
func wrap(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
