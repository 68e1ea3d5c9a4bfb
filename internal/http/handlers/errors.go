// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes provide
// clients with a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly
//     noted.
//   - Generic codes (e.g., bad_request, not_found) mirror common HTTP status
//     semantics to aid interoperability.
//   - Domain-specific codes (e.g., no_subject, signin_needed) are reserved for
//     business-logic outcomes that cannot be conveyed by status alone.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:

	// ErrCodeNoSubject means the classifier found nothing usable in the
	// submitted text.
	ErrCodeNoSubject = "no_subject"

	// ErrCodeSigninNeeded is the anonymous flavor of rate exhaustion:
	// signing in grants a higher budget.
	ErrCodeSigninNeeded = "signin_needed"

	// ErrCodeReachMaximized is the authenticated flavor of rate
	// exhaustion: the budget resets when the window rolls forward.
	ErrCodeReachMaximized = "reach_maximized"

	ErrCodeSubmitFailed     = "submit_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
