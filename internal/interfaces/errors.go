// Package interfaces provides service interfaces for dependency injection.
package interfaces

import "errors"

// Sentinel errors shared across service boundaries. Handlers map these to
// HTTP status codes with errors.Is; no layer inspects error strings.
var (
	// ErrInvalidInput indicates a request failed validation before any
	// upstream call was made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAPIKey indicates the Places API credential is not
	// configured. Raised at the client boundary, never detected by
	// string matching.
	ErrMissingAPIKey = errors.New("places api key is not configured")

	// ErrUpstream indicates the places provider returned a non-success
	// status or could not be reached.
	ErrUpstream = errors.New("places provider error")

	// ErrCacheMiss indicates no live entry exists for the requested key.
	ErrCacheMiss = errors.New("cache miss")
)
