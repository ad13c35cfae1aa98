// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Input errors, fail fast before any lookup
	ErrChainNotSupported = errors.New("chain not supported")
	ErrInvalidAddress    = errors.New("invalid address format")

	// Provider errors
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrProviderTimeout     = errors.New("provider request timed out")
	ErrExplorerNotFound    = errors.New("no explorer configured for chain")

	// Report errors
	ErrReportNotFound = errors.New("report not found")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrAPIKeyRevoked      = errors.New("api key revoked")
	ErrTokenExpired       = errors.New("token expired")
)

// New returns a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
