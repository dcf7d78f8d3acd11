package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrUnreachable    = errors.New("server unreachable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTimeout        = errors.New("request timeout")
	ErrMalformed      = errors.New("malformed server response")
	ErrNotConnected   = errors.New("not connected")
	ErrNoTrack        = errors.New("no track loaded")
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ServerError wraps a non-2xx HTTP status returned by the remote.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// IsServerError reports whether err is a ServerError, returning it if so.
func IsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// BatonError wraps an error with a user-friendly suggestion.
type BatonError struct {
	Err        error
	Suggestion string
}

func (e *BatonError) Error() string {
	return e.Err.Error()
}

func (e *BatonError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &BatonError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already a BatonError with suggestion
	var batonErr *BatonError
	if errors.As(err, &batonErr) && batonErr.Suggestion != "" {
		return batonErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrUnauthorized) || strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "invalid authentication token") {
		return "Check the token in your config, or run 'baton connect' to pair again"
	}

	if errors.Is(err, ErrUnreachable) || strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return "Make sure the Apple Music Remote server is running and on the same network"
	}

	if errors.Is(err, ErrTimeout) || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return "The server did not respond in time. Check your network and try again"
	}

	if errors.Is(err, ErrNotConnected) {
		return "Run 'baton connect' to find and pair with a server"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'baton connect' to set up your configuration"
	}

	if se, ok := IsServerError(err); ok && se.Status >= 500 {
		return "The server hit an internal error. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
