package models

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed is returned when the lookup request produced no usable HTTP response.
	ErrRequestFailed = errors.New("request failed")
	// ErrDecodingFailed is returned when a response body did not match the expected schema.
	ErrDecodingFailed = errors.New("decoding failed")

	ErrInvalidCountryName = errors.New("invalid country name")
	ErrInvalidCountryCode = errors.New("invalid country code")

	ErrInvalidDebounce       = errors.New("debounce interval must be positive")
	ErrInvalidFavoritesLimit = errors.New("favorites limit must be positive")
	ErrInvalidBaseURL        = errors.New("invalid countries base URL")
	ErrInvalidTimeout        = errors.New("timeout must not be negative")
	ErrInvalidProbeInterval  = errors.New("reachability interval must be positive")
	ErrInvalidProbe          = errors.New("unknown reachability probe")
	ErrInvalidCoordinate     = errors.New("invalid coordinate")
	ErrInvalidAuthorization  = errors.New("invalid location authorization")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionLimit    = errors.New("too many active sessions")
	ErrInvalidIndex    = errors.New("index out of range")
)

// StatusError is returned when the lookup API answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// NewStatusError creates a StatusError for the given HTTP status
func NewStatusError(statusCode int) *StatusError {
	return &StatusError{StatusCode: statusCode}
}

// StatusCodeOf returns the status carried by err, if any.
func StatusCodeOf(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}
