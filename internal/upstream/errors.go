package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable is returned when every strategy in the chain failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidResponse marks a body without numeric like counters.
	ErrInvalidResponse = errors.New("invalid response from upstream")

	// ErrNotConfigured means the base URL or secret key is missing.
	ErrNotConfigured = errors.New("upstream not configured")
)

// StatusError is a non-2xx reply from an upstream hop.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}
