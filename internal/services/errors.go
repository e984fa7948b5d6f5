// Package services defines the business logic for like requests, history
// queries and access control. This file centralizes service-level errors so
// they can be returned consistently and mapped to HTTP statuses by the
// handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrCooldownActive matches every *CooldownError via errors.Is.
	ErrCooldownActive = errors.New("cooldown active")

	// ErrUpstreamUnavailable is returned when no transport strategy reached
	// the provider.
	ErrUpstreamUnavailable = upstream.ErrUpstreamUnavailable

	// ErrPlayerUnresolved is returned when the provider answered but no
	// real nickname could be established for the player.
	ErrPlayerUnresolved = errors.New("player could not be resolved")

	// ErrPersistence is returned when the global history write fails.
	ErrPersistence = errors.New("history could not be saved")
)

// Access-related errors.
var (
	// ErrCodeRequired is returned when an access code is required but missing.
	ErrCodeRequired = errors.New("access code required")

	// ErrCodeNotFound indicates the access code does not exist.
	ErrCodeNotFound = errors.New("access code not found")

	// ErrCodeExpired indicates the access code is past its expiry and grace.
	ErrCodeExpired = errors.New("access code expired")

	// ErrIPNotAllowed is returned when the caller's address does not match
	// the code's allowed or bound address.
	ErrIPNotAllowed = errors.New("access code not valid from this address")

	// ErrClientNotFound indicates the requested client does not exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrInvalidInput covers malformed admin requests.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CooldownError reports how long the device must wait.
type CooldownError struct {
	Remaining int // whole seconds
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: retry in %ds", e.Remaining)
}

// Is makes errors.Is(err, ErrCooldownActive) succeed.
func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }
