package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (duplicate email, etc.)
	ErrConflict = errors.New("conflict")

	// ErrInvalid indicates a wrong OTP code, password or credentials
	ErrInvalid = errors.New("invalid")

	// ErrExpired indicates time-based invalidation of an OTP or token
	ErrExpired = errors.New("expired")

	// ErrInvalidState indicates a flow step invoked out of order
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRevoked indicates a refresh token reused after rotation or logout
	ErrRevoked = errors.New("revoked")

	// ErrTooManyRequests indicates the client exceeded a rate limit
	ErrTooManyRequests = errors.New("too many requests")

	// ErrUnavailable indicates a downstream store is unreachable
	ErrUnavailable = errors.New("unavailable")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// ConflictError creates a conflict error with context
func ConflictError(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrConflict)
}

// InvalidError creates an invalid credentials/code error with context
func InvalidError(what string) error {
	return fmt.Errorf("%s: %w", what, ErrInvalid)
}

// ExpiredError creates an expiry error with context
func ExpiredError(what string) error {
	return fmt.Errorf("%s: %w", what, ErrExpired)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// UnavailableError creates an unavailable error with context
func UnavailableError(store string, err error) error {
	return fmt.Errorf("%s: %v: %w", store, err, ErrUnavailable)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
