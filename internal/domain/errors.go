// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or request value fails validation.
	// This is usually wrapped by a *BadRequestError naming the offending field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// BadRequestError describes a client mistake tied to a single field or request parameter.
// Its message is safe to return to callers as-is.
type BadRequestError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match every bad request.
func (e *BadRequestError) Unwrap() error {
	return ErrValidation
}

// NewBadRequest builds a *BadRequestError for field with a formatted message.
func NewBadRequest(field, format string, args ...any) error {
	return &BadRequestError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsBadRequest reports whether err carries a *BadRequestError and returns it.
func AsBadRequest(err error) (*BadRequestError, bool) {
	var bre *BadRequestError
	if errors.As(err, &bre) {
		return bre, true
	}
	return nil, false
}
