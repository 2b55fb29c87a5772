package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrNetwork             = errors.New("network failure")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrNotSignedIn         = errors.New("not signed in")
	ErrActionInFlight      = errors.New("action already in progress")
	ErrNotConfirmed        = errors.New("action not confirmed")
)

// ValidationError reports a client-side field check that failed before submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is a shorthand for building a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
