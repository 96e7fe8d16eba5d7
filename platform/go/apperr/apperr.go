// Package apperr holds the error taxonomy shared by services and the HTTP response formatter.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means no valid session was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the session is valid but lacks the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is wrapped by domain sentinels for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned when a caller exceeded an attempt budget.
	ErrRateLimited = errors.New("too many attempts")
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}

// ValidationError is returned when the input payload or parameters are invalid.
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (v *ValidationError) Error() string {
	if v.Message != "" {
		return v.Message
	}
	return "validation error"
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	fields := FieldErrors{}
	fields.Add(field, message)
	return &ValidationError{Message: message, Fields: fields}
}

// NotFound wraps ErrNotFound with the name of the missing resource, e.g. "email template not found".
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
