// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service errors.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("this action is unauthorized")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	// Callers must not tell the two apart in responses.
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
	// ErrUnknownEmail is the unknown-email flavour of ErrInvalidCredentials, kept for logging.
	ErrUnknownEmail = fmt.Errorf("%w: unknown email", ErrInvalidCredentials)

	ErrIncorrectPassword = errors.New("current password is incorrect")
)

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Message returns the first message in field order, mirroring the summary
// line clients show above the per-field list.
func (e *ValidationError) Message() string {
	if !e.HasErrors() {
		return "The given data was invalid."
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	first := e.Fields[fields[0]][0]

	n := 0
	for _, msgs := range e.Fields {
		n += len(msgs)
	}
	if n == 1 {
		return first
	}
	return fmt.Sprintf("%s (and %d more error%s)", first, n-1, plural(n-1))
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.ToLower(e.Message())
}

// orNil returns e if any field failed, nil otherwise.
func (e *ValidationError) orNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
