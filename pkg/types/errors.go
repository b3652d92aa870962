package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// The error taxonomy surfaced to API callers. Repositories and the directory
// service wrap these with context; the HTTP layer maps them with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
)

var (
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrTownNotFound    = fmt.Errorf("town %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrClaimNotFound   = fmt.Errorf("claim request %w", ErrNotFound)
)

// ValidationError describes a malformed or missing field. Fields maps the
// offending input name to a user facing message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func NewValidationError(message string, fields map[string]string) *ValidationError {
	if fields == nil {
		fields = map[string]string{}
	}
	return &ValidationError{Message: message, Fields: fields}
}

// FieldError is shorthand for a validation error about a single field.
func FieldError(field, message string) *ValidationError {
	return NewValidationError(message, map[string]string{field: message})
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
