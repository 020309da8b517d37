// Package apperr defines the service-wide error taxonomy. Handlers wrap
// failures in one of these kinds; the HTTP layer maps kinds to statuses in
// exactly one place.
package apperr

import (
	"errors"
	"fmt"
)

// Kind partitions every user-visible failure.
type Kind int

const (
	// Unauthorized: missing principal or insufficient role.
	Unauthorized Kind = iota + 1
	// Validation: schema violation with field-scoped messages.
	Validation
	// NotFound: id does not resolve, or resolves to a soft-deleted row.
	NotFound
	// Conflict: uniqueness violation, e.g. duplicate email at registration.
	Conflict
	// Storage: blob upload rejected by policy or by the backend.
	Storage
)

// Error carries a kind, a user-facing message and optional per-field
// validation messages.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Invalid builds a Validation error with field messages.
func Invalid(message string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// KindOf extracts the kind from err, or 0 when err is not an apperr.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
