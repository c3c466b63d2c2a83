package core

import (
	"errors"
	"fmt"
)

// Kind classifies a service error so the HTTP boundary can map it to a
// status code. A Kind is itself an error, so callers can write
// errors.Is(err, core.ErrForbidden).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrUnauthenticated Kind = "unauthenticated"
	ErrForbidden       Kind = "forbidden"
	ErrNotFound        Kind = "not_found"
	ErrInvalidState    Kind = "invalid_state"
	ErrValidation      Kind = "validation"
)

// Error is a classified error carrying a message that is safe to show to
// API clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches both the Kind sentinel and identical *Error values.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// ErrAlreadyDecided is returned when a module request has left pending.
var ErrAlreadyDecided = &Error{Kind: ErrInvalidState, Message: "module request has already been decided"}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func unauthenticated(format string, args ...any) *Error {
	return newError(ErrUnauthenticated, format, args...)
}

func forbidden(format string, args ...any) *Error {
	return newError(ErrForbidden, format, args...)
}

func notFound(format string, args ...any) *Error {
	return newError(ErrNotFound, format, args...)
}

func validation(format string, args ...any) *Error {
	return newError(ErrValidation, format, args...)
}

// KindOf returns the Kind of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// PublicMessage returns the client-facing message of a classified error.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
