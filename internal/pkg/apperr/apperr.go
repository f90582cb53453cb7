// Package apperr defines the error taxonomy surfaced to API callers.
// All domain errors are terminal: none are retried internally, and each
// kind maps to exactly one HTTP status code at the transport boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error
type Kind int

const (
	// KindNotFound means the requested entity does not exist or is soft-deleted
	KindNotFound Kind = iota + 1
	// KindConflict means a state invariant blocked the operation
	KindConflict
	// KindForbidden means the caller is not entitled to the operation
	KindForbidden
	// KindInvalid means the input was malformed
	KindInvalid
)

// Error is a classified domain error with a caller-facing message
type Error struct {
	kind    Kind
	message string
}

func (e *Error) Error() string {
	return e.message
}

// Kind returns the error classification
func (e *Error) Kind() Kind {
	return e.kind
}

// NotFound creates a NotFound error
func NotFound(message string) error {
	return &Error{kind: KindNotFound, message: message}
}

// Conflict creates a Conflict error
func Conflict(message string) error {
	return &Error{kind: KindConflict, message: message}
}

// Forbidden creates a Forbidden error
func Forbidden(message string) error {
	return &Error{kind: KindForbidden, message: message}
}

// Invalid creates a validation error
func Invalid(message string) error {
	return &Error{kind: KindInvalid, message: message}
}

// KindOf returns the classification of err, or 0 when err is not a domain
// error (storage and transport failures stay unclassified and map to 500).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

// IsNotFound reports whether err is classified NotFound
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is classified Conflict
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsForbidden reports whether err is classified Forbidden
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// IsInvalid reports whether err is classified Invalid
func IsInvalid(err error) bool { return KindOf(err) == KindInvalid }

// HTTPStatus maps an error to its response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
