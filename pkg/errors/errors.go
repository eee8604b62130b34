package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden         = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized      = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation        = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidTransition = New("INVALID_TRANSITION", http.StatusConflict, "submission is not in a reviewable state")
	ErrUpstream          = New("UPSTREAM_FAILURE", http.StatusBadGateway, "directory store is unavailable")
	ErrDegraded          = New("DEGRADED_RESULT", http.StatusOK, "partial result: optional data could not be loaded")
	ErrRateLimited       = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Upstream wraps a raw store or transport error behind a generic message so
// backend internals never leak across the interface boundary. The original
// error stays reachable through Unwrap for logging.
func Upstream(err error, message string) *Error {
	if message == "" {
		message = ErrUpstream.Message
	}
	return Wrap(err, ErrUpstream.Code, ErrUpstream.Status, message)
}

// Degraded marks a non-fatal warning carried alongside a valid partial result.
func Degraded(err error, message string) *Error {
	if message == "" {
		message = ErrDegraded.Message
	}
	return Wrap(err, ErrDegraded.Code, ErrDegraded.Status, message)
}
