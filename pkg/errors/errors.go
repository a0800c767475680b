package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the user doesn't have permission
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a conflict with existing data
	ErrConflict = errors.New("conflict")

	// ErrTransport indicates the request never produced an HTTP response
	// (timeout, DNS failure, connection refused/reset)
	ErrTransport = errors.New("transport error")

	// ErrServer indicates a server-side failure (5xx)
	ErrServer = errors.New("server error")
)

// APIError is the uniform failure value for every backend operation.
// StatusCode is zero when the request failed before an HTTP response
// existed; callers branch on success/failure and, where needed, on the
// wrapped sentinel via errors.Is - never on concrete transport errors.
type APIError struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// NewHTTPError builds an APIError from a non-2xx response, wrapping the
// sentinel that matches the status code class.
func NewHTTPError(statusCode int, message string) *APIError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		cause:      sentinelForStatus(statusCode),
	}
}

// NewTransportError builds an APIError for a request that never reached
// the backend. The status code stays zero.
func NewTransportError(err error) *APIError {
	return &APIError{
		Message: err.Error(),
		cause:   fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// InvalidInputError creates an invalid input error with context, detected
// client-side before any request is made.
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

func sentinelForStatus(statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case statusCode == http.StatusForbidden:
		return ErrAccessDenied
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusConflict:
		return ErrConflict
	case statusCode >= 500:
		return ErrServer
	default:
		return ErrInvalidInput
	}
}

// StatusOf returns the HTTP status carried by err, or zero for transport
// and client-local failures.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
