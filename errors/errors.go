// Package errors provides error types and handling for object store operations.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable classification of a storage failure.
// Callers branch on codes rather than on error strings.
type Code string

// Error codes surfaced across the public API.
const (
	// CodeNotFound indicates the requested object or upload session does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodePreconditionFailed indicates a conditional write was rejected (HTTP 412).
	CodePreconditionFailed Code = "PRECONDITION_FAILED"

	// CodeNetwork indicates a transport-level failure (connection refused,
	// timeout, DNS). Errors with this code are always retryable.
	CodeNetwork Code = "NETWORK_ERROR"

	// CodeInternal indicates an unexpected non-2xx response from the provider.
	CodeInternal Code = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the caller supplied invalid parameters.
	CodeInvalidInput Code = "INVALID_INPUT"
)

// Error represents a storage operation error with context about the
// operation that failed. It is the sole error type surfaced by the
// public API.
type Error struct {
	// Code is the machine-readable error classification
	Code Code

	// Op is the operation that failed (e.g., "put", "get", "uploadPart")
	Op string

	// Key is the object key (or upload ID) the operation targeted, if any
	Key string

	// Message is an optional human-readable elaboration
	Message string

	// Details carries provider-reported context such as the HTTP status
	// code or the S3 error code from the response body
	Details map[string]string

	// Retryable reports whether a caller may reasonably retry the operation
	Retryable bool

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg = e.Message
	}
	switch {
	case e.Key != "" && e.Err != nil:
		return fmt.Sprintf("objectstore.%s %s: %s: %v", e.Op, e.Key, msg, e.Err)
	case e.Key != "":
		return fmt.Sprintf("objectstore.%s %s: %s", e.Op, e.Key, msg)
	case e.Err != nil:
		return fmt.Sprintf("objectstore.%s: %s: %v", e.Op, msg, e.Err)
	default:
		return fmt.Sprintf("objectstore.%s: %s", e.Op, msg)
	}
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage sets a human-readable message on an existing error.
func (e *Error) WithMessage(message string) *Error {
	e.Message = message
	return e
}

// WithDetail records a provider-reported detail such as "statusCode" or
// the S3 error code from a response body.
func (e *Error) WithDetail(name, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[name] = value
	return e
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithRetryable overrides the retryable flag.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// New creates a new Error with the given code and operation.
// Network errors are marked retryable by default.
func New(code Code, op string) *Error {
	return &Error{
		Code:      code,
		Op:        op,
		Retryable: code == CodeNetwork,
	}
}

// CodeOf extracts the error code from err, unwrapping as needed.
// It returns the empty string when err carries no *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound checks if an error indicates that an object or session was not found.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsPreconditionFailed checks if an error indicates a rejected conditional write.
func IsPreconditionFailed(err error) bool {
	return CodeOf(err) == CodePreconditionFailed
}

// IsInvalidInput checks if an error indicates invalid caller input.
func IsInvalidInput(err error) bool {
	return CodeOf(err) == CodeInvalidInput
}

// IsRetryable reports whether the operation that produced err may be retried.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
