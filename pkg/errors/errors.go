package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and retry decisions.
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeConflict         Code = "CONFLICT"
	CodeDuplicate        Code = "DUPLICATE"
	CodeSignatureInvalid Code = "SIGNATURE_INVALID"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeDependency       Code = "DEPENDENCY_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error is the error type used across services. It carries a stable code,
// an internal message, and optional structured metadata for logs.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]any
	cause    error
}

// New builds an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a code and message. A nil err
// yields nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// WithMetadata attaches a key/value pair for structured logging.
func (e *Error) WithMetadata(key string, value any) *Error {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeInternal when err is untyped.
func CodeOf(err error) Code {
	if coded, ok := As(err); ok {
		return coded.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error code to its HTTP response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict, CodeDuplicate:
		return http.StatusConflict
	case CodeSignatureInvalid:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to API clients. Internal
// detail stays in logs.
func (c Code) PublicMessage() string {
	switch c {
	case CodeValidation:
		return "invalid request"
	case CodeNotFound:
		return "resource not found"
	case CodeUnauthorized:
		return "authentication required"
	case CodeForbidden:
		return "access denied"
	case CodeConflict:
		return "conflicting request"
	case CodeDuplicate:
		return "duplicate request"
	case CodeSignatureInvalid:
		return "invalid signature"
	case CodeRateLimited:
		return "too many requests"
	case CodeDependency:
		return "service temporarily unavailable"
	default:
		return "internal error"
	}
}

// Retryable reports whether a client may retry the same request.
func (c Code) Retryable() bool {
	return c == CodeDependency || c == CodeRateLimited
}

// DetailsAllowed reports whether structured details may be exposed to the
// client for this code.
func (c Code) DetailsAllowed() bool {
	return c == CodeValidation
}
