// Package errors defines the structured error types used across the affiliate
// gateway. Every failure the gateway can report maps to one of the sentinel
// constructors here, which carry an error code, an HTTP status and optional
// detail metadata through to the response envelope.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in response envelopes.
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeMissingCredential = "missing_credential"
	CodeUpstreamTransport = "upstream_transport_error"
	CodeUpstreamAuth      = "upstream_auth_error"
	CodeUpstreamBusiness  = "upstream_business_error"
	CodeRateLimited       = "upstream_rate_limited"
	CodeNotFound          = "not_found"
	CodeCache             = "cache_error"
	CodeInternal          = "internal_error"
)

// AppError is a structured application error.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	HTTPStatus int               `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithError returns a copy of the error carrying cause as its underlying error.
func (e *AppError) WithError(cause error) *AppError {
	clone := e.clone()
	clone.cause = cause
	return clone
}

// WithMessage returns a copy of the error with a more specific message.
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	clone := e.clone()
	clone.Message = fmt.Sprintf(format, args...)
	return clone
}

// WithDetail returns a copy of the error with an extra detail entry.
func (e *AppError) WithDetail(key, value string) *AppError {
	clone := e.clone()
	if clone.Details == nil {
		clone.Details = make(map[string]string)
	}
	clone.Details[key] = value
	return clone
}

func (e *AppError) clone() *AppError {
	details := make(map[string]string, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	if len(details) == 0 {
		details = nil
	}
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Details:    details,
		cause:      e.cause,
	}
}

// New creates a new AppError.
func New(code string, httpStatus int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Predefined errors. Handlers and services derive call-specific errors from
// these with WithMessage / WithDetail / WithError rather than constructing
// their own codes.
var (
	ErrValidation        = New(CodeValidation, http.StatusBadRequest, "request validation failed")
	ErrUnauthorized      = New(CodeUnauthorized, http.StatusUnauthorized, "missing or invalid API key")
	ErrMissingCredential = New(CodeMissingCredential, http.StatusServiceUnavailable, "upstream credentials are not configured")
	ErrUpstreamTransport = New(CodeUpstreamTransport, http.StatusBadGateway, "upstream request failed")
	ErrUpstreamAuth      = New(CodeUpstreamAuth, http.StatusBadGateway, "upstream rejected the request signature")
	ErrUpstreamBusiness  = New(CodeUpstreamBusiness, http.StatusBadGateway, "upstream returned a business error")
	ErrRateLimited       = New(CodeRateLimited, http.StatusTooManyRequests, "upstream rate limit exceeded")
	ErrNotFound          = New(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrCache             = New(CodeCache, http.StatusInternalServerError, "cache operation failed")
	ErrInternal          = New(CodeInternal, http.StatusInternalServerError, "internal server error")
)

// AsAppError extracts an AppError from err's chain, or wraps err as an
// internal error when it is not structured.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithError(err)
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
