package apperr

import (
	"errors"
	"net/http"
)

// AppError is a caller-correctable domain error carrying an HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Common errors
var (
	ErrUnauthenticated = NewAppError(http.StatusUnauthorized, "Caller identity is required")
	ErrNotFound        = NewAppError(http.StatusNotFound, "Resource not found")
	ErrForbidden       = NewAppError(http.StatusForbidden, "Access denied")
	ErrUnavailable     = NewAppError(http.StatusServiceUnavailable, "Service temporarily unavailable")
)

// Helper functions to create specific errors

// Validation flags malformed input; nothing is persisted.
func Validation(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, msg)
}

// Forbidden flags a caller that is not a participant/recipient.
func Forbidden(msg string) *AppError {
	return NewAppError(http.StatusForbidden, msg)
}

// NotFound flags an unknown id.
func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, msg)
}

// Conflict flags a lost write race; the first writer wins.
func Conflict(msg string) *AppError {
	return NewAppError(http.StatusConflict, msg)
}

// RateLimited flags an exceeded submission quota.
func RateLimited(msg string) *AppError {
	return NewAppError(http.StatusTooManyRequests, msg)
}

// Unavailable flags exhausted retries against storage or delivery.
func Unavailable(msg string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, msg)
}

// StatusOf resolves the HTTP status for err, defaulting to 500 for anything
// that is not an AppError.
func StatusOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return http.StatusInternalServerError
}
