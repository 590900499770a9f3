package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error categories.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("resource conflict")
	ErrUnprocessable  = errors.New("unprocessable entity")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrInternal       = errors.New("internal error")
)

// AppError represents an application error with HTTP status and error code.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Err        error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's code or category.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewAppError creates a new application error.
func NewAppError(code string, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NotFound creates a 404 error.
func NotFound(code, message string, err error) *AppError {
	return NewAppError(code, message, http.StatusNotFound, join(ErrNotFound, err))
}

// BadRequest creates a 400 error.
func BadRequest(code, message string, err error) *AppError {
	return NewAppError(code, message, http.StatusBadRequest, join(ErrBadRequest, err))
}

// Unauthorized creates a 401 error.
func Unauthorized(code, message string, err error) *AppError {
	return NewAppError(code, message, http.StatusUnauthorized, join(ErrUnauthorized, err))
}

// Conflict creates a 409 error.
func Conflict(code, message string, err error) *AppError {
	return NewAppError(code, message, http.StatusConflict, join(ErrConflict, err))
}

// Unprocessable creates a 422 error.
func Unprocessable(code, message string, err error) *AppError {
	return NewAppError(code, message, http.StatusUnprocessableEntity, join(ErrUnprocessable, err))
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(code, message string, err error) *AppError {
	if message == "" {
		message = "service temporarily unavailable"
	}
	return NewAppError(code, message, http.StatusServiceUnavailable, join(ErrServiceUnavail, err))
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return NewAppError("internal_error", "Internal server error", http.StatusInternalServerError, join(ErrInternal, err))
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func join(category, err error) error {
	if err == nil {
		return category
	}
	return errors.Join(category, err)
}
