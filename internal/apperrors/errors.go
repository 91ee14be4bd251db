package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// AppError is an error carrying an HTTP-aligned status code and a message
// that is safe to show to clients. Services classify lower-level failures
// into exactly one AppError kind; handlers pass Code and Message through
// unchanged.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Err holds the underlying cause, if any. Never serialized.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCause attaches the underlying error for logs and errors.Is checks
// while keeping the client-visible message unchanged.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewBadRequestError creates an AppError for malformed or invalid input.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

// NewUnauthorizedError creates an AppError for failed authentication.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message}
}

// NewNotFoundError creates an AppError for missing resources.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

// NewConflictError creates an AppError for duplicate resources or ambiguous
// provider linkage.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message}
}

// NewTooManyRequestsError creates an AppError for rate-limited operations.
func NewTooManyRequestsError(message string) *AppError {
	return &AppError{Code: http.StatusTooManyRequests, Message: message}
}

// NewInternalServerError creates an AppError for unexpected failures. The
// message must not leak internals; attach the cause with WithCause for logs.
func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}
