// Package errors holds the error vocabulary shared by repositories, services
// and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Repositories return these; services and handlers match
// them with errors.Is.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrRateLimited    = errors.New("rate limited")
)

// kind ties a sentinel to its wire code and HTTP status.
type kind struct {
	sentinel error
	code     string
	status   int
}

// kinds is ordered: HTTPStatus reports the first sentinel an error matches.
var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrAlreadyExists, "ALREADY_EXISTS", http.StatusConflict},
	{ErrConflict, "CONFLICT", http.StatusConflict},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{ErrRateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
}

func kindOf(sentinel error) kind {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return k
		}
	}
	return kind{sentinel: ErrInternal, code: "INTERNAL_ERROR", status: http.StatusInternalServerError}
}

// AppError is an error with a stable machine code, a client-safe message and
// the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func newAppError(sentinel error, message string) *AppError {
	k := kindOf(sentinel)
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFound creates a 404 error. The message reads "<Resource> not found",
// or "<Resource> <id> not found" when id is given.
func NotFound(resource, id string) *AppError {
	if id == "" {
		return newAppError(ErrNotFound, resource+" not found")
	}
	return newAppError(ErrNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

// AlreadyExists creates a 409 error for a duplicate unique value.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError(ErrAlreadyExists, fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

// Conflict creates a 409 error for state conflicts other than duplicates.
func Conflict(message string) *AppError { return newAppError(ErrConflict, message) }

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError { return newAppError(ErrInvalidInput, message) }

func Unauthorized(message string) *AppError { return newAppError(ErrUnauthorized, message) }

func Forbidden(message string) *AppError { return newAppError(ErrForbidden, message) }

func RateLimited(message string) *AppError { return newAppError(ErrRateLimited, message) }

// Unavailable creates a 503 error for a dependency that cannot be reached.
func Unavailable(message string) *AppError { return newAppError(ErrServiceUnavail, message) }

// Internal creates a 500 error. The cause is kept for logging but never
// rendered to clients.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap annotates err with message, preserving it for errors.Is/As.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps err to an HTTP status code. An *AppError keeps its own
// status; otherwise the first matching sentinel decides and anything else
// is a 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}
