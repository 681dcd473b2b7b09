package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrConflict, ErrServiceUnavail, ErrRateLimited,
	}
	for i := range sentinels {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("pool closed")}
	assert.Equal(t, "INTERNAL_ERROR: boom: pool closed", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "Restaurant not found"}
	assert.Equal(t, "NOT_FOUND: Restaurant not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNotFound(t *testing.T) {
	err := NotFound("Restaurant", "")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "Restaurant not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.ErrorIs(t, err, ErrNotFound)

	withID := NotFound("Restaurant", "saoji-delight")
	assert.Equal(t, "Restaurant saoji-delight not found", withID.Message)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"already exists", AlreadyExists("restaurant", "slug", "love-latte"), "ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists},
		{"conflict", Conflict("restaurants already exist"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"invalid input", InvalidInput("rating must be between 1 and 5"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("missing token"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("origin not allowed"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"rate limited", RateLimited("too many reviews"), "RATE_LIMITED", http.StatusTooManyRequests, ErrRateLimited},
		{"unavailable", Unavailable("search engine down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	err := Internal(fmt.Errorf("connection refused"))
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "get restaurant")
	assert.Equal(t, "get restaurant: resource not found", wrapped.Error())
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("Review", ""), http.StatusNotFound},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrServiceUnavail, http.StatusServiceUnavailable},
		{fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
