// Copyright (c) 2026 Gatekeep. All rights reserved.

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuminh-lab/gatekeep/internal/platform/apperr"
)

/*
TestConstructors verifies each named constructor produces the expected code
and HTTP status.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperr.AppError
		wantCode   string
		wantStatus int
	}{
		{"not_found", apperr.NotFound("User"), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", apperr.Conflict("taken"), "CONFLICT", http.StatusConflict},
		{"validation", apperr.ValidationError("bad"), "VALIDATION_ERROR", http.StatusBadRequest},
		{"rate_limited", apperr.RateLimited("slow down"), "TOO_MANY_REQUESTS", http.StatusTooManyRequests},
		{"internal", apperr.Internal(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"custom", apperr.New(http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired"), "TOKEN_EXPIRED", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
		})
	}
}

/*
TestUnwrap verifies errors.Is traverses the cause chain through an AppError.
*/
func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Internal(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "An unexpected error occurred", err.Error())
}

/*
TestAs verifies extraction of an AppError from a wrapped chain.
*/
func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("service layer: %w", apperr.NotFound("User"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)

	assert.Nil(t, apperr.As(errors.New("plain")))
	assert.True(t, apperr.IsAppError(wrapped))
	assert.False(t, apperr.IsAppError(errors.New("plain")))
}

/*
TestIsNotFound distinguishes absence from other failures.
*/
func TestIsNotFound(t *testing.T) {
	assert.True(t, apperr.IsNotFound(apperr.NotFound("User")))
	assert.True(t, apperr.IsNotFound(fmt.Errorf("lookup: %w", apperr.NotFound("Role"))))
	assert.False(t, apperr.IsNotFound(apperr.Conflict("taken")))
	assert.False(t, apperr.IsNotFound(errors.New("boom")))
}
