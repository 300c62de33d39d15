package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAuthError("bearer token mismatch"),
			wantMessage: "[AUTH] bearer token mismatch",
		},
		{
			name:        "error with cause",
			appError:    NewNetworkError("issuer request failed", fmt.Errorf("dial tcp: connection refused")),
			wantMessage: "[NETWORK] issuer request failed: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write failed", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("ingest: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := (&AppError{Type: ErrTypeValidation, Message: "bad"}).
		WithContext("license_id", "abc").
		WithContext("bytes", 12)

	assert.Equal(t, "abc", err.Context["license_id"])
	assert.Equal(t, 12, err.Context["bytes"])
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"direct match", NewNetworkError("x", nil), ErrTypeNetwork, true},
		{"wrapped match", fmt.Errorf("outer: %w", NewValidationError("x", nil)), ErrTypeValidation, true},
		{"different type", NewStorageError("x", nil), ErrTypeNetwork, false},
		{"plain error", errors.New("x"), ErrTypeNetwork, false},
		{"nil error", nil, ErrTypeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("bad store backend", nil)
	assert.Equal(t, ErrTypeConfig, err.Type)
	assert.NotNil(t, err.Context)
}
