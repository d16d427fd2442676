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
			appError:    NewAppValidationError("start must not be empty"),
			wantMessage: "[VALIDATION] start must not be empty",
		},
		{
			name:        "error with cause",
			appError:    NewParsingError("row 7", errors.New("invalid date \"x\"")),
			wantMessage: "[PARSING] row 7: invalid date \"x\"",
		},
		{
			name:        "not found",
			appError:    NewNotFoundError("chart"),
			wantMessage: "[NOT_FOUND] chart not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("no such file")
	err := NewStorageError("failed to open dataset", sentinel)

	assert.True(t, errors.Is(err, sentinel))

	wrapped := fmt.Errorf("startup: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewConfigError("invalid port", nil).
		WithContext("port", 0).
		WithContext("source", "env")

	assert.Equal(t, 0, err.Context["port"])
	assert.Equal(t, "env", err.Context["source"])
}

func TestAppError_WithContext_NilContext(t *testing.T) {
	err := &AppError{Type: ErrTypeRender, Message: "chart"}
	err.WithContext("chart", "monthly")
	assert.Equal(t, "monthly", err.Context["chart"])
}

func TestConstructors_SetType(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *AppError
		want ErrorType
	}{
		{NewParsingError("p", cause), ErrTypeParsing},
		{NewStorageError("s", cause), ErrTypeStorage},
		{NewAppValidationError("v"), ErrTypeValidation},
		{NewNotFoundError("n"), ErrTypeNotFound},
		{NewConfigError("c", cause), ErrTypeConfig},
		{NewRenderError("r", cause), ErrTypeRender},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}
