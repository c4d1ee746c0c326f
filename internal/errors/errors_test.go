package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "schema", errType: ErrTypeSchema, expected: "SCHEMA"},
		{name: "render", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewValidationError("empty header"),
			wantMessage: "[VALIDATION] empty header",
		},
		{
			name:        "error with cause",
			appError:    NewStorageError("failed to write cleaned CSV", fmt.Errorf("disk full")),
			wantMessage: "[STORAGE] failed to write cleaned CSV: disk full",
		},
		{
			name:        "not found",
			appError:    NewNotFoundError("input file data.csv"),
			wantMessage: "[NOT_FOUND] input file data.csv not found",
		},
		{
			name:        "schema",
			appError:    NewSchemaError("calories", "required column is missing"),
			wantMessage: `[SCHEMA] column "calories": required column is missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewParsingError("failed to read CSV", os.ErrNotExist)

	assert.True(t, errors.Is(err, os.ErrNotExist))

	wrapped := fmt.Errorf("clean: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeStorage, Message: "write"}
	err.WithContext("path", "out.csv").WithContext("rows", 3)

	assert.Equal(t, "out.csv", err.Context["path"])
	assert.Equal(t, 3, err.Context["rows"])
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("stage failed: %w", NewSchemaError("category", "missing"))

	assert.True(t, IsType(err, ErrTypeSchema))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeSchema))
	assert.False(t, IsType(nil, ErrTypeSchema))
}
