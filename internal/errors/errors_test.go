//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	assert.NotEqual(t, ErrValidation, ErrNotFound)
	assert.NotEqual(t, ErrValidation, ErrInternal)
	assert.NotEqual(t, ErrNotFound, ErrInternal)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "invalid value",
		Location: "refgraph.yaml:4",
		Field:    "moduleIds",
		Context:  map[string]string{"Route": "/about"},
		Hint:     "Use string or numeric",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: validation failed")
	assert.Contains(t, output, "Location: refgraph.yaml:4")
	assert.Contains(t, output, "Field: moduleIds")
	assert.Contains(t, output, "Route: /about")
	assert.Contains(t, output, "invalid value")
	assert.Contains(t, output, "Hint: Use string or numeric")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(
		"invalid value",
		"refgraph.yaml:4",
		"moduleIds",
		"Use string or numeric",
	)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "invalid value", detail.Message)
	assert.Equal(t, "refgraph.yaml:4", detail.Location)
	assert.Equal(t, "moduleIds", detail.Field)
	assert.Equal(t, "Use string or numeric", detail.Hint)
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "config check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "config check failed")
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("page file missing", "pages/about.tsx", "Check pages.routes")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "pages/about.tsx")
}
