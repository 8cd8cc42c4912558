package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewValidationError("validator", "validate_trade", "size must be positive")
	assert.Equal(t, "[VALIDATION:validator] validate_trade: size must be positive", err.Error())

	wrapped := NewDependencyError("validator", "get_portfolio_value", stderrors.New("timeout"))
	assert.Contains(t, wrapped.Error(), "DEPENDENCY")
	assert.Contains(t, wrapped.Error(), "timeout")
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrorCategoryDependency, "sink", "store_trade")

	assert.True(t, stderrors.Is(err, cause))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, ErrorCategoryValidation, CategoryOf(NewValidationError("c", "o", "m")))
	assert.Equal(t, ErrorCategoryConfiguration, CategoryOf(NewConfigurationError("c", "o", "m")))

	// Categorization survives further wrapping
	wrapped := fmt.Errorf("outer: %w", NewDependencyError("c", "o", stderrors.New("inner")))
	assert.True(t, IsDependency(wrapped))

	// Foreign errors default to INTERNAL
	assert.Equal(t, ErrorCategoryInternal, CategoryOf(stderrors.New("plain")))
}

func TestWithField(t *testing.T) {
	err := NewValidationError("engine", "update_position", "bad fill").
		WithField("symbol", "BTCUSDT").
		WithField("size", -1.0)

	assert.Equal(t, "BTCUSDT", err.Context["symbol"])
	assert.Equal(t, -1.0, err.Context["size"])
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorCategoryDependency, "c", "o"))
}
