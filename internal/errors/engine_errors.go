package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory classifies engine failures so callers can distinguish
// "rejected by policy" from "engine malfunctioned".
type ErrorCategory string

const (
	// Deterministic rejects caused by malformed or out-of-policy input
	ErrorCategoryValidation ErrorCategory = "VALIDATION"

	// Failures of an external collaborator (portfolio value query,
	// persistence sink, notifier)
	ErrorCategoryDependency ErrorCategory = "DEPENDENCY"

	// Unexpected internal failures; always degraded to a safe default
	ErrorCategoryInternal ErrorCategory = "INTERNAL"

	// Invalid engine configuration detected at construction time
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
)

// EngineError is a categorized error with diagnostic context
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// WithField attaches the offending field name and value for diagnostics
func (e *EngineError) WithField(field string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[field] = value
	return e
}

// New creates a categorized engine error
func New(category ErrorCategory, component, operation, message string) *EngineError {
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with engine error context
func Wrap(err error, category ErrorCategory, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// Common constructors

func NewValidationError(component, operation, message string) *EngineError {
	return New(ErrorCategoryValidation, component, operation, message)
}

func NewDependencyError(component, operation string, err error) *EngineError {
	return Wrap(err, ErrorCategoryDependency, component, operation)
}

func NewInternalError(component, operation string, err error) *EngineError {
	return Wrap(err, ErrorCategoryInternal, component, operation)
}

func NewConfigurationError(component, operation, message string) *EngineError {
	return New(ErrorCategoryConfiguration, component, operation, message)
}

// CategoryOf returns the category of err if it is an EngineError,
// defaulting to INTERNAL for anything else
func CategoryOf(err error) ErrorCategory {
	var engineErr *EngineError
	if stderrors.As(err, &engineErr) {
		return engineErr.Category
	}
	return ErrorCategoryInternal
}

// IsValidation reports whether err is a policy/input reject
func IsValidation(err error) bool {
	return CategoryOf(err) == ErrorCategoryValidation
}

// IsDependency reports whether err came from an external collaborator
func IsDependency(err error) bool {
	return CategoryOf(err) == ErrorCategoryDependency
}
