package blueprint

import (
	"errors"
	"fmt"
)

// EmptyIdeaMessage is shown when a submission has no usable text
const EmptyIdeaMessage = "Please enter a business idea."

// ErrNotFound is returned when a blueprint id is unknown to the store
var ErrNotFound = errors.New("blueprint not found")

// ValidationError reports input rejected before any remote call
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GenerationErrorKind classifies generation failures
type GenerationErrorKind string

const (
	GenerationNetwork     GenerationErrorKind = "network"
	GenerationTimeout     GenerationErrorKind = "timeout"
	GenerationServerError GenerationErrorKind = "serverError"
)

// GenerationError reports a failed call to the generation service
type GenerationError struct {
	Kind   GenerationErrorKind
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("generation %s: %s", e.Kind, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation %s", e.Kind)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown inline next to the idea input
func (e *GenerationError) UserMessage() string {
	if e.Reason != "" {
		return e.Reason
	}
	switch e.Kind {
	case GenerationTimeout:
		return "The blueprint service took too long to respond. Please try again."
	case GenerationNetwork:
		return "Could not reach the blueprint service. Please check your connection."
	default:
		return "Failed to generate a valid business blueprint."
	}
}

// StoreErrorKind classifies remote store failures
type StoreErrorKind string

const (
	StoreNetwork StoreErrorKind = "network"
	StoreServer  StoreErrorKind = "server"
)

// StoreError reports a failed remote store operation
type StoreError struct {
	Op   string
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s (%s)", e.Op, e.Kind)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
