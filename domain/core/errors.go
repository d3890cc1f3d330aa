package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fatal input errors
	ErrSchema = errors.New("malformed input table")

	// Recoverable analyzer errors
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Run-level errors
	ErrTimeout     = errors.New("analysis deadline exceeded")
	ErrRunNotFound = errors.New("run not found")

	// Lookup errors
	ErrColumnNotFound = errors.New("column not found")
)

// Error constructors with context
func NewSchemaError(reason string) error {
	return fmt.Errorf("%w: %s", ErrSchema, reason)
}

func NewInsufficientDataError(stage string, have, need int) error {
	return fmt.Errorf("%w: %s has %d valid rows, needs %d", ErrInsufficientData, stage, have, need)
}

func NewTimeoutError(stage string) error {
	return fmt.Errorf("%w: exceeded while running %s", ErrTimeout, stage)
}

func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}
