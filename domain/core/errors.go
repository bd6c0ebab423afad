package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors: fatal for the call, surfaced immediately
	ErrLengthMismatch      = errors.New("paired series have different lengths")
	ErrTypeMismatch        = errors.New("paired series element types disagree")
	ErrUnknownMethod       = errors.New("unknown discrepancy method")
	ErrUnknownMode         = errors.New("unknown resampling mode")
	ErrUnknownDistribution = errors.New("unknown true-score distribution")
	ErrEmptySeries         = errors.New("paired series are empty")
	ErrInvalidQuery        = errors.New("invalid sample-size query")

	// Search diagnostics: non-fatal, the caller widens the bounds
	ErrInfeasibleBounds = errors.New("sample-size bounds cannot bracket the target confidence")

	// Lookup errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// Error constructors with context
func NewLengthMismatchError(subLen, supLen int) error {
	return fmt.Errorf("%w: subordinate has %d elements, supervisor has %d", ErrLengthMismatch, subLen, supLen)
}

func NewTypeMismatchError(side string, index int, reason string) error {
	return fmt.Errorf("%w: %s element %d %s", ErrTypeMismatch, side, index, reason)
}

func NewUnknownMethodError(method string) error {
	return fmt.Errorf("%w %q: must be one of percent_difference, absolute_difference, absolute_percent_difference, simple_difference, percent_non_match", ErrUnknownMethod, method)
}

func NewInvalidQueryError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidQuery, field, reason)
}

// Error checking helpers

// IsInputError reports whether err is caused by bad caller input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrUnknownMode) ||
		errors.Is(err, ErrUnknownDistribution) ||
		errors.Is(err, ErrEmptySeries) ||
		errors.Is(err, ErrInvalidQuery)
}

// IsInfeasible reports whether err is a sample-size bounds diagnostic.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrInfeasibleBounds)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
