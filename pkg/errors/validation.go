package errors

import (
	"slices"
	"strings"
)

// ValidatePositive checks that value is at least 1.
func ValidatePositive(code Code, name string, value int) error {
	if value < 1 {
		return New(code, "%s must be positive, got %d", name, value)
	}
	return nil
}

// ValidateRange checks that lo <= value <= hi.
func ValidateRange(code Code, name string, value, lo, hi int) error {
	if value < lo || value > hi {
		return New(code, "%s must be in %d..%d, got %d", name, lo, hi, value)
	}
	return nil
}

// ValidateProbability checks that p lies in [0, 1].
func ValidateProbability(name string, p float64) error {
	if !(p >= 0 && p <= 1) {
		return New(ErrCodeInvalidInput, "%s must be a probability in [0, 1], got %v", name, p)
	}
	return nil
}

// ValidateOneOf checks that value is one of allowed. The comparison is exact.
func ValidateOneOf(code Code, name, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return New(code, "%s must be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}
