package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Error values returned by frames and transformers. Returned errors normally wrap one of
// these with additional details, so matching should be done with errors.Is().
var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrNotFitted       = errors.New("transformer not fitted, Fit() must be called first")
	ErrTypeMismatch    = errors.New("column type mismatch")
	ErrInvalidConfig   = errors.New("invalid transformer config")
	ErrZeroDivisor     = errors.New("division by zero")
	ErrUnknownCategory = errors.New("category not seen during fit")
	ErrInvalidFrame    = errors.New("invalid frame")
)

// ColumnNotFound returns an ErrColumnNotFound error naming the missing columns.
func ColumnNotFound(names ...string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(names, ", "))
}

// TypeMismatch returns an ErrTypeMismatch error for column c, where want describes the
// accepted kind(s).
func TypeMismatch(c *Column, want string) error {
	return fmt.Errorf("%w: column %q is %s, want %s", ErrTypeMismatch, c.Name, c.Kind, want)
}

// InvalidConfig returns an ErrInvalidConfig error with the provided details.
func InvalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
