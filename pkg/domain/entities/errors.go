package entities

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")
)

// ErrDuplicate is a validation error raised by a unique key
var ErrDuplicate = fmt.Errorf("%w: duplicate key", ErrValidation)

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalidf wraps ErrValidation with a formatted message
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
