package ferrors

import (
	"errors"
	"fmt"
)

// Error handling shared by the netinv packages

// Common error variables
var (
	ErrUnauthorized      = errors.New("session expired")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrChartSlotOccupied = errors.New("chart slot occupied")
	ErrResponseTooLarge  = errors.New("response too large")
)

// StatusError is returned by the inventory client for non-2xx answers
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Unwrap lets callers match any StatusError against ErrUnexpectedStatus
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Wrap wraps an error with a message
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// New creates a new error
func New(msg string) error {
	return errors.New(msg)
}

// Is checks if an error matches a target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As extracts an error of a specific type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
