// Package errors provides utilities for creating, combining, and inspecting errors.
// It builds on the standard errors package and adds multi-error support via go-multierror.
package errors

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf creates a formatted error. Use %w to wrap another error.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message, preserving the original as a cause.
// If err is nil, returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Append combines errors into a multi-error. Nil errors are skipped.
func Append(err error, errs ...error) error {
	return multierror.Append(err, errs...).ErrorOrNil()
}

// Errors returns the individual errors of a multi-error, or a one element
// slice for any other non-nil error.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}

// Is reports whether err or any error in its chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to cast err to the type of target, returning true if successful.
func As(err error, target any) bool {
	return errors.As(err, target)
}
