// Package errors contains the error helpers used throughout cemrc-sync.
// Errors are annotated with context as they're passed up the stack, and the
// original error can be recovered with RootCause.
package errors

import (
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// New returns an error with the given message.
func New(msg string) error {
	return stderrors.New(msg)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

type contextError struct {
	err     error
	context string
}

// WithContext annotates `err` with `context`. The resulting error prints as
// "context: err".
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{err: err, context: context}
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.err)
}

// Cause lets pkg/errors walk through the context chain.
func (err contextError) Cause() error {
	return err.err
}

func (err contextError) Unwrap() error {
	return err.err
}

// RootCause returns the error that was originally returned, before any
// context was added to it.
func RootCause(err error) error {
	return pkgerrors.Cause(err)
}

// Friendly is implemented by errors that have a message meant to be shown
// directly to the user, without any of the surrounding context.
type Friendly interface {
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

// NewFriendlyError creates an error whose message is formatted for the user.
func NewFriendlyError(template string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(template, args...)}
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// GetFriendlyMessage returns the friendly message of the first error in the
// chain that has one.
func GetFriendlyMessage(err error) (string, bool) {
	for err != nil {
		if friendly, ok := err.(Friendly); ok {
			return friendly.FriendlyMessage(), true
		}

		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return "", false
		}
		err = cause.Cause()
	}
	return "", false
}
