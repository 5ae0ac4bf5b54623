package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested path or resource was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrConflicts indicates one or more targets were left unlinked because
	// a real file or a duplicate name occupied them.
	ErrConflicts = crdb.New("unresolved link conflicts")
)

// New returns an error with the given message and a stack trace.
func New(msg string) error {
	return crdb.NewWithDepth(1, msg)
}

// Newf returns a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return crdb.NewWithDepthf(1, format, args...)
}

// Wrap annotates err with msg. Wrap returns nil if err is nil.
func Wrap(err error, msg string) error {
	return crdb.WrapWithDepth(1, err, msg)
}

// Wrapf annotates err with a formatted message. Wrapf returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return crdb.WrapWithDepthf(1, err, format, args...)
}

// Is reports whether any error in err's chain matches reference.
func Is(err, reference error) bool {
	return crdb.Is(err, reference)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return crdb.As(err, target)
}

// Mark returns err annotated so that Is(result, reference) is true,
// without changing its message.
func Mark(err, reference error) error {
	return crdb.Mark(err, reference)
}

// Join returns an error wrapping errs, skipping nils. Join returns nil if
// every error is nil.
func Join(errs ...error) error {
	return crdb.JoinWithDepth(1, errs...)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: claudesync doctor",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code carried by err, ExitUser for any other
// non-nil error and ExitSuccess for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
