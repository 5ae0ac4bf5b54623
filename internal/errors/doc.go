// Package errors provides error handling conventions for the claudesync CLI.
//
// Constructors and wrapping helpers delegate to github.com/cockroachdb/errors
// so that every error carries a stack trace and a readable message chain.
// The package also defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrConflicts) {
//	    // at least one target could not be linked
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, conflicts with --strict)
//   - ExitSystem (2): System-related error (I/O, permissions)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports unwrapping via [Is] and [As]:
//
//	err := errors.NewSystemError(err, "Check permissions on ~/.claude")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
