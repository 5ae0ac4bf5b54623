// Package logging provides structured logging for the claudesync CLI using slog.
//
// Text output goes through [Handler], which colors levels and keys when the
// destination is a terminal. JSON output uses the standard library handler.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("linked", "category", "skills", "name", "review")
//
// The CLI stores its logger on the command context with [NewContext] and
// packages retrieve it with [FromContext].
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
