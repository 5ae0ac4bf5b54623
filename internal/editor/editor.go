// Package editor launches the user's preferred text editor on a file.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoEditor is returned when the editor setting names no command.
var ErrNoEditor = errors.New("no editor configured")

// Streams are the standard streams handed to the editor process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the user's preferred editor on path and waits for it to exit.
// $EDITOR may carry arguments, e.g. "code --wait".
func Open(ctx context.Context, path string, streams Streams) error {
	argv := strings.Fields(detectEditor())
	if len(argv) == 0 {
		return ErrNoEditor
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// detectEditor returns the editor command line. Fallback chain:
// $EDITOR → $VISUAL → nano → vi
func detectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}

	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	// vi is required by POSIX
	return "vi"
}
