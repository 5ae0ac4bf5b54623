package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Writers without a file descriptor
// never are.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w.
//
// NO_COLOR and TERM=dumb turn colors off. CLICOLOR_FORCE, set to anything
// but "0", turns them on for non-terminals such as `claudesync watch | less -R`.
// Otherwise colors follow IsTTY.
func SupportsColor(w io.Writer) bool {
	return colorAllowed(IsTTY(w))
}

func colorAllowed(isTTY bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	if force, ok := os.LookupEnv("CLICOLOR_FORCE"); ok && force != "0" {
		return true
	}
	return isTTY
}
