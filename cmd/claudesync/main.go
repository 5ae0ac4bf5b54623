// Package main is the entry point for the claudesync CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/claudesync/cmd/claudesync/commands"
	"github.com/thoreinstein/claudesync/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *errors.ExitError
		if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		os.Exit(errors.ExitCode(err))
	}
}
