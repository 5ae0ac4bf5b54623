package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/internal/errors"
)

// errOutOfSync is returned by status --exit-code when links need attention.
var errOutOfSync = errors.New("configuration root is out of sync")

var statusExitCode bool

func init() {
	statusCmd.Flags().BoolVar(&statusExitCode, "exit-code", false,
		"exit with status 1 when the configuration root is out of sync")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the link state of every source item",
	Long: `Inspect the configuration root without changing it.

Each discovered item is reported with its link state:

  valid     symlink to the current source
  absent    nothing at the target yet
  stale     symlink to some other existing path
  broken    dangling symlink
  conflict  a real file or directory, or a duplicate name

Symlinks in the category directories that no source item accounts for
are listed as unmanaged links.`,
	Example: `  # Show link state
  claudesync status

  # Use in scripts
  claudesync status --exit-code --quiet || claudesync sync`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions()
	if err != nil {
		return err
	}

	st, err := newSynchronizer(cmd).Inspect(cmd.Context(), opts)
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "inspecting configuration root"), "")
	}

	if err := newReporter(cmd).Status(st); err != nil {
		return errors.Wrap(err, "writing status")
	}

	if statusExitCode && !st.InSync() {
		return errors.NewUserError(errOutOfSync, "Run: claudesync sync")
	}
	return nil
}
