package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/internal/errors"
)

var pruneDryRun bool

func init() {
	pruneCmd.Flags().BoolVarP(&pruneDryRun, "dry-run", "n", false,
		"list dangling links without removing them")
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove dangling symlinks from the configuration root",
	Long: `Run only the cleanup pass of a synchronization: every dangling
symlink directly inside commands/, rules/ and skills/ of the
configuration root is removed. Valid symlinks and real files are left
untouched and nothing new is linked.`,
	Example: `  # Remove dangling links
  claudesync prune

  # See what would be removed
  claudesync prune --dry-run`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions()
	if err != nil {
		return err
	}
	opts.DryRun = pruneDryRun

	rep, err := newSynchronizer(cmd).Prune(cmd.Context(), opts)
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "pruning configuration root"), "")
	}

	return errors.Wrap(newReporter(cmd).Sync(rep), "writing report")
}
