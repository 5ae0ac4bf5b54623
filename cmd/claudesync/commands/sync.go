package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/logging"
	"github.com/thoreinstein/claudesync/internal/synchronizer"
	"github.com/thoreinstein/claudesync/pkg/fileutil"
)

var (
	syncDryRun     bool
	syncStrict     bool
	syncReportFile string
)

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

// addSyncFlags registers the synchronization flags on c. The root command
// and the sync subcommand share them.
func addSyncFlags(c *cobra.Command) {
	c.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false,
		"show what would change without touching the filesystem")
	c.Flags().BoolVar(&syncStrict, "strict", false,
		"exit non-zero when conflicts or failures are reported")
	c.Flags().StringVar(&syncReportFile, "report-file", "",
		"also write the report to this file (.yaml, .toml or .json)")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Link every source item into the configuration root",
	Long: `Synchronize the configuration root with the source bundle.

For commands, rules and skills in that order, sync removes dangling
symlinks from the target directory and then links each discovered item:

  created              no entry existed, a symlink was made
  unchanged            the symlink already pointed at the source
  updated              a symlink pointing elsewhere was replaced
  removed-broken-link  a dangling symlink was deleted
  conflict             a real file or directory occupies the name
  failed               the filesystem refused the operation

Conflicts and failures are reported without stopping the run. The exit
status is non-zero only when the category directories cannot be created,
or with --strict when anything was left unlinked.`,
	Example: `  # Synchronize using configured roots
  claudesync sync

  # Use an explicit bundle and destination
  claudesync sync --source ~/src/claude-bundle --config-root /tmp/claude

  # Keep a machine-readable record of the run
  claudesync sync --report-file ~/.cache/claudesync/last-run.json`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions()
	if err != nil {
		return err
	}
	opts.DryRun = syncDryRun

	rep, err := newSynchronizer(cmd).Synchronize(cmd.Context(), opts)
	if err != nil {
		return syncError(err, opts)
	}

	if err := newReporter(cmd).Sync(rep); err != nil {
		return errors.Wrap(err, "writing report")
	}

	if syncReportFile != "" {
		if err := fileutil.AtomicWrite(syncReportFile, fileutil.FormatFromPath(syncReportFile), rep); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "writing report file"), "Check that the report directory is writable")
		}
		logging.FromContext(cmd.Context()).Debug("report written", "path", syncReportFile)
	}

	return strictError(rep)
}

// syncError classifies a fatal synchronization error.
func syncError(err error, opts synchronizer.Options) error {
	if errors.Is(err, synchronizer.ErrMissingRoot) {
		return errors.NewUserError(err, "Pass --source and --config-root")
	}
	return errors.NewSystemError(err, "Check permissions on "+opts.ConfigRoot)
}

// strictError returns a user error under --strict when rep left items unlinked.
func strictError(rep *synchronizer.Report) error {
	if !syncStrict || (!rep.HasConflicts() && !rep.HasFailures()) {
		return nil
	}
	s := rep.Summary()
	err := errors.Wrapf(errors.ErrConflicts, "%d conflicts, %d failed", s.Conflicts, s.Failed)
	return errors.NewUserError(err, "Move the conflicting files aside or run: claudesync status")
}
