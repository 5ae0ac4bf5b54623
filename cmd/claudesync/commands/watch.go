package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/logging"
	"github.com/thoreinstein/claudesync/internal/synchronizer"
	"github.com/thoreinstein/claudesync/internal/watch"
)

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"quiet period after the last change before synchronizing")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Synchronize again whenever the source bundle changes",
	Long: `Run a synchronization, then watch the source bundle and synchronize
again after files are added, renamed or removed. Bursts of changes are
collapsed into one run after the --debounce period.

Only runs that change something are reported after the first one. Stop
watching with Ctrl-C.`,
	Example: `  # Keep ~/.claude in step while editing the bundle
  claudesync watch --source ~/src/claude-bundle`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions()
	if err != nil {
		return err
	}
	if watchDebounce <= 0 {
		return errors.NewUserError(errors.Newf("invalid debounce %s", watchDebounce), "Pass a positive duration, e.g. --debounce 500ms")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.FromContext(ctx)
	sync := newSynchronizer(cmd)
	reporter := newReporter(cmd)

	if err := watchSync(ctx, sync, opts, func(rep *synchronizer.Report) error {
		return reporter.Sync(rep)
	}); err != nil {
		return err
	}

	w, err := watch.New(opts.SourceRoot, watch.WithDebounce(watchDebounce), watch.WithLogger(logger))
	if err != nil {
		return errors.NewUserError(err, "Check the source root with: claudesync doctor")
	}
	defer w.Close()

	logger.Info("watching for changes", "source", opts.SourceRoot, "dirs", len(w.Watched()))

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		logger.Debug("resynchronizing", "changes", changed)
		return watchSync(ctx, sync, opts, func(rep *synchronizer.Report) error {
			if !rep.Changed() {
				return nil
			}
			return reporter.Sync(rep)
		})
	})
}

// watchSync runs one synchronization and hands the report to emit.
func watchSync(ctx context.Context, sync *synchronizer.Synchronizer, opts synchronizer.Options, emit func(*synchronizer.Report) error) error {
	rep, err := sync.Synchronize(ctx, opts)
	if err != nil {
		return syncError(err, opts)
	}
	return errors.Wrap(emit(rep), "writing report")
}
