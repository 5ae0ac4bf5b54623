// Package commands implements the CLI commands for claudesync.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/cmd"
	"github.com/thoreinstein/claudesync/internal/config"
	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/logging"
)

// annotationSkipConfigCheck marks commands that run even when the config
// file fails to load, such as the commands that create or diagnose it.
const annotationSkipConfigCheck = "claudesync/skip-config-check"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// logFileHandle is the open --log-file, closed after the command runs.
var logFileHandle *os.File

// configFile holds the value of the --config flag.
var configFile string

// sourceFlag and configRootFlag override the configured roots.
var (
	sourceFlag     string
	configRootFlag string
)

// jsonOutput selects JSON output for reports.
var jsonOutput bool

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: $XDG_CONFIG_HOME/claudesync/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "",
		"source bundle holding commands/, rules/ and skills/ (default: next to the executable)")
	rootCmd.PersistentFlags().StringVar(&configRootFlag, "config-root", "",
		"directory to link into (default: $HOME/.claude)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"output results as JSON")

	addSyncFlags(rootCmd)

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("claudesync version " + cmd.Summary() + "\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	_, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "claudesync",
	Short: "Link commands, rules and skills into ~/.claude",
	Long: `claudesync keeps an AI coding assistant's configuration directory
(~/.claude by default) in step with a bundle of Markdown commands, rules
and skills.

Every run ensures the commands/, rules/ and skills/ directories exist,
removes dangling symlinks, and links each source item into place. Links
that already point at the right file are left alone, links pointing
elsewhere are replaced, and real files are never touched.

Running claudesync with no subcommand performs a synchronization.`,
	Example: `  # Synchronize the bundle next to the executable into ~/.claude
  claudesync

  # Preview the changes without touching the filesystem
  claudesync --dry-run

  # Inspect the current links
  claudesync status

  See Also: claudesync doctor, claudesync config`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return closeLogFile()
	},
	RunE: runSync,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("CLAUDESYNC_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	if err := closeLogFile(); err != nil {
		return err
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	primary := logging.NewFormatHandler(logging.Format(logFormat), cmd.ErrOrStderr(), opts)

	var fileHandler slog.Handler
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		logFileHandle = f
		// File output uses JSON format
		fileHandler = slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		})
	}

	handler := logging.NewMultiHandler(primary, fileHandler)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// closeLogFile closes the --log-file opened by setupLogging, if any.
func closeLogFile() error {
	if logFileHandle == nil {
		return nil
	}
	f := logFileHandle
	logFileHandle = nil
	return errors.Wrap(f.Close(), "closing log file")
}

// checkConfig surfaces config load errors, except for commands that must
// work without a valid config file.
func checkConfig(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipConfigCheck] == "true" {
			return nil
		}
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// skipConfigCheck returns the annotation set for commands exempt from
// checkConfig.
func skipConfigCheck() map[string]string {
	return map[string]string{annotationSkipConfigCheck: "true"}
}

// Execute runs the root command. The log file is closed even when the
// command fails, which skips the post-run hooks.
func Execute() error {
	err := rootCmd.Execute()
	closeErr := closeLogFile()
	if err != nil {
		return errors.Wrap(err, "executing root command")
	}
	return closeErr
}
