package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/internal/config"
	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/logging"
	"github.com/thoreinstein/claudesync/internal/paths"
	"github.com/thoreinstein/claudesync/internal/report"
	"github.com/thoreinstein/claudesync/internal/synchronizer"
)

// resolveOptions builds run options from flags, then the config file and
// environment, then the built-in defaults.
func resolveOptions() (synchronizer.Options, error) {
	cfg := config.Current()

	source, err := resolveSourceRoot(cfg)
	if err != nil {
		return synchronizer.Options{}, err
	}

	target := configRootFlag
	if target == "" {
		target = cfg.ConfigRoot
	}
	if target == "" {
		target, err = paths.DefaultConfigRoot()
		if err != nil {
			return synchronizer.Options{}, errors.NewUserError(err, "Set HOME or pass --config-root")
		}
	}

	policy, err := synchronizer.ParseDuplicatePolicy(cfg.OnDuplicate)
	if err != nil {
		return synchronizer.Options{}, errors.NewConfigError(errors.Mark(err, errors.ErrInvalidConfig))
	}

	return synchronizer.Options{
		SourceRoot:  source,
		ConfigRoot:  target,
		Extensions:  cfg.Extensions,
		SkillSuffix: cfg.SkillSuffix,
		// An explicit empty skill_suffix turns stripping off; unset keys
		// carry the default.
		KeepSkillSuffix: cfg.SkillSuffix == "",
		SkillSubdir:     cfg.SkillSubdir,
		OnDuplicate:     policy,
	}, nil
}

func resolveSourceRoot(cfg *config.Config) (string, error) {
	if sourceFlag != "" {
		return sourceFlag, nil
	}
	if cfg.SourceRoot != "" {
		return cfg.SourceRoot, nil
	}
	dir, err := paths.ExecutableDir()
	if err != nil {
		return "", errors.NewSystemError(err, "Pass the bundle location with --source")
	}
	return paths.LocateSourceRoot(dir), nil
}

// newSynchronizer returns a synchronizer logging through the command's logger.
func newSynchronizer(cmd *cobra.Command) *synchronizer.Synchronizer {
	return synchronizer.New(synchronizer.WithLogger(logging.FromContext(cmd.Context())))
}

// newReporter returns a reporter writing to the command's output in the
// format selected by --json.
func newReporter(cmd *cobra.Command) *report.Reporter {
	format := report.FormatText
	if jsonOutput {
		format = report.FormatJSON
	}
	r := report.NewReporter(cmd.OutOrStdout(), format)
	r.SetQuiet(quiet)
	return r
}
