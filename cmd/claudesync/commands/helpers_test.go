package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudesync/internal/watch"
)

// env is an isolated source bundle, configuration root and config dir.
type env struct {
	source    string
	target    string
	configDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlink tests require a POSIX filesystem")
	}

	base := t.TempDir()
	e := &env{
		source:    filepath.Join(base, "bundle"),
		target:    filepath.Join(base, "home", ".claude"),
		configDir: filepath.Join(base, "config"),
	}
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("CLAUDESYNC_CONFIG_DIR", e.configDir)
	t.Setenv("CLAUDESYNC_DEBUG", "")
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"SOURCE_ROOT", "CONFIG_ROOT", "EXTENSIONS", "SKILL_SUFFIX", "SKILL_SUBDIR", "ON_DUPLICATE", "VERSION"} {
		t.Setenv("CLAUDESYNC_"+key, "")
		os.Unsetenv("CLAUDESYNC_" + key)
	}

	e.write(t, "commands/review.md", "# review")
	e.write(t, "rules/style.md", "# style")
	e.mkdir(t, "skills/foo-skill")
	e.mkdir(t, "skills/bar-skill/skill")
	return e
}

func (e *env) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(e.source, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *env) mkdir(t *testing.T, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(e.source, rel), 0o755))
}

// roots returns the flags pointing a command at this environment.
func (e *env) roots() []string {
	return []string{"--source", e.source, "--config-root", e.target}
}

func (e *env) link(t *testing.T, rel string) string {
	t.Helper()
	dest, err := os.Readlink(filepath.Join(e.target, rel))
	require.NoError(t, err)
	return dest
}

// resetFlags restores every package-level flag variable so that commands
// executed in sequence do not leak state into each other.
func resetFlags() {
	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	configFile = ""
	sourceFlag = ""
	configRootFlag = ""
	jsonOutput = false
	configLoadErr = nil

	syncDryRun = false
	syncStrict = false
	syncReportFile = ""
	statusExitCode = false
	pruneDryRun = false
	doctorFix = false
	doctorVerbose = false
	watchDebounce = watch.DefaultDebounce
	configInitForce = false
	configShowFmt = "yaml"

	resetCommand(rootCmd)
}

// resetCommand restores flag defaults and the context setupLogging stored
// on c and its subcommands, so the next Execute inherits the root context.
func resetCommand(c *cobra.Command) {
	c.SetContext(nil) //nolint:staticcheck // nil makes cobra reuse the parent context
	for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range c.Commands() {
		resetCommand(sub)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeContext(t, t.Context(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
