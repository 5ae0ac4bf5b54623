package synchronizer

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudesync/internal/logging"
)

// fixture is a source bundle and configuration root in a temp directory.
type fixture struct {
	t      *testing.T
	source string
	config string
	sync   *Synchronizer
	policy DuplicatePolicy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require developer mode on Windows")
	}
	root := t.TempDir()
	return &fixture{
		t:      t,
		source: filepath.Join(root, "bundle"),
		config: filepath.Join(root, "home", ".claude"),
		sync:   New(WithLogger(logging.ForTest(t))),
	}
}

func (f *fixture) opts() Options {
	return Options{SourceRoot: f.source, ConfigRoot: f.config, OnDuplicate: f.policy}
}

func (f *fixture) run() *Report {
	f.t.Helper()
	report, err := f.sync.Synchronize(f.t.Context(), f.opts())
	require.NoError(f.t, err)
	return report
}

func (f *fixture) dryRun() *Report {
	f.t.Helper()
	opts := f.opts()
	opts.DryRun = true
	report, err := f.sync.Synchronize(f.t.Context(), opts)
	require.NoError(f.t, err)
	return report
}

// writeFile creates a file under root, creating parents.
func (f *fixture) writeFile(root string, rel ...string) string {
	f.t.Helper()
	path := filepath.Join(append([]string{root}, rel...)...)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte("# "+filepath.Base(path)+"\n"), 0o600))
	return path
}

// mkdir creates a directory under root.
func (f *fixture) mkdir(root string, rel ...string) string {
	f.t.Helper()
	path := filepath.Join(append([]string{root}, rel...)...)
	require.NoError(f.t, os.MkdirAll(path, 0o755))
	return path
}

// skill creates skills/<name>/SKILL.md, plus skills/<name>/skill/SKILL.md when nested.
func (f *fixture) skill(name string, nested bool) string {
	f.t.Helper()
	dir := f.mkdir(f.source, "skills", name)
	f.writeFile(dir, "SKILL.md")
	if nested {
		f.writeFile(dir, "skill", "SKILL.md")
	}
	return dir
}

// symlink creates a link in the configuration root.
func (f *fixture) symlink(referent string, rel ...string) string {
	f.t.Helper()
	path := filepath.Join(append([]string{f.config}, rel...)...)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.Symlink(referent, path))
	return path
}

func (f *fixture) readlink(rel ...string) string {
	f.t.Helper()
	dest, err := os.Readlink(filepath.Join(append([]string{f.config}, rel...)...))
	require.NoError(f.t, err)
	return dest
}

// outcomes indexes a report by "category/name". Later results for the same
// key overwrite earlier ones, so use outcomeList for duplicate-sensitive checks.
func outcomes(r *Report) map[string]Outcome {
	m := make(map[string]Outcome, len(r.Results))
	for _, res := range r.Results {
		m[string(res.Category)+"/"+res.Name] = res.Outcome
	}
	return m
}

func outcomeList(r *Report) []Outcome {
	out := make([]Outcome, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Outcome)
	}
	return out
}
