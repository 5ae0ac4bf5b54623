package doctor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestSourceLayoutCheck(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		want    Severity
		message string
	}{
		{
			name: "complete bundle",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				mkdirs(t, root, "commands", "rules", "skills")
				return root
			},
			want:    SeverityPass,
			message: "all category directories present",
		},
		{
			name: "partial bundle",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				mkdirs(t, root, "skills")
				return root
			},
			want:    SeverityInfo,
			message: "missing commands, rules (treated as empty)",
		},
		{
			name:    "empty directory",
			setup:   func(t *testing.T) string { return t.TempDir() },
			want:    SeverityWarning,
			message: "source root has no commands, rules or skills directory",
		},
		{
			name:  "missing root",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			want:  SeverityError,
		},
		{
			name: "root is a file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "bundle")
				require.NoError(t, os.WriteFile(path, nil, 0o600))
				return path
			},
			want: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSourceLayoutCheck(tt.setup(t))
			result := c.Run(t.Context())

			assert.Equal(t, "source-layout", result.Name)
			assert.Equal(t, "source", result.Category)
			assert.Equal(t, tt.want, result.Status, result.Message)
			if tt.message != "" {
				assert.Equal(t, tt.message, result.Message)
			}
		})
	}
}

func TestConfigRootCheck_MissingIsFixable(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".claude")
	c := NewConfigRootCheck(root)

	result := c.Run(t.Context())
	assert.Equal(t, SeverityInfo, result.Status)
	assert.True(t, result.Fixable)
	require.True(t, c.CanFix())

	fixes := c.Fix(t.Context())
	require.Len(t, fixes, 4)
	for _, f := range fixes {
		assert.True(t, f.Fixed, f.Description)
		assert.DirExists(t, f.Path)
	}

	result = c.Run(t.Context())
	assert.Equal(t, SeverityPass, result.Status, result.Message)
	assert.False(t, c.CanFix())
}

func TestConfigRootCheck_PartiallyPresent(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "commands")
	c := NewConfigRootCheck(root)

	result := c.Run(t.Context())

	assert.Equal(t, SeverityInfo, result.Status)
	assert.Equal(t, []string{filepath.Join(root, "rules"), filepath.Join(root, "skills")}, result.Details["missing"])
}

func TestConfigRootCheck_NotADirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "skills"), nil, 0o600))
	mkdirs(t, root, "commands", "rules")

	result := NewConfigRootCheck(root).Run(t.Context())
	assert.Equal(t, SeverityError, result.Status)
	assert.Contains(t, result.Message, "not a directory")

	file := filepath.Join(t.TempDir(), ".claude")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	result = NewConfigRootCheck(file).Run(t.Context())
	assert.Equal(t, SeverityError, result.Status)
}

func TestConfigRootCheck_ReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	mkdirs(t, root, "commands", "rules", "skills")
	require.NoError(t, os.Chmod(filepath.Join(root, "rules"), 0o555))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "rules"), 0o755) })

	result := NewConfigRootCheck(root).Run(t.Context())

	assert.Equal(t, SeverityError, result.Status)
	assert.Equal(t, "chmod u+w "+filepath.Join(root, "rules"), result.FixHint)
}

func TestSymlinkSupportCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require developer mode on Windows")
	}
	dir := t.TempDir()

	result := NewSymlinkSupportCheck(filepath.Join(dir, "not", "yet", "created")).Run(t.Context())

	assert.Equal(t, SeverityPass, result.Status, result.Message)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe must be cleaned up")
}
