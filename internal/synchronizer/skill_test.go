package synchronizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudesync/internal/linkfs"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"rust-sqlx-skill", "rust-sqlx"},
		{"foo-skill", "foo"},
		{"gemini", "gemini"},
		{"-skill", "-skill"},
		{"skill", "skill"},
		{"foo-skill-skill", "foo-skill"},
		{"foo-skills", "foo-skills"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeSkillName(tt.raw); got != tt.want {
				t.Errorf("NormalizeSkillName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTrimSkillSuffix(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		suffix string
		want   string
	}{
		{"custom suffix", "lint.agent", ".agent", "lint"},
		{"empty suffix", "foo-skill", "", "foo-skill"},
		{"exact suffix", ".agent", ".agent", ".agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimSkillSuffix(tt.raw, tt.suffix))
		})
	}
}

func TestResolveSkillSourcePath(t *testing.T) {
	fsys := linkfs.NewOS()
	root := t.TempDir()

	plain := filepath.Join(root, "plain-skill")
	require.NoError(t, os.MkdirAll(plain, 0o755))

	nested := filepath.Join(root, "nested-skill")
	require.NoError(t, os.MkdirAll(filepath.Join(nested, "skill"), 0o755))

	fileNamedSkill := filepath.Join(root, "file-skill")
	require.NoError(t, os.MkdirAll(fileNamedSkill, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fileNamedSkill, "skill"), nil, 0o600))

	custom := filepath.Join(root, "custom-skill")
	require.NoError(t, os.MkdirAll(filepath.Join(custom, "payload"), 0o755))

	assert.Equal(t, plain, ResolveSkillSourcePath(fsys, plain, ""))
	assert.Equal(t, filepath.Join(nested, "skill"), ResolveSkillSourcePath(fsys, nested, ""))
	assert.Equal(t, fileNamedSkill, ResolveSkillSourcePath(fsys, fileNamedSkill, DefaultSkillSubdir))
	assert.Equal(t, filepath.Join(custom, "payload"), ResolveSkillSourcePath(fsys, custom, "payload"))
	assert.Equal(t, custom, ResolveSkillSourcePath(fsys, custom, ""))
}
