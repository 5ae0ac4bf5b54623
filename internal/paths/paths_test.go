package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHome_FromEnv(t *testing.T) {
	t.Setenv(EnvHome, "/test/home")

	got, err := ResolveHome()
	require.NoError(t, err)
	assert.Equal(t, "/test/home", got)
}

func TestResolveHome_Fallback(t *testing.T) {
	t.Setenv(EnvHome, "")

	got, err := ResolveHome()
	if err != nil {
		// Some sandboxes have no passwd entry; the sentinel must still be reported.
		assert.ErrorIs(t, err, ErrHomeDirNotFound)
		return
	}
	assert.NotEmpty(t, got)
}

func TestDefaultConfigRoot(t *testing.T) {
	t.Setenv(EnvHome, "/test/home")

	got, err := DefaultConfigRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/test/home", ".claude"), got)
}

func TestAppConfigDir(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "/custom/dir")
		assert.Equal(t, "/custom/dir", AppConfigDir())
		assert.Equal(t, filepath.Join("/custom/dir", "config.yaml"), ConfigFile())
	})

	t.Run("xdg default", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		assert.Equal(t, filepath.Join(ConfigHome(), AppName), AppConfigDir())
	})
}

func TestConfigHome(t *testing.T) {
	got := ConfigHome()
	require.NotEmpty(t, got)
	assert.True(t, filepath.IsAbs(got), "ConfigHome() = %q, want absolute path", got)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(dir, 0))
	require.NoError(t, EnsureDir(dir, 0), "EnsureDir must be idempotent")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureDir(filepath.Join(blocker, "sub"), 0)
	assert.Error(t, err)
}

func TestLocateSourceRoot(t *testing.T) {
	t.Run("bundle root", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, SkillsDir), 0o755))

		assert.Equal(t, root, LocateSourceRoot(root))
	})

	t.Run("bin subdirectory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, CommandsDir), 0o755))
		bin := filepath.Join(root, "bin")
		require.NoError(t, os.Mkdir(bin, 0o755))

		assert.Equal(t, root, LocateSourceRoot(bin))
	})

	t.Run("no bundle", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "bin")
		require.NoError(t, os.Mkdir(dir, 0o755))

		assert.Equal(t, dir, LocateSourceRoot(dir))
	})
}

func TestHasCategoryDirs_IgnoresFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, RulesDir), []byte("not a dir"), 0o600))

	assert.False(t, HasCategoryDirs(root))
}

func TestExecutableDir(t *testing.T) {
	dir, err := ExecutableDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}

func TestCategoryDirs_Order(t *testing.T) {
	assert.Equal(t, []string{"commands", "rules", "skills"}, CategoryDirs())
}
