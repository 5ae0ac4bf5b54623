package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used for the tool's own configuration.
const AppName = "claudesync"

// ClaudeDirName is the configuration root directory name under the home directory.
const ClaudeDirName = ".claude"

// Category directory names, shared by the source bundle and the configuration root.
const (
	CommandsDir = "commands"
	RulesDir    = "rules"
	SkillsDir   = "skills"
)

// Environment variables consulted during path resolution.
const (
	// EnvHome is the well-known variable pointing at the user's home directory.
	EnvHome = "HOME"

	// EnvConfigDir overrides the directory holding config.yaml.
	EnvConfigDir = "CLAUDESYNC_CONFIG_DIR"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrExecutableNotFound indicates the running executable could not be located.
	ErrExecutableNotFound = errors.New("executable path not found")
)

// DefaultDirPerm is the permission used for directories created in the configuration root.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// CategoryDirs returns the category directory names in processing order.
func CategoryDirs() []string {
	return []string{CommandsDir, RulesDir, SkillsDir}
}

// ResolveHome returns the user's home directory.
// HOME takes precedence; os.UserHomeDir is the fallback.
// Returns ErrHomeDirNotFound if neither yields a directory.
func ResolveHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.WithSecondaryError(ErrHomeDirNotFound, err)
	}
	return home, nil
}

// DefaultConfigRoot returns <home>/.claude.
func DefaultConfigRoot() (string, error) {
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ClaudeDirName), nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// AppConfigDir returns the directory holding claudesync's config.yaml.
// CLAUDESYNC_CONFIG_DIR takes precedence over <ConfigHome>/claudesync.
func AppConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(AppConfigDir(), "config.yaml")
}

// ExecutableDir returns the directory containing the running executable,
// with symlinks resolved so that a binary linked onto PATH still reports
// its real install location.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.WithSecondaryError(ErrExecutableNotFound, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// LocateSourceRoot returns the bundle directory for an executable installed
// in dir. The bundle is dir itself when it holds any category directory;
// otherwise its parent is tried, covering binaries installed in a bin/
// subdirectory of the bundle. dir is returned unchanged when neither matches.
func LocateSourceRoot(dir string) string {
	if HasCategoryDirs(dir) {
		return dir
	}
	parent := filepath.Dir(dir)
	if parent != dir && HasCategoryDirs(parent) {
		return parent
	}
	return dir
}

// HasCategoryDirs reports whether dir contains at least one of the
// commands, rules or skills directories.
func HasCategoryDirs(dir string) bool {
	for _, name := range CategoryDirs() {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
