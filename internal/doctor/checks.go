package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/paths"
)

// SourceLayoutCheck verifies that the source root is a directory holding at
// least one category directory.
type SourceLayoutCheck struct {
	root string
}

var _ Check = (*SourceLayoutCheck)(nil)

// NewSourceLayoutCheck creates a check for the given source root.
func NewSourceLayoutCheck(root string) *SourceLayoutCheck {
	return &SourceLayoutCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *SourceLayoutCheck) Name() string {
	return "source-layout"
}

// Category returns the grouping for this check.
func (c *SourceLayoutCheck) Category() string {
	return "source"
}

// Run executes the source layout check.
func (c *SourceLayoutCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"source_root": c.root},
	}

	info, err := os.Stat(c.root)
	switch {
	case os.IsNotExist(err):
		result.Status = SeverityError
		result.Message = "source root does not exist: " + c.root
		result.FixHint = "pass --source or run: claudesync config set source_root <dir>"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat source root: %v", err)
		return result
	case !info.IsDir():
		result.Status = SeverityError
		result.Message = "source root is not a directory: " + c.root
		return result
	}

	var present, missing []string
	for _, dir := range paths.CategoryDirs() {
		if fi, err := os.Stat(filepath.Join(c.root, dir)); err == nil && fi.IsDir() {
			present = append(present, dir)
		} else {
			missing = append(missing, dir)
		}
	}
	result.Details["present"] = present
	result.Details["missing"] = missing

	switch {
	case len(present) == 0:
		result.Status = SeverityWarning
		result.Message = "source root has no commands, rules or skills directory"
		result.FixHint = "check that --source points at the bundle root"
	case len(missing) > 0:
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("missing %s (treated as empty)", strings.Join(missing, ", "))
	default:
		result.Status = SeverityPass
		result.Message = "all category directories present"
	}
	return result
}

// ConfigRootCheck verifies that the configuration root and its category
// directories exist and are writable. Missing directories are fixable.
type ConfigRootCheck struct {
	root    string
	missing []string
}

var (
	_ Check = (*ConfigRootCheck)(nil)
	_ Fixer = (*ConfigRootCheck)(nil)
)

// NewConfigRootCheck creates a check for the given configuration root.
func NewConfigRootCheck(root string) *ConfigRootCheck {
	return &ConfigRootCheck{root: root}
}

// Name returns the unique identifier for this check.
func (c *ConfigRootCheck) Name() string {
	return "config-root"
}

// Category returns the grouping for this check.
func (c *ConfigRootCheck) Category() string {
	return "filesystem"
}

// Run executes the configuration root check.
func (c *ConfigRootCheck) Run(_ context.Context) *CheckResult {
	c.missing = nil
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"config_root": c.root},
	}

	info, err := os.Stat(c.root)
	if err == nil && !info.IsDir() {
		result.Status = SeverityError
		result.Message = "config root exists but is not a directory: " + c.root
		result.FixHint = "move the file out of the way"
		return result
	}
	if err != nil && !os.IsNotExist(err) {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat config root: %v", err)
		return result
	}

	for _, dir := range append([]string{""}, paths.CategoryDirs()...) {
		path := filepath.Join(c.root, dir)
		fi, err := os.Stat(path)
		if os.IsNotExist(err) {
			c.missing = append(c.missing, path)
			continue
		}
		if err != nil || !fi.IsDir() {
			result.Status = SeverityError
			result.Message = "not a directory: " + path
			return result
		}
		if !isDirectoryWritable(path) {
			result.Status = SeverityError
			result.Message = "directory is not writable: " + path
			result.FixHint = "chmod u+w " + path
			return result
		}
	}

	if len(c.missing) > 0 {
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%d director(ies) will be created on first sync", len(c.missing))
		result.Details["missing"] = c.missing
		result.Fixable = true
		result.FixHint = "claudesync doctor --fix"
		return result
	}

	result.Status = SeverityPass
	result.Message = "config root and category directories are writable"
	return result
}

// CanFix returns true if Run found missing directories.
func (c *ConfigRootCheck) CanFix() bool {
	return len(c.missing) > 0
}

// Fix creates the missing directories.
func (c *ConfigRootCheck) Fix(_ context.Context) []FixResult {
	results := make([]FixResult, 0, len(c.missing))
	for _, path := range c.missing {
		res := FixResult{Path: path}
		if err := paths.EnsureDir(path, paths.DefaultDirPerm); err != nil {
			res.Description = fmt.Sprintf("failed to create directory: %v", err)
			res.Error = errors.Wrapf(err, "creating %s", path)
		} else {
			res.Fixed = true
			res.Description = "created directory"
		}
		results = append(results, res)
	}
	return results
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	tmpFile, err := os.CreateTemp(path, ".claudesync-doctor-*")
	if err != nil {
		return false
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)
	return true
}

// SymlinkSupportCheck verifies that symbolic links can be created next to
// the configuration root.
type SymlinkSupportCheck struct {
	dir string
}

var _ Check = (*SymlinkSupportCheck)(nil)

// NewSymlinkSupportCheck creates a check that probes dir, or its nearest
// existing ancestor.
func NewSymlinkSupportCheck(dir string) *SymlinkSupportCheck {
	return &SymlinkSupportCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *SymlinkSupportCheck) Name() string {
	return "symlink-support"
}

// Category returns the grouping for this check.
func (c *SymlinkSupportCheck) Category() string {
	return "filesystem"
}

// Run creates and removes a probe symlink.
func (c *SymlinkSupportCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"os": runtime.GOOS},
	}

	dir := existingAncestor(c.dir)
	probe, err := os.MkdirTemp(dir, ".claudesync-doctor-*")
	if err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("cannot probe symlink support in %s: %v", dir, err)
		return result
	}
	defer os.RemoveAll(probe)

	link := filepath.Join(probe, "link")
	if err := os.Symlink(probe, link); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot create symlinks in %s: %v", dir, err)
		if runtime.GOOS == "windows" {
			result.FixHint = "enable Developer Mode or run as administrator"
		}
		return result
	}

	result.Status = SeverityPass
	result.Message = "symlinks are supported"
	return result
}

func existingAncestor(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
