package synchronizer

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/claudesync/internal/linkfs"
)

const (
	// DefaultSkillSuffix is stripped from skill directory names.
	DefaultSkillSuffix = "-skill"

	// DefaultSkillSubdir is the nested directory that, when present, is
	// linked instead of the skill directory itself.
	DefaultSkillSubdir = "skill"
)

// NormalizeSkillName derives a skill's link name from its directory name by
// removing a trailing "-skill". A name that is exactly "-skill", or has no
// such suffix, is returned unchanged.
//
//	NormalizeSkillName("rust-sqlx-skill") // "rust-sqlx"
//	NormalizeSkillName("gemini")          // "gemini"
func NormalizeSkillName(raw string) string {
	return TrimSkillSuffix(raw, DefaultSkillSuffix)
}

// TrimSkillSuffix is NormalizeSkillName with a configurable suffix.
// An empty suffix leaves raw unchanged.
func TrimSkillSuffix(raw, suffix string) string {
	if suffix == "" || raw == suffix {
		return raw
	}
	return strings.TrimSuffix(raw, suffix)
}

// ResolveSkillSourcePath returns the path a skill's link should point at:
// skillDir/<subdir> when that is a directory, otherwise skillDir itself.
// An empty subdir means DefaultSkillSubdir.
func ResolveSkillSourcePath(fsys linkfs.FS, skillDir, subdir string) string {
	if subdir == "" {
		subdir = DefaultSkillSubdir
	}
	nested := filepath.Join(skillDir, subdir)
	if info, err := fsys.Stat(nested); err == nil && info.IsDir() {
		return nested
	}
	return skillDir
}
