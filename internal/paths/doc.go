// Package paths resolves the directories claudesync reads from and writes to.
//
// # Configuration Root
//
// The assistant reads its commands, rules and skills from a single
// configuration root under the user's home directory:
//
//	~/.claude/
//	├── commands/
//	├── rules/
//	└── skills/
//
// The home directory is taken from the HOME environment variable, falling
// back to [os.UserHomeDir] when HOME is unset.
//
// # Source Root
//
// The source root is the document bundle the links point into. When it is
// not configured explicitly, [LocateSourceRoot] derives it from the
// executable's own install location.
//
// # XDG Base Directory Compliance
//
// The tool's own configuration file lives under the XDG config home
// (github.com/adrg/xdg), overridable with CLAUDESYNC_CONFIG_DIR.
package paths
