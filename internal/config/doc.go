// Package config provides configuration management for the claudesync CLI.
//
// # Configuration File
//
// The default configuration file location is ~/.config/claudesync/config.yaml
// (or $CLAUDESYNC_CONFIG_DIR/config.yaml). Every key can also be set through
// the environment with the CLAUDESYNC_ prefix, e.g. CLAUDESYNC_SOURCE_ROOT.
//
//	version: 1
//	source_root: /opt/claude-bundle   # optional
//	config_root: /home/me/.claude     # optional
//	extensions:
//	  - .md
//	skill_suffix: -skill              # "" keeps directory names as-is
//	skill_subdir: skill
//	on_duplicate: conflict            # or overwrite
//
// # Loading Configuration
//
// Call [Init] once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if errors.Is(err, errors.ErrInvalidConfig) {
//	    // report validation failure
//	}
//
// An explicit path that does not exist is an error matching
// errors.ErrNotFound; with an empty path, a missing file means defaults.
//
// # Validation
//
// [Validate] returns every problem at once as [PathError] and [ValueError]
// values. [Load] and [Set] run it automatically.
package config
