// Package config provides configuration management for claudesync using Viper.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvPrefix prefixes every environment variable override, e.g.
// CLAUDESYNC_SOURCE_ROOT.
const EnvPrefix = "CLAUDESYNC"

// CurrentVersion is the only supported config file version.
const CurrentVersion = 1

// Keys recognized in the configuration file.
const (
	KeyVersion     = "version"
	KeySourceRoot  = "source_root"
	KeyConfigRoot  = "config_root"
	KeyExtensions  = "extensions"
	KeySkillSuffix = "skill_suffix"
	KeySkillSubdir = "skill_subdir"
	KeyOnDuplicate = "on_duplicate"
)

// Keys returns the configuration keys in display order.
func Keys() []string {
	return []string{KeyVersion, KeySourceRoot, KeyConfigRoot, KeyExtensions, KeySkillSuffix, KeySkillSubdir, KeyOnDuplicate}
}

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version" toml:"version" json:"version"`

	// SourceRoot is the bundle holding commands/, rules/ and skills/.
	// Empty means locate it next to the executable.
	SourceRoot string `mapstructure:"source_root" yaml:"source_root,omitempty" toml:"source_root,omitempty" json:"source_root,omitempty"`

	// ConfigRoot is the directory links are written to. Empty means $HOME/.claude.
	ConfigRoot string `mapstructure:"config_root" yaml:"config_root,omitempty" toml:"config_root,omitempty" json:"config_root,omitempty"`

	Extensions  []string `mapstructure:"extensions" yaml:"extensions" toml:"extensions" json:"extensions"`
	SkillSuffix string   `mapstructure:"skill_suffix" yaml:"skill_suffix" toml:"skill_suffix" json:"skill_suffix"`
	SkillSubdir string   `mapstructure:"skill_subdir" yaml:"skill_subdir" toml:"skill_subdir" json:"skill_subdir"`
	OnDuplicate string   `mapstructure:"on_duplicate" yaml:"on_duplicate" toml:"on_duplicate" json:"on_duplicate"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version:     CurrentVersion,
		Extensions:  []string{".md"},
		SkillSuffix: "-skill",
		SkillSubdir: "skill",
		OnDuplicate: "conflict",
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// Any previous Viper state, including an explicitly set config file, is discarded.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.AppConfigDir())

	// Environment variable support
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	def := Default()
	viper.SetDefault(KeyVersion, def.Version)
	viper.SetDefault(KeySourceRoot, "")
	viper.SetDefault(KeyConfigRoot, "")
	viper.SetDefault(KeyExtensions, def.Extensions)
	viper.SetDefault(KeySkillSuffix, def.SkillSuffix)
	viper.SetDefault(KeySkillSubdir, def.SkillSubdir)
	viper.SetDefault(KeyOnDuplicate, def.OnDuplicate)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns default values if no file is found and path is empty.
// The result is validated; validation failures match errors.ErrInvalidConfig.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		}
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
		// Implicit load with no file: defaults apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(&ValidationError{Errs: errs}, "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file Viper loaded, or the default write
// location when none was found.
func FileUsed() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return paths.ConfigFile()
}

// Current returns the effective configuration from Viper without reading
// or validating a file.
func Current() *Config {
	return &Config{
		Version:     viper.GetInt(KeyVersion),
		SourceRoot:  viper.GetString(KeySourceRoot),
		ConfigRoot:  viper.GetString(KeyConfigRoot),
		Extensions:  viper.GetStringSlice(KeyExtensions),
		SkillSuffix: viper.GetString(KeySkillSuffix),
		SkillSubdir: viper.GetString(KeySkillSubdir),
		OnDuplicate: viper.GetString(KeyOnDuplicate),
	}
}
