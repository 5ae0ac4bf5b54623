package config

import (
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/pkg/fileutil"
)

// ErrUnknownKey indicates a key that is not part of the configuration.
var ErrUnknownKey = errors.New("unknown config key")

// Set parses raw for key, validates the resulting configuration, and
// stores the value in Viper. Extensions are comma-separated.
// Nothing is stored if validation fails.
func Set(key, raw string) error {
	if !slices.Contains(Keys(), key) {
		return errors.Wrapf(ErrUnknownKey, "%s (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	var value any
	switch key {
	case KeyVersion:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errors.Wrapf(ErrInvalidValue, "%s must be an integer: %q", key, raw)
		}
		value = n
	case KeyExtensions:
		value = SplitList(raw)
	default:
		value = strings.TrimSpace(raw)
	}

	cfg := Current()
	apply(cfg, key, value)
	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Mark(&ValidationError{Errs: errs}, errors.ErrInvalidConfig)
	}

	viper.Set(key, value)
	return nil
}

func apply(cfg *Config, key string, value any) {
	switch key {
	case KeyVersion:
		cfg.Version = value.(int)
	case KeySourceRoot:
		cfg.SourceRoot = value.(string)
	case KeyConfigRoot:
		cfg.ConfigRoot = value.(string)
	case KeyExtensions:
		cfg.Extensions = value.([]string)
	case KeySkillSuffix:
		cfg.SkillSuffix = value.(string)
	case KeySkillSubdir:
		cfg.SkillSubdir = value.(string)
	case KeyOnDuplicate:
		cfg.OnDuplicate = value.(string)
	}
}

// SplitList splits a comma-separated string, dropping blank elements.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Save writes the effective configuration to path atomically, creating the
// parent directory. The encoding follows the file extension.
func Save(path string) error {
	if err := fileutil.AtomicWrite(path, fileutil.FormatFromPath(path), Current()); err != nil {
		return errors.Wrapf(err, "writing config file %s", path)
	}
	return nil
}
