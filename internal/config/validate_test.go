package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudesync/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"custom valid", func(c *Config) {
			c.SourceRoot = "/opt/bundle"
			c.ConfigRoot = "~/.claude"
			c.Extensions = []string{".md", ".mdc"}
			c.SkillSuffix = ""
			c.SkillSubdir = ""
			c.OnDuplicate = "overwrite"
		}, nil},
		{"empty policy means default", func(c *Config) { c.OnDuplicate = "" }, nil},
		{"version zero", func(c *Config) { c.Version = 0 }, []string{KeyVersion}},
		{"dot source root", func(c *Config) { c.SourceRoot = "./" }, []string{KeySourceRoot}},
		{"null byte config root", func(c *Config) { c.ConfigRoot = "/tmp/\x00" }, []string{KeyConfigRoot}},
		{"bare dot extension", func(c *Config) { c.Extensions = []string{"."} }, []string{KeyExtensions}},
		{"extension with separator", func(c *Config) { c.Extensions = []string{".md", "./x"} }, []string{KeyExtensions}},
		{"suffix with separator", func(c *Config) { c.SkillSuffix = "/skill" }, []string{KeySkillSuffix}},
		{"parent subdir", func(c *Config) { c.SkillSubdir = ".." }, []string{KeySkillSubdir}},
		{"multiple", func(c *Config) {
			c.Version = 3
			c.OnDuplicate = "merge"
		}, []string{KeyVersion, KeyOnDuplicate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := Validate(cfg)

			var fields []string
			for _, err := range errs {
				var pathErr *PathError
				var valueErr *ValueError
				switch {
				case errors.As(err, &pathErr):
					fields = append(fields, pathErr.Field)
				case errors.As(err, &valueErr):
					fields = append(fields, valueErr.Field)
				default:
					t.Errorf("unexpected error type %T: %v", err, err)
				}
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	require.Len(t, Validate(nil), 1)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Errs: []error{
		&ValueError{Field: KeyVersion, Value: "2", Err: ErrUnsupportedVersion},
		&PathError{Field: KeySourceRoot, Path: ".", Err: ErrInvalidPath},
	}}

	assert.Equal(t, `version: unsupported config version: "2"; source_root: invalid path: .`, err.Error())
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
