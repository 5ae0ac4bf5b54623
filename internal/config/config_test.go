package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/claudesync/internal/errors"
)

// isolate points the default search path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CLAUDESYNC_CONFIG_DIR", dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	isolate(t)
	Init()

	if viper.GetInt(KeyVersion) != CurrentVersion {
		t.Errorf("expected version default %d, got %d", CurrentVersion, viper.GetInt(KeyVersion))
	}
	if got := viper.GetStringSlice(KeyExtensions); len(got) != 1 || got[0] != ".md" {
		t.Errorf("extensions default = %v, want [.md]", got)
	}
	if got := viper.GetString(KeyOnDuplicate); got != "conflict" {
		t.Errorf("on_duplicate default = %q, want conflict", got)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	want := Default()
	if cfg.Version != want.Version || cfg.SkillSuffix != want.SkillSuffix || cfg.OnDuplicate != want.OnDuplicate {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "source_root: /opt/bundle\nextensions: [.md, .mdc]\non_duplicate: overwrite\n")
	Init()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SourceRoot != "/opt/bundle" {
		t.Errorf("SourceRoot = %q, want /opt/bundle", cfg.SourceRoot)
	}
	if len(cfg.Extensions) != 2 {
		t.Errorf("expected 2 extensions, got %v", cfg.Extensions)
	}
	if cfg.OnDuplicate != "overwrite" {
		t.Errorf("OnDuplicate = %q, want overwrite", cfg.OnDuplicate)
	}
	if cfg.SkillSubdir != "skill" {
		t.Errorf("SkillSubdir = %q, want default skill", cfg.SkillSubdir)
	}
	if FileUsed() != path {
		t.Errorf("FileUsed() = %q, want %q", FileUsed(), path)
	}
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config_root: /tmp/claude\n")
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfigRoot != "/tmp/claude" {
		t.Errorf("ConfigRoot = %q, want /tmp/claude", cfg.ConfigRoot)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "on_duplicate: conflict\n")
	t.Setenv("CLAUDESYNC_ON_DUPLICATE", "overwrite")
	t.Setenv("CLAUDESYNC_SOURCE_ROOT", "/srv/bundle")
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.OnDuplicate != "overwrite" {
		t.Errorf("OnDuplicate = %q, want env override", cfg.OnDuplicate)
	}
	if cfg.SourceRoot != "/srv/bundle" {
		t.Errorf("SourceRoot = %q, want env override", cfg.SourceRoot)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() with non-existent explicit path should error")
	}
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "extensions: [.md\n")
	Init()

	_, err := Load(path)
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid version",
			content: "version: 2\n",
			wantErr: `version: unsupported config version: "2"`,
		},
		{
			name:    "invalid extension",
			content: "extensions: [md]\n",
			wantErr: `extensions: invalid value: "md"`,
		},
		{
			name:    "invalid duplicate policy",
			content: "on_duplicate: merge\n",
			wantErr: `on_duplicate: invalid value: "merge"`,
		},
		{
			name:    "nested skill subdir",
			content: "skill_subdir: a/b\n",
			wantErr: `skill_subdir: invalid value: "a/b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := writeConfig(t, t.TempDir(), tt.content)
			Init()

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if want := "validating config: " + tt.wantErr; err.Error() != want {
				t.Errorf("Load() error = %v, want %v", err, want)
			}
			if !errors.Is(err, errors.ErrInvalidConfig) {
				t.Error("validation error should match ErrInvalidConfig")
			}
		})
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	fileA := writeConfig(t, t.TempDir(), "source_root: /a\n")

	isolate(t)
	Init()
	if _, err := Load(fileA); err != nil {
		t.Fatalf("First Load failed: %v", err)
	}

	dirB := isolate(t)
	writeConfig(t, dirB, "source_root: /b\n")

	// Re-initializing must forget the explicit file from the first load.
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}
	if cfg.SourceRoot != "/b" {
		t.Errorf("SourceRoot = %q, want /b from the default path (still using %s)", cfg.SourceRoot, viper.ConfigFileUsed())
	}
}

func TestFileUsed_DefaultsToConfigDir(t *testing.T) {
	dir := isolate(t)
	Init()
	if _, err := Load(""); err != nil {
		t.Fatal(err)
	}

	if got, want := FileUsed(), filepath.Join(dir, "config.yaml"); got != want {
		t.Errorf("FileUsed() = %q, want %q", got, want)
	}
}

func TestKeys(t *testing.T) {
	keys := strings.Join(Keys(), ",")
	if keys != "version,source_root,config_root,extensions,skill_suffix,skill_subdir,on_duplicate" {
		t.Errorf("Keys() = %s", keys)
	}
}
