package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudesync/internal/doctor"
	"github.com/thoreinstein/claudesync/internal/errors"
)

func TestValidateDoctorFlags(t *testing.T) {
	tests := []struct {
		name        string
		jsonFlag    bool
		quietFlag   bool
		verboseFlag bool
		wantErr     bool
	}{
		{name: "no flags set"},
		{name: "json only", jsonFlag: true},
		{name: "quiet only", quietFlag: true},
		{name: "all only", verboseFlag: true},
		{name: "json and quiet", jsonFlag: true, quietFlag: true, wantErr: true},
		{name: "json and all", jsonFlag: true, verboseFlag: true, wantErr: true},
		{name: "every flag", jsonFlag: true, quietFlag: true, verboseFlag: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(resetFlags)
			jsonOutput = tt.jsonFlag
			quiet = tt.quietFlag
			doctorVerbose = tt.verboseFlag

			err := validateDoctorFlags(nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", statusIcon(doctor.SeverityPass))
	assert.Equal(t, "ℹ", statusIcon(doctor.SeverityInfo))
	assert.Equal(t, "⚠", statusIcon(doctor.SeverityWarning))
	assert.Equal(t, "✗", statusIcon(doctor.SeverityError))
	assert.Equal(t, "?", statusIcon(doctor.Severity(42)))
}

func TestDoctor_HealthyAfterSync(t *testing.T) {
	e := newEnv(t)
	_, _, err := execute(t, append([]string{"sync", "-q"}, e.roots()...)...)
	require.NoError(t, err)

	out, _, err := execute(t, append([]string{"doctor", "--all"}, e.roots()...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ [source] source-layout")
	assert.Contains(t, out, "✓ [links] link-health")
	assert.Contains(t, out, "ℹ [config] config-file")
	assert.Contains(t, out, "0 warnings, 0 errors")
}

func TestDoctor_WarningsAndFix(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.target, "commands")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	broken := filepath.Join(dir, "gone.md")
	require.NoError(t, os.Symlink(filepath.Join(e.source, "commands", "gone.md"), broken))

	out, _, err := execute(t, append([]string{"doctor"}, e.roots()...)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDoctorWarnings))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, out, "1 broken link(s)")
	assert.Contains(t, out, "hint: claudesync prune")

	out, _, err = execute(t, append([]string{"doctor", "--fix"}, e.roots()...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "fix: "+broken+": removed broken link")
	assert.Contains(t, out, "created directory")

	_, err = os.Lstat(broken)
	assert.True(t, os.IsNotExist(err))
	info, err := os.Stat(filepath.Join(e.target, "skills"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDoctor_JSON(t *testing.T) {
	e := newEnv(t)

	out, _, err := execute(t, append([]string{"doctor", "--json"}, e.roots()...)...)
	require.NoError(t, err)

	var got struct {
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"results"`
		Summary doctor.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	names := make([]string, 0, len(got.Results))
	for _, r := range got.Results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"config-file", "source-layout", "config-root", "symlink-support", "link-health"}, names)
	assert.Zero(t, got.Summary.Errors)
}

func TestDoctor_QuietPrintsNothing(t *testing.T) {
	e := newEnv(t)

	out, _, err := execute(t, append([]string{"doctor", "--quiet"}, e.roots()...)...)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDoctor_RunsWithInvalidConfig(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("version: 7\n"), 0o644))

	out, _, err := execute(t, append([]string{"doctor"}, e.roots()...)...)
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
	assert.Contains(t, out, "[config] config-file")
}
