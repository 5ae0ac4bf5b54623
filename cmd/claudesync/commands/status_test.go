package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudesync/internal/errors"
)

func TestStatus_BeforeAndAfterSync(t *testing.T) {
	e := newEnv(t)
	args := append([]string{"status", "--exit-code"}, e.roots()...)

	out, _, err := execute(t, args...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errOutOfSync))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, out, "absent")
	assert.Contains(t, out, "Out of sync")

	_, err = os.Lstat(filepath.Join(e.target, "commands"))
	assert.True(t, os.IsNotExist(err), "status must not create directories")

	_, _, err = execute(t, append([]string{"sync"}, e.roots()...)...)
	require.NoError(t, err)

	out, _, err = execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "In sync")
}

func TestStatus_WithoutExitCodeSucceeds(t *testing.T) {
	e := newEnv(t)

	_, _, err := execute(t, append([]string{"status"}, e.roots()...)...)
	assert.NoError(t, err)
}

func TestStatus_ReportsOrphans(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.target, "commands")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(e.source, "gone.md"), filepath.Join(dir, "gone.md")))

	out, _, err := execute(t, append([]string{"status"}, e.roots()...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "unmanaged links")
	assert.Contains(t, out, "gone.md")
}

func TestStatus_JSON(t *testing.T) {
	e := newEnv(t)
	_, _, err := execute(t, append([]string{"sync", "-q"}, e.roots()...)...)
	require.NoError(t, err)

	out, _, err := execute(t, append([]string{"status", "--json"}, e.roots()...)...)
	require.NoError(t, err)

	var got struct {
		InSync bool `json:"in_sync"`
		Items  []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.InSync)
	require.Len(t, got.Items, 4)
	for _, item := range got.Items {
		assert.Equal(t, "valid", item.State, item.Name)
	}
}
