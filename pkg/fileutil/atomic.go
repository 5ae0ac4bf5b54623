// Package fileutil provides file system utilities including atomic writes
// and bounded reads of small structured files.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/claudesync/internal/errors"
)

// DefaultFilePerm is the permission used by AtomicWrite when none is given.
const DefaultFilePerm = 0o644

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// Interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory, so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".claudesync-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true

	return nil
}

// AtomicWrite encodes v in the given format and writes it to path atomically,
// creating the parent directory if needed.
func AtomicWrite(path string, format Format, v any) error {
	data, err := Marshal(format, v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}
	return AtomicWriteFile(path, data, DefaultFilePerm)
}
