package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/claudesync/internal/errors"
)

// MaxFileSize is the largest config or report file read (1MB).
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns ErrFileTooLarge if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// ReadStructured reads path with ReadFileWithLimit and decodes it into v,
// inferring the format from the file extension.
func ReadStructured(path string, v any) error {
	data, err := ReadFileWithLimit(path)
	if err != nil {
		return err
	}
	return Unmarshal(FormatFromPath(path), data, v)
}
