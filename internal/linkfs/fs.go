// Package linkfs is the filesystem surface the synchronizer works through.
//
// It narrows afero to the operations symlink reconciliation needs and
// requires the backing filesystem to support symlinks (afero.Symlinker),
// which afero's OsFs does. The interface exists so tests and dry runs can
// substitute their own implementation.
package linkfs

import (
	"io/fs"
	"os"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// ErrSymlinksUnsupported is returned by New when the backing filesystem
// cannot create or read symlinks.
var ErrSymlinksUnsupported = errors.New("filesystem does not support symlinks")

// FS is the set of filesystem operations used to reconcile links.
type FS interface {
	// Stat follows symlinks.
	Stat(name string) (fs.FileInfo, error)
	// Lstat does not follow a final symlink.
	Lstat(name string) (fs.FileInfo, error)
	// ReadDir lists the entries of a directory sorted by name. Entries are
	// not followed, so symlinks report os.ModeSymlink.
	ReadDir(name string) ([]fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Remove(name string) error
}

type aferoFS struct {
	fs     afero.Fs
	linker afero.Symlinker
}

// New wraps an afero filesystem. The filesystem must implement
// afero.Symlinker; otherwise ErrSymlinksUnsupported is returned.
func New(base afero.Fs) (FS, error) {
	linker, ok := base.(afero.Symlinker)
	if !ok {
		return nil, errors.Wrapf(ErrSymlinksUnsupported, "%s", base.Name())
	}
	return &aferoFS{fs: base, linker: linker}, nil
}

// NewOS returns an FS backed by the operating system.
func NewOS() FS {
	base := afero.NewOsFs()
	return &aferoFS{fs: base, linker: base.(afero.Symlinker)}
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	info, _, err := a.linker.LstatIfPossible(name)
	return info, err
}

func (a *aferoFS) ReadDir(name string) ([]fs.FileInfo, error) {
	return afero.ReadDir(a.fs, name)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) Symlink(oldname, newname string) error {
	return a.linker.SymlinkIfPossible(oldname, newname)
}

func (a *aferoFS) Readlink(name string) (string, error) {
	return a.linker.ReadlinkIfPossible(name)
}

func (a *aferoFS) Remove(name string) error {
	return a.fs.Remove(name)
}

// IsSymlink reports whether info describes a symlink.
func IsSymlink(info fs.FileInfo) bool {
	return info != nil && info.Mode()&os.ModeSymlink != 0
}

// IsNotExist reports whether err indicates a missing path, looking through
// wrapped and afero-specific errors.
func IsNotExist(err error) bool {
	return err != nil && (errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err))
}

// IsLoop reports whether err is a symlink resolution loop, such as a link
// pointing at itself.
func IsLoop(err error) bool {
	return err != nil && errors.Is(err, syscall.ELOOP)
}
