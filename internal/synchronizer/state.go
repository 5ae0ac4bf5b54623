package synchronizer

import (
	"path/filepath"

	"github.com/thoreinstein/claudesync/internal/linkfs"
)

// LinkState is the observed state of a link target before reconciliation.
type LinkState string

const (
	// StateAbsent means nothing exists at the target path.
	StateAbsent LinkState = "absent"
	// StateValid means the target is a symlink to the current source.
	StateValid LinkState = "valid"
	// StateStale means the target is a symlink to some other existing path.
	StateStale LinkState = "stale"
	// StateBroken means the target is a symlink whose referent does not
	// exist or never resolves.
	StateBroken LinkState = "broken"
	// StateConflict means a real file or directory occupies the target.
	StateConflict LinkState = "conflict"
)

// Observation is the result of inspecting a target path.
type Observation struct {
	State LinkState
	// Referent is the symlink's destination, made absolute relative to the
	// link's directory. Empty unless the target is a symlink.
	Referent string
}

// observe classifies target against the source it should point at.
// An empty source classifies any existing symlink as stale or broken.
func observe(fsys linkfs.FS, target, source string) (Observation, error) {
	info, err := fsys.Lstat(target)
	if err != nil {
		if linkfs.IsNotExist(err) {
			return Observation{State: StateAbsent}, nil
		}
		return Observation{}, err
	}
	if !linkfs.IsSymlink(info) {
		return Observation{State: StateConflict}, nil
	}

	dest, err := fsys.Readlink(target)
	if err != nil {
		return Observation{}, err
	}
	referent := absReferent(target, dest)

	if source != "" && referent == filepath.Clean(source) {
		return Observation{State: StateValid, Referent: referent}, nil
	}
	if dangling(fsys, target) {
		return Observation{State: StateBroken, Referent: referent}, nil
	}
	return Observation{State: StateStale, Referent: referent}, nil
}

// dangling reports whether the symlink at path resolves to nothing: its
// referent is missing or resolution loops back on itself. Other stat
// failures, such as permission errors, do not count.
func dangling(fsys linkfs.FS, path string) bool {
	_, err := fsys.Stat(path)
	return linkfs.IsNotExist(err) || linkfs.IsLoop(err)
}

func absReferent(link, dest string) string {
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	return filepath.Clean(dest)
}
