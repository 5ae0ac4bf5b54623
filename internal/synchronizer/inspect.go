package synchronizer

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/claudesync/internal/linkfs"
)

// ItemStatus is the observed state of one link target.
type ItemStatus struct {
	Category Category  `json:"category" yaml:"category"`
	Name     string    `json:"name" yaml:"name"`
	State    LinkState `json:"state" yaml:"state"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	Target   string    `json:"target" yaml:"target"`
	Referent string    `json:"referent,omitempty" yaml:"referent,omitempty"`
	// Duplicate names the item that already claims this display name.
	Duplicate string `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
}

// Status is a read-only snapshot of the configuration root.
type Status struct {
	SourceRoot string       `json:"source_root" yaml:"source_root"`
	ConfigRoot string       `json:"config_root" yaml:"config_root"`
	Items      []ItemStatus `json:"items" yaml:"items"`
	// Orphans are symlinks in the category directories that no discovered
	// item accounts for.
	Orphans []ItemStatus `json:"orphans" yaml:"orphans"`
}

// Count returns the number of items in the given state.
func (st *Status) Count(state LinkState) int {
	n := 0
	for _, item := range st.Items {
		if item.State == state {
			n++
		}
	}
	return n
}

// InSync reports whether every item is validly linked and no broken orphan
// remains.
func (st *Status) InSync() bool {
	for _, item := range st.Items {
		if item.State != StateValid {
			return false
		}
	}
	for _, orphan := range st.Orphans {
		if orphan.State == StateBroken {
			return false
		}
	}
	return true
}

// Inspect observes every link target without modifying anything.
func (s *Synchronizer) Inspect(ctx context.Context, opts Options) (*Status, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	status := &Status{SourceRoot: opts.SourceRoot, ConfigRoot: opts.ConfigRoot}
	for _, d := range Descriptors() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "inspection interrupted")
		}
		dir := filepath.Join(opts.ConfigRoot, d.TargetSubdir)

		items, err := d.Discover(s.fs, filepath.Join(opts.SourceRoot, d.SourceSubdir), opts)
		if err != nil {
			return nil, errors.Wrapf(err, "discovering %s", d.SourceSubdir)
		}

		known := make(map[string]string, len(items))
		for _, item := range items {
			target := filepath.Join(dir, item.DisplayName)
			obs, err := observe(s.fs, target, item.ResolvedPath)
			if err != nil {
				return nil, errors.Wrapf(err, "inspecting %s", target)
			}
			st := ItemStatus{
				Category: d.Category,
				Name:     item.DisplayName,
				State:    obs.State,
				Source:   item.ResolvedPath,
				Target:   target,
				Referent: obs.Referent,
			}
			if prev, dup := known[item.DisplayName]; dup {
				st.Duplicate = prev
			} else {
				known[item.DisplayName] = item.ResolvedPath
			}
			status.Items = append(status.Items, st)
		}

		orphans, err := s.orphans(d, dir, known)
		if err != nil {
			return nil, err
		}
		status.Orphans = append(status.Orphans, orphans...)
	}
	return status, nil
}

func (s *Synchronizer) orphans(d Descriptor, dir string, known map[string]string) ([]ItemStatus, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if linkfs.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var out []ItemStatus
	for _, entry := range entries {
		if _, ok := known[entry.Name()]; ok || !linkfs.IsSymlink(entry) {
			continue
		}
		target := filepath.Join(dir, entry.Name())
		obs, err := observe(s.fs, target, "")
		if err != nil {
			return nil, errors.Wrapf(err, "inspecting %s", target)
		}
		out = append(out, ItemStatus{
			Category: d.Category,
			Name:     entry.Name(),
			State:    obs.State,
			Target:   target,
			Referent: obs.Referent,
		})
	}
	return out, nil
}
