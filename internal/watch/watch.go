// Package watch re-runs work when files under a source bundle change.
//
// A Watcher observes the bundle root, its category directories and each
// skill directory, coalescing bursts of events into a single callback.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/logging"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 300 * time.Millisecond

// maxDepth bounds directory registration: root, root/skills,
// root/skills/<name> and root/skills/<name>/skill.
const maxDepth = 3

// ChangeFunc receives the distinct paths changed since the last call.
type ChangeFunc func(ctx context.Context, paths []string) error

// Watcher watches a source bundle for changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   *slog.Logger
	// watched maps each registered path to its resolved directory.
	watched map[string]string
	// resolved holds the targets in watched, so a directory reached through
	// several links or a link cycle is registered once.
	resolved map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher registered on root and its subdirectories.
func New(root string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "watch root")
	}
	if !info.IsDir() {
		return nil, errors.Newf("watch root is not a directory: %s", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}

	w := &Watcher{
		fsw:      fsw,
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		watched:  make(map[string]string),
		resolved: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Watched returns the watched directories, sorted.
func (w *Watcher) Watched() []string {
	dirs := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs
}

// Run delivers debounced changes to onChange until ctx is done, then
// returns nil. Callback errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Log(ctx, logging.LevelTrace, "fs event", "op", event.Op.String(), "path", event.Name)

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.forget(event.Name)
			}

			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)

			w.logger.Debug("source changed", "paths", len(changed))
			if err := onChange(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("change handler failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	// editor swap and backup files
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

func (w *Watcher) depth(dir string) int {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// addTree watches dir and its non-hidden subdirectories down to maxDepth.
// Symlinked directories are followed, matching skill discovery.
func (w *Watcher) addTree(dir string) error {
	if w.depth(dir) > maxDepth {
		return nil
	}
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// Removed between the event and the read, or a dangling link.
		return nil
	}
	if w.resolved[target] {
		w.logger.Debug("directory already watched", "path", dir, "resolved", target)
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}
	w.watched[dir] = target
	w.resolved[target] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	// Real directories first, so a link to a sibling never claims its target.
	var links []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			links = append(links, path)
			continue
		}
		if !entry.IsDir() {
			continue
		}
		if err := w.addTree(path); err != nil {
			return err
		}
	}
	for _, path := range links {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			continue
		}
		if err := w.addTree(path); err != nil {
			return err
		}
	}
	return nil
}

// forget drops path and anything registered beneath it.
func (w *Watcher) forget(path string) {
	prefix := path + string(filepath.Separator)
	for dir, target := range w.watched {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.watched, dir)
			delete(w.resolved, target)
		}
	}
}
