package synchronizer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/claudesync/internal/linkfs"
	"github.com/thoreinstein/claudesync/internal/logging"
	"github.com/thoreinstein/claudesync/internal/paths"
)

// DefaultExtensions are the recognized document extensions for commands and rules.
var DefaultExtensions = []string{".md"}

// ErrMissingRoot is returned when the source or configuration root is unset.
var ErrMissingRoot = errors.New("source root and config root are required")

// DuplicatePolicy decides what happens when two items of a category
// normalize to the same display name.
type DuplicatePolicy string

const (
	// DuplicateConflict links the first item in discovery order and reports
	// later duplicates as conflicts.
	DuplicateConflict DuplicatePolicy = "conflict"
	// DuplicateOverwrite lets the last item win; earlier links are replaced.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

// ParseDuplicatePolicy validates a policy name. Empty means DuplicateConflict.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateConflict:
		return DuplicateConflict, nil
	case DuplicateOverwrite:
		return DuplicateOverwrite, nil
	default:
		return "", errors.Newf("unknown duplicate policy %q (valid: %s, %s)", s, DuplicateConflict, DuplicateOverwrite)
	}
}

// Options are the explicit inputs of a run.
type Options struct {
	// SourceRoot contains the commands/, rules/ and skills/ directories.
	// Missing category directories count as empty.
	SourceRoot string
	// ConfigRoot is the directory the assistant reads, e.g. ~/.claude.
	ConfigRoot string

	// Extensions lists recognized document extensions, including the dot.
	Extensions []string
	// SkillSuffix is stripped from skill directory names. Empty means
	// DefaultSkillSuffix unless KeepSkillSuffix is set.
	SkillSuffix string
	// KeepSkillSuffix links skills under their directory names unchanged.
	KeepSkillSuffix bool
	SkillSubdir     string
	OnDuplicate     DuplicatePolicy

	// DryRun computes outcomes without touching the filesystem.
	DryRun bool
}

func (o Options) normalize() (Options, error) {
	if o.SourceRoot == "" || o.ConfigRoot == "" {
		return o, ErrMissingRoot
	}
	var err error
	if o.SourceRoot, err = filepath.Abs(o.SourceRoot); err != nil {
		return o, errors.Wrap(err, "resolving source root")
	}
	if o.ConfigRoot, err = filepath.Abs(o.ConfigRoot); err != nil {
		return o, errors.Wrap(err, "resolving config root")
	}
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	switch {
	case o.KeepSkillSuffix:
		o.SkillSuffix = ""
	case o.SkillSuffix == "":
		o.SkillSuffix = DefaultSkillSuffix
	}
	if o.SkillSubdir == "" {
		o.SkillSubdir = DefaultSkillSubdir
	}
	if o.OnDuplicate, err = ParseDuplicatePolicy(string(o.OnDuplicate)); err != nil {
		return o, err
	}
	return o, nil
}

// Synchronizer performs runs against a filesystem.
type Synchronizer struct {
	fs     linkfs.FS
	logger *slog.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithFS sets the filesystem. The default is the operating system.
func WithFS(fsys linkfs.FS) Option {
	return func(s *Synchronizer) {
		s.fs = fsys
	}
}

// WithLogger sets the logger. By default the logger is taken from the
// context passed to each run.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// New creates a Synchronizer with the given options.
func New(opts ...Option) *Synchronizer {
	s := &Synchronizer{fs: linkfs.NewOS()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synchronize runs a Synchronizer on the operating system filesystem.
func Synchronize(ctx context.Context, opts Options) (*Report, error) {
	return New().Synchronize(ctx, opts)
}

func (s *Synchronizer) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.FromContext(ctx)
}

// Synchronize reconciles opts.ConfigRoot with opts.SourceRoot.
//
// It returns an error, and no report, only when the configuration root or
// its category directories cannot be established, or when ctx is cancelled.
// Conflicts and per-item failures are recorded in the report.
func (s *Synchronizer) Synchronize(ctx context.Context, opts Options) (*Report, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	logger := s.log(ctx)

	if !opts.DryRun {
		if err := s.ensureTargetDirs(opts); err != nil {
			return nil, err
		}
	}

	report := &Report{SourceRoot: opts.SourceRoot, ConfigRoot: opts.ConfigRoot, DryRun: opts.DryRun}
	for _, d := range Descriptors() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "synchronization interrupted")
		}
		logger.Debug("synchronizing category", "category", d.TargetSubdir)

		removed := s.cleanup(ctx, d, opts, report)

		items, err := d.Discover(s.fs, filepath.Join(opts.SourceRoot, d.SourceSubdir), opts)
		if err != nil {
			logger.Error("discovering sources failed", "category", d.SourceSubdir, "error", err)
			report.add(Result{
				Category: d.Category,
				Name:     d.SourceSubdir + "/",
				Outcome:  OutcomeFailed,
				Source:   filepath.Join(opts.SourceRoot, d.SourceSubdir),
				Target:   filepath.Join(opts.ConfigRoot, d.TargetSubdir),
				Detail:   err.Error(),
			})
			continue
		}

		if err := s.link(ctx, d, opts, items, removed, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Prune runs only the cleanup pass for every category.
func (s *Synchronizer) Prune(ctx context.Context, opts Options) (*Report, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	report := &Report{SourceRoot: opts.SourceRoot, ConfigRoot: opts.ConfigRoot, DryRun: opts.DryRun}
	for _, d := range Descriptors() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "prune interrupted")
		}
		s.cleanup(ctx, d, opts, report)
	}
	return report, nil
}

func (s *Synchronizer) ensureTargetDirs(opts Options) error {
	for _, d := range Descriptors() {
		dir := filepath.Join(opts.ConfigRoot, d.TargetSubdir)
		if err := s.fs.MkdirAll(dir, paths.DefaultDirPerm); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	return nil
}

// cleanup removes dangling symlinks from the category's target directory and
// returns the names it removed (or, in a dry run, would remove).
func (s *Synchronizer) cleanup(ctx context.Context, d Descriptor, opts Options, report *Report) map[string]bool {
	logger := s.log(ctx)
	dir := filepath.Join(opts.ConfigRoot, d.TargetSubdir)
	removed := make(map[string]bool)

	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if !linkfs.IsNotExist(err) {
			logger.Error("reading target directory failed", "dir", dir, "error", err)
			report.add(Result{Category: d.Category, Name: d.TargetSubdir + "/", Outcome: OutcomeFailed, Target: dir, Detail: err.Error()})
		}
		return removed
	}

	for _, entry := range entries {
		if !linkfs.IsSymlink(entry) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		logger.Log(ctx, logging.LevelTrace, "checking link", "path", path)
		if !dangling(s.fs, path) {
			continue
		}

		res := Result{Category: d.Category, Name: entry.Name(), Outcome: OutcomeRemovedBrokenLink, Target: path}
		if dest, err := s.fs.Readlink(path); err == nil {
			res.Previous = absReferent(path, dest)
		}
		if !opts.DryRun {
			if err := s.fs.Remove(path); err != nil {
				res.Outcome = OutcomeFailed
				res.Detail = fmt.Sprintf("removing broken link: %v", err)
				report.add(res)
				continue
			}
		}
		logger.Info("removed broken link", "path", path, "previous", res.Previous)
		removed[entry.Name()] = true
		report.add(res)
	}
	return removed
}

// link resolves each item's target. Only context cancellation is returned
// as an error.
func (s *Synchronizer) link(ctx context.Context, d Descriptor, opts Options, items []SourceItem, removed map[string]bool, report *Report) error {
	logger := s.log(ctx)
	dir := filepath.Join(opts.ConfigRoot, d.TargetSubdir)
	claimed := make(map[string]string, len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "synchronization interrupted")
		}
		target := filepath.Join(dir, item.DisplayName)
		res := Result{Category: d.Category, Name: item.DisplayName, Source: item.ResolvedPath, Target: target}

		prev, dup := claimed[item.DisplayName]
		if dup && opts.OnDuplicate == DuplicateConflict {
			res.Outcome = OutcomeConflict
			res.Detail = "duplicate name, already linked to " + prev
			logger.Warn("duplicate display name", "name", item.DisplayName, "source", item.ResolvedPath, "kept", prev)
			report.add(res)
			continue
		}
		claimed[item.DisplayName] = item.ResolvedPath

		obs, err := observe(s.fs, target, item.ResolvedPath)
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Detail = fmt.Sprintf("inspecting target: %v", err)
			report.add(res)
			continue
		}
		if opts.DryRun {
			obs = simulate(obs, item, removed[item.DisplayName], prev, dup)
		}
		res.Previous = obs.Referent

		switch obs.State {
		case StateAbsent:
			res.Previous = ""
			res.Outcome = OutcomeCreated
			if err := s.symlink(item.ResolvedPath, target, opts.DryRun); err != nil {
				res.Outcome = OutcomeFailed
				res.Detail = fmt.Sprintf("creating link: %v", err)
			}
		case StateValid:
			res.Previous = ""
			res.Outcome = OutcomeUnchanged
		case StateStale, StateBroken:
			res.Outcome = OutcomeUpdated
			if err := s.replace(item.ResolvedPath, target, opts.DryRun); err != nil {
				res.Outcome = OutcomeFailed
				res.Detail = fmt.Sprintf("replacing link: %v", err)
			}
		case StateConflict:
			res.Outcome = OutcomeConflict
			res.Detail = "target exists and is not a symlink"
		}

		logger.Debug("resolved link", "category", d.TargetSubdir, "name", item.DisplayName, "outcome", res.Outcome)
		report.add(res)
	}
	return nil
}

// simulate adjusts an observation for mutations a dry run did not perform:
// links removed by cleanup and links written earlier in the same pass.
func simulate(obs Observation, item SourceItem, removed bool, prev string, dup bool) Observation {
	switch {
	case obs.State == StateConflict:
		return obs
	case dup && prev == item.ResolvedPath:
		return Observation{State: StateValid, Referent: prev}
	case dup:
		return Observation{State: StateStale, Referent: prev}
	case removed:
		return Observation{State: StateAbsent}
	}
	return obs
}

func (s *Synchronizer) symlink(source, target string, dryRun bool) error {
	if dryRun {
		return nil
	}
	return s.fs.Symlink(source, target)
}

func (s *Synchronizer) replace(source, target string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := s.fs.Remove(target); err != nil && !linkfs.IsNotExist(err) {
		return err
	}
	return s.fs.Symlink(source, target)
}
