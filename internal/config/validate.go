package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/synchronizer"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version other than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidValue indicates a value outside the field's allowed set.
	ErrInvalidValue = errors.New("invalid value")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, &ValueError{Field: KeyVersion, Value: fmt.Sprint(cfg.Version), Err: ErrUnsupportedVersion})
	}

	if err := validatePath(cfg.SourceRoot); err != nil {
		errs = append(errs, &PathError{Field: KeySourceRoot, Path: cfg.SourceRoot, Err: err})
	}

	if err := validatePath(cfg.ConfigRoot); err != nil {
		errs = append(errs, &PathError{Field: KeyConfigRoot, Path: cfg.ConfigRoot, Err: err})
	}

	for _, ext := range cfg.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
			errs = append(errs, &ValueError{Field: KeyExtensions, Value: ext, Err: ErrInvalidValue})
		}
	}

	if strings.ContainsAny(cfg.SkillSuffix, `/\`) {
		errs = append(errs, &ValueError{Field: KeySkillSuffix, Value: cfg.SkillSuffix, Err: ErrInvalidValue})
	}

	if sub := cfg.SkillSubdir; sub != "" && (sub == "." || sub == ".." || strings.ContainsAny(sub, `/\`)) {
		errs = append(errs, &ValueError{Field: KeySkillSubdir, Value: sub, Err: ErrInvalidValue})
	}

	if _, err := synchronizer.ParseDuplicatePolicy(cfg.OnDuplicate); err != nil {
		errs = append(errs, &ValueError{Field: KeyOnDuplicate, Value: cfg.OnDuplicate, Err: ErrInvalidValue})
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ValueError represents an error for a specific non-path field.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Field, e.Err, e.Value)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// ValidationError collects every problem found by Validate.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.Errs
}
