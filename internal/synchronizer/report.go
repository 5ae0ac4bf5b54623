package synchronizer

import "slices"

// Outcome is the per-item result of a synchronization run.
type Outcome string

const (
	OutcomeCreated           Outcome = "created"
	OutcomeUpdated           Outcome = "updated"
	OutcomeUnchanged         Outcome = "unchanged"
	OutcomeConflict          Outcome = "conflict"
	OutcomeRemovedBrokenLink Outcome = "removed-broken-link"
	// OutcomeFailed records a filesystem error on a single item that is
	// not a conflict, such as a denied symlink creation.
	OutcomeFailed Outcome = "failed"
)

// Result is one line of a synchronization report.
type Result struct {
	Category Category `json:"category" yaml:"category"`
	Name     string   `json:"name" yaml:"name"`
	Outcome  Outcome  `json:"outcome" yaml:"outcome"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Target   string   `json:"target" yaml:"target"`
	// Previous is the referent a link pointed at before it was replaced or removed.
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Detail   string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Summary counts results by outcome.
type Summary struct {
	Created   int `json:"created" yaml:"created"`
	Updated   int `json:"updated" yaml:"updated"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Conflicts int `json:"conflicts" yaml:"conflicts"`
	Removed   int `json:"removed" yaml:"removed"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Report is the ordered outcome list of a run.
type Report struct {
	SourceRoot string   `json:"source_root" yaml:"source_root"`
	ConfigRoot string   `json:"config_root" yaml:"config_root"`
	DryRun     bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Results    []Result `json:"results" yaml:"results"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Count returns the number of results with the given outcome.
func (r *Report) Count(o Outcome) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Summary returns the outcome counts.
func (r *Report) Summary() Summary {
	return Summary{
		Created:   r.Count(OutcomeCreated),
		Updated:   r.Count(OutcomeUpdated),
		Unchanged: r.Count(OutcomeUnchanged),
		Conflicts: r.Count(OutcomeConflict),
		Removed:   r.Count(OutcomeRemovedBrokenLink),
		Failed:    r.Count(OutcomeFailed),
	}
}

// HasConflicts reports whether any target was left unlinked by a conflict.
func (r *Report) HasConflicts() bool {
	return r.Count(OutcomeConflict) > 0
}

// HasFailures reports whether any item failed with a filesystem error.
func (r *Report) HasFailures() bool {
	return r.Count(OutcomeFailed) > 0
}

// ByCategory returns the results of one category in report order.
func (r *Report) ByCategory(c Category) []Result {
	if r == nil {
		return nil
	}
	return slices.DeleteFunc(slices.Clone(r.Results), func(res Result) bool {
		return res.Category != c
	})
}

// Changed reports whether the run modified (or, in a dry run, would modify)
// the configuration root.
func (r *Report) Changed() bool {
	s := r.Summary()
	return s.Created+s.Updated+s.Removed > 0
}
