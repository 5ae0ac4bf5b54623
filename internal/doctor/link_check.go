package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/synchronizer"
)

// LinkHealthCheck inspects the links in the configuration root without
// changing them. Broken unmanaged links are fixable by pruning.
type LinkHealthCheck struct {
	sync   *synchronizer.Synchronizer
	opts   synchronizer.Options
	broken int
}

var (
	_ Check = (*LinkHealthCheck)(nil)
	_ Fixer = (*LinkHealthCheck)(nil)
)

// NewLinkHealthCheck creates a check that inspects the roots in opts.
func NewLinkHealthCheck(sync *synchronizer.Synchronizer, opts synchronizer.Options) *LinkHealthCheck {
	return &LinkHealthCheck{sync: sync, opts: opts}
}

// Name returns the unique identifier for this check.
func (c *LinkHealthCheck) Name() string {
	return "link-health"
}

// Category returns the grouping for this check.
func (c *LinkHealthCheck) Category() string {
	return "links"
}

// Run executes the link health check.
func (c *LinkHealthCheck) Run(ctx context.Context) *CheckResult {
	c.broken = 0
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	st, err := c.sync.Inspect(ctx, c.opts)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot inspect links: %v", err)
		return result
	}

	var conflicts, duplicates []string
	outdated := 0
	for _, item := range st.Items {
		label := string(item.Category) + "/" + item.Name
		switch {
		case item.Duplicate != "":
			duplicates = append(duplicates, label)
		case item.State == synchronizer.StateConflict:
			conflicts = append(conflicts, label)
		case item.State != synchronizer.StateValid:
			outdated++
		}
	}
	for _, orphan := range st.Orphans {
		if orphan.State == synchronizer.StateBroken {
			c.broken++
		}
	}

	result.Details = map[string]any{
		"items":    len(st.Items),
		"valid":    st.Count(synchronizer.StateValid),
		"outdated": outdated,
		"broken":   c.broken,
		"orphans":  len(st.Orphans),
	}

	var problems []string
	if len(conflicts) > 0 {
		result.Details["conflicts"] = conflicts
		problems = append(problems, fmt.Sprintf("%d conflict(s): %s", len(conflicts), strings.Join(conflicts, ", ")))
		result.FixHint = "move the real files aside, then run: claudesync"
	}
	if len(duplicates) > 0 {
		result.Details["duplicates"] = duplicates
		problems = append(problems, fmt.Sprintf("%d duplicate name(s): %s", len(duplicates), strings.Join(duplicates, ", ")))
	}
	if c.broken > 0 {
		problems = append(problems, fmt.Sprintf("%d broken link(s)", c.broken))
		result.Fixable = true
		if result.FixHint == "" {
			result.FixHint = "claudesync prune"
		}
	}

	switch {
	case len(problems) > 0:
		result.Status = SeverityWarning
		result.Message = strings.Join(problems, "; ")
	case outdated > 0:
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%d of %d link(s) not yet synchronized", outdated, len(st.Items))
		result.FixHint = "claudesync"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("all %d link(s) valid", len(st.Items))
	}
	return result
}

// CanFix returns true if Run found broken links.
func (c *LinkHealthCheck) CanFix() bool {
	return c.broken > 0
}

// Fix removes broken links from the category directories.
func (c *LinkHealthCheck) Fix(ctx context.Context) []FixResult {
	opts := c.opts
	opts.DryRun = false

	report, err := c.sync.Prune(ctx, opts)
	if err != nil {
		return []FixResult{{
			Path:        opts.ConfigRoot,
			Description: fmt.Sprintf("failed to prune: %v", err),
			Error:       errors.Wrap(err, "pruning broken links"),
		}}
	}

	results := make([]FixResult, 0, len(report.Results))
	for _, res := range report.Results {
		fr := FixResult{Path: res.Target}
		if res.Outcome == synchronizer.OutcomeRemovedBrokenLink {
			fr.Fixed = true
			fr.Description = "removed broken link"
		} else {
			fr.Description = res.Detail
			fr.Error = errors.New(res.Detail)
		}
		results = append(results, fr)
	}
	return results
}
