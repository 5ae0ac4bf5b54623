package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/thoreinstein/claudesync/internal/synchronizer"
)

// Format specifies the output format for reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Class is the message class of a report line.
type Class int

const (
	ClassInfo Class = iota
	ClassWarning
	ClassError
)

func (c Class) String() string {
	switch c {
	case ClassInfo:
		return "info"
	case ClassWarning:
		return "warning"
	case ClassError:
		return "error"
	default:
		return "unknown"
	}
}

// ClassOf returns the message class of an outcome.
func ClassOf(o synchronizer.Outcome) Class {
	switch o {
	case synchronizer.OutcomeUpdated, synchronizer.OutcomeRemovedBrokenLink:
		return ClassWarning
	case synchronizer.OutcomeConflict, synchronizer.OutcomeFailed:
		return ClassError
	default:
		return ClassInfo
	}
}

// StateClass returns the message class of an observed link state.
func StateClass(s synchronizer.LinkState) Class {
	switch s {
	case synchronizer.StateValid, synchronizer.StateAbsent:
		return ClassInfo
	case synchronizer.StateConflict:
		return ClassError
	default:
		return ClassWarning
	}
}

// Reporter formats and writes synchronization results.
type Reporter struct {
	out    io.Writer
	format Format
	// quiet suppresses info-class lines in text output.
	quiet bool
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// SetQuiet hides info-class lines (created, unchanged, valid) in text
// output. Banners, warnings, errors and the summary are always written.
func (r *Reporter) SetQuiet(quiet bool) {
	r.quiet = quiet
}

// syncJSON is the JSON shape of a synchronization report.
type syncJSON struct {
	*synchronizer.Report
	Summary synchronizer.Summary `json:"summary"`
}

// Sync writes a synchronization or prune report.
func (r *Reporter) Sync(rep *synchronizer.Report) error {
	if rep == nil {
		return nil
	}
	if r.format == FormatJSON {
		return r.writeJSON(syncJSON{Report: rep, Summary: rep.Summary()})
	}

	header := fmt.Sprintf("Synchronizing %s -> %s", rep.SourceRoot, rep.ConfigRoot)
	if rep.DryRun {
		header += color.New(color.FgHiBlack).Sprint(" (dry run)")
	}
	fmt.Fprintln(r.out, header)

	for _, d := range synchronizer.Descriptors() {
		r.banner(d.TargetSubdir)
		results := rep.ByCategory(d.Category)
		if len(results) == 0 {
			r.dim("  no items")
			continue
		}
		for _, res := range results {
			r.resultLine(res)
		}
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, summaryLine(rep.Summary()))
	return nil
}

// statusJSON is the JSON shape of a status snapshot.
type statusJSON struct {
	*synchronizer.Status
	InSync bool `json:"in_sync"`
}

// Status writes a read-only status snapshot.
func (r *Reporter) Status(st *synchronizer.Status) error {
	if st == nil {
		return nil
	}
	if r.format == FormatJSON {
		return r.writeJSON(statusJSON{Status: st, InSync: st.InSync()})
	}

	fmt.Fprintf(r.out, "Source: %s\nConfig: %s\n", st.SourceRoot, st.ConfigRoot)

	for _, d := range synchronizer.Descriptors() {
		r.banner(d.TargetSubdir)
		n := 0
		for _, item := range st.Items {
			if item.Category != d.Category {
				continue
			}
			n++
			r.statusLine(item, item.Name)
		}
		if n == 0 {
			r.dim("  no items")
		}
	}

	if len(st.Orphans) > 0 {
		r.banner("unmanaged links")
		for _, orphan := range st.Orphans {
			r.statusLine(orphan, categoryDir(orphan.Category)+"/"+orphan.Name)
		}
	}

	fmt.Fprintln(r.out)
	if st.InSync() {
		fmt.Fprintln(r.out, color.GreenString("✓ In sync"))
	} else {
		fmt.Fprintf(r.out, "%s: %d valid, %d absent, %d stale, %d broken, %d conflicts\n",
			color.YellowString("Out of sync"),
			st.Count(synchronizer.StateValid),
			st.Count(synchronizer.StateAbsent),
			st.Count(synchronizer.StateStale),
			st.Count(synchronizer.StateBroken),
			st.Count(synchronizer.StateConflict))
	}
	return nil
}

func (r *Reporter) writeJSON(v any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(v), "encoding JSON report")
}

func (r *Reporter) banner(name string) {
	fmt.Fprintln(r.out, color.New(color.Bold).Sprintf("==> %s", name))
}

func (r *Reporter) dim(msg string) {
	if r.quiet {
		return
	}
	fmt.Fprintln(r.out, color.New(color.FgHiBlack).Sprint(msg))
}

func (r *Reporter) resultLine(res synchronizer.Result) {
	class := ClassOf(res.Outcome)
	if r.quiet && class == ClassInfo {
		return
	}

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(paint(class, fmt.Sprintf("%s %-19s", icon(class), res.Outcome)))
	sb.WriteString(" ")
	sb.WriteString(res.Name)

	switch res.Outcome {
	case synchronizer.OutcomeCreated, synchronizer.OutcomeUpdated:
		sb.WriteString(" -> ")
		sb.WriteString(res.Source)
	}
	if res.Previous != "" {
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" (was %s)", res.Previous))
	}
	if res.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(res.Detail)
	}

	fmt.Fprintln(r.out, sb.String())
}

func (r *Reporter) statusLine(item synchronizer.ItemStatus, label string) {
	class := StateClass(item.State)
	if item.Duplicate != "" {
		class = ClassError
	}
	if r.quiet && class == ClassInfo {
		return
	}

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(paint(class, fmt.Sprintf("%s %-9s", icon(class), item.State)))
	sb.WriteString(" ")
	sb.WriteString(label)
	if item.Referent != "" && item.State != synchronizer.StateValid {
		sb.WriteString(" -> ")
		sb.WriteString(item.Referent)
	}
	if item.Duplicate != "" {
		sb.WriteString(": duplicate of ")
		sb.WriteString(item.Duplicate)
	}
	fmt.Fprintln(r.out, sb.String())
}

func summaryLine(s synchronizer.Summary) string {
	parts := []string{
		fmt.Sprintf("%d created", s.Created),
		fmt.Sprintf("%d updated", s.Updated),
		fmt.Sprintf("%d unchanged", s.Unchanged),
		fmt.Sprintf("%d removed", s.Removed),
	}
	conflicts := fmt.Sprintf("%d conflicts", s.Conflicts)
	if s.Conflicts > 0 {
		conflicts = color.RedString(conflicts)
	}
	parts = append(parts, conflicts)
	if s.Failed > 0 {
		parts = append(parts, color.RedString("%d failed", s.Failed))
	}
	return "Summary: " + strings.Join(parts, ", ")
}

func categoryDir(c synchronizer.Category) string {
	for _, d := range synchronizer.Descriptors() {
		if d.Category == c {
			return d.TargetSubdir
		}
	}
	return string(c)
}

func icon(c Class) string {
	switch c {
	case ClassWarning:
		return "⚠"
	case ClassError:
		return "✗"
	default:
		return "✓"
	}
}

func paint(c Class, s string) string {
	switch c {
	case ClassWarning:
		return color.YellowString("%s", s)
	case ClassError:
		return color.RedString("%s", s)
	default:
		return color.GreenString("%s", s)
	}
}
