package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudesync/internal/config"
	"github.com/thoreinstein/claudesync/internal/doctor"
	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/logging"
)

var (
	doctorFix     bool
	doctorVerbose bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"create missing directories and remove broken links")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false,
		"show detailed check-by-check output, including passed checks")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the source bundle, the configuration root,
the config file and the existing links.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check the installation
  claudesync doctor

  # Repair what can be repaired automatically
  claudesync doctor --fix`,
	Args:        cobra.NoArgs,
	Annotations: skipConfigCheck(),
	PreRunE:     validateDoctorFlags,
	RunE:        runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if jsonOutput {
		count++
	}
	if quiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.NewUserError(errors.New("flags --json, --quiet, and --all are mutually exclusive"), "")
	}

	return nil
}

// doctorJSONReport is the JSON shape of a doctor run.
type doctorJSONReport struct {
	*doctor.DoctorReport
	Fixes []doctor.FixResult `json:"fixes,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	runner, err := newDoctorRunner(cmd)
	if err != nil {
		return err
	}

	report := runner.Run(ctx)

	var fixes []doctor.FixResult
	if doctorFix {
		fixes = runner.Fix(ctx)
		if len(fixes) > 0 {
			// Re-run so the report reflects the repaired state.
			report = runner.Run(ctx)
		}
	}

	if err := outputDoctorReport(cmd.OutOrStdout(), report, fixes); err != nil {
		return err
	}

	// Determine exit code based on results
	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// newDoctorRunner registers the diagnostic checks in display order. Only
// the config file is checked when the roots cannot be resolved from it.
func newDoctorRunner(cmd *cobra.Command) (*doctor.Runner, error) {
	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigFileCheck(config.FileUsed()))

	opts, err := resolveOptions()
	if err != nil {
		if configLoadErr == nil {
			return nil, err
		}
		logging.FromContext(cmd.Context()).Debug("skipping root checks", "error", err)
		return runner, nil
	}

	runner.AddCheck(doctor.NewSourceLayoutCheck(opts.SourceRoot))
	runner.AddCheck(doctor.NewConfigRootCheck(opts.ConfigRoot))
	runner.AddCheck(doctor.NewSymlinkSupportCheck(opts.ConfigRoot))
	runner.AddCheck(doctor.NewLinkHealthCheck(newSynchronizer(cmd), opts))
	return runner, nil
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport, fixes []doctor.FixResult) error {
	if quiet {
		return nil
	}

	if jsonOutput {
		return outputDoctorJSON(w, report, fixes)
	}

	outputDoctorText(w, report, fixes)
	return nil
}

func outputDoctorJSON(w io.Writer, report *doctor.DoctorReport, fixes []doctor.FixResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doctorJSONReport{DoctorReport: report, Fixes: fixes}); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport, fixes []doctor.FixResult) {
	for _, fix := range fixes {
		icon := "✓"
		if !fix.Fixed {
			icon = "✗"
		}
		fmt.Fprintf(w, "%s fix: %s: %s\n", icon, fix.Path, fix.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}

	// In normal mode, show only errors and warnings
	// In --all mode, show all checks
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		icon := statusIcon(result.Status)
		fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	// Print summary
	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("errors found")
