package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/queryir"
)

// CheckResult is the payload of the check command.
type CheckResult struct {
	WellFormed  bool     `json:"well_formed"`
	Warnings    []string `json:"warnings"`
	Fingerprint string   `json:"fingerprint"`
	Variables   []string `json:"variables"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [plan-file]",
		Short: "Report structural problems in a plan",
		Long: `Parse a plan and report structural problems without optimizing it:
missing children, empty lists, table rows of the wrong width, bad
slice bounds, and calls with the wrong number of arguments.

Exit codes:
  0 - Plan is well formed
  1 - Plan has warnings
  2 - Command error (unreadable or unparsable plan)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	plan, err := readPlan(cmd, args)
	if err != nil {
		return failInput(formatter, err)
	}

	v := queryir.Validate(plan)
	result := CheckResult{
		WellFormed:  v.IsWellFormed,
		Warnings:    v.Warnings,
		Fingerprint: queryir.FingerprintHex(plan),
		Variables:   []string{},
	}
	for _, x := range queryir.MentionedVars(plan).Sorted() {
		result.Variables = append(result.Variables, x.String())
	}

	if opts.Format == "json" {
		if !result.WellFormed {
			if err := formatter.Partial(result, ErrCodeInvalidPlan, "plan is malformed"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "plan is malformed")
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if !result.WellFormed {
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "✗ %s\n", warning)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("plan has %d warning(s)", len(result.Warnings)))
	}
	fmt.Fprintf(w, "✓ plan is well formed (fingerprint %s)\n", result.Fingerprint)
	return nil
}
