package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/diag"
)

// CheckReport summarizes the diagnostics of one checked file.
type CheckReport struct {
	File        string            `json:"file"`
	Warnings    int               `json:"warnings"`
	Errors      int               `json:"errors"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	engOpts := &engineOptions{}

	cmd := &cobra.Command{
		Use:   "check <files...>",
		Short: "Report directive diagnostics without writing output",
		Long: `Run the rewrite pass over annotated sources and report every diagnostic,
without writing any shadow files. Exits non-zero when a hard error is
found.

Contract mismatches are not reported here: those surface as ordinary
compile errors when the rewritten output is built.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, engOpts, args, cmd)
		},
	}

	engOpts.addFlags(cmd)
	return cmd
}

func runCheck(opts *RootOptions, engOpts *engineOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	eng, err := engOpts.newEngine()
	if err != nil {
		return err
	}

	hadErrors := false
	reports := make([]CheckReport, 0, len(files))
	for _, file := range files {
		res, err := rewriteOne(eng, file)
		if err != nil {
			return err
		}

		report := CheckReport{File: file, Diagnostics: res.Diagnostics}
		for _, d := range res.Diagnostics {
			if d.Severity == diag.Error {
				report.Errors++
			} else {
				report.Warnings++
			}
		}
		if report.Errors > 0 {
			hadErrors = true
		}
		reports = append(reports, report)
	}

	if opts.Format == "json" {
		if hadErrors {
			if err := formatter.Error(ErrCodeRewrite, "one or more files reported hard errors", reports); err != nil {
				return err
			}
		} else if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			for _, d := range r.Diagnostics {
				fmt.Fprintln(formatter.Writer, d)
			}
			formatter.VerboseLog("%s: %d warnings, %d errors", r.File, r.Warnings, r.Errors)
		}
	}

	if hadErrors {
		return NewExitError(ExitFailure, "one or more files reported hard errors")
	}
	return nil
}
