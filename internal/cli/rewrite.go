package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/diag"
	"github.com/aticu/pre/internal/rewrite"
)

// FileReport summarizes one rewritten file for command output.
type FileReport struct {
	File        string `json:"file"`
	Shadow      string `json:"shadow,omitempty"`
	Rewritten   bool   `json:"rewritten"`
	Contracts   int    `json:"contracts"`
	Warnings    int    `json:"warnings"`
	Errors      int    `json:"errors"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	engOpts := &engineOptions{}
	var outDir string
	var overlayPath string

	cmd := &cobra.Command{
		Use:   "rewrite <files...>",
		Short: "Rewrite annotated sources into compile-checked shadow files",
		Long: `Rewrite annotated Go sources so declared contracts and caller assurances
become hidden parameters and arguments the compiler checks.

Each input file produces a shadow file under the output directory; the
original is never modified. With --overlay, a JSON overlay file mapping
originals to shadows is written for use with go build -overlay.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(rootOpts, engOpts, outDir, overlayPath, args, cmd)
		},
	}

	engOpts.addFlags(cmd)
	cmd.Flags().StringVarP(&outDir, "outdir", "o", "pre-out", "directory for shadow files")
	cmd.Flags().StringVar(&overlayPath, "overlay", "", "write a go build -overlay JSON file to this path")

	return cmd
}

func runRewrite(opts *RootOptions, engOpts *engineOptions, outDir, overlayPath string, files []string, cmd *cobra.Command) error {
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

	reports, hadErrors, err := rewriteFiles(eng, files, outDir, formatter)
	if err != nil {
		return err
	}

	if overlayPath != "" {
		if err := writeOverlay(overlayPath, reports); err != nil {
			return WrapExitError(ExitCommandError, "write overlay", err)
		}
		formatter.VerboseLog("wrote overlay %s", overlayPath)
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
			fmt.Fprintf(formatter.Writer, "%s -> %s (%d contracts, %d warnings, %d errors)\n",
				r.File, r.Shadow, r.Contracts, r.Warnings, r.Errors)
		}
	}

	if hadErrors {
		return NewExitError(ExitFailure, "one or more files reported hard errors")
	}
	return nil
}

// rewriteFiles runs the engine over every input and writes the shadow
// files. Hard errors do not stop the run; each file still gets best-effort
// output.
func rewriteFiles(eng *rewrite.Engine, files []string, outDir string, formatter *OutputFormatter) ([]FileReport, bool, error) {
	hadErrors := false
	reports := make([]FileReport, 0, len(files))

	for _, file := range files {
		res, err := rewriteOne(eng, file)
		if err != nil {
			return nil, false, err
		}

		shadow := shadowPath(outDir, file)
		if err := os.MkdirAll(filepath.Dir(shadow), 0o755); err != nil {
			return nil, false, WrapExitError(ExitCommandError, "create output directory", err)
		}
		if err := os.WriteFile(shadow, res.Output, 0o644); err != nil {
			return nil, false, WrapExitError(ExitCommandError, "write shadow file", err)
		}
		formatter.VerboseLog("pass %s: %s -> %s", res.PassID, file, shadow)

		report := FileReport{
			File:      file,
			Shadow:    shadow,
			Rewritten: res.Rewritten,
			Contracts: len(res.Contracts),
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintln(formatter.GetErrWriter(), d)
			if d.Severity == diag.Error {
				report.Errors++
			} else {
				report.Warnings++
			}
		}
		if report.Errors > 0 {
			hadErrors = true
			report.Diagnostics = res.Diagnostics
		}
		reports = append(reports, report)
	}

	return reports, hadErrors, nil
}

func rewriteOne(eng *rewrite.Engine, file string) (*rewrite.Result, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read input", err)
	}
	res, err := eng.RewriteFile(file, src)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "parse "+file, err)
	}
	return res, nil
}

// shadowPath maps an input path into the output directory, preserving its
// relative structure.
func shadowPath(outDir, file string) string {
	rel := file
	if filepath.IsAbs(rel) {
		rel = rel[len(filepath.VolumeName(rel))+1:]
	}
	return filepath.Join(outDir, rel)
}

// writeOverlay writes the go build -overlay mapping for all shadow files.
func writeOverlay(path string, reports []FileReport) error {
	type overlay struct {
		Replace map[string]string `json:"Replace"`
	}
	o := overlay{Replace: make(map[string]string, len(reports))}
	for _, r := range reports {
		abs, err := filepath.Abs(r.File)
		if err != nil {
			return err
		}
		absShadow, err := filepath.Abs(r.Shadow)
		if err != nil {
			return err
		}
		o.Replace[abs] = absShadow
	}

	data, err := json.MarshalIndent(o, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
