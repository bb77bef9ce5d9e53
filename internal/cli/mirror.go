package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/mirror"
)

// NewMirrorCommand creates the mirror command.
func NewMirrorCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "mirror <skeleton.cue>",
		Short: "Expand a CUE skeleton into an annotated mirror package",
		Long: `Expand a CUE mirror skeleton into a Go source file of delegating
wrappers, re-export aliases and impl-block marker stubs, annotated with
contract directives.

A skeleton can declare nested modules; each expands into its own package
directory under the --out directory, mirroring the source hierarchy.

The generated files are ordinary engine input: rewrite them like
hand-written code to attach the declared contracts.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(rootOpts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, or directory for skeletons with nested modules (default: stdout)")
	return cmd
}

func runMirror(opts *RootOptions, skeletonPath, outPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := os.ReadFile(skeletonPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read skeleton", err)
	}

	sk, err := mirror.Load(skeletonPath, src)
	if err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeSkeleton, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "compile skeleton", err)
	}
	formatter.VerboseLog("skeleton %s: %d wrappers, %d impl blocks", skeletonPath, len(sk.Funcs), len(sk.Impls))

	files, err := mirror.GenerateTree(sk)
	if err != nil {
		return WrapExitError(ExitFailure, "generate mirror", err)
	}

	if len(sk.Mods) == 0 {
		// A flat skeleton expands into exactly one file.
		out := files[0].Source
		if outPath == "" {
			_, err = formatter.Writer.Write(out)
			return err
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return WrapExitError(ExitCommandError, "create output directory", err)
		}
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "write mirror", err)
		}
		formatter.VerboseLog("wrote %s", outPath)
		return nil
	}

	if outPath == "" {
		return WrapExitError(ExitCommandError, "write mirror",
			errors.New("skeleton declares nested modules, use --out to name the output directory"))
	}
	for _, f := range files {
		dst := filepath.Join(outPath, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return WrapExitError(ExitCommandError, "create output directory", err)
		}
		if err := os.WriteFile(dst, f.Source, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "write mirror", err)
		}
		formatter.VerboseLog("wrote %s", dst)
	}
	return nil
}
