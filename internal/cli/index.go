package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/store"
)

// DefaultIndexPath is the contract index database used when --db is not
// given.
const DefaultIndexPath = ".pre-index.db"

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	engOpts := &engineOptions{}
	var dbPath string

	cmd := &cobra.Command{
		Use:   "index <files...>",
		Short: "Record contracts and diagnostics in the contract index",
		Long: `Run the rewrite pass over annotated sources and record the resulting
contracts and diagnostics in the SQLite contract index. Re-indexing a file
replaces its previous records.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(rootOpts, engOpts, dbPath, args, cmd)
		},
	}

	engOpts.addFlags(cmd)
	cmd.Flags().StringVar(&dbPath, "db", DefaultIndexPath, "contract index database path")
	return cmd
}

func runIndex(opts *RootOptions, engOpts *engineOptions, dbPath string, files []string, cmd *cobra.Command) error {
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

	st, err := store.Open(dbPath)
	if err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeIndex, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "open contract index", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	indexed := 0
	contracts := 0
	for _, file := range files {
		res, err := rewriteOne(eng, file)
		if err != nil {
			return err
		}
		if err := st.RecordPass(ctx, file, res); err != nil {
			return WrapExitError(ExitCommandError, "record pass for "+file, err)
		}
		formatter.VerboseLog("indexed %s: %d contracts, %d diagnostics", file, len(res.Contracts), len(res.Diagnostics))
		indexed++
		contracts += len(res.Contracts)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int{
			"files":     indexed,
			"contracts": contracts,
		})
	}
	fmt.Fprintf(formatter.Writer, "indexed %d files, %d contracts\n", indexed, contracts)
	return nil
}
