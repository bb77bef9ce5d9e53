package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/doc"
	"github.com/aticu/pre/internal/store"
)

// NewContractsCommand creates the contracts command.
func NewContractsCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var filePath string

	cmd := &cobra.Command{
		Use:   "contracts [function]",
		Short: "Query the contract index",
		Long: `List contracts recorded in the index. With a function name argument,
only that function's contracts are listed; with --file, only contracts of
one file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			function := ""
			if len(args) == 1 {
				function = args[0]
			}
			return runContracts(rootOpts, dbPath, filePath, function, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", DefaultIndexPath, "contract index database path")
	cmd.Flags().StringVar(&filePath, "file", "", "limit to contracts of one indexed file")
	return cmd
}

func runContracts(opts *RootOptions, dbPath, filePath, function string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
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
	var contracts []store.IndexedContract
	switch {
	case function != "":
		contracts, err = st.FindContracts(ctx, function)
	case filePath != "":
		contracts, err = st.ContractsForFile(ctx, filePath)
	default:
		contracts, err = st.AllContracts(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "query contract index", err)
	}

	if opts.Format == "json" {
		return formatter.Success(contracts)
	}

	for _, c := range contracts {
		name := c.Function
		if c.Receiver != "" {
			name = fmt.Sprintf("(%s).%s", c.Receiver, c.Function)
		}
		fmt.Fprintf(formatter.Writer, "%s:%d: %s", c.File, c.Line, doc.Entry(name, c.Clauses))
	}
	formatter.VerboseLog("%d contracts", len(contracts))
	return nil
}
