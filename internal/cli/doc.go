package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/doc"
)

// DocEntry is one documented declaration in command output.
type DocEntry struct {
	File     string   `json:"file"`
	Function string   `json:"function"`
	Receiver string   `json:"receiver,omitempty"`
	Line     int      `json:"line"`
	Clauses  []string `json:"clauses"`
}

// NewDocCommand creates the doc command.
func NewDocCommand(rootOpts *RootOptions) *cobra.Command {
	engOpts := &engineOptions{}

	cmd := &cobra.Command{
		Use:   "doc <files...>",
		Short: "Render contract documentation for annotated declarations",
		Long: `Run the rewrite pass over annotated sources and print the generated
contract documentation for every declaration, except those marked no_doc.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoc(rootOpts, engOpts, args, cmd)
		},
	}

	engOpts.addFlags(cmd)
	return cmd
}

func runDoc(opts *RootOptions, engOpts *engineOptions, files []string, cmd *cobra.Command) error {
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

	var entries []DocEntry
	for _, file := range files {
		res, err := rewriteOne(eng, file)
		if err != nil {
			return err
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintln(formatter.GetErrWriter(), d)
		}
		for _, c := range res.Contracts {
			if c.NoDoc {
				continue
			}
			entry := DocEntry{
				File:     file,
				Function: c.Name,
				Receiver: c.Receiver,
				Line:     c.Pos.Line,
			}
			for _, clause := range c.Clauses {
				entry.Clauses = append(entry.Clauses, doc.Describe(clause))
			}
			entries = append(entries, entry)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	for _, e := range entries {
		fmt.Fprint(formatter.Writer, renderDocEntry(e))
	}
	return nil
}

func renderDocEntry(e DocEntry) string {
	name := e.Function
	if e.Receiver != "" {
		name = fmt.Sprintf("(%s).%s", e.Receiver, e.Function)
	}
	out := fmt.Sprintf("%s:%d: %s\n", e.File, e.Line, name)
	for _, clause := range e.Clauses {
		out += "  - " + clause + "\n"
	}
	return out
}
