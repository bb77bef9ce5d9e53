package cli

import (
	"github.com/spf13/cobra"

	"github.com/aticu/pre/internal/encode"
	"github.com/aticu/pre/internal/rewrite"
)

// engineOptions are the flags shared by every command that runs the rewrite
// engine.
type engineOptions struct {
	tags     []string
	strategy string
	support  string
}

func (o *engineOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.tags, "tag", nil, "enabled build tag for when(...) clauses (repeatable)")
	cmd.Flags().StringVar(&o.strategy, "strategy", "structural", "contract encoding (structural|nominal)")
	cmd.Flags().StringVar(&o.support, "support", "", "import path of the runtime support package")
}

func (o *engineOptions) newEngine() (*rewrite.Engine, error) {
	tags := make(map[string]bool, len(o.tags))
	for _, tag := range o.tags {
		tags[tag] = true
	}

	eng, err := rewrite.New(rewrite.Config{
		Tags:          tags,
		Strategy:      encode.Strategy(o.strategy),
		SupportImport: o.support,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid engine options", err)
	}
	return eng, nil
}
