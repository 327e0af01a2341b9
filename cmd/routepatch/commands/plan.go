package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/routepatch/cmd/routepatch/opts"
	"github.com/walteh/routepatch/pkg/operation"
)

// NewPlanCmd creates a new plan command
func NewPlanCmd(root *opts.RootOpts) *cobra.Command {
	rs := &opts.RuleSetOpts{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Validate a rule set and print its rules in order",
		Long: `Plan compiles a rule set without touching any file. Patterns,
replacement templates and anchor order are all checked, so a rule set that
plans cleanly will not fail to compile at apply time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "plan").Logger().WithContext(cmd.Context())

			ruleSet, _, err := rs.Load(ctx)
			if err != nil {
				return err
			}

			op := operation.NewPlanOperation(operation.Options{RuleSet: ruleSet})
			return operation.NewRunner(zerolog.Ctx(ctx), false).Run(ctx, op)
		},
	}

	rs.AddFlags(cmd)
	return cmd
}
