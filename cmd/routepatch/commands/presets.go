package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/walteh/routepatch/cmd/routepatch/opts"
	"github.com/walteh/routepatch/pkg/scope"
)

// NewPresetsCmd creates a new presets command
func NewPresetsCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in rule sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range scope.Presets() {
				fmt.Fprintf(out, "%s %-14s %s\n",
					color.New(color.FgMagenta).Sprint("◆"),
					color.New(color.Bold).Sprint(p.Name),
					color.New(color.Faint).Sprint(p.Description))
			}
			return nil
		},
	}
}
