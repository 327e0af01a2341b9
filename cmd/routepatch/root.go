package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/routepatch/cmd/routepatch/commands"
	"github.com/walteh/routepatch/cmd/routepatch/opts"
	"github.com/walteh/routepatch/pkg/log"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd(root *opts.RootOpts, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routepatch",
		Short: "Rewrite route files with ordered regular expression rules",
		Long: `routepatch applies an ordered rule set of regular expression rewrites to
source files and reports, rule by rule, what matched. The built-in "scope"
presets turn a flat resource route file into one scoped under a parent
resource, for example /divisions/:id into
/tournaments/:tournamentId/divisions/:id.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if root.NoColor {
				color.NoColor = true
			}
			logger := setupLogging(root.Debug, stderr)
			root.Console = log.New(stdout, logger.GetLevel())

			ctx := logger.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, root.Console)
			cmd.SetContext(ctx)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	addRootFlags(cmd, root)

	cmd.AddCommand(
		commands.NewApplyCmd(root),
		commands.NewPlanCmd(root),
		commands.NewPresetsCmd(root),
		commands.NewVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, root *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&root.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&root.NoColor, "no-color", false, "disable colored output")
}

// setupLogging configures zerolog based on flags
func setupLogging(debug bool, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
