package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/routepatch/cmd/routepatch/opts"
	"github.com/walteh/routepatch/pkg/operation"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(root *opts.RootOpts) *cobra.Command {
	rs := &opts.RuleSetOpts{}
	var (
		exclude []string
		dryRun  bool
		diff    bool
		backup  bool
		jobs    int
	)

	cmd := &cobra.Command{
		Use:   "apply [files...]",
		Short: "Apply a rule set to route files",
		Long: `Apply runs every rule of a rule set, in order, over each target file.
It will:
1. Load each target as UTF-8 text
2. Apply the rules, each to the previous rule's output
3. Report every rule: matched, unmatched, skipped or already applied
4. Atomically replace the file when its content changed

Targets are the given files or doublestar globs. Without arguments, the
targets listed in the --rules file are used, relative to that file.`,
		Example: `  routepatch apply --preset scope src/routes/divisions.ts
  routepatch apply --preset scope --parent league --child team src/routes/teams.ts
  routepatch apply --rules widgets.yaml --dry-run --diff 'src/**/*.ts'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "apply").Logger().WithContext(cmd.Context())

			ruleSet, file, err := rs.Load(ctx)
			if err != nil {
				return err
			}

			targets, baseDir := args, "."
			if len(targets) == 0 && file != nil {
				targets, baseDir = file.Targets, file.Dir()
			}
			if file != nil {
				exclude = append(exclude, file.Exclude...)
			}

			op := operation.NewApplyOperation(operation.Options{
				RuleSet: ruleSet,
				Targets: targets,
				Exclude: exclude,
				BaseDir: baseDir,
				DryRun:  dryRun,
				Diff:    diff,
				Backup:  backup,
				Jobs:    jobs,
			})

			// async so an interrupt returns without waiting on in-flight targets
			return operation.NewRunner(zerolog.Ctx(ctx), true).Run(ctx, op)
		},
	}

	rs.AddFlags(cmd)
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "skip targets matching these globs")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would change without writing")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a unified diff of each changed file")
	cmd.Flags().BoolVar(&backup, "backup", false, "keep <file>.bak before replacing a file")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "number of files patched at once")

	return cmd
}
