/*
Package operation runs a rule set over target files.

	+-------------+
	|  Operation  |
	|   (apply)   |
	+------+------+
	       |
	+------+------+      +-------------+
	|   Patcher   | ---> |   Status    |
	| (text pkg)  |      | (load/save) |
	+-------------+      +-------------+

🎯 Purpose:
- Expands target paths and doublestar globs, minus excludes
- Runs the rule set over each target and reports every rule outcome
- Commits the result atomically, or only previews it on a dry run

🔄 Flow (per target):
1. status.Manager.Load reads the file
2. text.Applier.Apply folds the rule set over its content
3. log.Logger.Report prints outcomes, summary and warnings
4. status.Manager.Commit writes the new content unless nothing changed

⚡ Failure model:
- Rules that match nothing are warnings, never failures
- A target that cannot be read or written fails on its own and is left
  untouched; the other targets still run
- Execute returns ErrTargetsFailed when any target failed

🤝 Concurrency:
Targets run in parallel up to Options.Jobs. Each target owns its text and
reports into its own buffer; buffers are flushed in target order so output
does not depend on scheduling.

🔍 Example:

	op := operation.NewApplyOperation(operation.Options{
		RuleSet: rs,
		Targets: []string{"src/routes/*.ts"},
		DryRun:  true,
		Diff:    true,
	})

	err := operation.NewRunner(logger, false).Run(ctx, op)
*/
package operation
