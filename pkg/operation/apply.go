// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/routepatch/pkg/log"
	"github.com/walteh/routepatch/pkg/status"
)

// 📦 NewApplyOperation creates an operation that patches every target
func NewApplyOperation(opts Options) Operation {
	return &applyOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 📦 applyOperation implements the apply operation
type applyOperation struct {
	BaseOperation
}

func (op *applyOperation) Name() string {
	return "apply"
}

// 🏃 Execute runs the rule set over every target. A target that cannot be
// read or written is reported and skipped, the others still run.
func (op *applyOperation) Execute(ctx context.Context) error {
	if err := op.validate(); err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	targets, err := expandTargets(op.BaseDir, op.Targets, op.Exclude)
	if err != nil {
		return errors.Errorf("expanding targets: %w", err)
	}
	if len(targets) == 0 {
		return errors.Errorf("%w: %v", ErrNoTargets, op.Targets)
	}

	mode := "patching"
	if op.DryRun {
		mode = "dry run"
	}
	console.Header(mode + " with " + op.RuleSet.Name)

	logger.Debug().
		Strs("targets", targets).
		Int("jobs", op.Jobs).
		Bool("dry_run", op.DryRun).
		Msg("starting apply")

	// each target reports into its own buffer, flushed in target order
	buffers := make([]*log.Logger, len(targets))
	var done atomic.Int64

	g := &errgroup.Group{}
	g.SetLimit(op.Jobs)
	for i, target := range targets {
		buffers[i] = console.Buffer()
		g.Go(func() error {
			op.processFile(ctx, target, buffers[i])
			logger.Debug().
				Str("target", target).
				Msg(op.StatusMgr.Formatter().FormatProgress(int(done.Add(1)), len(targets)))
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, target := range targets {
		console.Flush(buffers[i])
		info, err := op.StatusMgr.GetFileInfo(target)
		if err != nil || info.Error != nil {
			failed++
		}
	}

	console.LogNewline()
	if len(targets) > 1 {
		console.Summary(op.StatusMgr.ListFiles())
	}
	counts := op.StatusMgr.Counts()
	if failed > 0 {
		console.Errorf("%d of %d files failed", failed, len(targets))
		return errors.Errorf("%w: %d of %d", ErrTargetsFailed, failed, len(targets))
	}

	if op.DryRun {
		console.Successf("dry run complete: %d would change, %d unchanged", counts[status.StatusModified], counts[status.StatusUnchanged])
	} else {
		console.Successf("done: %d patched, %d unchanged", counts[status.StatusModified], counts[status.StatusUnchanged])
	}
	return nil
}

// 📄 processFile runs the rule set over one target. The returned info carries
// the error, if any; nothing is written unless every step before Commit
// succeeded.
func (op *applyOperation) processFile(ctx context.Context, target string, out *log.Logger) status.FileInfo {
	info := status.FileInfo{Path: target, RuleSet: op.RuleSet.Name}
	defer func() {
		if info.Error != nil {
			info.Status = status.StatusFailed
		}
		out.Verdict(info)
		op.StatusMgr.TrackFile(ctx, info)
	}()

	doc, err := op.StatusMgr.Load(ctx, target)
	if err != nil {
		info.Error = err
		return info
	}

	result, err := op.Applier.Apply(ctx, doc.Content, op.RuleSet)
	if err != nil {
		info.Error = errors.Errorf("applying %s: %w", op.RuleSet.Name, err)
		return info
	}

	out.Report(target, result)
	info.Replacements = result.ReplacementCount()

	if op.Diff && result.WasModified() {
		out.Diff(unifiedDiff(target, result.Original, result.Modified))
	}

	if op.DryRun {
		info.Status = status.StatusUnchanged
		if result.WasModified() {
			info.Status = status.StatusModified
			info.Pending = true
		}
		return info
	}

	info.Status, info.Error = op.StatusMgr.Commit(ctx, doc, result.Modified)
	return info
}
