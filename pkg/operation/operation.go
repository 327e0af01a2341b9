package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/routepatch/pkg/status"
	"github.com/walteh/routepatch/pkg/text"
)

var (
	// ErrNoTargets is returned when no target file was named or matched.
	ErrNoTargets = errors.Base("no target files")

	// ErrTargetsFailed is returned when at least one target could not be read,
	// patched or written. Rules that match nothing never cause it.
	ErrTargetsFailed = errors.Base("targets failed")
)

// 🎯 Operation is one unit of work the runner executes
type Operation interface {
	// Name identifies the operation in logs
	Name() string
	// Execute runs the operation
	Execute(ctx context.Context) error
}

// 🔧 Options contains configuration for operations
type Options struct {
	// RuleSet is applied to every target
	RuleSet *text.RuleSet

	// Targets are file paths or doublestar globs, relative to BaseDir
	Targets []string

	// Exclude drops targets matching any of these globs
	Exclude []string

	// BaseDir resolves relative targets, "." when empty
	BaseDir string

	// DryRun reports what would change without writing
	DryRun bool

	// Diff prints a unified diff of every modified target
	Diff bool

	// Backup keeps <target>.bak next to every rewritten target
	Backup bool

	// Jobs bounds the number of targets patched at once, 1 when unset
	Jobs int

	// Applier runs the rule set, text.NewPatcher() when nil
	Applier text.Applier
}

// 🧱 BaseOperation holds what every operation shares
type BaseOperation struct {
	Options
	StatusMgr *status.Manager
}

// 🏭 NewBaseOperation fills option defaults and builds the status manager
func NewBaseOperation(opts Options) BaseOperation {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.Applier == nil {
		opts.Applier = text.NewPatcher()
	}
	return BaseOperation{
		Options:   opts,
		StatusMgr: status.New(opts.BaseDir, status.WithBackup(opts.Backup)),
	}
}

func (op *BaseOperation) validate() error {
	if op.RuleSet == nil {
		return errors.New("rule set is required")
	}
	return nil
}
