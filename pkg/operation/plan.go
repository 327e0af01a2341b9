package operation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/routepatch/pkg/log"
)

// 🗺️ NewPlanOperation creates an operation that prints the rule set without
// touching any file
func NewPlanOperation(opts Options) Operation {
	return &planOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

type planOperation struct {
	BaseOperation
}

func (op *planOperation) Name() string {
	return "plan"
}

// 🏃 Execute prints the rules and the anchors they exchange
func (op *planOperation) Execute(ctx context.Context) error {
	if err := op.validate(); err != nil {
		return err
	}

	console := log.FromContext(ctx)
	console.Header("plan for " + op.RuleSet.Name)
	console.Plan(op.RuleSet)

	anchors := op.RuleSet.Anchors()
	zerolog.Ctx(ctx).Debug().
		Str("rule_set", op.RuleSet.Name).
		Int("rules", op.RuleSet.Len()).
		Strs("anchors", anchors).
		Msg("plan printed")

	console.Successf("%d rules, %d anchors, order checked", op.RuleSet.Len(), len(anchors))
	return nil
}
