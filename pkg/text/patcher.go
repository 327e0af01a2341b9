package text

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Patcher implements Applier as a strict sequential fold over the rules
type Patcher struct{}

// NewPatcher creates a new Patcher
func NewPatcher() *Patcher {
	return &Patcher{}
}

// Apply implements Applier.Apply
func (p *Patcher) Apply(ctx context.Context, source string, rs *RuleSet) (*ApplyResult, error) {
	if rs == nil {
		return nil, errors.Errorf("%w: rule set is required", ErrInvalidRule)
	}

	logger := zerolog.Ctx(ctx)

	result := &ApplyResult{
		RuleSet:  rs.Name,
		Original: source,
		Modified: source,
		Outcomes: make([]Outcome, 0, len(rs.rules)),
	}

	// anchors produced so far in this run
	produced := map[string]bool{}

	current := source
	for _, rule := range rs.rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("applying rule %q: %w", rule.ID, err)
		}

		guarded, err := rule.Guarded(current)
		if err != nil {
			return nil, errors.Errorf("applying rule set %q: %w", rs.Name, err)
		}
		if guarded {
			for _, a := range rule.Produces {
				produced[a] = true
			}
			result.Outcomes = append(result.Outcomes, Outcome{RuleID: rule.ID, Kind: rule.Kind, Status: StatusGuarded})
			logger.Debug().Str("rule", rule.ID).Msg("rule guarded, already applied")
			continue
		}

		var missing []string
		for _, a := range rule.Requires {
			if !produced[a] {
				missing = append(missing, a)
			}
		}
		if len(missing) > 0 {
			result.Outcomes = append(result.Outcomes, Outcome{RuleID: rule.ID, Kind: rule.Kind, Status: StatusCascade, Missing: missing})
			logger.Debug().Str("rule", rule.ID).Strs("missing", missing).Msg("rule skipped, required anchors missing")
			continue
		}

		next, outcome, err := rule.Apply(current)
		if err != nil {
			return nil, errors.Errorf("applying rule set %q: %w", rs.Name, err)
		}

		if outcome.Matched() {
			for _, a := range rule.Produces {
				produced[a] = true
			}
		}

		logger.Debug().
			Str("rule", rule.ID).
			Str("status", string(outcome.Status)).
			Int("count", outcome.Count).
			Msg("rule applied")

		result.Outcomes = append(result.Outcomes, outcome)
		current = next
	}

	result.Modified = current
	return result, nil
}
