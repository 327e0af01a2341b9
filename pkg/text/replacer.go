package text

import (
	"context"
)

// Status is what happened to a rule during a run
type Status string

const (
	// StatusMatched means the rule rewrote at least one occurrence
	StatusMatched Status = "matched"

	// StatusUnmatched means the pattern was absent and the text was left alone
	StatusUnmatched Status = "unmatched"

	// StatusCascade means an anchor the rule requires was never produced
	// earlier in the run, so the rule was not applied
	StatusCascade Status = "cascade"

	// StatusGuarded means the rule's guard matched so it was skipped
	StatusGuarded Status = "guarded"
)

// Span is a byte range of a match in the text the rule ran on
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Outcome records one rule's effect on a run
type Outcome struct {
	RuleID string
	Kind   Kind
	Status Status

	// Count is the number of rewritten occurrences
	Count int

	// Spans are the matched ranges, in order
	Spans []Span

	// Missing lists required anchors that were not produced, for cascades
	Missing []string
}

// Matched reports whether the rule rewrote anything
func (o Outcome) Matched() bool {
	return o.Count > 0
}

// ApplyResult contains the results of one engine run
type ApplyResult struct {
	// RuleSet is the name of the rule set that produced this result
	RuleSet string

	// Original is the text before the first rule
	Original string

	// Modified is the text after the last rule
	Modified string

	// Outcomes has one entry per rule, in rule order
	Outcomes []Outcome
}

// WasModified reports whether the output differs from the input
func (r *ApplyResult) WasModified() bool {
	return r.Original != r.Modified
}

// ReplacementCount is the total number of rewritten occurrences
func (r *ApplyResult) ReplacementCount() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Kind == KindExpect {
			continue
		}
		total += o.Count
	}
	return total
}

// Matched returns the outcomes of rules that rewrote something
func (r *ApplyResult) Matched() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Status == StatusMatched })
}

// Unmatched returns the outcomes of rules that changed nothing, cascades included
func (r *ApplyResult) Unmatched() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Status == StatusUnmatched || o.Status == StatusCascade })
}

// Cascades returns the outcomes of rules skipped because a prerequisite failed
func (r *ApplyResult) Cascades() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Status == StatusCascade })
}

// Outcome returns the outcome of the rule with the given id
func (r *ApplyResult) Outcome(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.RuleID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

func (r *ApplyResult) filter(keep func(Outcome) bool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// Applier defines the interface for running rule sets over text
type Applier interface {
	// Apply runs every rule of rs over source, in order, each on the
	// previous rule's output
	Apply(ctx context.Context, source string, rs *RuleSet) (*ApplyResult, error)
}
