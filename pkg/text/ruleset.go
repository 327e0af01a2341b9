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

package text

import (
	"gitlab.com/tozd/go/errors"
)

// ErrRuleOrder is returned when a rule requires an anchor that no earlier
// rule produces.
var ErrRuleOrder = errors.Base("rule order")

// RuleSet is an ordered, compiled list of rules. Order is significant: later
// rules may match text that earlier rules inserted.
type RuleSet struct {
	Name        string
	Description string

	rules []*Rule
}

// NewRuleSet compiles rules and checks their declared anchors against the
// declared order. The rules must not be modified afterwards.
func NewRuleSet(name string, rules ...*Rule) (*RuleSet, error) {
	if name == "" {
		return nil, errors.Errorf("%w: rule set name is required", ErrInvalidRule)
	}

	ids := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, errors.Errorf("%w: rule %d is nil", ErrInvalidRule, i)
		}
		if ids[r.ID] {
			return nil, errors.Errorf("%w: duplicate rule id %q", ErrInvalidRule, r.ID)
		}
		ids[r.ID] = true

		if err := r.Compile(); err != nil {
			return nil, errors.Errorf("rule set %q: %w", name, err)
		}
	}

	if err := checkOrder(rules); err != nil {
		return nil, errors.Errorf("rule set %q: %w", name, err)
	}

	return &RuleSet{Name: name, rules: rules}, nil
}

// Join concatenates rule sets into one, keeping their order.
func Join(name string, sets ...*RuleSet) (*RuleSet, error) {
	var rules []*Rule
	for _, s := range sets {
		rules = append(rules, s.rules...)
	}
	return NewRuleSet(name, rules...)
}

func checkOrder(rules []*Rule) error {
	producers := map[string][]string{}
	for _, r := range rules {
		for _, a := range r.Produces {
			producers[a] = append(producers[a], r.ID)
		}
	}

	seen := map[string]bool{}
	for _, r := range rules {
		for _, a := range r.Requires {
			if seen[a] {
				continue
			}
			if len(producers[a]) == 0 {
				return errors.Errorf("%w: rule %q requires anchor %q, which no rule produces", ErrRuleOrder, r.ID, a)
			}
			for _, p := range producers[a] {
				if p != r.ID {
					return errors.Errorf("%w: rule %q requires anchor %q, produced by later rule %q", ErrRuleOrder, r.ID, a, p)
				}
			}
			// a rule cannot satisfy its own requirement
			return errors.Errorf("%w: rule %q requires anchor %q, which no earlier rule produces", ErrRuleOrder, r.ID, a)
		}
		for _, a := range r.Produces {
			seen[a] = true
		}
	}
	return nil
}

// Rules returns the rules in application order.
func (rs *RuleSet) Rules() []*Rule {
	out := make([]*Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rule returns the rule with the given id.
func (rs *RuleSet) Rule(id string) (*Rule, bool) {
	for _, r := range rs.rules {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Anchors returns every anchor produced by the set, in first-production order.
func (rs *RuleSet) Anchors() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range rs.rules {
		for _, a := range r.Produces {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}
