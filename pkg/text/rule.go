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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrMalformedTemplate is returned when a replacement template references
	// a capture group its pattern does not define.
	ErrMalformedTemplate = errors.Base("malformed replacement template")

	// ErrInvalidRule is returned for rules that cannot be compiled.
	ErrInvalidRule = errors.Base("invalid rule")
)

// Kind is the shape of a rule's rewrite.
type Kind string

const (
	KindReplace      Kind = "replace"       // pattern -> expanded template
	KindInsertBefore Kind = "insert_before" // literal text placed before the anchor
	KindInsertAfter  Kind = "insert_after"  // literal text placed after the anchor
	KindRemove       Kind = "remove"        // match deleted
	KindLiteral      Kind = "literal"       // exact text -> exact text
	KindExpect       Kind = "expect"        // match required, text untouched
)

// Flags are the match modes of a rule.
type Flags struct {
	MultiLine  bool // ^ and $ match at line boundaries
	DotAll     bool // . matches \n, so one match may span many lines
	IgnoreCase bool
}

func (f Flags) prefix() string {
	var b strings.Builder
	if f.MultiLine {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}

// Rule is one atomic transformation: a match pattern, a replacement and its
// match modes. A rule is compiled once and then never changes.
type Rule struct {
	ID          string
	Description string
	Kind        Kind

	// Pattern is the regular expression to match. For KindLiteral it is the
	// exact text to find.
	Pattern string

	// Template is the replacement. It is expanded with capture groups for
	// KindReplace, and taken verbatim for the insert and literal kinds.
	Template string

	Flags  Flags
	Engine EngineKind

	// Limit bounds the number of rewritten occurrences, 0 rewrites all.
	Limit int

	// Guard skips the rule when it matches the current text, which makes
	// insertions safe to run twice.
	Guard string

	// Requires names anchors earlier rules must have produced; Produces
	// names the anchors this rule leaves behind when it matches.
	Requires []string
	Produces []string

	compiled *compiledRule
}

type compiledRule struct {
	match matcher
	guard matcher
	tmpl  *template
}

// Replace creates a rule rewriting every match of pattern with tmpl.
func Replace(id, pattern, tmpl string) *Rule {
	return &Rule{ID: id, Kind: KindReplace, Pattern: pattern, Template: tmpl}
}

// InsertBefore creates a rule placing text just before the first match of anchor.
func InsertBefore(id, anchor, text string) *Rule {
	return &Rule{ID: id, Kind: KindInsertBefore, Pattern: anchor, Template: text, Limit: 1}
}

// InsertAfter creates a rule placing text just after the first match of anchor.
func InsertAfter(id, anchor, text string) *Rule {
	return &Rule{ID: id, Kind: KindInsertAfter, Pattern: anchor, Template: text, Limit: 1}
}

// Remove creates a rule deleting every match of pattern.
func Remove(id, pattern string) *Rule {
	return &Rule{ID: id, Kind: KindRemove, Pattern: pattern}
}

// Literal creates a rule replacing every exact occurrence of from with to.
func Literal(id, from, to string) *Rule {
	return &Rule{ID: id, Kind: KindLiteral, Pattern: from, Template: to}
}

// Expect creates a rule that changes nothing and matches when pattern is
// present. It is used to produce anchors for text an earlier run inserted.
func Expect(id, pattern string) *Rule {
	return &Rule{ID: id, Kind: KindExpect, Pattern: pattern, Limit: 1}
}

// WithMultiLine makes ^ and $ line anchors.
func (r *Rule) WithMultiLine() *Rule {
	r.Flags.MultiLine = true
	return r
}

// WithDotAll lets a match span lines.
func (r *Rule) WithDotAll() *Rule {
	r.Flags.DotAll = true
	return r
}

// WithLimit caps the number of rewritten occurrences.
func (r *Rule) WithLimit(n int) *Rule {
	r.Limit = n
	return r
}

// WithEngine selects the regular expression engine.
func (r *Rule) WithEngine(e EngineKind) *Rule {
	r.Engine = e
	return r
}

// WithGuard skips the rule when pattern already matches.
func (r *Rule) WithGuard(pattern string) *Rule {
	r.Guard = pattern
	return r
}

// Requiring declares anchors this rule depends on.
func (r *Rule) Requiring(anchors ...string) *Rule {
	r.Requires = append(r.Requires, anchors...)
	return r
}

// Producing declares anchors this rule creates.
func (r *Rule) Producing(anchors ...string) *Rule {
	r.Produces = append(r.Produces, anchors...)
	return r
}

// Describe sets a human readable description.
func (r *Rule) Describe(desc string) *Rule {
	r.Description = desc
	return r
}

// Compile checks the rule and prepares it for Apply. Template references to
// undefined groups fail here rather than at apply time.
func (r *Rule) Compile() error {
	if r.ID == "" {
		return errors.Errorf("%w: rule id is required", ErrInvalidRule)
	}
	if r.Pattern == "" {
		return errors.Errorf("%w: rule %q: pattern is required", ErrInvalidRule, r.ID)
	}
	if r.Limit < 0 {
		return errors.Errorf("%w: rule %q: limit must not be negative", ErrInvalidRule, r.ID)
	}

	pattern, tmpl := r.Pattern, r.Template
	switch r.Kind {
	case KindReplace:
	case KindInsertBefore:
		tmpl = Escape(r.Template) + "${0}"
	case KindInsertAfter:
		tmpl = "${0}" + Escape(r.Template)
	case KindRemove:
		tmpl = ""
	case KindLiteral:
		pattern = regexp.QuoteMeta(r.Pattern)
		tmpl = Escape(r.Template)
	case KindExpect:
		tmpl = "${0}"
	default:
		return errors.Errorf("%w: rule %q: unknown kind %q", ErrInvalidRule, r.ID, r.Kind)
	}

	match, err := compileMatcher(r.Engine, pattern, r.Flags)
	if err != nil {
		return errors.Errorf("rule %q: %w", r.ID, err)
	}

	t, err := parseTemplate(tmpl, match)
	if err != nil {
		return errors.Errorf("rule %q: %w", r.ID, err)
	}

	c := &compiledRule{match: match, tmpl: t}
	if r.Guard != "" {
		c.guard, err = compileMatcher(r.Engine, r.Guard, r.Flags)
		if err != nil {
			return errors.Errorf("rule %q: guard: %w", r.ID, err)
		}
	}

	r.compiled = c
	return nil
}

// Compiled reports whether Compile succeeded.
func (r *Rule) Compiled() bool {
	return r.compiled != nil
}

// Guarded reports whether the rule's guard matches s.
func (r *Rule) Guarded(s string) (bool, error) {
	if r.compiled == nil {
		if err := r.Compile(); err != nil {
			return false, err
		}
	}
	if r.compiled.guard == nil {
		return false, nil
	}
	found, err := r.compiled.guard.findAll(s, 1)
	if err != nil {
		return false, errors.Errorf("rule %q: guard: %w", r.ID, err)
	}
	return len(found) > 0, nil
}

// Apply rewrites s. Zero matches return s unchanged with StatusUnmatched.
func (r *Rule) Apply(s string) (string, Outcome, error) {
	if r.compiled == nil {
		if err := r.Compile(); err != nil {
			return s, Outcome{}, err
		}
	}

	out := Outcome{RuleID: r.ID, Kind: r.Kind, Status: StatusUnmatched}

	n := r.Limit
	if n == 0 {
		n = -1
	}
	locs, err := r.compiled.match.findAll(s, n)
	if err != nil {
		return s, out, errors.Errorf("rule %q: %w", r.ID, err)
	}
	if len(locs) == 0 {
		return s, out, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		r.compiled.tmpl.expand(&b, s, loc)
		last = loc[1]
		out.Spans = append(out.Spans, Span{Start: loc[0], End: loc[1]})
	}
	b.WriteString(s[last:])

	out.Status = StatusMatched
	out.Count = len(locs)
	return b.String(), out, nil
}
