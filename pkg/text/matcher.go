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
	"time"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// EngineKind selects the regular expression implementation behind a rule.
type EngineKind string

const (
	// EngineRE2 is the standard library engine: linear time, no lookaround
	// and no backreferences.
	EngineRE2 EngineKind = "re2"

	// EngineRegexp2 is a backtracking engine with .NET syntax (lookaround,
	// backreferences, atomic groups). Groups are numbered the .NET way:
	// unnamed groups first, then named ones, so in (?<w>a)(b) $1 is b and
	// $2 is a. Refer to named groups by name.
	EngineRegexp2 EngineKind = "regexp2"
)

// Regexp2Timeout bounds a single regexp2 match so a pathological pattern
// cannot hang a run.
var Regexp2Timeout = 5 * time.Second

// matcher hides the two engines behind byte offsets.
type matcher interface {
	// findAll returns up to n matches (n < 0 for all) as submatch index
	// pairs, in the shape of regexp.FindAllStringSubmatchIndex.
	findAll(s string, n int) ([][]int, error)
	hasGroup(n int) bool
	groupIndex(name string) int
	String() string
}

func compileMatcher(engine EngineKind, pattern string, flags Flags) (matcher, error) {
	switch engine {
	case "", EngineRE2:
		re, err := regexp.Compile(flags.prefix() + pattern)
		if err != nil {
			return nil, errors.Errorf("compiling pattern: %w", err)
		}
		return &re2Matcher{re: re}, nil
	case EngineRegexp2:
		re, err := regexp2.Compile(pattern, flags.regexp2Options())
		if err != nil {
			return nil, errors.Errorf("compiling pattern: %w", err)
		}
		re.MatchTimeout = Regexp2Timeout
		return newRegexp2Matcher(re), nil
	default:
		return nil, errors.Errorf("%w: unknown engine %q", ErrInvalidRule, engine)
	}
}

func (f Flags) regexp2Options() regexp2.RegexOptions {
	opts := regexp2.None
	if f.MultiLine {
		opts |= regexp2.Multiline
	}
	if f.DotAll {
		opts |= regexp2.Singleline
	}
	if f.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	return opts
}

type re2Matcher struct {
	re *regexp.Regexp
}

func (m *re2Matcher) findAll(s string, n int) ([][]int, error) {
	return m.re.FindAllStringSubmatchIndex(s, n), nil
}

func (m *re2Matcher) hasGroup(n int) bool {
	return n >= 0 && n <= m.re.NumSubexp()
}

func (m *re2Matcher) groupIndex(name string) int {
	return m.re.SubexpIndex(name)
}

func (m *re2Matcher) String() string {
	return m.re.String()
}

type regexp2Matcher struct {
	re     *regexp2.Regexp
	groups map[int]bool
	slots  int
}

func newRegexp2Matcher(re *regexp2.Regexp) *regexp2Matcher {
	m := &regexp2Matcher{re: re, groups: map[int]bool{}}
	for _, n := range re.GetGroupNumbers() {
		m.groups[n] = true
		if n+1 > m.slots {
			m.slots = n + 1
		}
	}
	return m
}

func (m *regexp2Matcher) findAll(s string, n int) ([][]int, error) {
	// regexp2 reports rune offsets; offsets maps them back to bytes.
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))

	var out [][]int
	match, err := m.re.FindStringMatch(s)
	for ; match != nil && (n < 0 || len(out) < n); match, err = m.re.FindNextMatch(match) {
		loc := make([]int, 2*m.slots)
		for i := range loc {
			loc[i] = -1
		}
		for g := range m.groups {
			group := match.GroupByNumber(g)
			if group == nil || len(group.Captures) == 0 {
				continue
			}
			loc[2*g] = offsets[group.Index]
			loc[2*g+1] = offsets[group.Index+group.Length]
		}
		out = append(out, loc)
	}
	if err != nil {
		return nil, errors.Errorf("matching %q: %w", m.re.String(), err)
	}
	return out, nil
}

func (m *regexp2Matcher) hasGroup(n int) bool {
	return m.groups[n]
}

func (m *regexp2Matcher) groupIndex(name string) int {
	n := m.re.GroupNumberFromName(name)
	if !m.groups[n] {
		return -1
	}
	return n
}

func (m *regexp2Matcher) String() string {
	return m.re.String()
}
