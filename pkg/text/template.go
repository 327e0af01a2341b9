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
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// segment is either literal text or a capture group reference.
type segment struct {
	literal string
	group   int // -1 for literal segments
}

// template is a parsed replacement template with every group reference
// resolved against the pattern it belongs to.
type template struct {
	raw      string
	segments []segment
}

// Escape quotes every '$' in s so it survives template expansion verbatim.
func Escape(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// parseTemplate parses raw using the regexp.Expand syntax ($1, ${1}, $name,
// ${name}, $$). Unlike regexp.Expand, a reference to a group the pattern does
// not define, or a '$' that starts no reference, is an error. Numbered
// references follow the engine's group numbering (see EngineRegexp2).
func parseTemplate(raw string, m matcher) (*template, error) {
	t := &template{raw: raw}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String(), group: -1})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '$' {
			lit.WriteByte(c)
			continue
		}
		if i+1 < len(raw) && raw[i+1] == '$' {
			lit.WriteByte('$')
			i++
			continue
		}

		name, width, ok := extractRef(raw[i+1:])
		if !ok {
			return nil, errors.Errorf("%w: stray '$' at offset %d in %q (use $$ for a literal dollar)", ErrMalformedTemplate, i, raw)
		}

		group, err := resolveGroup(name, m)
		if err != nil {
			return nil, err
		}

		flush()
		t.segments = append(t.segments, segment{group: group})
		i += width
	}
	flush()

	return t, nil
}

// extractRef reads a reference name following a '$'. It returns the name and
// the number of bytes consumed after the '$'.
func extractRef(s string) (string, int, bool) {
	if s == "" {
		return "", 0, false
	}
	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return "", 0, false
		}
		name := s[1:end]
		for j := 0; j < len(name); j++ {
			if !isNameByte(name[j]) {
				return "", 0, false
			}
		}
		return name, end + 1, true
	}

	j := 0
	for j < len(s) && isNameByte(s[j]) {
		j++
	}
	if j == 0 {
		return "", 0, false
	}
	return s[:j], j, true
}

func isNameByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func resolveGroup(name string, m matcher) (int, error) {
	if n, err := strconv.Atoi(name); err == nil {
		if !m.hasGroup(n) {
			return 0, errors.Errorf("%w: group $%d is not defined by pattern %q", ErrMalformedTemplate, n, m.String())
		}
		return n, nil
	}

	n := m.groupIndex(name)
	if n < 0 {
		return 0, errors.Errorf("%w: group ${%s} is not defined by pattern %q", ErrMalformedTemplate, name, m.String())
	}
	return n, nil
}

// expand writes the template for one match to b. loc holds byte offset pairs
// per group, -1 for groups that did not participate.
func (t *template) expand(b *strings.Builder, src string, loc []int) {
	for _, seg := range t.segments {
		if seg.group < 0 {
			b.WriteString(seg.literal)
			continue
		}
		if 2*seg.group+1 >= len(loc) {
			continue
		}
		start, end := loc[2*seg.group], loc[2*seg.group+1]
		if start < 0 || end < 0 {
			continue
		}
		b.WriteString(src[start:end])
	}
}

// groups returns the group numbers the template references, in order.
func (t *template) groups() []int {
	var out []int
	for _, seg := range t.segments {
		if seg.group >= 0 {
			out = append(out, seg.group)
		}
	}
	return out
}
