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

package scope

import (
	"regexp"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidNames is returned when a resource name cannot be used in a route
// file identifier.
var ErrInvalidNames = errors.Base("invalid resource names")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SideRoute is a route that acts on one existing child, addressed by the
// child id param, such as POST /divisions/:divisionId/pools.
type SideRoute struct {
	Method string `json:"method" yaml:"method" toml:"method"` // post, put, delete, get
	Suffix string `json:"suffix" yaml:"suffix" toml:"suffix"` // path after /<children>/:<childId>/
}

// DefaultSideRoutes are the side routes of a division file.
var DefaultSideRoutes = []SideRoute{
	{Method: "post", Suffix: "generate-matches"},
	{Method: "post", Suffix: "pools"},
	{Method: "post", Suffix: "pools/bulk"},
}

// Names are the identifiers the scope rules are written against. Only Parent
// and Child are required; the rest derive from them.
type Names struct {
	Parent   string `json:"parent" yaml:"parent" toml:"parent"` // tournament
	Child    string `json:"child" yaml:"child" toml:"child"`    // division
	Parents  string `json:"parents,omitempty" yaml:"parents,omitempty" toml:"parents,omitempty"`
	Children string `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`

	// ParentID and ChildID are the path params, tournamentId and divisionId
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty"`
	ChildID  string `json:"child_id,omitempty" yaml:"child_id,omitempty" toml:"child_id,omitempty"`

	// ParentColumn is the foreign key column on the child table
	ParentColumn string `json:"parent_column,omitempty" yaml:"parent_column,omitempty" toml:"parent_column,omitempty"`

	// Routes is the plugin variable, divisionsRoutes
	Routes string `json:"routes,omitempty" yaml:"routes,omitempty" toml:"routes,omitempty"`

	SideRoutes []SideRoute `json:"side_routes,omitempty" yaml:"side_routes,omitempty" toml:"side_routes,omitempty"`
}

// DefaultNames scope divisions under tournaments.
func DefaultNames() Names {
	return Names{Parent: "tournament", Child: "division"}
}

// Resolve fills in every derived name and validates the result.
func (n Names) Resolve() (Names, error) {
	if n.Parent == "" || n.Child == "" {
		return n, errors.Errorf("%w: parent and child are required", ErrInvalidNames)
	}

	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&n.Parents, n.Parent+"s")
	def(&n.Children, n.Child+"s")
	def(&n.ParentID, n.Parent+"Id")
	def(&n.ChildID, n.Child+"Id")
	def(&n.ParentColumn, snake(n.Parent)+"_id")
	def(&n.Routes, n.Children+"Routes")
	if n.SideRoutes == nil {
		n.SideRoutes = DefaultSideRoutes
	}

	for _, v := range []string{n.Parent, n.Child, n.Parents, n.Children, n.ParentID, n.ChildID, n.ParentColumn, n.Routes} {
		if !identifier.MatchString(v) {
			return n, errors.Errorf("%w: %q is not an identifier", ErrInvalidNames, v)
		}
	}
	if n.Parent == n.Child {
		return n, errors.Errorf("%w: parent and child must differ", ErrInvalidNames)
	}

	for _, sr := range n.SideRoutes {
		switch sr.Method {
		case "get", "post", "put", "delete", "patch":
		default:
			return n, errors.Errorf("%w: side route %q: unknown method %q", ErrInvalidNames, sr.Suffix, sr.Method)
		}
		if sr.Suffix == "" || strings.ContainsAny(sr.Suffix, "'\"` \n") || strings.HasPrefix(sr.Suffix, "/") {
			return n, errors.Errorf("%w: side route suffix %q", ErrInvalidNames, sr.Suffix)
		}
	}

	return n, nil
}

// replacer expands the %name% placeholders used by the rule and snippet text.
func (n Names) replacer() *strings.Replacer {
	title := cases.Title(language.English, cases.NoLower)
	return strings.NewReplacer(
		"%parentColumn%", n.ParentColumn,
		"%parentId%", n.ParentID,
		"%childId%", n.ChildID,
		"%parents%", n.Parents,
		"%children%", n.Children,
		"%Parents%", title.String(n.Parents),
		"%Children%", title.String(n.Children),
		"%parent%", n.Parent,
		"%child%", n.Child,
		"%Parent%", title.String(n.Parent),
		"%Child%", title.String(n.Child),
		"%routes%", n.Routes,
	)
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
