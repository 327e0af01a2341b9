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
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/routepatch/pkg/text"
)

// ErrUnknownPreset is returned by Lookup for names Presets does not list.
var ErrUnknownPreset = errors.Base("unknown preset")

// Stage selects which part of the scoping rules to build.
type Stage string

const (
	// StageSchemas swaps the header, imports the parent table and declares
	// the new params schemas.
	StageSchemas Stage = "schemas"

	// StageRoutes adds the ownership helpers and rewrites every route. It
	// expects StageSchemas to have run already.
	StageRoutes Stage = "routes"

	// StageAll is StageSchemas then StageRoutes.
	StageAll Stage = "all"
)

// Preset is a named, built-in rule set.
type Preset struct {
	Name        string
	Description string
	Stage       Stage
}

var presets = []Preset{
	{Name: "scope", Description: "scope a flat resource route file under a parent resource", Stage: StageAll},
	{Name: "scope-schemas", Description: "header, imports and params schemas only", Stage: StageSchemas},
	{Name: "scope-routes", Description: "helpers and route rewrites for a file already through scope-schemas", Stage: StageRoutes},
}

// Presets lists the built-in rule sets.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by name.
func Lookup(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, errors.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Build compiles the preset's rule set for names.
func (p Preset) Build(names Names) (*text.RuleSet, error) {
	rs, err := Build(names, p.Stage)
	if err != nil {
		return nil, err
	}
	rs.Name = p.Name
	return rs, nil
}

// Build compiles the scoping rules of stage for names.
func Build(names Names, stage Stage) (*text.RuleSet, error) {
	n, err := names.Resolve()
	if err != nil {
		return nil, err
	}

	var rules []*text.Rule
	switch stage {
	case StageSchemas:
		rules = schemaRules(n)
	case StageRoutes:
		rules = append([]*text.Rule{
			text.Expect("params-schemas-present", `const %parent%ParamsSchema = z\.object`).
				Describe("require the params schemas from the schemas stage").
				Producing("params-schemas"),
		}, routeRules(n)...)
	case StageAll:
		rules = append(schemaRules(n), routeRules(n)...)
	default:
		return nil, errors.Errorf("unknown stage %q", stage)
	}

	expand(n, rules)

	rs, err := text.NewRuleSet("scope-"+string(stage), rules...)
	if err != nil {
		return nil, errors.Errorf("building %s stage: %w", stage, err)
	}
	rs.Description = "scope " + n.Children + " under " + n.Parents
	return rs, nil
}

func schemaRules(n Names) []*text.Rule {
	return []*text.Rule{
		text.Replace("header", `/\*\*\n \* %Child% CRUD endpoints\.\n(?: \*[^\n]*\n)*? \*/`, text.Escape(header(routes(n)))).
			Describe("replace the file header with the scoped route list").
			WithGuard(`\* %Child% CRUD endpoints, scoped to a %parent%\.`).
			WithLimit(1),
		text.Replace("imports", `import \{ ([^}]*\b%children%\b[^}]*) \} from '([^']*/schema\.js)';`, "import { %parents%, ${1} } from '${2}';").
			Describe("import the parent table").
			WithGuard(`import \{[^}]*\b%parents%\b[^}]*\} from '[^']*/schema\.js';`).
			WithLimit(1),
		text.InsertBefore("params-schemas", `/\*\*\n \* Create %child% schema\.\n \*/`, paramsSchemas).
			Describe("declare the parent and child params schemas").
			WithGuard(`const %parent%ParamsSchema = z\.object`).
			Producing("params-schemas"),
		text.Remove("drop-child-params-schema", `/\*\*\n \* %Child% ID parameter schema\.\n \*/\nconst %child%ParamsSchema = z\.object\(\{\n  id: z\.coerce\.number\(\)\.int\(\)\.positive\(\),\n\}\);\n\n`).
			Describe("remove the superseded child params schema").
			Requiring("params-schemas"),
	}
}

func routeRules(n Names) []*text.Rule {
	rules := []*text.Rule{
		text.InsertAfter("helpers", `const %routes%: FastifyPluginAsync = async \(fastify\) => \{`, helpers).
			Describe("add the parent and ownership lookups").
			WithGuard(`async function validate%Parent%\(`).
			Requiring("params-schemas").
			Producing("helpers"),
	}
	for _, r := range routes(n) {
		rules = append(rules, r.rules()...)
	}
	return rules
}

// expand replaces the %name% placeholders of every rule.
func expand(n Names, rules []*text.Rule) {
	r := n.replacer()
	for _, rule := range rules {
		rule.Pattern = r.Replace(rule.Pattern)
		rule.Template = r.Replace(rule.Template)
		rule.Guard = r.Replace(rule.Guard)
		rule.Description = r.Replace(rule.Description)
	}
}
