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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/routepatch/pkg/scope"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files. Variables are
// available to expressions as var.<name>. A literal "${" must be written "$${".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the rule set file from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, vars map[string]string) (*RuleSetFile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "rules.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	values := map[string]cty.Value{}
	for k, v := range vars {
		values[k] = cty.StringVal(v)
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(values),
		},
	}

	// Define HCL schema
	type hclSideRoute struct {
		Method string `hcl:"method"`
		Suffix string `hcl:"suffix"`
	}
	type hclScope struct {
		Parent       string         `hcl:"parent"`
		Child        string         `hcl:"child"`
		Parents      string         `hcl:"parents,optional"`
		Children     string         `hcl:"children,optional"`
		ParentID     string         `hcl:"parent_id,optional"`
		ChildID      string         `hcl:"child_id,optional"`
		ParentColumn string         `hcl:"parent_column,optional"`
		Routes       string         `hcl:"routes,optional"`
		SideRoutes   []hclSideRoute `hcl:"side_route,block"`
	}
	type hclRule struct {
		ID          string   `hcl:"id,label"`
		Description string   `hcl:"description,optional"`
		Kind        string   `hcl:"kind,optional"`
		Pattern     string   `hcl:"pattern"`
		Template    string   `hcl:"template,optional"`
		MultiLine   bool     `hcl:"multiline,optional"`
		DotAll      bool     `hcl:"dotall,optional"`
		IgnoreCase  bool     `hcl:"ignore_case,optional"`
		Engine      string   `hcl:"engine,optional"`
		Limit       int      `hcl:"limit,optional"`
		Guard       string   `hcl:"guard,optional"`
		Requires    []string `hcl:"requires,optional"`
		Produces    []string `hcl:"produces,optional"`
	}
	type hclRuleSetFile struct {
		Name        string    `hcl:"name"`
		Description string    `hcl:"description,optional"`
		Engine      string    `hcl:"engine,optional"`
		Targets     []string  `hcl:"targets,optional"`
		Exclude     []string  `hcl:"exclude,optional"`
		Preset      string    `hcl:"preset,optional"`
		Scope       *hclScope `hcl:"scope,block"`
		Rules       []hclRule `hcl:"rule,block"`
	}

	// Decode HCL
	var hf hclRuleSetFile
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hf)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	f := &RuleSetFile{
		Name:        hf.Name,
		Description: hf.Description,
		Engine:      hf.Engine,
		Targets:     hf.Targets,
		Exclude:     hf.Exclude,
		Preset:      hf.Preset,
	}

	if hf.Scope != nil {
		f.Scope = &scope.Names{
			Parent:       hf.Scope.Parent,
			Child:        hf.Scope.Child,
			Parents:      hf.Scope.Parents,
			Children:     hf.Scope.Children,
			ParentID:     hf.Scope.ParentID,
			ChildID:      hf.Scope.ChildID,
			ParentColumn: hf.Scope.ParentColumn,
			Routes:       hf.Scope.Routes,
		}
		for _, sr := range hf.Scope.SideRoutes {
			f.Scope.SideRoutes = append(f.Scope.SideRoutes, scope.SideRoute{Method: sr.Method, Suffix: sr.Suffix})
		}
	}

	for _, r := range hf.Rules {
		f.Rules = append(f.Rules, RuleSpec{
			ID:          r.ID,
			Description: r.Description,
			Kind:        r.Kind,
			Pattern:     r.Pattern,
			Template:    r.Template,
			MultiLine:   r.MultiLine,
			DotAll:      r.DotAll,
			IgnoreCase:  r.IgnoreCase,
			Engine:      r.Engine,
			Limit:       r.Limit,
			Guard:       r.Guard,
			Requires:    r.Requires,
			Produces:    r.Produces,
		})
	}

	return f, nil
}
