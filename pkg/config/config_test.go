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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/routepatch/pkg/text"
)

func testContext() context.Context {
	return zerolog.New(os.Stderr).WithContext(context.Background())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		vars        map[string]string
		wantErr     bool
		errContains string
		check       func(t *testing.T, f *RuleSetFile)
	}{
		{
			name: "yaml",
			path: "testdata/widgets.yaml",
			check: func(t *testing.T, f *RuleSetFile) {
				assert.Equal(t, "widgets", f.Name, "name should match")
				assert.Equal(t, "scope widget routes under parents", f.Description)
				assert.Equal(t, []string{"src/routes/*.ts"}, f.Targets)
				assert.Equal(t, []string{"src/routes/*.test.ts"}, f.Exclude)
				require.Len(t, f.Rules, 2, "should have 2 rules")
				assert.Equal(t, "replace", f.Rules[0].Kind, "kind should default to replace")
				assert.Equal(t, "re2", f.Rules[0].Engine, "engine should default to the file engine")
				assert.Equal(t, 0, f.Rules[0].Limit, "replace should rewrite every match")
				assert.Equal(t, "insert_before", f.Rules[1].Kind)
				assert.Equal(t, 1, f.Rules[1].Limit, "insert should default to the first match")
				assert.Equal(t, "// scoped\n", f.Rules[1].Template)
				assert.Equal(t, []string{"scoped"}, f.Rules[1].Requires)
				assert.Equal(t, "testdata/widgets.yaml", f.Location())
				assert.Equal(t, "testdata", f.Dir())
			},
		},
		{
			name: "json",
			path: "testdata/widgets.json",
			check: func(t *testing.T, f *RuleSetFile) {
				require.Len(t, f.Rules, 2)
				assert.Equal(t, `route\(['"](/widgets)['"]\)`, f.Rules[0].Pattern)
				assert.Equal(t, "re2", f.Rules[0].Engine, "explicit engine should win")
				assert.Equal(t, "regexp2", f.Rules[1].Engine, "engine should default to the file engine")
			},
		},
		{
			name: "toml",
			path: "testdata/widgets.toml",
			check: func(t *testing.T, f *RuleSetFile) {
				require.Len(t, f.Rules, 2)
				assert.Equal(t, []string{"src/**/*.ts"}, f.Targets)
				assert.Equal(t, `route\(['"](/widgets)['"]\)`, f.Rules[0].Pattern)
				assert.Equal(t, "remove", f.Rules[1].Kind)
				assert.Equal(t, `// TODO[^\n]*\n`, f.Rules[1].Pattern)
				assert.True(t, f.Rules[1].MultiLine)
			},
		},
		{
			name: "hcl_with_vars",
			path: "testdata/widgets.hcl",
			vars: map[string]string{"parent": "parent", "child": "widget"},
			check: func(t *testing.T, f *RuleSetFile) {
				assert.Equal(t, "scope widgets under parents", f.Description)
				assert.Equal(t, []string{"src/routes/widgets.ts"}, f.Targets)
				require.Len(t, f.Rules, 2)
				assert.Equal(t, "route", f.Rules[0].ID, "block label should be the id")
				assert.Equal(t, `route\(['"](/widgets)['"]\)`, f.Rules[0].Pattern)
				assert.Equal(t, "route('/parents/:parentId$1')", f.Rules[0].Template)
				assert.Equal(t, `(\w+)Id\b`, f.Rules[1].Pattern)
				assert.Equal(t, "${1}_id", f.Rules[1].Template)
				assert.Equal(t, 2, f.Rules[1].Limit)
				assert.Equal(t, "regexp2", f.Rules[1].Engine)
			},
		},
		{
			name:        "hcl_missing_var",
			path:        "testdata/widgets.hcl",
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name: "yaml_preset",
			path: "testdata/scope.yaml",
			check: func(t *testing.T, f *RuleSetFile) {
				assert.Equal(t, "scope", f.Preset)
				require.NotNil(t, f.Scope)
				assert.Equal(t, "league", f.Scope.Parent)
				assert.Equal(t, "team", f.Scope.Child)
				require.Len(t, f.Scope.SideRoutes, 1)
				assert.Equal(t, "roster", f.Scope.SideRoutes[0].Suffix)
			},
		},
		{
			name:        "unknown_field",
			path:        "testdata/unknown-field.yaml",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "missing_file",
			path:        "testdata/missing.yaml",
			wantErr:     true,
			errContains: "reading rule set file",
		},
	}

	ctx := testContext()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(ctx, tt.path, tt.vars)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
	}{
		{
			name:        "missing_name",
			config:      "rules:\n  - id: a\n    pattern: a\n",
			errContains: "name is required",
		},
		{
			name:        "no_rules",
			config:      "name: empty\n",
			errContains: "at least one rule or a preset is required",
		},
		{
			name:        "missing_id",
			config:      "name: x\nrules:\n  - pattern: a\n",
			errContains: "id is required",
		},
		{
			name:        "unknown_kind",
			config:      "name: x\nrules:\n  - id: a\n    kind: rewrite\n    pattern: a\n",
			errContains: `unknown kind "rewrite"`,
		},
		{
			name:        "unknown_engine",
			config:      "name: x\nengine: pcre\nrules:\n  - id: a\n    pattern: a\n",
			errContains: `unknown engine "pcre"`,
		},
		{
			name:        "unknown_preset",
			config:      "name: x\npreset: nope\n",
			errContains: `unknown preset "nope"`,
		},
		{
			name:        "unsupported_extension",
			filename:    "rules.ini",
			config:      "name = x\n",
			errContains: "no parser found",
		},
	}

	ctx := testContext()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := tt.filename
			if filename == "" {
				filename = "rules.yaml"
			}
			path := filepath.Join(t.TempDir(), filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing rule set file should succeed")

			_, err := Load(ctx, path, nil)
			require.Error(t, err, "Load should return error")
			assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
		})
	}
}

func TestToRuleSet(t *testing.T) {
	ctx := testContext()

	t.Run("rules_apply", func(t *testing.T) {
		f, err := Load(ctx, "testdata/widgets.yaml", nil)
		require.NoError(t, err)

		rs, err := f.ToRuleSet()
		require.NoError(t, err)
		assert.Equal(t, "widgets", rs.Name)
		assert.Equal(t, "scope widget routes under parents", rs.Description)

		result, err := text.NewPatcher().Apply(ctx, "route('/widgets')\n", rs)
		require.NoError(t, err)
		assert.Equal(t, "// scoped\nroute('/parents/:parentId/widgets')\n", result.Modified)
	})

	t.Run("insert_defaults_to_first_match", func(t *testing.T) {
		f, err := Load(ctx, "testdata/widgets.yaml", nil)
		require.NoError(t, err)

		rs, err := f.ToRuleSet()
		require.NoError(t, err)

		result, err := text.NewPatcher().Apply(ctx, "route('/widgets')\nroute('/widgets')\n", rs)
		require.NoError(t, err)
		assert.Equal(t, "// scoped\nroute('/parents/:parentId/widgets')\nroute('/parents/:parentId/widgets')\n", result.Modified)

		o, ok := result.Outcome("comment")
		require.True(t, ok)
		assert.Equal(t, 1, o.Count)
	})

	t.Run("regexp2_rules_apply", func(t *testing.T) {
		f, err := Load(ctx, "testdata/widgets.json", nil)
		require.NoError(t, err)

		rs, err := f.ToRuleSet()
		require.NoError(t, err)

		result, err := text.NewPatcher().Apply(ctx, "route('/widgets')", rs)
		require.NoError(t, err)
		assert.Equal(t, "route('/parents/:parentId/gadgets')", result.Modified)
	})

	t.Run("malformed_template_fails_at_load", func(t *testing.T) {
		f, err := Load(ctx, "testdata/bad-template.yaml", nil)
		require.NoError(t, err)

		_, err = f.ToRuleSet()
		require.Error(t, err)
		assert.ErrorIs(t, err, text.ErrMalformedTemplate)
	})

	t.Run("preset_then_rules", func(t *testing.T) {
		f, err := Load(ctx, "testdata/scope.yaml", nil)
		require.NoError(t, err)

		rs, err := f.ToRuleSet()
		require.NoError(t, err)
		assert.Equal(t, "teams", rs.Name)

		_, ok := rs.Rule("roster-route")
		assert.True(t, ok, "preset rules should use the file's names")

		rules := rs.Rules()
		assert.Equal(t, "banner", rules[len(rules)-1].ID, "file rules should run after the preset")
	})
}

func TestRuleSetFileString(t *testing.T) {
	tests := []struct {
		name string
		f    *RuleSetFile
		want string
	}{
		{
			name: "rules_only",
			f:    &RuleSetFile{Name: "widgets", Rules: []RuleSpec{{ID: "a"}, {ID: "b"}}},
			want: "widgets (2 rules)",
		},
		{
			name: "preset",
			f:    &RuleSetFile{Name: "teams", Preset: "scope", Rules: []RuleSpec{{ID: "a"}}},
			want: "teams (preset scope + 1 rules)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.String(), "String() should match")
		})
	}
}
