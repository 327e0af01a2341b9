package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetRoutes = "fastify.get('/widgets', list)\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       func(dir string) []string
		rules      string
		wantCode   int
		wantFile   string
		wantStdout []string
		wantOutput []string
	}{
		{
			name: "presets",
			args: func(string) []string { return []string{"presets"} },
			wantStdout: []string{
				"scope", "scope-schemas", "scope-routes",
			},
		},
		{
			name: "apply_rules_file",
			args: func(dir string) []string {
				return []string{"apply", "--rules", filepath.Join(dir, "rules.yaml"), "--var", "parent=shop", filepath.Join(dir, "routes.ts")}
			},
			rules:      "name: widgets\nrules:\n  - id: scope-widgets\n    pattern: \"'/widgets\"\n    template: \"'/shops/:shopId/widgets\"\n",
			wantFile:   "fastify.get('/shops/:shopId/widgets', list)\n",
			wantStdout: []string{"done: 1 patched, 0 unchanged"},
		},
		{
			name: "dry_run_leaves_file",
			args: func(dir string) []string {
				return []string{"apply", "--rules", filepath.Join(dir, "rules.yaml"), "--dry-run", "--diff", filepath.Join(dir, "routes.ts")}
			},
			rules:      "name: widgets\nrules:\n  - id: scope-widgets\n    pattern: \"'/widgets\"\n    template: \"'/shops/:shopId/widgets\"\n",
			wantFile:   widgetRoutes,
			wantStdout: []string{"+fastify.get('/shops/:shopId/widgets', list)", "dry run complete"},
		},
		{
			name: "unmatched_rule_is_not_failure",
			args: func(dir string) []string {
				return []string{"apply", "--rules", filepath.Join(dir, "rules.yaml"), filepath.Join(dir, "routes.ts")}
			},
			rules:      "name: gadgets\nrules:\n  - id: gadgets\n    pattern: gadgets\n    template: things\n",
			wantFile:   widgetRoutes,
			wantStdout: []string{"rule gadgets matched nothing", "done: 0 patched, 1 unchanged"},
		},
		{
			name: "missing_target_exits_1",
			args: func(dir string) []string {
				return []string{"apply", "--preset", "scope", filepath.Join(dir, "missing.ts")}
			},
			wantCode:   1,
			wantStdout: []string{"1 of 1 files failed"},
		},
		{
			name: "malformed_template_exits_1",
			args: func(dir string) []string {
				return []string{"apply", "--rules", filepath.Join(dir, "rules.yaml"), filepath.Join(dir, "routes.ts")}
			},
			rules:      "name: broken\nrules:\n  - id: broken\n    pattern: widgets\n    template: $2\n",
			wantCode:   1,
			wantFile:   widgetRoutes,
			wantOutput: []string{"group $2 is not defined"},
		},
		{
			name: "preset_and_rules_are_exclusive",
			args: func(dir string) []string {
				return []string{"apply", "--preset", "scope", "--rules", "x.yaml", filepath.Join(dir, "routes.ts")}
			},
			wantCode: 1,
			wantFile: widgetRoutes,
		},
		{
			name: "bad_var_exits_1",
			args: func(dir string) []string {
				return []string{"apply", "--rules", filepath.Join(dir, "rules.yaml"), "--var", "novalue", filepath.Join(dir, "routes.ts")}
			},
			rules:      "name: widgets\nrules:\n  - id: a\n    pattern: a\n",
			wantCode:   1,
			wantFile:   widgetRoutes,
			wantOutput: []string{"is not key=value"},
		},
		{
			name:       "plan_preset",
			args:       func(string) []string { return []string{"plan", "--preset", "scope-routes", "--parent", "league", "--child", "team"} },
			wantStdout: []string{"scope-routes", "params-schemas-present", "create-route", "order checked"},
		},
		{
			name:     "unknown_preset_exits_1",
			args:     func(string) []string { return []string{"plan", "--preset", "nope"} },
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "routes.ts", widgetRoutes)
			if tt.rules != "" {
				writeFile(t, dir, "rules.yaml", tt.rules)
			}

			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			args := append([]string{"--no-color"}, tt.args(dir)...)

			code := run(context.Background(), args, stdout, stderr)
			assert.Equal(t, tt.wantCode, code, "stdout:\n%s\nstderr:\n%s", stdout, stderr)

			if tt.wantFile != "" {
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, tt.wantFile, string(data))
			}
			for _, want := range tt.wantStdout {
				assert.Contains(t, stdout.String(), want)
			}
			for _, want := range tt.wantOutput {
				assert.Contains(t, stdout.String()+stderr.String(), want)
			}
		})
	}
}

func TestRun_VersionJSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	code := run(context.Background(), []string{"version", "--json"}, stdout, &bytes.Buffer{})
	require.Equal(t, 0, code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &info))
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "platform")
}
