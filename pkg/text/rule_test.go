package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Apply(t *testing.T) {
	tests := []struct {
		name       string
		rule       *Rule
		input      string
		want       string
		wantCount  int
		wantStatus Status
	}{
		{
			name:       "capture_group_substitution",
			rule:       Replace("route", `route\(['"](/widgets)['"]\)`, `route('/parents/:parentId$1')`),
			input:      "route('/widgets')",
			want:       "route('/parents/:parentId/widgets')",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "all_occurrences_by_default",
			rule:       Replace("x", `x`, "y"),
			input:      "a x b x c x",
			want:       "a y b y c y",
			wantCount:  3,
			wantStatus: StatusMatched,
		},
		{
			name:       "limit_first_occurrence",
			rule:       Replace("x", `x`, "y").WithLimit(1),
			input:      "a x b x c x",
			want:       "a y b x c x",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "regexp2_numbers_named_groups_last",
			rule:       Replace("n", `(?<w>a)(b)`, "${w}-$1-$2").WithEngine(EngineRegexp2),
			input:      "ab",
			want:       "a-b-a",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "no_match",
			rule:       Replace("x", `zzz`, "y"),
			input:      "a x b",
			want:       "a x b",
			wantCount:  0,
			wantStatus: StatusUnmatched,
		},
		{
			name:       "dotall_spans_lines",
			rule:       Replace("span", `start.*?end`, "X").WithDotAll(),
			input:      "start\nmiddle\nend",
			want:       "X",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "without_dotall_stops_at_newline",
			rule:       Replace("span", `start.*?end`, "X"),
			input:      "start\nmiddle\nend",
			want:       "start\nmiddle\nend",
			wantCount:  0,
			wantStatus: StatusUnmatched,
		},
		{
			name:       "multiline_line_anchors",
			rule:       Replace("let", `^const (\w+)`, "let $1").WithMultiLine(),
			input:      "a\nconst x = 1\nconst y = 2",
			want:       "a\nlet x = 1\nlet y = 2",
			wantCount:  2,
			wantStatus: StatusMatched,
		},
		{
			name:       "named_group",
			rule:       Replace("named", `(?P<user>\w+)@example`, "${user}@corp"),
			input:      "mail bob@example now",
			want:       "mail bob@corp now",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "insert_before_keeps_dollars",
			rule:       InsertBefore("ins", `const b`, "const price = `${x}`;\n"),
			input:      "const a;\nconst b;\n",
			want:       "const a;\nconst price = `${x}`;\nconst b;\n",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "insert_after_first_anchor_only",
			rule:       InsertAfter("ins", `\{`, " body"),
			input:      "{ } { }",
			want:       "{ body } { }",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "remove",
			rule:       Remove("rm", `// drop me\n`),
			input:      "a\n// drop me\nb\n",
			want:       "a\nb\n",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "literal_quotes_metacharacters",
			rule:       Literal("lit", "a.b(c)", "$x"),
			input:      "a.b(c) axb(c)",
			want:       "$x axb(c)",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "expect_leaves_text",
			rule:       Expect("probe", `const \w+Schema`),
			input:      "const aSchema = 1;\nconst bSchema = 2;",
			want:       "const aSchema = 1;\nconst bSchema = 2;",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "regexp2_lookahead",
			rule:       Replace("la", `foo(?=bar)`, "baz").WithEngine(EngineRegexp2),
			input:      "foobar foobaz",
			want:       "bazbar foobaz",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
		{
			name:       "regexp2_backreference",
			rule:       Replace("br", `(\w)\1`, "<$1>").WithEngine(EngineRegexp2),
			input:      "aabb cd",
			want:       "<a><b> cd",
			wantCount:  2,
			wantStatus: StatusMatched,
		},
		{
			name:       "regexp2_dotall",
			rule:       Replace("span", `start.*?end`, "X").WithEngine(EngineRegexp2).WithDotAll(),
			input:      "start\nmiddle\nend!",
			want:       "X!",
			wantCount:  1,
			wantStatus: StatusMatched,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.rule.Compile())

			got, outcome, err := tt.rule.Apply(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, outcome.Count)
			assert.Equal(t, tt.wantStatus, outcome.Status)
			assert.Equal(t, tt.rule.ID, outcome.RuleID)
			assert.Len(t, outcome.Spans, tt.wantCount)
		})
	}
}

func TestRule_Spans(t *testing.T) {
	t.Run("re2_byte_offsets", func(t *testing.T) {
		r := Replace("x", `x`, "y")
		_, outcome, err := r.Apply("ax bx")
		require.NoError(t, err)
		assert.Equal(t, []Span{{Start: 1, End: 2}, {Start: 4, End: 5}}, outcome.Spans)
	})

	t.Run("regexp2_multibyte_offsets", func(t *testing.T) {
		r := Replace("w", `w(ö)rld`, "W${1}RLD").WithEngine(EngineRegexp2)
		got, outcome, err := r.Apply("héllo wörld")
		require.NoError(t, err)
		assert.Equal(t, "héllo WöRLD", got)
		assert.Equal(t, []Span{{Start: 7, End: 13}}, outcome.Spans)
	})
}

func TestRule_Compile(t *testing.T) {
	tests := []struct {
		name      string
		rule      *Rule
		wantError error
	}{
		{
			name:      "missing_id",
			rule:      Replace("", `a`, "b"),
			wantError: ErrInvalidRule,
		},
		{
			name:      "missing_pattern",
			rule:      Replace("r", "", "b"),
			wantError: ErrInvalidRule,
		},
		{
			name:      "negative_limit",
			rule:      Replace("r", `a`, "b").WithLimit(-1),
			wantError: ErrInvalidRule,
		},
		{
			name:      "unknown_kind",
			rule:      &Rule{ID: "r", Kind: "rewrite", Pattern: `a`},
			wantError: ErrInvalidRule,
		},
		{
			name:      "unknown_engine",
			rule:      Replace("r", `a`, "b").WithEngine("pcre"),
			wantError: ErrInvalidRule,
		},
		{
			name:      "undefined_group",
			rule:      Replace("r", `(a)`, "$2"),
			wantError: ErrMalformedTemplate,
		},
		{
			name: "valid",
			rule: Replace("r", `(a)`, "$1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Compile()
			if tt.wantError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantError)
				assert.False(t, tt.rule.Compiled())
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.rule.Compiled())
		})
	}

	t.Run("re2_rejects_lookahead", func(t *testing.T) {
		err := Replace("r", `foo(?=bar)`, "x").Compile()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compiling pattern")
	})
}

func TestRule_Guarded(t *testing.T) {
	r := InsertAfter("ins", `start`, " inserted").WithGuard(`start inserted`)
	require.NoError(t, r.Compile())

	guarded, err := r.Guarded("start here")
	require.NoError(t, err)
	assert.False(t, guarded)

	guarded, err = r.Guarded("start inserted here")
	require.NoError(t, err)
	assert.True(t, guarded)

	plain := Replace("plain", `a`, "b")
	guarded, err = plain.Guarded("a")
	require.NoError(t, err)
	assert.False(t, guarded)
}
