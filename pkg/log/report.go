package log

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/walteh/routepatch/pkg/status"
	"github.com/walteh/routepatch/pkg/text"
)

// 📝 formatOutcome formats one rule outcome for display
func formatOutcome(o text.Outcome) string {
	var symbol string
	var symbolColor color.Attribute
	switch o.Status {
	case text.StatusMatched:
		symbol, symbolColor = "✓", color.FgGreen
	case text.StatusGuarded:
		symbol, symbolColor = "•", color.FgCyan
	case text.StatusCascade:
		symbol, symbolColor = "↯", color.FgRed
	default:
		symbol, symbolColor = "✗", color.FgYellow
	}

	detail := ""
	switch o.Status {
	case text.StatusMatched:
		if o.Kind == text.KindExpect {
			detail = "found"
		} else {
			detail = fmt.Sprintf("%d×", o.Count)
		}
	case text.StatusCascade:
		detail = "needs " + strings.Join(o.Missing, ", ")
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s %s",
		strings.Repeat(" ", ruleIndent),
		color.New(symbolColor).Sprint(symbol),
		fmt.Sprintf("%-*s", idWidth, o.RuleID),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", kindWidth, o.Kind)),
		fmt.Sprintf("%-*s", statusWidth, o.Status),
		detail,
	), " ")
}

// 📝 LogOutcome logs one rule outcome
func (l *Logger) LogOutcome(o text.Outcome) {
	l.println(formatOutcome(o))

	l.zlog.Debug().
		Str("rule", o.RuleID).
		Str("kind", string(o.Kind)).
		Str("status", string(o.Status)).
		Int("count", o.Count).
		Interface("spans", o.Spans).
		Strs("missing", o.Missing).
		Msg("rule outcome")
}

// 📊 Report prints every outcome of a run, a summary table and then one
// warning per rule that changed nothing.
func (l *Logger) Report(target string, result *text.ApplyResult) {
	if result == nil {
		return
	}

	l.println(fmt.Sprintf("[patching %s]", color.New(color.FgCyan).Sprint(target)))
	l.println(fmt.Sprintf("%s %s %s %s",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(result.RuleSet),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d rules", len(result.Outcomes))))

	for _, o := range result.Outcomes {
		l.LogOutcome(o)
	}

	counts := map[text.Status]int{}
	for _, o := range result.Outcomes {
		counts[o.Status]++
	}

	l.table(pterm.TableData{
		{"matched", "unmatched", "cascade", "guarded", "replacements"},
		{
			strconv.Itoa(counts[text.StatusMatched]),
			strconv.Itoa(counts[text.StatusUnmatched]),
			strconv.Itoa(counts[text.StatusCascade]),
			strconv.Itoa(counts[text.StatusGuarded]),
			strconv.Itoa(result.ReplacementCount()),
		},
	})

	for _, o := range result.Outcomes {
		switch o.Status {
		case text.StatusUnmatched:
			l.Warningf("%s: rule %s matched nothing", target, o.RuleID)
		case text.StatusCascade:
			l.Warningf("%s: rule %s skipped, missing %s", target, o.RuleID, strings.Join(o.Missing, ", "))
		}
	}

	l.zlog.Debug().
		Str("target", target).
		Str("rule_set", result.RuleSet).
		Int("replacements", result.ReplacementCount()).
		Bool("modified", result.WasModified()).
		Msg("run complete")
}

// ⚖️ Verdict prints the final result for one file
func (l *Logger) Verdict(info status.FileInfo) {
	st := info.Status
	var detail string
	switch {
	case info.Error != nil:
		st = status.StatusFailed
		detail = info.Error.Error()
	case st == status.StatusModified && info.Pending:
		detail = fmt.Sprintf("%d replacements, not written (dry run)", info.Replacements)
	case st == status.StatusModified:
		detail = fmt.Sprintf("%d replacements", info.Replacements)
	case st == status.StatusUnchanged:
		detail = "nothing to change"
	}

	l.println(status.FormatFileLine(info.Path, info.RuleSet, st, detail))

	if info.Error != nil {
		l.zlog.Error().Err(info.Error).Str("path", info.Path).Msg("file failed")
		return
	}
	l.zlog.Debug().
		Str("path", info.Path).
		Str("status", st.String()).
		Int("replacements", info.Replacements).
		Bool("pending", info.Pending).
		Msg("file done")
}

// 📋 Summary prints one table row per file of a multi-file run
func (l *Logger) Summary(files []status.FileInfo) {
	if len(files) == 0 {
		return
	}

	data := pterm.TableData{{"file", "status", "replacements"}}
	for _, f := range files {
		st := f.Status.String()
		switch {
		case f.Error != nil:
			st = status.StatusFailed.String()
		case f.Pending:
			st = "pending"
		}
		data = append(data, []string{f.Path, st, strconv.Itoa(f.Replacements)})
	}
	l.table(data)
}

// 🗺️ Plan prints the rules of a rule set in application order
func (l *Logger) Plan(rs *text.RuleSet) {
	if rs == nil {
		return
	}

	l.println(fmt.Sprintf("%s %s %s %s",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(rs.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d rules", rs.Len())))
	if rs.Description != "" {
		l.println(color.New(color.Faint).Sprint(rs.Description))
	}

	data := pterm.TableData{{"#", "id", "kind", "engine", "requires", "produces"}}
	for i, r := range rs.Rules() {
		engine := r.Engine
		if engine == "" {
			engine = text.EngineRE2
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.ID,
			string(r.Kind),
			string(engine),
			strings.Join(r.Requires, ", "),
			strings.Join(r.Produces, ", "),
		})
	}
	l.table(data)
}

func (l *Logger) table(data pterm.TableData) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		l.Errorf("rendering table: %v", err)
		return
	}
	l.println(out)
}
