/*
Package text implements the ordered patch engine: pattern rules, rule sets and
the patcher that folds a rule set over one source text.

	+----------+     +----------+     +----------+
	|  Rule 1  | --> |  Rule 2  | --> |  Rule N  |
	+----------+     +----------+     +----------+
	     ^                                  |
	  source                             modified

🎯 Purpose:
- Rewrite source text with regular expressions, rule by rule
- Report, per rule, whether it matched, how often and where

🔄 Flow:
1. Rules are compiled once, when the rule set is built
2. The patcher runs each rule on the previous rule's output
3. Every rule leaves an Outcome in the ApplyResult

⚡ Invariants:
- Rules never run out of order and never see the original text twice
- A rule that finds nothing, or is skipped, leaves the text untouched and is
  reported
- Templates may only reference groups their own pattern defines; anything
  else fails in Compile
- The same rule set on the same input always yields the same bytes

🤝 Anchors:
Rules may declare the anchors they produce and the anchors they require.
NewRuleSet rejects a set whose declared order cannot satisfy a requirement.
At run time a rule whose required anchor was never produced is skipped and
reported as a cascade rather than an independent miss.

📝 Templates:
Replacement templates use the regexp.Expand syntax: $1, ${1}, $name, ${name}
and $$ for a literal dollar. Insert and literal rules take their text verbatim.

🔍 Example:

	rs, err := text.NewRuleSet("widgets",
		text.Replace("route", `route\(['"](/widgets)['"]\)`, `route('/parents/:parentId$1')`),
	)
	if err != nil {
		return err
	}

	result, err := text.NewPatcher().Apply(ctx, src, rs)
*/
package text
