/*
Package config loads rule set files for routepatch.

	            +--------------+
	            | RuleSetFile  |
	            +------+-------+
	                   |
	   +--------+------+-+--------+
	   |        |        |        |
	+--+---+ +--+--+ +---+--+ +---+--+
	| YAML | | HCL | | JSON | | TOML |
	+------+ +-----+ +------+ +------+

🎯 Purpose:
- Reads rule sets written by hand instead of the built-in presets
- Picks the parser from the file extension
- Compiles the file through text.NewRuleSet, so malformed templates and
  misordered anchors fail at load time rather than mid run

🔄 Flow:
1. Load reads the file and hands it to the matching Parser
2. Validate checks names, kinds and engines and fills in defaults: kind
   replace, the file engine, and limit 1 for insert_before/insert_after
   (0 rewrites every match)
3. ToRuleSet prepends the preset (if any) and compiles every rule

📝 HCL:
HCL files see the --var values as var.<name>. HCL interpolates "${", so a
braced group reference is written "$${1}"; "$1" needs no escaping.

	name = "widgets"

	rule "route" {
	  pattern  = "route\\(['\"](/${var.child}s)['\"]\\)"
	  template = "route('/parents/:parentId$1')"
	}
*/
package config
