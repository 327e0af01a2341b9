package opts

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/routepatch/pkg/config"
	"github.com/walteh/routepatch/pkg/log"
	"github.com/walteh/routepatch/pkg/scope"
	"github.com/walteh/routepatch/pkg/text"
)

// ErrUsage marks errors in the command line itself.
var ErrUsage = errors.Base("usage")

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Debug   bool
	NoColor bool

	// Console is set once flags are parsed
	Console *log.Logger
}

// RuleSetOpts selects the rule set a command runs: a built-in preset or a
// rule set file.
type RuleSetOpts struct {
	Preset string
	Rules  string
	Parent string
	Child  string
	Vars   []string
}

// AddFlags registers the rule set flags on cmd
func (o *RuleSetOpts) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Preset, "preset", "p", "", "built-in rule set (see `routepatch presets`)")
	cmd.Flags().StringVarP(&o.Rules, "rules", "r", "", "rule set file (.yaml, .json, .toml or .hcl)")
	cmd.Flags().StringVar(&o.Parent, "parent", "", "parent resource for scope rules (default tournament)")
	cmd.Flags().StringVar(&o.Child, "child", "", "child resource for scope rules (default division)")
	cmd.Flags().StringArrayVar(&o.Vars, "var", nil, "variable for rule set files, as key=value (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("preset", "rules")
	cmd.MarkFlagsOneRequired("preset", "rules")
}

// Load builds the selected rule set. The file is nil for presets.
func (o *RuleSetOpts) Load(ctx context.Context) (*text.RuleSet, *config.RuleSetFile, error) {
	vars, err := ParseVars(o.Vars)
	if err != nil {
		return nil, nil, err
	}

	if o.Preset != "" {
		p, err := scope.Lookup(o.Preset)
		if err != nil {
			return nil, nil, err
		}
		rs, err := p.Build(o.names(scope.DefaultNames()))
		if err != nil {
			return nil, nil, errors.Errorf("building preset %s: %w", p.Name, err)
		}
		return rs, nil, nil
	}

	if o.Rules == "" {
		return nil, nil, errors.Errorf("%w: one of --preset or --rules is required", ErrUsage)
	}

	f, err := config.Load(ctx, o.Rules, vars)
	if err != nil {
		return nil, nil, err
	}
	if o.Parent != "" || o.Child != "" {
		base := scope.DefaultNames()
		if f.Scope != nil {
			base = *f.Scope
		}
		names := o.names(base)
		f.Scope = &names
	}

	rs, err := f.ToRuleSet()
	if err != nil {
		return nil, nil, errors.Errorf("building rule set %s: %w", f.Location(), err)
	}
	return rs, f, nil
}

func (o *RuleSetOpts) names(base scope.Names) scope.Names {
	if o.Parent != "" {
		base.Parent = o.Parent
		base.Parents = ""
		base.ParentID = ""
		base.ParentColumn = ""
	}
	if o.Child != "" {
		base.Child = o.Child
		base.Children = ""
		base.ChildID = ""
		base.Routes = ""
	}
	return base
}

// ParseVars parses key=value pairs
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.Errorf("%w: --var %q is not key=value", ErrUsage, pair)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return vars, nil
}
