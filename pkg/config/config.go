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
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/routepatch/pkg/scope"
	"github.com/walteh/routepatch/pkg/text"
)

var (
	// ErrInvalidConfig is returned for rule set files that fail validation.
	ErrInvalidConfig = errors.Base("invalid rule set file")

	// ErrNoParser is returned for files no registered parser can read.
	ErrNoParser = errors.Base("no parser found")
)

// 🔌 Parser is the interface for rule set file parsers
type Parser interface {
	// 📝 Parse parses the rule set file from bytes. vars are exposed to
	// formats that support expressions.
	Parse(ctx context.Context, data []byte, vars map[string]string) (*RuleSetFile, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 RuleSpec is one rule as written in a rule set file
type RuleSpec struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Kind        string   `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"` // defaults to replace
	Pattern     string   `json:"pattern" yaml:"pattern" toml:"pattern"`
	Template    string   `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty"`
	MultiLine   bool     `json:"multiline,omitempty" yaml:"multiline,omitempty" toml:"multiline,omitempty"`
	DotAll      bool     `json:"dotall,omitempty" yaml:"dotall,omitempty" toml:"dotall,omitempty"`
	IgnoreCase  bool     `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty" toml:"ignore_case,omitempty"`
	Engine      string   `json:"engine,omitempty" yaml:"engine,omitempty" toml:"engine,omitempty"` // defaults to the file engine
	Limit       int      `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"` // 0 rewrites all; inserts default to 1
	Guard       string   `json:"guard,omitempty" yaml:"guard,omitempty" toml:"guard,omitempty"`
	Requires    []string `json:"requires,omitempty" yaml:"requires,omitempty" toml:"requires,omitempty"`
	Produces    []string `json:"produces,omitempty" yaml:"produces,omitempty" toml:"produces,omitempty"`
}

// 📚 RuleSetFile is a rule set as written on disk
type RuleSetFile struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	// Engine is the default engine of every rule (re2 or regexp2)
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty" toml:"engine,omitempty"`

	// Targets are doublestar globs of the files to patch, relative to the file
	Targets []string `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`

	// Preset names a built-in rule set that runs before Rules
	Preset string       `json:"preset,omitempty" yaml:"preset,omitempty" toml:"preset,omitempty"`
	Scope  *scope.Names `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`

	Rules []RuleSpec `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`

	location string
}

// 🎯 Load loads a rule set file, choosing the parser by extension
func Load(ctx context.Context, path string, vars map[string]string) (*RuleSetFile, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading rule set file")

	// Read rule set file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading rule set file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w for file: %s", ErrNoParser, path)
	}

	// Parse rule set file
	f, err := p.Parse(ctx, data, vars)
	if err != nil {
		return nil, errors.Errorf("parsing rule set file: %w", err)
	}

	// Validate
	if err := f.Validate(); err != nil {
		return nil, errors.Errorf("validating rule set file: %w", err)
	}

	f.location = path
	logger.Debug().Str("name", f.Name).Int("rules", len(f.Rules)).Msg("loaded rule set file")

	return f, nil
}

// 🔍 Validate checks the rule set file and fills in defaults
func (f *RuleSetFile) Validate() error {
	if f.Name == "" {
		return errors.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if len(f.Rules) == 0 && f.Preset == "" {
		return errors.Errorf("%w: at least one rule or a preset is required", ErrInvalidConfig)
	}
	if f.Preset != "" {
		if _, err := scope.Lookup(f.Preset); err != nil {
			return errors.Errorf("%w: unknown preset %q", ErrInvalidConfig, f.Preset)
		}
	}
	if err := validEngine(f.Engine); err != nil {
		return err
	}

	for i := range f.Rules {
		r := &f.Rules[i]
		if r.ID == "" {
			return errors.Errorf("%w: rule %d: id is required", ErrInvalidConfig, i)
		}
		if r.Kind == "" {
			r.Kind = string(text.KindReplace)
		}
		switch text.Kind(r.Kind) {
		case text.KindReplace, text.KindInsertBefore, text.KindInsertAfter, text.KindRemove, text.KindLiteral, text.KindExpect:
		default:
			return errors.Errorf("%w: rule %q: unknown kind %q", ErrInvalidConfig, r.ID, r.Kind)
		}
		if r.Limit == 0 && (r.Kind == string(text.KindInsertBefore) || r.Kind == string(text.KindInsertAfter)) {
			r.Limit = 1
		}
		if r.Engine == "" {
			r.Engine = f.Engine
		}
		if err := validEngine(r.Engine); err != nil {
			return errors.Errorf("rule %q: %w", r.ID, err)
		}
	}

	for i, t := range f.Targets {
		f.Targets[i] = filepath.ToSlash(filepath.Clean(t))
	}

	return nil
}

func validEngine(e string) error {
	switch text.EngineKind(e) {
	case "", text.EngineRE2, text.EngineRegexp2:
		return nil
	}
	return errors.Errorf("%w: unknown engine %q", ErrInvalidConfig, e)
}

// 🏗️ ToRuleSet compiles the file into a rule set. Malformed templates fail here.
func (f *RuleSetFile) ToRuleSet() (*text.RuleSet, error) {
	var rules []*text.Rule

	if f.Preset != "" {
		p, err := scope.Lookup(f.Preset)
		if err != nil {
			return nil, err
		}
		names := scope.DefaultNames()
		if f.Scope != nil {
			names = *f.Scope
		}
		base, err := p.Build(names)
		if err != nil {
			return nil, errors.Errorf("building preset %q: %w", f.Preset, err)
		}
		rules = append(rules, base.Rules()...)
	}

	for _, spec := range f.Rules {
		rules = append(rules, spec.rule())
	}

	rs, err := text.NewRuleSet(f.Name, rules...)
	if err != nil {
		return nil, err
	}
	rs.Description = f.Description
	return rs, nil
}

func (s RuleSpec) rule() *text.Rule {
	return &text.Rule{
		ID:          s.ID,
		Description: s.Description,
		Kind:        text.Kind(s.Kind),
		Pattern:     s.Pattern,
		Template:    s.Template,
		Flags: text.Flags{
			MultiLine:  s.MultiLine,
			DotAll:     s.DotAll,
			IgnoreCase: s.IgnoreCase,
		},
		Engine:   text.EngineKind(s.Engine),
		Limit:    s.Limit,
		Guard:    s.Guard,
		Requires: s.Requires,
		Produces: s.Produces,
	}
}

// 📍 Location returns the path the file was loaded from
func (f *RuleSetFile) Location() string {
	return f.location
}

// 📁 Dir returns the directory target globs are relative to
func (f *RuleSetFile) Dir() string {
	if f.location == "" {
		return "."
	}
	return filepath.Dir(f.location)
}

// 📝 String returns a string representation of the rule set file
func (f *RuleSetFile) String() string {
	if f.Preset != "" {
		return fmt.Sprintf("%s (preset %s + %d rules)", f.Name, f.Preset, len(f.Rules))
	}
	return fmt.Sprintf("%s (%d rules)", f.Name, len(f.Rules))
}
