package config

import (
	"bytes"
	"context"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&TOMLParser{})
}

// 🔧 TOMLParser implements the Parser interface for TOML files
type TOMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *TOMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".toml")
}

// 📝 Parse parses the rule set file from TOML
func (p *TOMLParser) Parse(ctx context.Context, data []byte, _ map[string]string) (*RuleSetFile, error) {
	var f RuleSetFile
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}
	return &f, nil
}
