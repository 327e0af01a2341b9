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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	setWidth    = 15 // Width for rule set name
	statusWidth = 10 // Width for status text
)

// 🎯 FormatFileLine formats one file's result as an aligned console line
func FormatFileLine(path, ruleSet string, status FileStatus, detail string) string {
	var prefix string
	switch status {
	case StatusModified:
		prefix = color.GreenString("✓")
	case StatusUnchanged:
		prefix = color.HiBlackString("-")
	case StatusFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.YellowString("?")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	setPart := fmt.Sprintf("%-*s", setWidth, ruleSet)
	statusPart := fmt.Sprintf("%-*s", statusWidth, status.String())

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		setPart,
		statusPart,
		detail,
	), " ")
}
