package status

import (
	"fmt"
)

// FileFormatter defines how file results and progress should be formatted
type FileFormatter interface {
	// FormatFileOperation formats the result of running a rule set on a file
	FormatFileOperation(path, ruleSet string, status FileStatus) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file result with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path, ruleSet string, status FileStatus) string {
	suffix := ""
	if ruleSet != "" {
		suffix = fmt.Sprintf(" (%s)", ruleSet)
	}
	switch status {
	case StatusModified:
		return fmt.Sprintf("📝 Patched %s%s", path, suffix)
	case StatusUnchanged:
		return fmt.Sprintf("👍 Unchanged %s%s", path, suffix)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s%s", path, suffix)
	default:
		return fmt.Sprintf("❔ Unknown %s%s", path, suffix)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
