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

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	ruleIndent  = 4  // spaces to indent rule entries
	idWidth     = 28 // width for rule id
	kindWidth   = 14 // width for rule kind
	statusWidth = 10 // width for status text
)

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      *sync.Mutex

	// buf is set on loggers created by Buffer
	buf *bytes.Buffer
}

// 🏭 New creates a new logger. Console lines are mirrored into a zerolog
// stream on stderr at the given level.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      &sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📦 Buffer returns a logger that collects its console output until Flush.
// Concurrent runs use one each so their reports are never interleaved.
func (l *Logger) Buffer() *Logger {
	buf := &bytes.Buffer{}
	return &Logger{
		zlog:    l.zlog,
		console: buf,
		mu:      &sync.Mutex{},
		buf:     buf,
	}
}

// 📦 Flush writes a buffered logger's output to l in one piece.
func (l *Logger) Flush(b *Logger) {
	if b == nil || b.buf == nil {
		return
	}
	b.mu.Lock()
	out := b.buf.String()
	b.buf.Reset()
	b.mu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, out)
}

func (l *Logger) println(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, s)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.println("")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	name := color.New(color.Bold, color.FgCyan).Sprint("routepatch")
	l.println(fmt.Sprintf("\n%s %s\n", name, color.New(color.Faint).Sprint("• "+msg)))
	l.zlog.Debug().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.println(fmt.Sprintf("✅ %s", color.New(color.FgGreen).Sprint(msg)))
	l.zlog.Debug().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.println(fmt.Sprintf("⚠️  %s", color.New(color.FgYellow).Sprint(msg)))
	l.zlog.Debug().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.println(fmt.Sprintf("❌ %s", color.New(color.FgRed).Sprint(msg)))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.println(fmt.Sprintf("ℹ️  %s", color.New(color.FgCyan).Sprint(msg)))
	l.zlog.Debug().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// 📝 Diff prints a unified diff, colouring added and removed lines
func (l *Logger) Diff(diff string) {
	if diff == "" {
		return
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(color.CyanString(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(color.GreenString(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(color.RedString(line))
		default:
			b.WriteString(line)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, b.String())
	if !strings.HasSuffix(diff, "\n") {
		fmt.Fprintln(l.console)
	}
}
