// Copyright 2026 walteh LLC
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
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	nameWidth   = 45 // Base width for filename
	statusWidth = 10 // Width for status text
)

// 🎯 FileResult represents one patched file for console display
type FileResult struct {
	Path     string // Relative path
	Applied  int    // Replacements applied
	Warnings int    // WARN outcomes
	Failures int    // FAIL outcomes
	DryRun   bool   // Whether writes were suppressed
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatFileResult formats a file result for display
func (l *Logger) formatFileResult(r FileResult) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case r.Failures > 0 && r.Applied == 0:
		symbol = '✗'
		symbolColor = color.FgRed
	case r.Warnings > 0 || r.Failures > 0:
		symbol = '⟳'
		symbolColor = color.FgYellow
	case r.Applied > 0:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '-'
		symbolColor = color.FgCyan
	}

	status := fmt.Sprintf("%d applied", r.Applied)
	if r.Warnings > 0 {
		status += fmt.Sprintf(", %d warn", r.Warnings)
	}
	if r.Failures > 0 {
		status += fmt.Sprintf(", %d fail", r.Failures)
	}
	if r.DryRun {
		status += " (dry-run)"
	}

	return fmt.Sprintf("  %s %-*s %-*s",
		color.New(symbolColor).Sprint(string(symbol)),
		nameWidth, r.Path,
		statusWidth, status)
}

// 📄 LogFileResult prints one file's result line to the console
func (l *Logger) LogFileResult(r FileResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, l.formatFileResult(r))
	l.zlog.Debug().
		Str("path", r.Path).
		Int("applied", r.Applied).
		Int("warnings", r.Warnings).
		Int("failures", r.Failures).
		Msg("file patched")
}

// 🏁 LogSummary prints the run summary
func (l *Logger) LogSummary(files, applied, warnings, failures int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	header := color.New(color.Bold).Sprint("patched")
	fmt.Fprintf(l.console, "%s %d files: %d applied, %d warnings, %d failures\n",
		header, files, applied, warnings, failures)
}
