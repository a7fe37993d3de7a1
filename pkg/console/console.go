// Package console formats user-facing output: status messages, compiler
// diagnostics with source positions, suggestion lists, and tables.
//
// All functions return strings; callers decide the destination stream.
// Styling degrades to plain text when color is disabled or the output is
// not a terminal.
package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelsen/ry-tool/pkg/styles"
)

var colorEnabled = true

// SetColorEnabled globally toggles styled output. The --no-color flag
// and non-TTY detection both route through this.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

func render(style interface{ Render(...string) string }, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// FormatSuccessMessage formats a success message with a checkmark.
func FormatSuccessMessage(message string) string {
	return render(styles.Success, "✓ "+message)
}

// FormatErrorMessage formats an error message with a cross mark.
func FormatErrorMessage(message string) string {
	return render(styles.Error, "✗ "+message)
}

// FormatWarningMessage formats a warning message.
func FormatWarningMessage(message string) string {
	return render(styles.Warning, "⚠ "+message)
}

// FormatInfoMessage formats an informational message.
func FormatInfoMessage(message string) string {
	return render(styles.Info, "ℹ "+message)
}

// FormatVerboseMessage formats low-priority detail output.
func FormatVerboseMessage(message string) string {
	return render(styles.Muted, message)
}

// FormatCommandMessage formats a command the user could run themselves.
func FormatCommandMessage(command string) string {
	return render(styles.Muted, "$ "+command)
}

// FormatLocationMessage formats a filesystem location notice.
func FormatLocationMessage(message string) string {
	return "📁 " + message
}

// FormatListItem formats a bulleted list entry.
func FormatListItem(message string) string {
	return "  • " + message
}

// FormatProgressMessage formats an in-progress status line.
func FormatProgressMessage(message string) string {
	return render(styles.Info, "… "+message)
}

// FormatErrorWithSuggestions formats an error followed by actionable
// suggestions, one bullet per line.
func FormatErrorWithSuggestions(message string, suggestions []string) string {
	var sb strings.Builder
	sb.WriteString(FormatErrorMessage(message))
	if len(suggestions) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(render(styles.Bold, "Suggestions:"))
		for _, suggestion := range suggestions {
			sb.WriteString("\n")
			sb.WriteString(FormatListItem(suggestion))
		}
	}
	return sb.String()
}

// ErrorPosition identifies a location in a source document.
type ErrorPosition struct {
	File   string
	Line   int
	Column int
}

// CompilerError is a diagnostic with an optional source excerpt.
// Hint is carried for programmatic consumers but not rendered.
type CompilerError struct {
	Position ErrorPosition
	Type     string // "error" or "warning"
	Message  string
	Hint     string
	Context  []string
}

// FormatError renders a compiler diagnostic in the familiar
// file:line:column: type: message form, followed by numbered context
// lines when present.
func FormatError(err CompilerError) string {
	var sb strings.Builder

	pos := fmt.Sprintf("%s:%d:%d:", ToRelativePath(err.Position.File), err.Position.Line, err.Position.Column)
	sb.WriteString(render(styles.Bold, pos))
	sb.WriteString(" ")

	typeLabel := err.Type + ":"
	if err.Type == "warning" {
		sb.WriteString(render(styles.Warning, typeLabel))
	} else {
		sb.WriteString(render(styles.Error, typeLabel))
	}
	sb.WriteString(" ")
	sb.WriteString(err.Message)
	sb.WriteString("\n")

	if len(err.Context) > 0 {
		start := err.Position.Line - 1
		if start < 1 {
			start = 1
		}
		for i, line := range err.Context {
			num := start + i
			prefix := fmt.Sprintf("%4d | ", num)
			if num == err.Position.Line {
				sb.WriteString(render(styles.Error, prefix+line))
			} else {
				sb.WriteString(render(styles.Muted, prefix+line))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ToRelativePath converts an absolute path to one relative to the
// working directory for friendlier display. Relative paths and paths
// outside any resolvable relation are returned unchanged.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}
	return rel
}

// FormatFileSize renders a byte count in human-readable units.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
