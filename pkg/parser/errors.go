package parser

import (
	"fmt"
	"strings"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var loaderErrorLog = logger.New("parser:errors")

// LoaderError represents a failure while resolving a document: a
// directive that could not run, a missing include, invalid JSON, or a
// malformed expression.
type LoaderError struct {
	Directive string // The directive that failed (e.g. "!include"), or "" for YAML syntax errors
	File      string // The document being loaded
	Line      int    // 1-based line of the failing node
	Column    int    // 1-based column of the failing node
	Message   string
	Cause     error
}

// Error returns the error message.
func (e *LoaderError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		fmt.Fprintf(&sb, "%s:", e.File)
		if e.Line > 0 {
			fmt.Fprintf(&sb, "%d:%d:", e.Line, e.Column)
		}
		sb.WriteString(" ")
	}
	if e.Directive != "" {
		fmt.Fprintf(&sb, "directive %s: ", e.Directive)
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *LoaderError) Unwrap() error {
	return e.Cause
}

// FormatLoaderError formats a loader error as a compilation error with
// source context taken from the document content.
func FormatLoaderError(err *LoaderError, content string) string {
	loaderErrorLog.Printf("Formatting loader error: directive=%s, file=%s, line=%d", err.Directive, err.File, err.Line)

	lines := strings.Split(content, "\n")

	// One line of context either side keeps the excerpt aligned with
	// the line numbering FormatError applies.
	var context []string
	startLine := max(1, err.Line-1)
	endLine := min(len(lines), err.Line+1)
	for i := startLine; i <= endLine; i++ {
		if i-1 < len(lines) {
			context = append(context, lines[i-1])
		}
	}

	message := err.Message
	if err.Directive != "" {
		message = fmt.Sprintf("directive %s: %s", err.Directive, err.Message)
	}

	return console.FormatError(console.CompilerError{
		Position: console.ErrorPosition{
			File:   err.File,
			Line:   err.Line,
			Column: err.Column,
		},
		Type:    "error",
		Message: message,
		Context: context,
	})
}
