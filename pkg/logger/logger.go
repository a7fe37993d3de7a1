// Package logger provides namespaced debug logging gated by the DEBUG
// environment variable, in the style of the debug npm package.
//
// Loggers are silent by default. Set DEBUG to a comma-separated list of
// patterns to enable output to stderr:
//
//	DEBUG=*                      enable everything
//	DEBUG=workflow:*             enable the workflow namespace
//	DEBUG=workflow:*,cli:*       enable multiple namespaces
//	DEBUG=*,-workflow:generator  enable everything except one logger
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes namespaced debug output to stderr when enabled.
type Logger struct {
	namespace string
	enabled   bool

	mu   sync.Mutex
	last time.Time
}

// New creates a logger for the given namespace. Enablement is decided
// from the DEBUG environment variable at creation time.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   matchesDebugPattern(namespace, os.Getenv("DEBUG")),
	}
}

// Enabled reports whether this logger writes output.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf logs a formatted message when the logger is enabled.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print logs arguments concatenated like fmt.Sprint when enabled.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	now := time.Now()
	var elapsed time.Duration
	if !l.last.IsZero() {
		elapsed = now.Sub(l.last)
	}
	l.last = now
	l.mu.Unlock()

	fmt.Fprintf(os.Stderr, "%s %s +%s\n", l.namespace, msg, elapsed)
}

// matchesDebugPattern implements the DEBUG pattern language: patterns
// are comma-separated, a trailing * matches any suffix, and a leading -
// excludes. Exclusions win over inclusions.
func matchesDebugPattern(namespace, debug string) bool {
	if debug == "" {
		return false
	}

	included := false
	for _, pattern := range strings.Split(debug, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		negate := strings.HasPrefix(pattern, "-")
		if negate {
			pattern = pattern[1:]
		}
		if !matchesPattern(namespace, pattern) {
			continue
		}
		if negate {
			return false
		}
		included = true
	}
	return included
}

func matchesPattern(namespace, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(namespace, strings.TrimSuffix(pattern, "*"))
	}
	return namespace == pattern
}
