// Package template substitutes {{name|default}} markers in the string
// leaves of a resolved document tree. Substitution happens after
// directive resolution and before command generation, so templates can
// reference invocation arguments and the environment but never re-run
// directives.
package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var templateLog = logger.New("template:engine")

// markerRegex matches {{...}} markers. The body cannot contain '}' so
// markers never nest and an unclosed marker is left untouched.
var markerRegex = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// TemplateError reports a marker that referenced a variable missing
// from the substitution context with no fallback default.
type TemplateError struct {
	Variable string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template variable '%s' not found", e.Variable)
}

// Engine holds the substitution context for one compilation run.
type Engine struct {
	context map[string]string
}

// NewEngine builds the substitution context from the invocation
// arguments, the process environment, and optional metadata entries.
//
// Context keys: args.<i> for each argument (0-indexed), args.all,
// args.first, args.last, args.rest (always present, empty without
// arguments), env.<NAME> for every environment variable, and each
// metadata key verbatim. Metadata wins on collision.
func NewEngine(args []string, metadata map[string]string) *Engine {
	ctx := make(map[string]string, len(args)+len(metadata)+8)

	for i, arg := range args {
		ctx[fmt.Sprintf("args.%d", i)] = arg
	}
	ctx["args.all"] = strings.Join(args, " ")
	ctx["args.first"] = ""
	ctx["args.last"] = ""
	ctx["args.rest"] = ""
	if len(args) > 0 {
		ctx["args.first"] = args[0]
		ctx["args.last"] = args[len(args)-1]
	}
	if len(args) > 1 {
		ctx["args.rest"] = strings.Join(args[1:], " ")
	}

	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		ctx["env."+key] = value
	}

	for key, value := range metadata {
		ctx[key] = value
	}

	templateLog.Printf("Built substitution context: args=%d metadata=%d total_keys=%d", len(args), len(metadata), len(ctx))
	return &Engine{context: ctx}
}

// ProcessString substitutes every {{name|default}} marker in text.
//
// A marker resolves to the context value when the (trimmed) name is
// present; otherwise to the default literal, which is everything after
// the first '|' kept verbatim, whitespace included. A missing name
// with no default is a TemplateError.
func (e *Engine) ProcessString(text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	var substErr error
	result := markerRegex.ReplaceAllStringFunc(text, func(match string) string {
		expr := match[2 : len(match)-2]

		name, fallback, hasFallback := strings.Cut(expr, "|")
		name = strings.TrimSpace(name)

		if value, ok := e.context[name]; ok {
			return value
		}
		if hasFallback {
			return fallback
		}
		if substErr == nil {
			substErr = &TemplateError{Variable: name}
		}
		return match
	})
	if substErr != nil {
		templateLog.Printf("Substitution failed: %v", substErr)
		return "", substErr
	}
	return result, nil
}

// ProcessTree returns a same-shaped copy of value with every string
// leaf substituted. Mapping keys are left untouched; non-string
// scalars pass through unchanged.
func (e *Engine) ProcessTree(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return e.ProcessString(v)
	case *document.Map:
		out := document.NewMap()
		for _, entry := range v.Entries() {
			processed, err := e.ProcessTree(entry.Value)
			if err != nil {
				return nil, err
			}
			out.Set(entry.Key, processed)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			processed, err := e.ProcessTree(item)
			if err != nil {
				return nil, err
			}
			out[i] = processed
		}
		return out, nil
	default:
		return value, nil
	}
}
