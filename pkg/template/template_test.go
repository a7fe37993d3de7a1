//go:build !integration

package template

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelsen/ry-tool/pkg/document"
)

func TestProcessStringArgs(t *testing.T) {
	engine := NewEngine([]string{"commit", "-m", "fix"}, nil)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"indexed", "git {{args.0}}", "git commit"},
		{"second", "{{args.1}} {{args.2}}", "-m fix"},
		{"all", "run: {{args.all}}", "run: commit -m fix"},
		{"first", "{{args.first}}", "commit"},
		{"last", "{{args.last}}", "fix"},
		{"rest", "{{args.rest}}", "-m fix"},
		{"trimmed name", "{{ args.0 }}", "commit"},
		{"repeated", "{{args.0}}-{{args.0}}", "commit-commit"},
		{"no markers", "plain text", "plain text"},
		{"unclosed marker", "{{args.0", "{{args.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ProcessString(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestProcessStringNoArgs(t *testing.T) {
	engine := NewEngine(nil, nil)

	// The positional helpers are always defined, just empty.
	for _, key := range []string{"args.all", "args.first", "args.last", "args.rest"} {
		result, err := engine.ProcessString("[{{" + key + "}}]")
		require.NoError(t, err)
		assert.Equal(t, "[]", result, "key %s", key)
	}
}

func TestProcessStringDefaults(t *testing.T) {
	engine := NewEngine([]string{"push"}, nil)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"used when missing", "{{args.5|origin}}", "origin"},
		{"ignored when present", "{{args.0|origin}}", "push"},
		{"whitespace preserved", "{{missing|keep  spaces}}", "keep  spaces"},
		{"leading space preserved", "{{missing| padded }}", " padded "},
		{"empty default", "{{missing|}}", ""},
		{"later pipes literal", "{{missing|a|b|c}}", "a|b|c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ProcessString(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestProcessStringEnvironment(t *testing.T) {
	t.Setenv("RY_TEMPLATE_PROBE", "from-env")

	engine := NewEngine(nil, nil)

	result, err := engine.ProcessString("value={{env.RY_TEMPLATE_PROBE}}")
	require.NoError(t, err)
	assert.Equal(t, "value=from-env", result)
}

func TestProcessStringMetadata(t *testing.T) {
	engine := NewEngine([]string{"x"}, map[string]string{
		"library.name":    "git",
		"library.version": "1.4.0",
		"args.0":          "overridden",
	})

	result, err := engine.ProcessString("{{library.name}} {{library.version}}")
	require.NoError(t, err)
	assert.Equal(t, "git 1.4.0", result)

	// Metadata entries shadow the built-in context keys.
	result, err = engine.ProcessString("{{args.0}}")
	require.NoError(t, err)
	assert.Equal(t, "overridden", result)
}

func TestProcessStringMissingVariable(t *testing.T) {
	engine := NewEngine(nil, nil)

	_, err := engine.ProcessString("before {{no.such.var}} after")
	require.Error(t, err)

	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Equal(t, "no.such.var", templateErr.Variable)
	assert.Equal(t, "template variable 'no.such.var' not found", err.Error())
}

func TestProcessTree(t *testing.T) {
	engine := NewEngine([]string{"deploy"}, nil)

	input := document.MapOf(
		"name", "run-{{args.0}}",
		"steps", []any{
			"echo {{args.0}}",
			document.MapOf("shell", "{{args.0}} --dry-run", "capture", "OUT"),
		},
		"count", int64(3),
		"enabled", true,
	)

	result, err := engine.ProcessTree(input)
	require.NoError(t, err)

	expected := document.MapOf(
		"name", "run-deploy",
		"steps", []any{
			"echo deploy",
			document.MapOf("shell", "deploy --dry-run", "capture", "OUT"),
		},
		"count", int64(3),
		"enabled", true,
	)
	if diff := cmp.Diff(expected, result, cmp.AllowUnexported(document.Map{})); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	// The input tree is left untouched.
	name, _ := input.GetString("name")
	assert.Equal(t, "run-{{args.0}}", name)
}

func TestProcessTreeMissingVariableInNestedLeaf(t *testing.T) {
	engine := NewEngine(nil, nil)

	input := document.MapOf("steps", []any{"echo {{absent}}"})

	_, err := engine.ProcessTree(input)
	var templateErr *TemplateError
	require.True(t, errors.As(err, &templateErr))
	assert.Equal(t, "absent", templateErr.Variable)
}

func TestProcessStringRoundTrip(t *testing.T) {
	// A document consisting of just one marker and one argument
	// compiles to that argument verbatim.
	engine := NewEngine([]string{"x"}, nil)

	result, err := engine.ProcessString("{{args.0}}")
	require.NoError(t, err)
	assert.Equal(t, "x", result)
}
