//go:build !integration

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelsen/ry-tool/pkg/document"
)

func TestNormalizeBareString(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	step := n.Normalize("git status")
	assert.Equal(t, "shell", step.Executor)
	assert.Equal(t, "git status", step.Script)
	assert.Nil(t, step.Config)
	assert.Empty(t, step.Capture)
}

func TestNormalizeInvalidStepType(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	for _, raw := range []any{int64(42), []any{"a"}, true, nil} {
		step := n.Normalize(raw)
		assert.Equal(t, "shell", step.Executor)
		assert.Equal(t, `echo "ERROR: Invalid step type" >&2; exit 1`, step.Script)
	}
}

func TestNormalizeUnknownMapping(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	step := n.Normalize(document.MapOf("run", "echo hi"))
	assert.Equal(t, "shell", step.Executor)
	assert.Equal(t, `echo "ERROR: Unknown step type" >&2; exit 1`, step.Script)
}

func TestNormalizeExecutorAliases(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	tests := []struct {
		key      string
		executor string
	}{
		{"shell", "shell"},
		{"sh", "shell"},
		{"bash", "shell"},
		{"python", "python"},
		{"py", "python"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			step := n.Normalize(document.MapOf(tt.key, "body"))
			assert.Equal(t, tt.executor, step.Executor)
			assert.Equal(t, "body", step.Script)
		})
	}
}

func TestNormalizeScalarFormSiblingConfig(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	step := n.Normalize(document.MapOf(
		"shell", "echo $HOME",
		"base64", false,
		"capture", "HOME_LINE",
		"test", "[ -d /tmp ]",
		"fail", "no tmp",
	))

	assert.Equal(t, "shell", step.Executor)
	assert.Equal(t, "echo $HOME", step.Script)
	assert.Equal(t, "HOME_LINE", step.Capture)
	assert.Equal(t, "[ -d /tmp ]", step.Test)
	assert.Equal(t, "no tmp", step.Fail)

	// Reserved directives never reach the executor config.
	require.NotNil(t, step.Config)
	assert.Equal(t, []string{"base64"}, step.Config.Keys())
}

func TestNormalizeScalarFormNoConfig(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	step := n.Normalize(document.MapOf("sh", "ls", "capture", "FILES"))
	assert.Equal(t, "FILES", step.Capture)
	assert.Nil(t, step.Config, "capture alone leaves no config behind")
}

func TestNormalizeExecutorScopedForm(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	step := n.Normalize(document.MapOf(
		"python", document.MapOf(
			"script", "print('hi')",
			"imports", []any{"os"},
			"interpreter", "/opt/python",
		),
	))

	assert.Equal(t, "python", step.Executor)
	assert.Equal(t, "print('hi')", step.Script)
	require.NotNil(t, step.Config)
	assert.Equal(t, []string{"imports", "interpreter"}, step.Config.Keys())
	assert.False(t, step.Config.Has("script"))
}

func TestNormalizeExecutorKeyPriority(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	// python is checked before shell when both are present.
	step := n.Normalize(document.MapOf("shell", "ignored", "python", "used"))
	assert.Equal(t, "python", step.Executor)
	assert.Equal(t, "used", step.Script)
}

func TestNormalizeExternalScript(t *testing.T) {
	tests := []struct {
		name       string
		libraryDir string
		path       string
		expected   string
	}{
		{"library relative", "/data/ry/libraries/git", "lib/check.py", "/usr/bin/python3 /data/ry/libraries/git/lib/check.py"},
		{"library absolute untouched", "/data/ry/libraries/git", "/opt/tool.py", "/usr/bin/python3 /opt/tool.py"},
		{"no library keeps relative", "", "lib/check.py", "/usr/bin/python3 lib/check.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RY_PYTHON", "")
			n := NewNormalizer(&ExecutionContext{LibraryDir: tt.libraryDir})

			step := n.Normalize(document.MapOf("script", tt.path, "capture", "OUT"))
			assert.Equal(t, "shell", step.Executor)
			assert.Equal(t, tt.expected, step.Script)
			assert.Equal(t, "OUT", step.Capture)
		})
	}
}

func TestNormalizeReservedFalsyDropped(t *testing.T) {
	n := NewNormalizer(&ExecutionContext{})

	step := n.Normalize(document.MapOf("shell", "ls", "capture", false, "test", ""))
	assert.Empty(t, step.Capture)
	assert.Empty(t, step.Test)
}
