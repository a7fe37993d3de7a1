//go:build !integration

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/testutil"
)

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBytesScalars(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected any
	}{
		{"string", `hello`, "hello"},
		{"integer", `42`, int64(42)},
		{"negative integer", `-7`, int64(-7)},
		{"float", `2.5`, 2.5},
		{"bool true", `true`, true},
		{"bool false", `false`, false},
		{"null", `null`, nil},
		{"quoted number stays string", `"42"`, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := LoadBytes([]byte(tt.yaml), "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestLoadBytesMappingPreservesOrder(t *testing.T) {
	value, err := LoadBytes([]byte("zulu: 1\nalpha: 2\nmike: 3\n"), "", nil)
	require.NoError(t, err)

	m, ok := value.(*document.Map)
	require.True(t, ok, "expected *document.Map, got %T", value)
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, m.Keys())
}

func TestLoadBytesSingleKeyMapping(t *testing.T) {
	value, err := LoadBytes([]byte("only: value\n"), "", nil)
	require.NoError(t, err)

	m, ok := value.(*document.Map)
	require.True(t, ok, "expected *document.Map, got %T", value)
	s, _ := m.GetString("only")
	assert.Equal(t, "value", s)
}

func TestLoadBytesNestedStructure(t *testing.T) {
	yaml := `
commands:
  build:
    steps:
      - shell: make
      - shell: make test
`
	value, err := LoadBytes([]byte(yaml), "", nil)
	require.NoError(t, err)

	root := value.(*document.Map)
	commands, ok := root.GetMap("commands")
	require.True(t, ok)
	build, ok := commands.GetMap("build")
	require.True(t, ok)
	steps, ok := build.GetSlice("steps")
	require.True(t, ok)
	require.Len(t, steps, 2)

	first := steps[0].(*document.Map)
	shell, _ := first.GetString("shell")
	assert.Equal(t, "make", shell)
}

func TestLoadBytesEmptyDocument(t *testing.T) {
	value, err := LoadBytes([]byte(""), "", nil)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestLoadBytesAnchorsAndAliases(t *testing.T) {
	yaml := `
base: &defaults
  shell: /bin/bash
  quiet: true
derived: *defaults
`
	value, err := LoadBytes([]byte(yaml), "", nil)
	require.NoError(t, err)

	root := value.(*document.Map)
	derived, ok := root.GetMap("derived")
	require.True(t, ok)
	shell, _ := derived.GetString("shell")
	assert.Equal(t, "/bin/bash", shell)
}

func TestLoadBytesUndefinedAlias(t *testing.T) {
	_, err := LoadBytes([]byte("key: *missing\n"), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined alias")
}

func TestLoadBytesMergeKey(t *testing.T) {
	yaml := `
defaults: &defaults
  timeout: 30
  retries: 3
job:
  <<: *defaults
  retries: 5
`
	value, err := LoadBytes([]byte(yaml), "", nil)
	require.NoError(t, err)

	job, ok := value.(*document.Map).GetMap("job")
	require.True(t, ok)

	timeout, _ := job.Get("timeout")
	assert.Equal(t, int64(30), timeout)

	// Explicit keys beat merged values regardless of position.
	retries, _ := job.Get("retries")
	assert.Equal(t, int64(5), retries)
}

func TestLoadBytesSyntaxErrorCarriesPosition(t *testing.T) {
	_, err := LoadBytes([]byte("key: [unclosed\n"), "", nil)
	require.Error(t, err)

	var loadErr *LoaderError
	require.ErrorAs(t, err, &loadErr)
	assert.Greater(t, loadErr.Line, 0, "syntax errors should carry a line number")
}

func TestLoadFileResolvesRelativeToDocument(t *testing.T) {
	dir := testutil.TempDir(t, "loader-*")
	writeDocument(t, dir, "fragment.yaml", "fragment: true\n")
	path := writeDocument(t, dir, "main.yaml", "part: !include fragment.yaml\n")

	// The working directory has no fragment.yaml; resolution must use
	// the document's own directory.
	value, err := LoadFile(path, nil)
	require.NoError(t, err)

	part, ok := value.(*document.Map).GetMap("part")
	require.True(t, ok)
	fragment, _ := part.GetBool("fragment")
	assert.True(t, fragment)
}

func TestLoadFileMissingDocument(t *testing.T) {
	_, err := LoadFile(filepath.Join(testutil.TempDir(t, "loader-*"), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document")
}

func TestLoaderErrorFormatting(t *testing.T) {
	err := &LoaderError{
		Directive: "!include",
		File:      "tool.yaml",
		Line:      4,
		Column:    9,
		Message:   "cannot read common.yaml",
	}
	assert.Equal(t, "tool.yaml:4:9: directive !include: cannot read common.yaml", err.Error())
}
