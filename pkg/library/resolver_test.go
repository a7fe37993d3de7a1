//go:build !integration

package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveExplicitPath(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "deploy.yaml")
	writeFile(t, doc, "steps: []\n")

	r := NewResolver()

	path, ok := r.Resolve(doc)
	require.True(t, ok)
	assert.Equal(t, doc, path)

	_, ok = r.Resolve(filepath.Join(dir, "missing.yaml"))
	assert.False(t, ok)
}

func TestResolveExplicitYmlExtension(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "deploy.yml")
	writeFile(t, doc, "steps: []\n")

	path, ok := NewResolver().Resolve(doc)
	require.True(t, ok)
	assert.Equal(t, doc, path)
}

func TestResolveSearchOrder(t *testing.T) {
	cwd := t.TempDir()
	userDir := t.TempDir()
	systemDir := t.TempDir()
	r := &Resolver{userDir: userDir, systemDir: systemDir}
	t.Chdir(cwd)

	// Only in the system dir.
	writeFile(t, filepath.Join(systemDir, "git", "git.yaml"), "steps: []\n")
	path, ok := r.Resolve("git")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(systemDir, "git", "git.yaml"), path)

	// The user dir shadows the system dir.
	writeFile(t, filepath.Join(userDir, "git", "git.yaml"), "steps: []\n")
	path, ok = r.Resolve("git")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(userDir, "git", "git.yaml"), path)

	// A document in the working directory shadows both.
	writeFile(t, filepath.Join(cwd, "git.yaml"), "steps: []\n")
	path, ok = r.Resolve("git")
	require.True(t, ok)
	assert.Equal(t, "git.yaml", path)

	_, ok = r.Resolve("unknown")
	assert.False(t, ok)
}

func TestDetectLibraryDir(t *testing.T) {
	sep := string(filepath.Separator)
	join := func(parts ...string) string {
		return filepath.Join(parts...)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"installed library document",
			sep + join("home", "u", ".local", "share", "ry", "libraries", "git", "git.yaml"),
			sep + join("home", "u", ".local", "share", "ry", "libraries", "git"),
		},
		{
			"relative checkout document",
			join("libraries", "git", "git.yaml"),
			join("libraries", "git"),
		},
		{
			"plain document",
			sep + join("tmp", "x", "doc.yaml"),
			"",
		},
		{
			"libraries with no following segment",
			join("a", "libraries"),
			"",
		},
		{
			"first libraries segment wins",
			join("libraries", "outer", "libraries", "inner", "inner.yaml"),
			join("libraries", "outer"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLibraryDir(tt.path))
		})
	}
}

func TestListAvailable(t *testing.T) {
	userDir := t.TempDir()
	systemDir := t.TempDir()
	r := &Resolver{userDir: userDir, systemDir: systemDir}

	writeFile(t, filepath.Join(userDir, "git", "git.yaml"), "steps: []\n")
	writeFile(t, filepath.Join(userDir, "docker", "docker.yaml"), "steps: []\n")
	writeFile(t, filepath.Join(systemDir, "git", "git.yaml"), "steps: []\n")
	writeFile(t, filepath.Join(systemDir, "aws", "aws.yaml"), "steps: []\n")
	// A directory without its entry document is not a library.
	require.NoError(t, os.MkdirAll(filepath.Join(userDir, "broken"), 0o755))

	assert.Equal(t, []string{"aws", "docker", "git"}, r.ListAvailable())
}
