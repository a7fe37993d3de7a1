//go:build !integration

package library

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistryValid(t *testing.T) {
	data := []byte(`{
		"version": "1.0.0",
		"base_url": "https://example.com/libraries",
		"libraries": {
			"git": {
				"files": ["git.yaml", "lib/helpers.py"],
				"entry": "git.yaml",
				"version": "2.1.0",
				"description": "Git helpers",
				"dependencies": {"core": ">=1.0.0"}
			}
		}
	}`)

	reg, err := ParseRegistry(data)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	assert.Equal(t, "https://example.com/libraries", reg.BaseURL)
	require.Contains(t, reg.Libraries, "git")
	assert.Equal(t, []string{"git.yaml", "lib/helpers.py"}, reg.Libraries["git"].Files)
	assert.Equal(t, ">=1.0.0", reg.Libraries["git"].Dependencies["core"])
}

func TestParseRegistryRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not JSON", `{broken`},
		{"missing required keys", `{"version": "1.0.0"}`},
		{"files not an array", `{"version":"1","base_url":"u","libraries":{"x":{"files":"git.yaml","entry":"git.yaml"}}}`},
		{"entry missing", `{"version":"1","base_url":"u","libraries":{"x":{"files":["git.yaml"]}}}`},
		{"dependency value not a string", `{"version":"1","base_url":"u","libraries":{"x":{"files":["a"],"entry":"a","dependencies":{"y":1}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseRegistryEmptyLibraries(t *testing.T) {
	reg, err := ParseRegistry([]byte(`{"version":"1","base_url":"u","libraries":{}}`))
	require.NoError(t, err)
	assert.NotNil(t, reg.Libraries)
	assert.Empty(t, reg.Libraries)
}

func TestFetchRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/docs/registry.json", r.URL.Path)
		w.Write([]byte(`{"version":"1.0.0","base_url":"u","libraries":{}}`))
	}))
	defer server.Close()

	reg, err := NewClient(server.URL).FetchRemote()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
}

func TestFetchRemoteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchRemote()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSaveAndLoadLocalRoundTrip(t *testing.T) {
	root := t.TempDir()
	reg := &Registry{
		Version: "1.0.0",
		BaseURL: "https://example.com/libraries",
		Libraries: map[string]LibraryInfo{
			"git": {Files: []string{"git.yaml"}, Entry: "git.yaml", Version: "1.0.0"},
		},
	}
	require.NoError(t, SaveLocal(root, reg))

	loaded := LoadLocal(root)
	assert.Equal(t, reg.Libraries, loaded.Libraries)
}

func TestLoadLocalMissingYieldsEmpty(t *testing.T) {
	reg := LoadLocal(t.TempDir())
	assert.Empty(t, reg.Libraries)
}

func TestScanLibraries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "libraries", "git", "git.yaml"), "steps: []\n")
	writeFile(t, filepath.Join(root, "libraries", "git", "meta.yaml"), "version: \"3.0.0\"\ndescription: Git helpers\nauthor: dev\n")
	writeFile(t, filepath.Join(root, "libraries", "git", "lib", "helper.py"), "print('x')\n")
	// No entry document: not a library.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "libraries", "junk"), 0o755))

	libs := ScanLibraries(root)
	require.Contains(t, libs, "git")
	assert.NotContains(t, libs, "junk")

	git := libs["git"]
	assert.Equal(t, "git.yaml", git.Entry)
	assert.Equal(t, "3.0.0", git.Version)
	assert.Equal(t, "Git helpers", git.Description)
	assert.Contains(t, git.Files, "git.yaml")
	assert.Contains(t, git.Files, "meta.yaml")
	assert.Contains(t, git.Files, "lib/helper.py")
}

func TestSearchRegistry(t *testing.T) {
	reg := &Registry{Libraries: map[string]LibraryInfo{
		"git-flow": {Description: "Git workflow helpers"},
		"docker":   {Description: "Container commands"},
		"aws":      {Description: "Cloud deploys with containers"},
	}}

	names := func(results []SearchResult) []string {
		var out []string
		for _, r := range results {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t, []string{"aws", "docker", "git-flow"}, names(SearchRegistry(reg, "")))
	assert.Equal(t, []string{"git-flow"}, names(SearchRegistry(reg, "GIT")))
	assert.Equal(t, []string{"aws", "docker"}, names(SearchRegistry(reg, "container")))
	assert.Empty(t, SearchRegistry(reg, "nothing"))
}
