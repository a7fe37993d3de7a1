//go:build !integration

package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "meta.yaml"),
		"description: Git helpers\nversion: 1.2.3\nauthor: dev\ndependencies:\n  core: \">=1.0.0\"\n")

	meta := LoadMetadata(dir)
	assert.Equal(t, "Git helpers", meta.Description)
	assert.Equal(t, "1.2.3", meta.Version)
	assert.Equal(t, "dev", meta.Author)
	assert.Equal(t, ">=1.0.0", meta.Dependencies["core"])
}

func TestLoadMetadataMissingFile(t *testing.T) {
	meta := LoadMetadata(t.TempDir())
	assert.Equal(t, &Metadata{}, meta)
}

func TestLoadMetadataMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "meta.yaml"), "description: [unclosed\n")

	meta := LoadMetadata(dir)
	assert.Equal(t, &Metadata{}, meta)
}

func TestTemplateContext(t *testing.T) {
	meta := &Metadata{Description: "Git helpers", Version: "1.2.3", Author: "dev"}
	ctx := meta.TemplateContext("git")

	assert.Equal(t, map[string]string{
		"library.name":        "git",
		"library.version":     "1.2.3",
		"library.description": "Git helpers",
		"library.author":      "dev",
	}, ctx)
}
