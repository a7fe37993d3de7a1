package library

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var metadataLog = logger.New("library:metadata")

// Metadata is the meta.yaml sidecar carried by a library.
type Metadata struct {
	Description  string            `yaml:"description"`
	Version      string            `yaml:"version"`
	Author       string            `yaml:"author"`
	Dependencies map[string]string `yaml:"dependencies"`
}

// LoadMetadata reads meta.yaml from a library directory. A missing or
// malformed file yields empty metadata, never an error: libraries
// without metadata stay runnable.
func LoadMetadata(libraryDir string) *Metadata {
	meta := &Metadata{}
	data, err := os.ReadFile(filepath.Join(libraryDir, constants.MetadataFileName))
	if err != nil {
		return meta
	}
	if err := yaml.Unmarshal(data, meta); err != nil {
		metadataLog.Printf("Ignoring malformed %s in %s: %v", constants.MetadataFileName, libraryDir, err)
		return &Metadata{}
	}
	return meta
}

// TemplateContext returns the metadata keys a library's documents can
// reference in templates.
func (m *Metadata) TemplateContext(name string) map[string]string {
	return map[string]string{
		"library.name":        name,
		"library.version":     m.Version,
		"library.description": m.Description,
		"library.author":      m.Author,
	}
}
