package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/envutil"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var registryLog = logger.New("library:registry")

// LibraryInfo describes one library as published in the registry.
type LibraryInfo struct {
	Files        []string          `json:"files"`
	Entry        string            `json:"entry"`
	Version      string            `json:"version,omitempty"`
	Description  string            `json:"description,omitempty"`
	Author       string            `json:"author,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Registry is the published index of installable libraries.
type Registry struct {
	Version   string                 `json:"version"`
	BaseURL   string                 `json:"base_url"`
	Libraries map[string]LibraryInfo `json:"libraries"`
}

// registrySchemaJSON is the schema every registry document must pass
// before any of its contents are trusted.
const registrySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "base_url", "libraries"],
  "properties": {
    "version": {"type": "string"},
    "base_url": {"type": "string"},
    "libraries": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["files", "entry"],
        "properties": {
          "files": {"type": "array", "items": {"type": "string"}},
          "entry": {"type": "string"},
          "version": {"type": "string"},
          "description": {"type": "string"},
          "author": {"type": "string"},
          "dependencies": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        }
      }
    }
  }
}`

var registrySchema = compileRegistrySchema()

func compileRegistrySchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(registrySchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("registry schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("registry.json", doc); err != nil {
		panic(fmt.Sprintf("registry schema: %v", err))
	}
	schema, err := compiler.Compile("registry.json")
	if err != nil {
		panic(fmt.Sprintf("registry schema: %v", err))
	}
	return schema
}

// ParseRegistry validates raw registry JSON against the embedded schema
// and decodes it.
func ParseRegistry(data []byte) (*Registry, error) {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid registry JSON: %w", err)
	}
	if err := registrySchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("registry failed schema validation: %w", err)
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}
	if reg.Libraries == nil {
		reg.Libraries = make(map[string]LibraryInfo)
	}
	return &reg, nil
}

// Client fetches the published registry and library files over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a registry client for base. An empty base uses
// RY_REGISTRY_URL or the default published registry.
func NewClient(base string) *Client {
	if base == "" {
		base = envutil.GetStringFromEnv(constants.EnvVarRegistryURL, constants.DefaultRegistryBaseURL, registryLog)
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(constants.DefaultHTTPTimeoutSeconds) * time.Second,
		},
	}
}

// RegistryURL returns the full registry.json URL.
func (c *Client) RegistryURL() string {
	return c.baseURL + "/" + constants.DocsDirName + "/" + constants.RegistryFileName
}

// LibrariesURL returns the base URL library files download from.
func (c *Client) LibrariesURL() string {
	return c.baseURL + "/" + constants.LibrariesDirName
}

// FetchRemote downloads and validates the published registry.
func (c *Client) FetchRemote() (*Registry, error) {
	url := c.RegistryURL()
	registryLog.Printf("Fetching registry: %s", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.BinaryName+"/"+constants.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}
	return ParseRegistry(body)
}

// LoadLocal reads docs/registry.json from a project checkout. A missing
// or invalid file yields an empty registry so callers can fall back to
// it unconditionally.
func LoadLocal(projectRoot string) *Registry {
	path := filepath.Join(projectRoot, constants.DocsDirName, constants.RegistryFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return emptyRegistry()
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		registryLog.Printf("Local registry at %s invalid: %v", path, err)
		return emptyRegistry()
	}
	return reg
}

func emptyRegistry() *Registry {
	return &Registry{
		Version:   constants.RegistryFormatVersion,
		BaseURL:   constants.DefaultRegistryBaseURL + "/" + constants.LibrariesDirName,
		Libraries: make(map[string]LibraryInfo),
	}
}

// SaveLocal writes the registry to docs/registry.json under the project
// root.
func SaveLocal(projectRoot string, reg *Registry) error {
	docsDir := filepath.Join(projectRoot, constants.DocsDirName)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(docsDir, constants.RegistryFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// ScanLibraries builds the library index from a checkout's libraries
// tree. Directories without a <name>.yaml entry are skipped.
func ScanLibraries(projectRoot string) map[string]LibraryInfo {
	libraries := make(map[string]LibraryInfo)
	root := filepath.Join(projectRoot, constants.LibrariesDirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		return libraries
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		libDir := filepath.Join(root, name)
		if !fileExists(filepath.Join(libDir, name+".yaml")) {
			registryLog.Printf("Skipping %s: no %s.yaml entry", name, name)
			continue
		}
		info, err := describeLibrary(libDir, name)
		if err != nil {
			registryLog.Printf("Skipping %s: %v", name, err)
			continue
		}
		libraries[name] = *info
	}
	return libraries
}

func describeLibrary(libDir, name string) (*LibraryInfo, error) {
	var files []string
	err := filepath.WalkDir(libDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(libDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	meta := LoadMetadata(libDir)
	return &LibraryInfo{
		Files:        files,
		Entry:        name + ".yaml",
		Version:      meta.Version,
		Description:  meta.Description,
		Author:       meta.Author,
		Dependencies: meta.Dependencies,
	}, nil
}

// BuildRegistry scans a checkout and assembles a publishable registry.
func BuildRegistry(projectRoot, baseURL string) *Registry {
	return &Registry{
		Version:   constants.RegistryFormatVersion,
		BaseURL:   strings.TrimRight(baseURL, "/") + "/" + constants.LibrariesDirName,
		Libraries: ScanLibraries(projectRoot),
	}
}

// SearchResult pairs a library name with its registry entry.
type SearchResult struct {
	Name string
	Info LibraryInfo
}

// SearchRegistry returns the libraries matching query by name or
// description, case-insensitive, sorted by name. An empty query matches
// everything.
func SearchRegistry(reg *Registry, query string) []SearchResult {
	q := strings.ToLower(query)

	names := make([]string, 0, len(reg.Libraries))
	for name := range reg.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []SearchResult
	for _, name := range names {
		info := reg.Libraries[name]
		if query == "" ||
			strings.Contains(strings.ToLower(name), q) ||
			strings.Contains(strings.ToLower(info.Description), q) {
			results = append(results, SearchResult{Name: name, Info: info})
		}
	}
	return results
}
