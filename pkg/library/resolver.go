// Package library locates workflow libraries on disk and manages their
// installation lifecycle: resolution, metadata, the published registry,
// installs and the maintainer tooling around a project checkout.
package library

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var resolverLog = logger.New("library:resolver")

// Resolver maps library names to their entry documents.
type Resolver struct {
	userDir   string
	systemDir string
}

// NewResolver returns a resolver over the standard search locations.
func NewResolver() *Resolver {
	return &Resolver{
		userDir:   constants.GetUserLibraryDir(),
		systemDir: constants.SystemLibraryDir,
	}
}

// Resolve finds the document for a library name. Explicit .yaml/.yml
// paths resolve only to themselves; names search the working directory,
// then the user library dir, then the system library dir.
func (r *Resolver) Resolve(name string) (string, bool) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		if fileExists(name) {
			return name, true
		}
		resolverLog.Printf("Document %s does not exist", name)
		return "", false
	}

	candidates := []string{
		name + ".yaml",
		filepath.Join(r.userDir, name, name+".yaml"),
		filepath.Join(r.systemDir, name, name+".yaml"),
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			resolverLog.Printf("Resolved %s to %s", name, candidate)
			return candidate, true
		}
	}
	resolverLog.Printf("Library %s not found", name)
	return "", false
}

// ListAvailable returns the names of resolvable installed libraries,
// sorted, user dir shadowing the system dir.
func (r *Resolver) ListAvailable() []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range []string{r.userDir, r.systemDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || seen[entry.Name()] {
				continue
			}
			name := entry.Name()
			if fileExists(filepath.Join(dir, name, name+".yaml")) {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// DetectLibraryDir reports the library directory a document belongs to,
// or "" when the path has no libraries segment. The library dir is the
// path up to and including the segment after "libraries".
func DetectLibraryDir(documentPath string) string {
	parts := strings.Split(filepath.Clean(documentPath), string(filepath.Separator))
	for i, part := range parts {
		if part != constants.LibrariesDirName {
			continue
		}
		if i+1 < len(parts) {
			dir := strings.Join(parts[:i+2], string(filepath.Separator))
			resolverLog.Printf("Document %s is part of library dir %s", documentPath, dir)
			return dir
		}
		break
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
