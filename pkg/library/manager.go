package library

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/mod/semver"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/gitutil"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var managerLog = logger.New("library:manager")

// downloadConcurrency bounds parallel file and library downloads.
const downloadConcurrency = 4

// InstalledLibrary records one installed library in installed.json.
type InstalledLibrary struct {
	Version string   `json:"version"`
	Files   []string `json:"files"`
}

// InstalledStatus is one row of the list output.
type InstalledStatus struct {
	Name    string
	Version string
	Path    string
	Exists  bool
}

// Manager installs, updates and removes libraries under the user data
// directory.
type Manager struct {
	baseDir      string
	librariesDir string
	client       *Client

	// trackMu guards installed.json; libMu serializes installs of the
	// same library when update-all fans out.
	trackMu sync.Mutex
	mu      sync.Mutex
	libMu   map[string]*sync.Mutex
}

// NewManager returns a manager rooted at the user data directory,
// talking to the default registry.
func NewManager() *Manager {
	return NewManagerAt(constants.GetUserDataDir(), NewClient(""))
}

// NewManagerAt roots a manager at an explicit data directory.
func NewManagerAt(baseDir string, client *Client) *Manager {
	return &Manager{
		baseDir:      baseDir,
		librariesDir: filepath.Join(baseDir, constants.LibrariesDirName),
		client:       client,
		libMu:        make(map[string]*sync.Mutex),
	}
}

// Install downloads a library and its dependencies from the registry.
// Dependencies install first; a dependency already present at a
// sufficient version is left alone, while a direct install always
// refreshes.
func (m *Manager) Install(name string) error {
	reg := m.registry()
	if len(reg.Libraries) == 0 {
		return fmt.Errorf("no registry available")
	}
	return m.install(reg, name, map[string]bool{}, false)
}

// Update reinstalls an installed library at its latest version.
func (m *Manager) Update(name string) error {
	if _, ok := m.loadInstalled()[name]; !ok {
		return fmt.Errorf("library '%s' is not installed", name)
	}
	fmt.Println(console.FormatProgressMessage("Updating " + name + "..."))
	return m.Install(name)
}

// UpdateAll updates every installed library, fanning the libraries out
// in parallel.
func (m *Manager) UpdateAll() error {
	installed := m.loadInstalled()
	if len(installed) == 0 {
		fmt.Println(console.FormatInfoMessage("No libraries installed"))
		return nil
	}

	reg := m.registry()
	if len(reg.Libraries) == 0 {
		return fmt.Errorf("no registry available")
	}

	names := make([]string, 0, len(installed))
	for name := range installed {
		names = append(names, name)
	}
	sort.Strings(names)

	p := pool.New().WithErrors().WithMaxGoroutines(downloadConcurrency)
	for _, name := range names {
		p.Go(func() error {
			return m.install(reg, name, map[string]bool{}, false)
		})
	}
	return p.Wait()
}

// Uninstall removes a library's files and its tracking entry.
func (m *Manager) Uninstall(name string) error {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()

	installed := m.loadInstalledLocked()
	if _, ok := installed[name]; !ok {
		return fmt.Errorf("library '%s' is not installed", name)
	}
	if err := os.RemoveAll(filepath.Join(m.librariesDir, name)); err != nil {
		return fmt.Errorf("failed to remove library files: %w", err)
	}
	delete(installed, name)
	if err := m.saveInstalledLocked(installed); err != nil {
		return err
	}
	fmt.Println(console.FormatSuccessMessage("Uninstalled " + name))
	return nil
}

// List returns the installed libraries sorted by name.
func (m *Manager) List() []InstalledStatus {
	installed := m.loadInstalled()

	names := make([]string, 0, len(installed))
	for name := range installed {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make([]InstalledStatus, 0, len(names))
	for _, name := range names {
		libDir := filepath.Join(m.librariesDir, name)
		_, err := os.Stat(libDir)
		statuses = append(statuses, InstalledStatus{
			Name:    name,
			Version: installed[name].Version,
			Path:    libDir,
			Exists:  err == nil,
		})
	}
	return statuses
}

// Search queries the registry, remote first with local fallback.
func (m *Manager) Search(query string) []SearchResult {
	return SearchRegistry(m.registry(), query)
}

// registry fetches the remote registry, falling back to the registry of
// the enclosing project checkout when the remote is unreachable or
// invalid.
func (m *Manager) registry() *Registry {
	reg, err := m.client.FetchRemote()
	if err == nil {
		return reg
	}
	managerLog.Printf("Remote registry unavailable, trying local: %v", err)
	return LoadLocal(gitutil.FindWorktreeRoot("."))
}

func (m *Manager) install(reg *Registry, name string, visited map[string]bool, asDependency bool) error {
	if visited[name] {
		return fmt.Errorf("circular dependency on %s", name)
	}
	visited[name] = true
	defer delete(visited, name)

	indent := ""
	if asDependency {
		indent = "  "
	}
	fmt.Println(console.FormatProgressMessage(indent + "Installing " + name + "..."))

	info, ok := reg.Libraries[name]
	if !ok {
		if asDependency {
			return fmt.Errorf("library '%s' not found in registry", name)
		}
		return fmt.Errorf("library '%s' not found in registry (try: %s search %s)", name, constants.BinaryName, name)
	}

	if current, ok := m.loadInstalled()[name]; ok {
		if asDependency {
			fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s%s already installed (v%s)", indent, name, current.Version)))
			return nil
		}
		managerLog.Printf("Refreshing existing installation of %s (v%s)", name, current.Version)
	}

	if err := m.installDependencies(reg, name, info, visited, indent); err != nil {
		return err
	}

	lock := m.libraryLock(name)
	lock.Lock()
	defer lock.Unlock()

	libDir := filepath.Join(m.librariesDir, name)
	if err := os.RemoveAll(libDir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", libDir, err)
	}
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", libDir, err)
	}

	if err := m.downloadFiles(reg, name, info, libDir); err != nil {
		if cleanupErr := os.RemoveAll(libDir); cleanupErr != nil {
			managerLog.Printf("Cleanup of %s failed: %v", libDir, cleanupErr)
		}
		return err
	}

	version := info.Version
	if version == "" {
		version = "unknown"
	}
	if err := m.trackInstalled(name, InstalledLibrary{Version: version, Files: info.Files}); err != nil {
		return err
	}
	fmt.Println(console.FormatSuccessMessage(indent + "Installed " + name))
	return nil
}

func (m *Manager) installDependencies(reg *Registry, name string, info LibraryInfo, visited map[string]bool, indent string) error {
	if len(info.Dependencies) == 0 {
		return nil
	}
	fmt.Println(console.FormatInfoMessage(indent + "Checking dependencies for " + name + "..."))

	deps := make([]string, 0, len(info.Dependencies))
	for dep := range info.Dependencies {
		deps = append(deps, dep)
	}
	sort.Strings(deps)

	installed := m.loadInstalled()
	for _, dep := range deps {
		requirement := info.Dependencies[dep]
		if current, ok := installed[dep]; ok && versionSatisfies(current.Version, requirement) {
			fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s  %s %s satisfied (v%s)", indent, dep, requirement, current.Version)))
			continue
		}
		if err := m.install(reg, dep, visited, true); err != nil {
			return fmt.Errorf("failed to install dependency %s: %w", dep, err)
		}
	}
	return nil
}

// downloadFiles fetches every published file of a library in parallel,
// stopping at the first failure.
func (m *Manager) downloadFiles(reg *Registry, name string, info LibraryInfo, libDir string) error {
	base := strings.TrimRight(reg.BaseURL, "/")
	if base == "" {
		base = m.client.LibrariesURL()
	}

	p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(downloadConcurrency)
	for _, file := range info.Files {
		p.Go(func() error {
			return m.downloadFile(base, name, file, libDir)
		})
	}
	return p.Wait()
}

func (m *Manager) downloadFile(base, name, file, libDir string) error {
	// Registry entries are untrusted; refuse paths that would land
	// outside the library directory.
	if !filepath.IsLocal(filepath.FromSlash(file)) {
		return fmt.Errorf("registry lists unsafe file path %q for %s", file, name)
	}
	target := filepath.Join(libDir, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file, err)
	}

	url := base + "/" + name + "/" + file
	managerLog.Printf("Downloading %s", url)
	fmt.Println(console.FormatListItem("downloading " + file))

	resp, err := m.client.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", file, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %d", file, resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}

func (m *Manager) libraryLock(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.libMu[name]
	if !ok {
		lock = &sync.Mutex{}
		m.libMu[name] = lock
	}
	return lock
}

func (m *Manager) installedPath() string {
	return filepath.Join(m.baseDir, constants.InstalledFileName)
}

func (m *Manager) loadInstalled() map[string]InstalledLibrary {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()
	return m.loadInstalledLocked()
}

func (m *Manager) loadInstalledLocked() map[string]InstalledLibrary {
	installed := make(map[string]InstalledLibrary)
	data, err := os.ReadFile(m.installedPath())
	if err != nil {
		return installed
	}
	if err := json.Unmarshal(data, &installed); err != nil {
		managerLog.Printf("Ignoring corrupt %s: %v", constants.InstalledFileName, err)
		return make(map[string]InstalledLibrary)
	}
	return installed
}

func (m *Manager) trackInstalled(name string, entry InstalledLibrary) error {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()
	installed := m.loadInstalledLocked()
	installed[name] = entry
	return m.saveInstalledLocked(installed)
}

func (m *Manager) saveInstalledLocked(installed map[string]InstalledLibrary) error {
	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.baseDir, err)
	}
	data, err := json.MarshalIndent(installed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", constants.InstalledFileName, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(m.installedPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", constants.InstalledFileName, err)
	}
	return nil
}

// versionSatisfies reports whether an installed version meets a
// dependency requirement: ">=x", ">x", or a bare version meaning
// at-least.
func versionSatisfies(installed, requirement string) bool {
	switch {
	case strings.HasPrefix(requirement, ">="):
		return compareVersions(installed, strings.TrimSpace(requirement[2:])) >= 0
	case strings.HasPrefix(requirement, ">"):
		return compareVersions(installed, strings.TrimSpace(requirement[1:])) > 0
	default:
		return compareVersions(installed, strings.TrimSpace(requirement)) >= 0
	}
}

// compareVersions compares two versions with x/mod/semver, tolerating
// missing v prefixes. Unparseable versions sort lowest, which forces a
// reinstall when they appear in a requirement check.
func compareVersions(v1, v2 string) int {
	if !strings.HasPrefix(v1, "v") {
		v1 = "v" + v1
	}
	if !strings.HasPrefix(v2, "v") {
		v2 = "v" + v2
	}
	return semver.Compare(v1, v2)
}
