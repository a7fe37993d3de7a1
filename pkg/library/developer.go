package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/gitutil"
	"github.com/angelsen/ry-tool/pkg/logger"
	"github.com/angelsen/ry-tool/pkg/workflow"
)

var developerLog = logger.New("library:developer")

// Developer provides the maintainer commands operating on a project
// checkout: scaffolding, validation and registry rebuilds.
type Developer struct {
	projectRoot  string
	librariesDir string
}

// NewDeveloper roots developer tools at the git worktree enclosing dir,
// or dir itself outside a worktree.
func NewDeveloper(dir string) *Developer {
	root := gitutil.FindWorktreeRoot(dir)
	developerLog.Printf("Developer tools rooted at %s", root)
	return &Developer{
		projectRoot:  root,
		librariesDir: filepath.Join(root, constants.LibrariesDirName),
	}
}

// ProjectRoot returns the checkout the developer tools operate on.
func (d *Developer) ProjectRoot() string {
	return d.projectRoot
}

// New scaffolds libraries/<name>/ with an entry document, metadata, a
// lib directory for helper scripts and a README. A nil meta scaffolds
// placeholder metadata.
func (d *Developer) New(name string, meta *Metadata) error {
	libDir := filepath.Join(d.librariesDir, name)
	if _, err := os.Stat(libDir); err == nil {
		return fmt.Errorf("library '%s' already exists at %s", name, libDir)
	}
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", libDir, err)
	}

	if meta == nil {
		meta = &Metadata{}
	}
	if meta.Description == "" {
		meta.Description = name + " library for " + constants.BinaryName
	}
	if meta.Author == "" {
		meta.Author = "unknown"
	}
	if meta.Version == "" {
		meta.Version = "0.1.0"
	}

	entry := fmt.Sprintf(`# %[1]s library for %[2]s
# Generated template, customize as needed.

match:
  test:
    - shell: echo "Running %[1]s test"

  default:
    - shell: 'echo "Usage: %[2]s %[1]s [command]"'
    - shell: 'echo "Available commands: test"'
`, name, constants.BinaryName)
	if err := os.WriteFile(filepath.Join(libDir, name+".yaml"), []byte(entry), 0o644); err != nil {
		return fmt.Errorf("failed to write entry document: %w", err)
	}

	metaContent := fmt.Sprintf("# Metadata for the %s library\ndescription: %q\nauthor: %q\nversion: %q\n",
		name, meta.Description, meta.Author, meta.Version)
	if err := os.WriteFile(filepath.Join(libDir, constants.MetadataFileName), []byte(metaContent), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", constants.MetadataFileName, err)
	}

	if err := os.MkdirAll(filepath.Join(libDir, "lib"), 0o755); err != nil {
		return fmt.Errorf("failed to create lib directory: %w", err)
	}

	readme := fmt.Sprintf(`# %[1]s

%[3]s

## Installation

`+"```bash\n%[2]s install %[1]s\n```"+`

## Usage

`+"```bash\n%[2]s %[1]s test\n```"+`

## Commands

- `+"`test`"+`: run the test command
`, name, constants.BinaryName, meta.Description)
	if err := os.WriteFile(filepath.Join(libDir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}

	fmt.Println(console.FormatSuccessMessage("Created library template at " + libDir))
	fmt.Println(console.FormatListItem("edit " + filepath.Join(libDir, name+".yaml")))
	fmt.Println(console.FormatListItem(fmt.Sprintf("try  %s %s test", constants.BinaryName, filepath.Join(libDir, name+".yaml"))))
	return nil
}

// Check compiles every library in the checkout with a placeholder
// argument and reports the ones that fail. Nothing is executed.
func (d *Developer) Check() error {
	entries, err := os.ReadDir(d.librariesDir)
	if err != nil {
		return fmt.Errorf("no libraries directory at %s", d.librariesDir)
	}

	allValid := true
	checked := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		checked++

		entryPath := filepath.Join(d.librariesDir, name, name+".yaml")
		if !fileExists(entryPath) {
			fmt.Println(console.FormatErrorMessage(name + ": missing " + name + ".yaml"))
			allValid = false
			continue
		}
		if err := d.checkLibrary(name, entryPath); err != nil {
			fmt.Println(console.FormatErrorMessage(name + ": " + err.Error()))
			allValid = false
			continue
		}
		fmt.Println(console.FormatSuccessMessage(name + ": OK"))
	}

	if checked == 0 {
		fmt.Println(console.FormatInfoMessage("No libraries to check"))
		return nil
	}
	if !allValid {
		return fmt.Errorf("some libraries failed validation")
	}
	return nil
}

// checkLibrary compiles one library the way a real run would, using a
// placeholder argument so only the fallback command path is generated.
func (d *Developer) checkLibrary(name, entryPath string) error {
	libDir := filepath.Join(d.librariesDir, name)
	meta := LoadMetadata(libDir)
	ctx := &workflow.ExecutionContext{
		DocumentPath: entryPath,
		Args:         []string{"check"},
		LibraryDir:   libDir,
		Metadata:     meta.TemplateContext(name),
	}
	_, err := workflow.NewCompiler().Compile(ctx)
	return err
}

// UpdateRegistry rebuilds docs/registry.json from the libraries tree.
func (d *Developer) UpdateRegistry(baseURL string) error {
	reg := BuildRegistry(d.projectRoot, baseURL)
	if err := SaveLocal(d.projectRoot, reg); err != nil {
		return err
	}
	fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("Registry updated with %d libraries", len(reg.Libraries))))
	fmt.Println(console.FormatLocationMessage(filepath.Join(d.projectRoot, constants.DocsDirName, constants.RegistryFileName)))
	return nil
}
