package workflow

import (
	"fmt"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/document"
)

// ExecutionContext holds the read-only invocation state for one
// compilation run: the document being compiled, the arguments passed
// through to it, and the optional library context.
type ExecutionContext struct {
	// DocumentPath is the resolved path of the document being compiled.
	DocumentPath string

	// Args are the positional arguments after the document name.
	Args []string

	// LibraryDir is set when the document belongs to an installed
	// library. It enables the RY_LIBRARY_DIR export and library-relative
	// resolution of external script references.
	LibraryDir string

	// Env holds extra exports requested by the caller, emitted before
	// the document's own env section. Usually empty.
	Env *document.Map

	// Metadata seeds the template context (library.name and friends).
	Metadata map[string]string
}

// IsLibrary reports whether the document executes in library context.
func (c *ExecutionContext) IsLibrary() bool {
	return c.LibraryDir != ""
}

// EnvExports returns the export lines that precede every generated
// block: RY_LIBRARY_DIR when in library context, then one line per
// extra env entry in insertion order.
func (c *ExecutionContext) EnvExports() []string {
	var exports []string
	if c.LibraryDir != "" {
		exports = append(exports, fmt.Sprintf("export %s=%s", constants.EnvVarLibraryDir, c.LibraryDir))
	}
	for _, entry := range c.Env.Entries() {
		exports = append(exports, fmt.Sprintf("export %s=%v", entry.Key, entry.Value))
	}
	return exports
}
