package workflow

import (
	"encoding/base64"
	"fmt"

	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var executorLog = logger.New("workflow:executor")

// Executor turns a canonical step's script and config into a shell
// fragment. Implementations are stateless; Compile must return a
// fragment safe to embed in pipelines, background groups and if bodies
// without re-quoting.
type Executor interface {
	// Name is the canonical executor name.
	Name() string

	// Aliases are alternate names resolving to this executor.
	Aliases() []string

	// Compile converts the script body into a shell fragment. Config
	// may be nil.
	Compile(script string, config *document.Map) string
}

// encodeScript wraps a script body in the base64 decode-and-pipe form:
// the body travels as an opaque token, so no shell quoting in it can
// leak into the surrounding fragment.
func encodeScript(script, interpreter string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(script))
	return fmt.Sprintf("echo %s | base64 -d | %s", encoded, interpreter)
}

// Registry maps executor names and aliases to strategies.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry returns a registry with the built-in shell and python
// executors registered.
func NewRegistry() *Registry {
	r := &Registry{executors: make(map[string]Executor)}
	r.Register(&ShellExecutor{})
	r.Register(&PythonExecutor{})
	return r
}

// Register adds an executor under its canonical name and all aliases.
// The last registration for a name wins.
func (r *Registry) Register(executor Executor) {
	executorLog.Printf("Registering executor %s (aliases %v)", executor.Name(), executor.Aliases())
	r.executors[executor.Name()] = executor
	for _, alias := range executor.Aliases() {
		r.executors[alias] = executor
	}
}

// Get returns the executor registered under name or alias.
func (r *Registry) Get(name string) (Executor, bool) {
	executor, ok := r.executors[name]
	return executor, ok
}

// Has reports whether a name or alias is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.executors[name]
	return ok
}
