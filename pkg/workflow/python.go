package workflow

import (
	"strings"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/envutil"
)

// PythonExecutor compiles python script bodies.
type PythonExecutor struct{}

func (e *PythonExecutor) Name() string { return "python" }

func (e *PythonExecutor) Aliases() []string { return []string{"py", "python3"} }

// Compile prepends an import line per entry in the imports config list,
// then encodes the script into the decode-and-pipe form. The
// interpreter config key overrides the python binary.
func (e *PythonExecutor) Compile(script string, config *document.Map) string {
	if imports, ok := config.GetSlice("imports"); ok {
		var lines []string
		for _, module := range imports {
			lines = append(lines, "import "+stringifyScalar(module))
		}
		if len(lines) > 0 {
			script = strings.Join(lines, "\n") + "\n\n" + script
		}
	}

	interpreter, ok := config.GetString("interpreter")
	if !ok {
		interpreter = envutil.GetStringFromEnv(constants.EnvVarPython, constants.DefaultPythonPath, nil)
	}
	return encodeScript(script, interpreter)
}
