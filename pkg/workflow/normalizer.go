package workflow

import (
	"fmt"
	"path/filepath"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/envutil"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var normalizerLog = logger.New("workflow:normalizer")

// Step is the canonical form every raw step normalizes to. Executor
// names the compilation strategy, Script is the code body, and Config
// carries executor-specific options. Capture, Test and Fail are the
// reserved step directives, applied by the generator after executor
// compilation.
type Step struct {
	Executor string
	Script   string
	Config   *document.Map
	Capture  string
	Test     string
	Fail     string
}

// executorKeys are the step mapping keys recognized as executor
// selectors, checked in this order.
var executorKeys = []string{"python", "py", "shell", "sh", "bash"}

// executorAliases maps alias spellings to canonical executor names.
var executorAliases = map[string]string{
	"py":   "python",
	"sh":   "shell",
	"bash": "shell",
	"zsh":  "shell",
}

// Normalizer converts heterogeneous raw step values into canonical
// Steps. It never fails: malformed steps become shell fragments that
// report the problem at script run time.
type Normalizer struct {
	libraryDir string
	pythonPath string
}

// NewNormalizer builds a normalizer for one compilation run. The
// context's library directory anchors external script references.
func NewNormalizer(ctx *ExecutionContext) *Normalizer {
	return &Normalizer{
		libraryDir: ctx.LibraryDir,
		pythonPath: envutil.GetStringFromEnv(constants.EnvVarPython, constants.DefaultPythonPath, nil),
	}
}

// Normalize maps one raw step to exactly one canonical Step.
//
// Rules, in priority order: a bare string is a shell command; a mapping
// with a script key references an external script run by the python
// interpreter; a mapping with an executor key selects that executor,
// taking config from the key's mapping value or from the sibling keys;
// anything else compiles to a diagnostic fragment.
func (n *Normalizer) Normalize(raw any) *Step {
	if script, ok := raw.(string); ok {
		return &Step{Executor: "shell", Script: script}
	}

	m, ok := raw.(*document.Map)
	if !ok {
		normalizerLog.Printf("Unnormalizable step of type %T", raw)
		return &Step{Executor: "shell", Script: `echo "ERROR: Invalid step type" >&2; exit 1`}
	}

	// Reserved directives come off first so they never reach config.
	capture := reservedString(m, "capture")
	test := reservedString(m, "test")
	fail := reservedString(m, "fail")

	step := n.normalizeBody(m)
	if step == nil {
		normalizerLog.Printf("Step mapping has no recognized executor key: keys=%v", m.Keys())
		return &Step{Executor: "shell", Script: `echo "ERROR: Unknown step type" >&2; exit 1`}
	}

	step.Capture = capture
	step.Test = test
	step.Fail = fail
	return step
}

func (n *Normalizer) normalizeBody(m *document.Map) *Step {
	if ref, ok := m.Get("script"); ok {
		return &Step{Executor: "shell", Script: n.pythonPath + " " + n.resolveScriptPath(stringifyScalar(ref))}
	}

	for _, key := range executorKeys {
		value, ok := m.Get(key)
		if !ok {
			continue
		}

		if body, ok := value.(*document.Map); ok {
			// Executor-scoped form: the mapping's script field is the
			// body and its remaining fields are the config.
			step := &Step{Executor: canonicalExecutorName(key)}
			config := document.NewMap()
			for _, entry := range body.Entries() {
				if entry.Key == "script" {
					step.Script = stringifyScalar(entry.Value)
					continue
				}
				config.Set(entry.Key, entry.Value)
			}
			if config.Len() > 0 {
				step.Config = config
			}
			return step
		}

		// Scalar form: the value is the body and the sibling keys are
		// the config.
		step := &Step{Executor: canonicalExecutorName(key), Script: stringifyScalar(value)}
		config := document.NewMap()
		for _, entry := range m.Entries() {
			switch entry.Key {
			case key, "capture", "test", "fail":
				continue
			}
			config.Set(entry.Key, entry.Value)
		}
		if config.Len() > 0 {
			step.Config = config
		}
		return step
	}
	return nil
}

// resolveScriptPath anchors a relative external-script path at the
// library directory when compiling in library context. Outside library
// context the path is left as written and resolves against the working
// directory of whoever runs the generated script.
func (n *Normalizer) resolveScriptPath(path string) string {
	if filepath.IsAbs(path) || n.libraryDir == "" {
		return path
	}
	return filepath.Join(n.libraryDir, path)
}

func canonicalExecutorName(name string) string {
	if canonical, ok := executorAliases[name]; ok {
		return canonical
	}
	return name
}

func reservedString(m *document.Map, key string) string {
	value, ok := m.Get(key)
	if !ok || !document.Truthy(value) {
		return ""
	}
	return stringifyScalar(value)
}

func stringifyScalar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
