package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/logger"
	"github.com/angelsen/ry-tool/pkg/template"
)

var generatorLog = logger.New("workflow:generator")

// blockKind enumerates the mutually exclusive control-flow shapes a
// document (or nested value) can take.
type blockKind int

const (
	blockSingle blockKind = iota
	blockPipeline
	blockParallel
	blockSequence
	blockMatch
	blockConditional
	blockIteration
)

// blockPredicates give the shape checks their priority order: the
// first key present in a mapping decides its kind.
var blockPredicates = []struct {
	key  string
	kind blockKind
}{
	{"pipeline", blockPipeline},
	{"parallel", blockParallel},
	{"steps", blockSequence},
	{"match", blockMatch},
	{"if", blockConditional},
	{"foreach", blockIteration},
}

func classifyBlock(m *document.Map) blockKind {
	for _, p := range blockPredicates {
		if m.Has(p.key) {
			return p.kind
		}
	}
	return blockSingle
}

// Generator interprets a resolved document's control-flow shapes,
// drives the normalizer and executor registry per leaf step, and joins
// the compiled fragments into the final script text. Generation never
// executes anything; the output is text for some later shell.
type Generator struct {
	context    *ExecutionContext
	engine     *template.Engine
	normalizer *Normalizer
	registry   *Registry
}

// NewGenerator wires a generator for one compilation run.
func NewGenerator(ctx *ExecutionContext, engine *template.Engine, registry *Registry) *Generator {
	return &Generator{
		context:    ctx,
		engine:     engine,
		normalizer: NewNormalizer(ctx),
		registry:   registry,
	}
}

// Generate compiles the resolved document tree to shell text: the
// env-export prefix, then the main block. Errors come only from
// template substitution; malformed steps compile into diagnostic
// fragments instead of failing the run.
func (g *Generator) Generate(doc any) (string, error) {
	if doc == nil {
		doc = document.NewMap()
	}
	generatorLog.Printf("Generating: args=%d library=%t", len(g.context.Args), g.context.IsLibrary())

	exports := g.context.EnvExports()
	if m, ok := doc.(*document.Map); ok {
		if envMap, ok := m.GetMap("env"); ok {
			for _, entry := range envMap.Entries() {
				value, err := g.engine.ProcessTree(entry.Value)
				if err != nil {
					return "", err
				}
				exports = append(exports, fmt.Sprintf("export %s=%v", entry.Key, value))
			}
		}
	}

	main, err := g.compileBlock(doc)
	if err != nil {
		return "", err
	}
	if len(exports) > 0 {
		return strings.Join(exports, "\n") + "\n" + main, nil
	}
	return main, nil
}

// compileBlock dispatches one value through the shape state machine.
// Lists compile as sequences; scalars as single steps.
func (g *Generator) compileBlock(value any) (string, error) {
	switch v := value.(type) {
	case *document.Map:
		kind := classifyBlock(v)
		switch kind {
		case blockPipeline:
			steps, _ := v.Get("pipeline")
			return g.compileJoined(steps, ModePipeline)
		case blockParallel:
			steps, _ := v.Get("parallel")
			return g.compileJoined(steps, ModeParallel)
		case blockSequence:
			steps, _ := v.Get("steps")
			return g.compileSequence(steps)
		case blockMatch:
			patterns, _ := v.Get("match")
			return g.compileMatch(patterns)
		case blockConditional:
			return g.compileConditional(v)
		case blockIteration:
			return g.compileIteration(v)
		default:
			return g.compileSingle(v)
		}
	case []any:
		return g.compileSequence(v)
	default:
		return g.compileSingle(value)
	}
}

// compileJoined handles the pipeline and parallel shapes, whose value
// is either a bare step list or a mapping with a steps key.
func (g *Generator) compileJoined(value any, mode PipeMode) (string, error) {
	var steps []any
	switch v := value.(type) {
	case []any:
		steps = v
	case *document.Map:
		steps, _ = v.GetSlice("steps")
	}
	return g.compileSteps(NewPipelineContext(steps, mode))
}

func (g *Generator) compileSequence(value any) (string, error) {
	steps, ok := value.([]any)
	if !ok {
		steps = []any{value}
	}
	return g.compileSteps(NewPipelineContext(steps, ModeSequence))
}

func (g *Generator) compileSingle(step any) (string, error) {
	return g.compileSteps(NewPipelineContext([]any{step}, ModeSequence))
}

// compileMatch selects the action whose pattern matches the invocation
// arguments. Multi-word patterns must prefix-match the argument list
// and are tried before single-word patterns; ties keep document order.
// The default and * keys are the fallback, never patterns.
func (g *Generator) compileMatch(value any) (string, error) {
	patterns, ok := value.(*document.Map)
	if !ok {
		return "", nil
	}

	entries := patterns.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return len(strings.Fields(entries[i].Key)) > len(strings.Fields(entries[j].Key))
	})

	var matched any
	args := g.context.Args
	if len(args) > 0 {
		for _, entry := range entries {
			if entry.Key == "default" || entry.Key == "*" {
				continue
			}
			if strings.Contains(entry.Key, " ") {
				words := strings.Fields(entry.Key)
				if len(args) >= len(words) && startsWith(args, words) {
					generatorLog.Printf("Matched multi-word pattern %q", entry.Key)
					matched = entry.Value
					break
				}
			} else if entry.Key == args[0] {
				generatorLog.Printf("Matched pattern %q", entry.Key)
				matched = entry.Value
				break
			}
		}
	}

	if matched == nil {
		if fallback, ok := patterns.Get("default"); ok && document.Truthy(fallback) {
			matched = fallback
		} else if fallback, ok := patterns.Get("*"); ok {
			matched = fallback
		}
		if matched == nil {
			generatorLog.Print("No pattern matched and no fallback present")
			return "", nil
		}
		generatorLog.Print("No pattern matched, using fallback")
	}

	return g.compileBlock(matched)
}

func startsWith(args, words []string) bool {
	for i, word := range words {
		if args[i] != word {
			return false
		}
	}
	return true
}

// compileConditional emits a literal shell if around the recursively
// generated branches. The condition is template-substituted but
// otherwise passed through for the final shell to evaluate.
func (g *Generator) compileConditional(m *document.Map) (string, error) {
	rawCondition, _ := m.Get("if")
	condition, err := g.engine.ProcessTree(rawCondition)
	if err != nil {
		return "", err
	}
	if condition == nil {
		condition = ""
	}

	lines := []string{fmt.Sprintf("if %v; then", condition)}

	if thenValue, ok := m.Get("then"); ok && document.Truthy(thenValue) {
		compiled, err := g.compileBlock(thenValue)
		if err != nil {
			return "", err
		}
		lines = append(lines, indentLines(compiled)...)
	}
	if elseValue, ok := m.Get("else"); ok && document.Truthy(elseValue) {
		compiled, err := g.compileBlock(elseValue)
		if err != nil {
			return "", err
		}
		lines = append(lines, "else")
		lines = append(lines, indentLines(compiled)...)
	}

	lines = append(lines, "fi")
	return strings.Join(lines, "\n"), nil
}

// compileIteration emits a shell for loop. Literal item lists are
// emitted quoted; a string items value is template-substituted and
// emitted unquoted so globs and command substitutions expand when the
// script runs.
func (g *Generator) compileIteration(m *document.Map) (string, error) {
	items, _ := m.Get("items")
	if s, ok := items.(string); ok {
		substituted, err := g.engine.ProcessString(s)
		if err != nil {
			return "", err
		}
		items = substituted
	}

	varName := "item"
	if v, ok := m.Get("var"); ok {
		varName = stringifyScalar(v)
	}

	var header string
	switch list := items.(type) {
	case []any:
		quoted := make([]string, len(list))
		for i, item := range list {
			quoted[i] = fmt.Sprintf("\"%v\"", item)
		}
		header = fmt.Sprintf("for %s in %s; do", varName, strings.Join(quoted, " "))
	case nil:
		header = fmt.Sprintf("for %s in ; do", varName)
	default:
		header = fmt.Sprintf("for %s in %v; do", varName, items)
	}

	lines := []string{header}
	if doValue, ok := m.Get("do"); ok && document.Truthy(doValue) {
		compiled, err := g.compileBlock(doValue)
		if err != nil {
			return "", err
		}
		lines = append(lines, indentLines(compiled)...)
	}
	lines = append(lines, "done")
	return strings.Join(lines, "\n"), nil
}

// compileSteps is the leaf path every block funnels into: substitute
// templates in the raw steps, normalize each, compile via the
// registry, apply the test and capture wrappers, and join per mode.
func (g *Generator) compileSteps(pc *PipelineContext) (string, error) {
	templated, err := g.engine.ProcessTree(pc.Steps)
	if err != nil {
		return "", err
	}
	steps, _ := templated.([]any)

	commands := make([]string, 0, len(steps))
	for _, raw := range steps {
		step := g.normalizer.Normalize(raw)

		executor, ok := g.registry.Get(step.Executor)
		if !ok {
			generatorLog.Printf("No executor registered for %q", step.Executor)
			commands = append(commands, fmt.Sprintf("echo 'ERROR: No executor for %s' >&2; exit 1", step.Executor))
			continue
		}

		cmd := executor.Compile(step.Script, step.Config)
		if step.Test != "" {
			wrapped := fmt.Sprintf("if %s; then %s; ", step.Test, cmd)
			if step.Fail != "" {
				wrapped += fmt.Sprintf("else echo '%s' >&2; exit 1; ", step.Fail)
			}
			cmd = wrapped + "fi"
		}
		if step.Capture != "" {
			cmd = fmt.Sprintf("export %s=$(%s)", step.Capture, cmd)
		}
		commands = append(commands, cmd)
	}

	return joinCommands(commands, pc), nil
}

// joinCommands applies the mode's composition rule. A lone fragment is
// emitted bare, with no failure prefix.
func joinCommands(commands []string, pc *PipelineContext) string {
	if len(commands) == 0 {
		return ""
	}
	if len(commands) == 1 {
		return commands[0]
	}

	switch pc.Mode {
	case ModePipeline:
		joined := strings.Join(commands, " | \\\n")
		if pc.FailFast {
			return "set -e; set -o pipefail\n" + joined
		}
		return joined
	case ModeParallel:
		lines := make([]string, 0, len(commands)+1)
		for _, cmd := range commands {
			lines = append(lines, fmt.Sprintf("(%s) &", cmd))
		}
		lines = append(lines, "wait")
		return strings.Join(lines, "\n")
	default:
		joined := strings.Join(commands, "\n")
		if pc.FailFast {
			return "set -e\n" + joined
		}
		return joined
	}
}

func indentLines(text string) []string {
	lines := strings.Split(text, "\n")
	indented := make([]string, len(lines))
	for i, line := range lines {
		indented[i] = "  " + line
	}
	return indented
}
