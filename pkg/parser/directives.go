package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml/ast"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var directiveLog = logger.New("parser:directives")

// directiveEnv expands environment-variable references in the scalar:
// !env "$HOME/.config". References to unset variables become empty, so
// the directive itself never fails.
func (l *Loader) directiveEnv(n *ast.TagNode) (any, error) {
	value, err := l.scalarArg("!env", n)
	if err != nil {
		return nil, err
	}
	return expandVariables(value), nil
}

// expandVariables substitutes $NAME and ${NAME} from the environment.
// Unset variables expand to the empty string; a '$' that does not start
// a well-formed reference (lone '$', '${' with no closing brace) stays
// literal, unlike os.ExpandEnv which swallows malformed references.
func expandVariables(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '$' || i+1 >= len(s) {
			sb.WriteByte(c)
			i++
			continue
		}

		if s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				sb.WriteByte(c)
				i++
				continue
			}
			name := s[i+2 : i+2+end]
			if isVariableName(name) {
				sb.WriteString(os.Getenv(name))
			} else {
				sb.WriteString(s[i : i+2+end+1])
			}
			i += 2 + end + 1
			continue
		}

		j := i + 1
		for j < len(s) && isVariableNameByte(s[j]) {
			j++
		}
		if j == i+1 {
			sb.WriteByte(c)
			i++
			continue
		}
		sb.WriteString(os.Getenv(s[i+1 : j]))
		i = j
	}
	return sb.String()
}

func isVariableName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isVariableNameByte(name[i]) {
			return false
		}
	}
	return true
}

func isVariableNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// directiveShell runs the scalar as a shell command at load time and
// substitutes its trimmed stdout. Non-zero exits and timeouts are load
// errors.
func (l *Loader) directiveShell(n *ast.TagNode) (any, error) {
	command, err := l.scalarArg("!shell", n)
	if err != nil {
		return nil, err
	}
	directiveLog.Printf("Running load-time command: %s", command)

	ctx, cancel := context.WithTimeout(context.Background(), l.shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, constants.DefaultShellPath, "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, l.errorAt(n, "!shell", "command timed out after %s: %s", l.shellTimeout, command)
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, l.errorAt(n, "!shell", "command failed: %s", msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// directiveIf selects between two subtrees based on a condition:
// !if {condition: ..., then: ..., else: ...}. Only the chosen branch
// is resolved, so directives in the other branch never run.
func (l *Loader) directiveIf(n *ast.TagNode) (any, error) {
	values, ok := mappingValues(n.Value)
	if !ok {
		return nil, l.errorAt(n, "!if", "expects a mapping with condition, then, else")
	}

	var conditionNode, thenNode, elseNode ast.Node
	for _, kv := range values {
		key, err := l.resolveKey(kv.Key)
		if err != nil {
			return nil, err
		}
		switch key {
		case "condition":
			conditionNode = kv.Value
		case "then":
			thenNode = kv.Value
		case "else":
			elseNode = kv.Value
		}
	}

	result := false
	if conditionNode != nil {
		condition, err := l.resolve(conditionNode)
		if err != nil {
			return nil, err
		}
		result = evaluateCondition(condition)
	}
	directiveLog.Printf("Conditional resolved to %t", result)

	branch := elseNode
	if result {
		branch = thenNode
	}
	if branch == nil {
		return nil, nil
	}
	return l.resolve(branch)
}

// evaluateCondition interprets an !if condition value. Strings support
// == and != comparisons; the true/false spellings map directly; any
// other string is treated as an environment variable presence check.
func evaluateCondition(condition any) bool {
	switch c := condition.(type) {
	case bool:
		return c
	case string:
		if strings.Contains(c, "==") {
			left, right, _ := strings.Cut(c, "==")
			return strings.TrimSpace(left) == strings.TrimSpace(right)
		}
		if strings.Contains(c, "!=") {
			left, right, _ := strings.Cut(c, "!=")
			return strings.TrimSpace(left) != strings.TrimSpace(right)
		}
		switch c {
		case "true", "True", "1":
			return true
		case "false", "False", "0", "":
			return false
		}
		return os.Getenv(c) != ""
	default:
		return document.Truthy(condition)
	}
}

// directiveInclude loads another YAML document and substitutes its
// resolved tree: !include common.yaml. Paths resolve relative to the
// including document; cycles are detected across the include chain.
func (l *Loader) directiveInclude(n *ast.TagNode) (any, error) {
	filename, err := l.scalarArg("!include", n)
	if err != nil {
		return nil, err
	}

	includePath := l.resolvePath(filename)
	abs, absErr := filepath.Abs(includePath)
	if absErr != nil {
		abs = includePath
	}

	for _, open := range l.openFiles {
		if open == abs {
			return nil, l.errorAt(n, "!include", "include cycle detected: %s", filename)
		}
	}
	if len(l.openFiles) >= constants.MaxIncludeDepth {
		return nil, l.errorAt(n, "!include", "include depth exceeds %d: %s", constants.MaxIncludeDepth, filename)
	}

	data, err := os.ReadFile(includePath)
	if err != nil {
		return nil, l.errorAt(n, "!include", "cannot read %s: %v", filename, err)
	}

	child := newLoader(includePath, filepath.Dir(abs), l.args)
	child.shellTimeout = l.shellTimeout
	child.openFiles = append(append([]string{}, l.openFiles...), abs)

	value, err := child.loadBytes(data)
	if err != nil {
		var loadErr *LoaderError
		if errors.As(err, &loadErr) {
			return nil, loadErr
		}
		return nil, l.errorAt(n, "!include", "failed to load %s: %v", filename, err)
	}
	return value, nil
}

// directiveJSON loads JSON data from inline text or a file:
// !json '{"a": 1}' or !json config.json. Objects come back with key
// order preserved.
func (l *Loader) directiveJSON(n *ast.TagNode) (any, error) {
	value, err := l.scalarArg("!json", n)
	if err != nil {
		return nil, err
	}

	var data []byte
	source := "inline JSON"
	if strings.HasPrefix(value, "{") || strings.HasPrefix(value, "[") {
		data = []byte(value)
	} else {
		jsonPath := l.resolvePath(value)
		source = value
		data, err = os.ReadFile(jsonPath)
		if err != nil {
			return nil, l.errorAt(n, "!json", "cannot read %s: %v", value, err)
		}
	}

	if !json.Valid(data) {
		return nil, l.errorAt(n, "!json", "invalid JSON in %s", source)
	}

	// JSON is a YAML subset; parsing it as YAML yields ordered maps
	// like the rest of the document tree.
	child := newLoader(l.path, l.dir, l.args)
	parsed, err := child.loadBytes(data)
	if err != nil {
		return nil, l.errorAt(n, "!json", "invalid JSON in %s: %v", source, err)
	}
	return parsed, nil
}

// directiveEval evaluates a restricted expression against the
// invocation arguments and environment: !eval "len(args) > 0".
func (l *Loader) directiveEval(n *ast.TagNode) (any, error) {
	expr, err := l.scalarArg("!eval", n)
	if err != nil {
		return nil, err
	}

	value, err := EvalExpression(expr, l.args)
	if err != nil {
		return nil, l.errorAt(n, "!eval", "%v", err)
	}
	return value, nil
}

// directiveExists checks whether a path exists: !exists "Makefile".
func (l *Loader) directiveExists(n *ast.TagNode) (any, error) {
	path, err := l.scalarArg("!exists", n)
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(l.resolvePath(path))
	return statErr == nil, nil
}

// directiveRead substitutes a file's trimmed contents: !read "VERSION".
func (l *Loader) directiveRead(n *ast.TagNode) (any, error) {
	filename, err := l.scalarArg("!read", n)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.resolvePath(filename))
	if err != nil {
		return nil, l.errorAt(n, "!read", "cannot read %s: %v", filename, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// mappingValues normalizes the two shapes goccy uses for mappings.
func mappingValues(node ast.Node) ([]*ast.MappingValueNode, bool) {
	switch m := node.(type) {
	case *ast.MappingNode:
		return m.Values, true
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{m}, true
	default:
		return nil, false
	}
}
