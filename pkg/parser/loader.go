// Package parser loads ry workflow documents. Loading happens in two
// passes: the YAML text is parsed to a syntax tree, then the tree is
// resolved into document values while evaluating ry's directive tags
// (!env, !shell, !if, !include, !json, !eval, !exists, !read).
//
// Resolution is lazy where it matters: the untaken branch of an !if is
// never resolved, so directives inside it never run.
package parser

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml/ast"
	yamlparser "github.com/goccy/go-yaml/parser"

	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/envutil"
	"github.com/angelsen/ry-tool/pkg/logger"
)

var loaderLog = logger.New("parser:loader")

// Loader resolves a single document. Includes spawn child loaders that
// share the invocation arguments and the open-file chain used for
// cycle detection.
type Loader struct {
	args         []string
	path         string // document path, "" when loading bytes
	dir          string // base directory for relative paths
	anchors      map[string]any
	openFiles    []string // absolute paths of documents being loaded
	shellTimeout time.Duration
}

// LoadFile loads and resolves the YAML document at path. Relative
// paths inside the document resolve against the document's directory.
func LoadFile(path string, args []string) (any, error) {
	loaderLog.Printf("Loading document: path=%s, args=%d", path, len(args))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	l := newLoader(path, filepath.Dir(abs), args)
	l.openFiles = []string{abs}
	return l.loadBytes(data)
}

// LoadBytes loads and resolves YAML content. Relative paths inside the
// document resolve against baseDir, or the working directory when
// baseDir is empty.
func LoadBytes(data []byte, baseDir string, args []string) (any, error) {
	loaderLog.Printf("Loading document from bytes: baseDir=%s, args=%d", baseDir, len(args))
	l := newLoader("", baseDir, args)
	return l.loadBytes(data)
}

func newLoader(path, dir string, args []string) *Loader {
	timeout := envutil.GetIntFromEnv(
		constants.EnvVarShellTimeout,
		constants.DefaultShellTimeoutSeconds,
		constants.MinShellTimeoutSeconds,
		constants.MaxShellTimeoutSeconds,
		loaderLog,
	)
	return &Loader{
		args:         args,
		path:         path,
		dir:          dir,
		anchors:      make(map[string]any),
		shellTimeout: time.Duration(timeout) * time.Second,
	}
}

func (l *Loader) loadBytes(data []byte) (any, error) {
	file, err := yamlparser.ParseBytes(data, 0)
	if err != nil {
		line, column, message := ExtractYAMLError(err, 1)
		return nil, &LoaderError{
			File:    l.path,
			Line:    line,
			Column:  column,
			Message: message,
			Cause:   err,
		}
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, nil
	}
	// Multi-document streams: only the first document is the workflow.
	return l.resolve(file.Docs[0].Body)
}

// resolve converts a syntax node into a document value, dispatching
// directive tags along the way.
func (l *Loader) resolve(node ast.Node) (any, error) {
	switch n := node.(type) {
	case *ast.DocumentNode:
		return l.resolve(n.Body)
	case *ast.TagNode:
		return l.resolveTag(n)
	case *ast.AnchorNode:
		return l.resolveAnchor(n)
	case *ast.AliasNode:
		return l.resolveAlias(n)
	case *ast.MappingNode:
		return l.resolveMapping(n.Values)
	case *ast.MappingValueNode:
		// A single-pair mapping parses as a bare value node.
		return l.resolveMapping([]*ast.MappingValueNode{n})
	case *ast.SequenceNode:
		return l.resolveSequence(n)
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		return n.Value.Value, nil
	case *ast.IntegerNode:
		return normalizeInteger(n.Value), nil
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.BoolNode:
		return n.Value, nil
	case *ast.NullNode:
		return nil, nil
	case *ast.InfinityNode:
		return n.Value, nil
	case *ast.NanNode:
		return math.NaN(), nil
	case nil:
		return nil, nil
	default:
		return nil, l.errorAt(node, "", "unsupported YAML node %T", node)
	}
}

func (l *Loader) resolveMapping(values []*ast.MappingValueNode) (any, error) {
	// Explicit keys always win over << merges, regardless of position.
	explicit := make(map[string]bool, len(values))
	for _, kv := range values {
		if _, isMerge := kv.Key.(*ast.MergeKeyNode); isMerge {
			continue
		}
		key, err := l.resolveKey(kv.Key)
		if err != nil {
			return nil, err
		}
		explicit[key] = true
	}

	out := document.NewMap()
	for _, kv := range values {
		if _, isMerge := kv.Key.(*ast.MergeKeyNode); isMerge {
			if err := l.applyMerge(out, explicit, kv.Value); err != nil {
				return nil, err
			}
			continue
		}
		key, err := l.resolveKey(kv.Key)
		if err != nil {
			return nil, err
		}
		value, err := l.resolve(kv.Value)
		if err != nil {
			return nil, err
		}
		out.Set(key, value)
	}
	return out, nil
}

// applyMerge expands a << entry. The value may be one mapping or a
// sequence of mappings; earlier sources win among themselves.
func (l *Loader) applyMerge(out *document.Map, explicit map[string]bool, node ast.Node) error {
	value, err := l.resolve(node)
	if err != nil {
		return err
	}

	var sources []*document.Map
	switch v := value.(type) {
	case *document.Map:
		sources = []*document.Map{v}
	case []any:
		for _, item := range v {
			m, ok := item.(*document.Map)
			if !ok {
				return l.errorAt(node, "", "merge key expects mappings, got %T", item)
			}
			sources = append(sources, m)
		}
	default:
		return l.errorAt(node, "", "merge key expects a mapping, got %T", value)
	}

	for _, src := range sources {
		for _, e := range src.Entries() {
			if explicit[e.Key] || out.Has(e.Key) {
				continue
			}
			out.Set(e.Key, e.Value)
		}
	}
	return nil
}

func (l *Loader) resolveSequence(n *ast.SequenceNode) (any, error) {
	out := make([]any, 0, len(n.Values))
	for _, item := range n.Values {
		value, err := l.resolve(item)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func (l *Loader) resolveKey(node ast.Node) (string, error) {
	value, err := l.resolve(node)
	if err != nil {
		return "", err
	}
	switch k := value.(type) {
	case string:
		return k, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(k), nil
	}
}

func (l *Loader) resolveAnchor(n *ast.AnchorNode) (any, error) {
	name := ""
	if s, ok := n.Name.(*ast.StringNode); ok {
		name = s.Value
	}
	value, err := l.resolve(n.Value)
	if err != nil {
		return nil, err
	}
	if name != "" {
		l.anchors[name] = value
	}
	return value, nil
}

func (l *Loader) resolveAlias(n *ast.AliasNode) (any, error) {
	name := ""
	if s, ok := n.Value.(*ast.StringNode); ok {
		name = s.Value
	}
	value, ok := l.anchors[name]
	if !ok {
		return nil, l.errorAt(n, "", "undefined alias *%s", name)
	}
	// Aliases get copies so later mutation cannot leak across uses.
	return document.Clone(value), nil
}

func (l *Loader) resolveTag(n *ast.TagNode) (any, error) {
	tag := strings.TrimSpace(n.Start.Value)
	loaderLog.Printf("Resolving tag %s at %s", tag, l.describePosition(n))

	switch tag {
	case "!env":
		return l.directiveEnv(n)
	case "!shell":
		return l.directiveShell(n)
	case "!if":
		return l.directiveIf(n)
	case "!include":
		return l.directiveInclude(n)
	case "!json":
		return l.directiveJSON(n)
	case "!eval":
		return l.directiveEval(n)
	case "!exists":
		return l.directiveExists(n)
	case "!read":
		return l.directiveRead(n)
	}

	if strings.HasPrefix(tag, "!!") {
		return l.resolveStandardTag(tag, n)
	}
	return nil, l.errorAt(n, tag, "unknown directive")
}

// resolveStandardTag handles the core YAML schema tags.
func (l *Loader) resolveStandardTag(tag string, n *ast.TagNode) (any, error) {
	value, err := l.resolve(n.Value)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "!!str":
		if s, ok := value.(string); ok {
			return s, nil
		}
		return fmt.Sprint(value), nil
	case "!!null":
		return nil, nil
	default:
		return value, nil
	}
}

// scalarArg resolves a directive's operand and renders it as a string.
func (l *Loader) scalarArg(directive string, n *ast.TagNode) (string, error) {
	value, err := l.resolve(n.Value)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case int64, uint64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", l.errorAt(n, directive, "expects a scalar value, got %T", value)
	}
}

// resolvePath resolves a directive path argument relative to the
// document's directory, leaving absolute paths untouched.
func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if l.dir != "" {
		return filepath.Join(l.dir, path)
	}
	return path
}

func (l *Loader) errorAt(node ast.Node, directive, format string, args ...any) *LoaderError {
	e := &LoaderError{
		Directive: directive,
		File:      l.path,
		Message:   fmt.Sprintf(format, args...),
	}
	if node != nil {
		if tok := node.GetToken(); tok != nil && tok.Position != nil {
			e.Line = tok.Position.Line
			e.Column = tok.Position.Column
		}
	}
	return e
}

func (l *Loader) describePosition(node ast.Node) string {
	if tok := node.GetToken(); tok != nil && tok.Position != nil {
		return fmt.Sprintf("%s:%d:%d", l.path, tok.Position.Line, tok.Position.Column)
	}
	return l.path
}

// normalizeInteger folds goccy's integer representations into int64
// where the value fits, keeping uint64 only for the overflow range.
func normalizeInteger(value any) any {
	switch v := value.(type) {
	case int64:
		return v
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}
		return v
	case int:
		return int64(v)
	default:
		return value
	}
}
