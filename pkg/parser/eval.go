package parser

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/angelsen/ry-tool/pkg/logger"
)

var evalLog = logger.New("parser:eval")

// EvalExpression evaluates a restricted, Python-flavored expression
// against the invocation arguments and the process environment. Two
// names resolve: args (the argument list) and env (the environment).
//
// The language supports literals, list literals, indexing, env.get,
// the operators or/and/not, comparisons, in/not in membership,
// + - * / %, and the builtins len, str, int, bool, abs, min, max,
// sum, any, all. It is deliberately not a general interpreter.
func EvalExpression(expression string, args []string) (any, error) {
	evalLog.Printf("Evaluating expression: %s", expression)

	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty expression")
	}

	p := &evalParser{}
	tokens, err := p.tokenize(expression)
	if err != nil {
		evalLog.Printf("Failed to tokenize expression: %v", err)
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0

	node, err := p.parseOr()
	if err != nil {
		evalLog.Printf("Failed to parse expression: %v", err)
		return nil, err
	}
	if p.current().kind != evalTokenEOF {
		return nil, fmt.Errorf("unexpected token '%s' at position %d", p.current().value, p.current().pos)
	}

	ctx := &evalContext{args: args}
	value, err := node.eval(ctx)
	if err != nil {
		evalLog.Printf("Failed to evaluate expression: %v", err)
		return nil, err
	}
	return value, nil
}

type evalContext struct {
	args []string
}

// envMapping marks the env name so postfix operations can special-case
// environment lookups.
type envMapping struct{}

type evalTokenKind int

const (
	evalTokenEOF evalTokenKind = iota
	evalTokenNumber
	evalTokenString
	evalTokenIdent
	evalTokenOperator // == != <= >= < > + - * / %
	evalTokenLeftParen
	evalTokenRightParen
	evalTokenLeftBracket
	evalTokenRightBracket
	evalTokenComma
	evalTokenDot
)

type evalToken struct {
	kind  evalTokenKind
	value string
	pos   int
}

type evalParser struct {
	tokens []evalToken
	pos    int
}

func (p *evalParser) tokenize(expression string) ([]evalToken, error) {
	var tokens []evalToken
	i := 0
	for i < len(expression) {
		c := expression[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(expression) && expression[j] != quote {
				j++
			}
			if j >= len(expression) {
				return nil, fmt.Errorf("unterminated string at position %d", i)
			}
			tokens = append(tokens, evalToken{evalTokenString, expression[i+1 : j], i})
			i = j + 1
		case c >= '0' && c <= '9':
			j := i
			for j < len(expression) && (expression[j] >= '0' && expression[j] <= '9' || expression[j] == '.') {
				j++
			}
			tokens = append(tokens, evalToken{evalTokenNumber, expression[i:j], i})
			i = j
		case isVariableNameByte(c):
			j := i
			for j < len(expression) && isVariableNameByte(expression[j]) {
				j++
			}
			tokens = append(tokens, evalToken{evalTokenIdent, expression[i:j], i})
			i = j
		case strings.HasPrefix(expression[i:], "==") ||
			strings.HasPrefix(expression[i:], "!=") ||
			strings.HasPrefix(expression[i:], "<=") ||
			strings.HasPrefix(expression[i:], ">="):
			tokens = append(tokens, evalToken{evalTokenOperator, expression[i : i+2], i})
			i += 2
		case strings.ContainsRune("<>+-*/%", rune(c)):
			tokens = append(tokens, evalToken{evalTokenOperator, string(c), i})
			i++
		case c == '(':
			tokens = append(tokens, evalToken{evalTokenLeftParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, evalToken{evalTokenRightParen, ")", i})
			i++
		case c == '[':
			tokens = append(tokens, evalToken{evalTokenLeftBracket, "[", i})
			i++
		case c == ']':
			tokens = append(tokens, evalToken{evalTokenRightBracket, "]", i})
			i++
		case c == ',':
			tokens = append(tokens, evalToken{evalTokenComma, ",", i})
			i++
		case c == '.':
			tokens = append(tokens, evalToken{evalTokenDot, ".", i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character '%c' at position %d", c, i)
		}
	}
	tokens = append(tokens, evalToken{evalTokenEOF, "", len(expression)})
	return tokens, nil
}

func (p *evalParser) current() evalToken {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return evalToken{kind: evalTokenEOF}
}

func (p *evalParser) advance() evalToken {
	tok := p.current()
	p.pos++
	return tok
}

func (p *evalParser) matchIdent(word string) bool {
	tok := p.current()
	if tok.kind == evalTokenIdent && tok.value == word {
		p.pos++
		return true
	}
	return false
}

func (p *evalParser) matchOperator(ops ...string) (string, bool) {
	tok := p.current()
	if tok.kind != evalTokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.value == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *evalParser) expect(kind evalTokenKind, what string) (evalToken, error) {
	tok := p.current()
	if tok.kind != kind {
		return tok, fmt.Errorf("expected %s at position %d, got '%s'", what, tok.pos, tok.value)
	}
	p.pos++
	return tok, nil
}

// Grammar, loosest binding first:
//
//	or      := and ("or" and)*
//	and     := not ("and" not)*
//	not     := "not" not | comparison
//	compare := additive (("=="|"!="|"<"|"<="|">"|">="|"in"|"not in") additive)?
//	additive := term (("+"|"-") term)*
//	term     := unary (("*"|"/"|"%") unary)*
//	unary    := "-" unary | postfix
//	postfix  := primary ("[" or "]" | "." ident | "." ident "(" args ")")*
//	primary  := number | string | list | ident | builtin "(" args ")" | "(" or ")"
func (p *evalParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchIdent("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &boolOpExpr{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *evalParser) parseAnd() (exprNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.matchIdent("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &boolOpExpr{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *evalParser) parseNot() (exprNode, error) {
	if p.matchIdent("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *evalParser) parseComparison() (exprNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if op, ok := p.matchOperator("==", "!=", "<=", ">=", "<", ">"); ok {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &compareExpr{op: op, left: left, right: right}, nil
	}
	if p.matchIdent("in") {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &compareExpr{op: "in", left: left, right: right}, nil
	}
	if p.current().kind == evalTokenIdent && p.current().value == "not" &&
		p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].kind == evalTokenIdent && p.tokens[p.pos+1].value == "in" {
		p.pos += 2
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: &compareExpr{op: "in", left: left, right: right}}, nil
	}
	return left, nil
}

func (p *evalParser) parseAdditive() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOperator("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
}

func (p *evalParser) parseTerm() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOperator("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
}

func (p *evalParser) parseUnary() (exprNode, error) {
	if _, ok := p.matchOperator("-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *evalParser) parsePostfix() (exprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().kind {
		case evalTokenLeftBracket:
			pos := p.advance().pos
			index, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(evalTokenRightBracket, "']'"); err != nil {
				return nil, err
			}
			node = &indexExpr{target: node, index: index, pos: pos}
		case evalTokenDot:
			p.advance()
			name, err := p.expect(evalTokenIdent, "attribute name")
			if err != nil {
				return nil, err
			}
			if p.current().kind == evalTokenLeftParen {
				p.advance()
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				node = &methodExpr{target: node, name: name.value, args: args, pos: name.pos}
			} else {
				node = &attrExpr{target: node, name: name.value, pos: name.pos}
			}
		default:
			return node, nil
		}
	}
}

func (p *evalParser) parsePrimary() (exprNode, error) {
	tok := p.current()
	switch tok.kind {
	case evalTokenNumber:
		p.advance()
		if strings.Contains(tok.value, ".") {
			f, err := strconv.ParseFloat(tok.value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number '%s' at position %d", tok.value, tok.pos)
			}
			return &literalExpr{value: f}, nil
		}
		i, err := strconv.ParseInt(tok.value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s' at position %d", tok.value, tok.pos)
		}
		return &literalExpr{value: i}, nil

	case evalTokenString:
		p.advance()
		return &literalExpr{value: tok.value}, nil

	case evalTokenLeftBracket:
		p.advance()
		var items []exprNode
		for p.current().kind != evalTokenRightBracket {
			item, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.current().kind == evalTokenComma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(evalTokenRightBracket, "']'"); err != nil {
			return nil, err
		}
		return &listExpr{items: items}, nil

	case evalTokenLeftParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(evalTokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	case evalTokenIdent:
		p.advance()
		switch tok.value {
		case "True", "true":
			return &literalExpr{value: true}, nil
		case "False", "false":
			return &literalExpr{value: false}, nil
		case "None":
			return &literalExpr{value: nil}, nil
		}
		if p.current().kind == evalTokenLeftParen {
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &callExpr{fn: tok.value, args: args, pos: tok.pos}, nil
		}
		return &nameExpr{name: tok.value, pos: tok.pos}, nil

	default:
		return nil, fmt.Errorf("unexpected token '%s' at position %d", tok.value, tok.pos)
	}
}

// parseArgs parses a comma-separated argument list; the opening paren
// is already consumed.
func (p *evalParser) parseArgs() ([]exprNode, error) {
	var args []exprNode
	for p.current().kind != evalTokenRightParen {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current().kind == evalTokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(evalTokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

type exprNode interface {
	eval(ctx *evalContext) (any, error)
}

type literalExpr struct{ value any }

func (e *literalExpr) eval(*evalContext) (any, error) { return e.value, nil }

type listExpr struct{ items []exprNode }

func (e *listExpr) eval(ctx *evalContext) (any, error) {
	out := make([]any, 0, len(e.items))
	for _, item := range e.items {
		v, err := item.eval(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type nameExpr struct {
	name string
	pos  int
}

func (e *nameExpr) eval(ctx *evalContext) (any, error) {
	switch e.name {
	case "args":
		out := make([]any, len(ctx.args))
		for i, a := range ctx.args {
			out[i] = a
		}
		return out, nil
	case "env":
		return envMapping{}, nil
	default:
		return nil, fmt.Errorf("name '%s' is not defined", e.name)
	}
}

type indexExpr struct {
	target exprNode
	index  exprNode
	pos    int
}

func (e *indexExpr) eval(ctx *evalContext) (any, error) {
	target, err := e.target.eval(ctx)
	if err != nil {
		return nil, err
	}
	index, err := e.index.eval(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := target.(envMapping); ok {
		name, ok := index.(string)
		if !ok {
			return nil, fmt.Errorf("environment lookup requires a string key")
		}
		value, ok := lookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("environment variable '%s' is not set", name)
		}
		return value, nil
	}

	i, ok := asInt(index)
	if !ok {
		return nil, fmt.Errorf("index must be an integer")
	}
	switch t := target.(type) {
	case []any:
		if i < 0 {
			i += int64(len(t))
		}
		if i < 0 || i >= int64(len(t)) {
			return nil, fmt.Errorf("index %d out of range", i)
		}
		return t[i], nil
	case string:
		runes := []rune(t)
		if i < 0 {
			i += int64(len(runes))
		}
		if i < 0 || i >= int64(len(runes)) {
			return nil, fmt.Errorf("index %d out of range", i)
		}
		return string(runes[i]), nil
	default:
		return nil, fmt.Errorf("value of type %s is not indexable", typeName(target))
	}
}

type attrExpr struct {
	target exprNode
	name   string
	pos    int
}

func (e *attrExpr) eval(ctx *evalContext) (any, error) {
	target, err := e.target.eval(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := target.(envMapping); ok {
		value, ok := lookupEnv(e.name)
		if !ok {
			return nil, fmt.Errorf("environment variable '%s' is not set", e.name)
		}
		return value, nil
	}
	return nil, fmt.Errorf("value of type %s has no attribute '%s'", typeName(target), e.name)
}

type methodExpr struct {
	target exprNode
	name   string
	args   []exprNode
	pos    int
}

func (e *methodExpr) eval(ctx *evalContext) (any, error) {
	target, err := e.target.eval(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := target.(envMapping); ok && e.name == "get" {
		if len(e.args) < 1 || len(e.args) > 2 {
			return nil, fmt.Errorf("env.get expects 1 or 2 arguments, got %d", len(e.args))
		}
		key, err := e.args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		name, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("env.get requires a string key")
		}
		if value, found := lookupEnv(name); found {
			return value, nil
		}
		if len(e.args) == 2 {
			return e.args[1].eval(ctx)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("value of type %s has no method '%s'", typeName(target), e.name)
}

type notExpr struct{ operand exprNode }

func (e *notExpr) eval(ctx *evalContext) (any, error) {
	v, err := e.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

type boolOpExpr struct {
	op          string
	left, right exprNode
}

func (e *boolOpExpr) eval(ctx *evalContext) (any, error) {
	left, err := e.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	// Short-circuit, returning the deciding operand like Python does.
	if e.op == "and" {
		if !truthy(left) {
			return left, nil
		}
		return e.right.eval(ctx)
	}
	if truthy(left) {
		return left, nil
	}
	return e.right.eval(ctx)
}

type unaryExpr struct{ operand exprNode }

func (e *unaryExpr) eval(ctx *evalContext) (any, error) {
	v, err := e.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch n := v.(type) {
	case int64:
		return -n, nil
	case float64:
		return -n, nil
	default:
		return nil, fmt.Errorf("cannot negate %s", typeName(v))
	}
}

type binaryExpr struct {
	op          string
	left, right exprNode
}

func (e *binaryExpr) eval(ctx *evalContext) (any, error) {
	left, err := e.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.right.eval(ctx)
	if err != nil {
		return nil, err
	}

	if e.op == "+" {
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
		if ll, ok := left.([]any); ok {
			if rl, ok := right.([]any); ok {
				return append(append([]any{}, ll...), rl...), nil
			}
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("unsupported operands for %s: %s and %s", e.op, typeName(left), typeName(right))
	}

	bothInt := isInt(left) && isInt(right)
	switch e.op {
	case "+":
		if bothInt {
			return int64(lf) + int64(rf), nil
		}
		return lf + rf, nil
	case "-":
		if bothInt {
			return int64(lf) - int64(rf), nil
		}
		return lf - rf, nil
	case "*":
		if bothInt {
			return int64(lf) * int64(rf), nil
		}
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if !bothInt {
			return nil, fmt.Errorf("modulo requires integers")
		}
		if int64(rf) == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return int64(lf) % int64(rf), nil
	default:
		return nil, fmt.Errorf("unknown operator %s", e.op)
	}
}

type compareExpr struct {
	op          string
	left, right exprNode
}

func (e *compareExpr) eval(ctx *evalContext) (any, error) {
	left, err := e.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.right.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "in":
		return evalMembership(left, right)
	}

	cmp, err := compareOrdered(left, right)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, fmt.Errorf("unknown comparison %s", e.op)
}

func evalMembership(needle, haystack any) (any, error) {
	switch h := haystack.(type) {
	case []any:
		for _, item := range h {
			if valuesEqual(needle, item) {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := needle.(string)
		if !ok {
			return nil, fmt.Errorf("'in <string>' requires a string operand")
		}
		return strings.Contains(h, s), nil
	default:
		return nil, fmt.Errorf("value of type %s does not support membership", typeName(haystack))
	}
}

func valuesEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case nil:
		return b == nil
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func compareOrdered(a, b any) (int, error) {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs), nil
		}
	}
	return 0, fmt.Errorf("cannot order %s and %s", typeName(a), typeName(b))
}

// Booleans count as numbers here, as in Python.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
		return 0, false
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func isInt(v any) bool {
	switch v.(type) {
	case int64, uint64, bool:
		return true
	default:
		return false
	}
}

func truthy(v any) bool {
	switch n := v.(type) {
	case nil:
		return false
	case bool:
		return n
	case string:
		return n != ""
	case int64:
		return n != 0
	case uint64:
		return n != 0
	case float64:
		return n != 0
	case []any:
		return len(n) > 0
	case envMapping:
		return true
	default:
		return true
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "bool"
	case string:
		return "str"
	case int64, uint64:
		return "int"
	case float64:
		return "float"
	case []any:
		return "list"
	case envMapping:
		return "env"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func lookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Builtin function dispatch.
type callExpr struct {
	fn   string
	args []exprNode
	pos  int
}

func (e *callExpr) eval(ctx *evalContext) (any, error) {
	values := make([]any, len(e.args))
	for i, arg := range e.args {
		v, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	switch e.fn {
	case "len":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		switch v := values[0].(type) {
		case string:
			return int64(len([]rune(v))), nil
		case []any:
			return int64(len(v)), nil
		default:
			return nil, fmt.Errorf("len() requires a string or list, got %s", typeName(values[0]))
		}

	case "str":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		return formatValue(values[0]), nil

	case "int":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		switch v := values[0].(type) {
		case int64:
			return v, nil
		case uint64:
			return values[0], nil
		case float64:
			return int64(v), nil
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid literal for int(): '%s'", v)
			}
			return i, nil
		default:
			return nil, fmt.Errorf("int() cannot convert %s", typeName(values[0]))
		}

	case "bool":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		return truthy(values[0]), nil

	case "abs":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		switch v := values[0].(type) {
		case int64:
			if v < 0 {
				return -v, nil
			}
			return v, nil
		case float64:
			return math.Abs(v), nil
		default:
			return nil, fmt.Errorf("abs() requires a number, got %s", typeName(values[0]))
		}

	case "min", "max":
		items, err := collectNumericArgs(e.fn, values)
		if err != nil {
			return nil, err
		}
		best := items[0]
		for _, item := range items[1:] {
			cmp, err := compareOrdered(item, best)
			if err != nil {
				return nil, err
			}
			if (e.fn == "min" && cmp < 0) || (e.fn == "max" && cmp > 0) {
				best = item
			}
		}
		return best, nil

	case "sum":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		list, ok := values[0].([]any)
		if !ok {
			return nil, fmt.Errorf("sum() requires a list, got %s", typeName(values[0]))
		}
		var total float64
		allInt := true
		for _, item := range list {
			f, ok := asFloat(item)
			if !ok {
				return nil, fmt.Errorf("sum() requires numbers, got %s", typeName(item))
			}
			if !isInt(item) {
				allInt = false
			}
			total += f
		}
		if allInt {
			return int64(total), nil
		}
		return total, nil

	case "any", "all":
		if err := expectArgs(e.fn, values, 1); err != nil {
			return nil, err
		}
		list, ok := values[0].([]any)
		if !ok {
			return nil, fmt.Errorf("%s() requires a list, got %s", e.fn, typeName(values[0]))
		}
		if e.fn == "any" {
			for _, item := range list {
				if truthy(item) {
					return true, nil
				}
			}
			return false, nil
		}
		for _, item := range list {
			if !truthy(item) {
				return false, nil
			}
		}
		return true, nil

	default:
		return nil, fmt.Errorf("name '%s' is not defined", e.fn)
	}
}

func expectArgs(fn string, values []any, n int) error {
	if len(values) != n {
		return fmt.Errorf("%s() expects %d argument(s), got %d", fn, n, len(values))
	}
	return nil
}

// collectNumericArgs flattens min/max arguments: either a single list
// or two-plus scalars.
func collectNumericArgs(fn string, values []any) ([]any, error) {
	items := values
	if len(values) == 1 {
		list, ok := values[0].([]any)
		if !ok {
			return nil, fmt.Errorf("%s() expects a list or multiple arguments", fn)
		}
		items = list
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s() of empty sequence", fn)
	}
	return items, nil
}

// formatValue renders a value the way the rest of the document
// pipeline will see it.
func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "None"
	case bool:
		if n {
			return "True"
		}
		return "False"
	case string:
		return n
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return strconv.FormatFloat(n, 'f', 1, 64)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
