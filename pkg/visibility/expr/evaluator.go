package expr

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/visibility"
)

// Evaluator is a small, dependency-free predicate evaluator for column
// conditions.
//
// Supported syntax:
//   - truthiness: `remarks`, `!archived`
//   - comparisons: `status == "active"`, `floor_count >= 3`, `owner != null`
//   - composition: `a && (b || !c)`
//   - `value` refers to the column being evaluated, `empty(x)` tests for
//     blank values, `extras.` reads from visibility.Context.Extras
//
// Identifiers support dot paths into nested maps.
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval parses and evaluates rule. An empty rule is true.
func (e *Evaluator) Eval(columnKey, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return false, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if !p.done() {
		return false, fmt.Errorf("visibility/expr: unexpected token %q", p.peek().raw)
	}

	value, err := node.eval(&scope{column: columnKey, ctx: ctx})
	if err != nil {
		return false, err
	}
	return truthy(value), nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokOp
	tokNot
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	raw  string
}

var operators = []string{"==", "!=", ">=", "<=", "&&", "||", ">", "<"}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue
		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, raw: "("})
			i++
			continue
		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, raw: ")"})
			i++
			continue
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			body := input[i+1 : end]
			if ch == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kind: tokString, raw: value})
			i = end + 1
			continue
		}

		if op := matchOperator(input[i:]); op != "" {
			tokens = append(tokens, token{kind: tokOp, raw: op})
			i += len(op)
			continue
		}
		if ch == '!' {
			tokens = append(tokens, token{kind: tokNot, raw: "!"})
			i++
			continue
		}
		if ch == '=' || ch == '&' || ch == '|' {
			return nil, fmt.Errorf("visibility/expr: unexpected %q", string(ch))
		}

		start := i
		for i < len(input) && !strings.ContainsRune(" \t\n\r()!=&|<>\"'", rune(input[i])) {
			i++
		}
		raw := input[start:i]
		switch strings.ToLower(raw) {
		case "true", "false":
			tokens = append(tokens, token{kind: tokBool, raw: strings.ToLower(raw)})
		case "null", "nil":
			tokens = append(tokens, token{kind: tokNull, raw: "null"})
		default:
			if _, err := strconv.ParseFloat(raw, 64); err == nil {
				tokens = append(tokens, token{kind: tokNumber, raw: raw})
			} else {
				tokens = append(tokens, token{kind: tokIdent, raw: raw})
			}
		}
	}
	return tokens, nil
}

func matchOperator(input string) string {
	for _, op := range operators {
		if strings.HasPrefix(input, op) {
			return op
		}
	}
	return ""
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() token {
	if p.done() {
		return token{kind: tokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.peek()
	if !p.done() {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().raw == "||" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = logicalNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().raw == "&&" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = logicalNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.kind != tokOp || tok.raw == "&&" || tok.raw == "||" {
		return left, nil
	}
	p.next()
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return compareNode{op: tok.raw, left: left, right: right}, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, errors.New("visibility/expr: missing closing parenthesis")
		}
		return inner, nil
	case tokString:
		return literalNode{value: tok.raw}, nil
	case tokNumber:
		f, _ := strconv.ParseFloat(tok.raw, 64)
		return literalNode{value: f}, nil
	case tokBool:
		return literalNode{value: tok.raw == "true"}, nil
	case tokNull:
		return literalNode{value: nil}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok.raw)
		}
		return identNode{path: tok.raw}, nil
	case tokEOF:
		return nil, errors.New("visibility/expr: unexpected end of expression")
	default:
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", tok.raw)
	}
}

func (p *parser) parseCall(name string) (node, error) {
	p.next() // (
	if strings.ToLower(name) != "empty" {
		return nil, fmt.Errorf("visibility/expr: unknown function %q", name)
	}
	arg, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.next().kind != tokRParen {
		return nil, errors.New("visibility/expr: missing closing parenthesis")
	}
	return emptyNode{arg: arg}, nil
}

type scope struct {
	column string
	ctx    visibility.Context
}

type node interface {
	eval(s *scope) (any, error)
}

type literalNode struct{ value any }

func (n literalNode) eval(*scope) (any, error) { return n.value, nil }

type identNode struct{ path string }

func (n identNode) eval(s *scope) (any, error) {
	path := n.path
	if path == "value" {
		return lookup(s.ctx.Values, s.column), nil
	}
	if rest, ok := strings.CutPrefix(path, "extras."); ok {
		return lookup(s.ctx.Extras, rest), nil
	}
	return lookup(s.ctx.Values, path), nil
}

type notNode struct{ inner node }

func (n notNode) eval(s *scope) (any, error) {
	v, err := n.inner.eval(s)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

type emptyNode struct{ arg node }

func (n emptyNode) eval(s *scope) (any, error) {
	v, err := n.arg.eval(s)
	if err != nil {
		return nil, err
	}
	return isBlank(v), nil
}

type logicalNode struct {
	op          string
	left, right node
}

func (n logicalNode) eval(s *scope) (any, error) {
	l, err := n.left.eval(s)
	if err != nil {
		return nil, err
	}
	if n.op == "&&" && !truthy(l) {
		return false, nil
	}
	if n.op == "||" && truthy(l) {
		return true, nil
	}
	r, err := n.right.eval(s)
	if err != nil {
		return nil, err
	}
	return truthy(r), nil
}

type compareNode struct {
	op          string
	left, right node
}

func (n compareNode) eval(s *scope) (any, error) {
	l, err := n.left.eval(s)
	if err != nil {
		return nil, err
	}
	r, err := n.right.eval(s)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "==":
		return looseEqual(l, r), nil
	case "!=":
		return !looseEqual(l, r), nil
	}

	lf, lok := toNumber(l)
	rf, rok := toNumber(r)
	if !lok || !rok {
		ls, rs := toString(l), toString(r)
		switch n.op {
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		case "<":
			return ls < rs, nil
		default:
			return ls <= rs, nil
		}
	}
	switch n.op {
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	case "<":
		return lf < rf, nil
	default:
		return lf <= rf, nil
	}
}

func lookup(values map[string]any, path string) any {
	if values == nil || path == "" {
		return nil
	}
	if v, ok := values[path]; ok {
		return v
	}
	var current any = values
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[segment]
		if !ok {
			return nil
		}
	}
	return current
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return isBlank(a) && isBlank(b)
	}
	if af, ok := toNumber(a); ok {
		if bf, ok := toNumber(b); ok {
			return af == bf
		}
	}
	if ab, ok := toBool(a); ok {
		if bb, ok := toBool(b); ok {
			return ab == bb
		}
	}
	return toString(a) == toString(b)
}

func truthy(v any) bool {
	if b, ok := toBool(v); ok {
		return b
	}
	if f, ok := toNumber(v); ok {
		return f != 0
	}
	return !isBlank(v)
}

func isBlank(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toBool(v any) (bool, bool) {
	switch typed := v.(type) {
	case bool:
		return typed, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func toNumber(v any) (float64, bool) {
	switch typed := v.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
