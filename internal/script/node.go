package script

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/gcl/internal/ast"
	"github.com/funvibe/gcl/internal/value"
)

// ParseError reports a malformed tree node.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func errorAt(n *yaml.Node, format string, a ...interface{}) error {
	return &ParseError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, a...)}
}

// allowed lists, per node kind, the keys a mapping may carry.
var allowed = map[string][]string{
	"var":     {"var"},
	"gvar":    {"gvar"},
	"ref":     {"ref"},
	"gref":    {"gref"},
	"assign":  {"assign", "value"},
	"gassign": {"gassign", "value"},
	"call":    {"call", "args"},
	"seq":     {"seq"},
	"if":      {"if", "then", "else"},
}

func convert(n *yaml.Node) (ast.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, errorAt(n, "empty document")
		}
		return convert(n.Content[0])
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.ScalarNode:
		v, err := literal(n)
		if err != nil {
			return nil, err
		}
		return ast.Lit(v), nil
	case yaml.SequenceNode:
		return sequence(n)
	case yaml.MappingNode:
		return mapping(n)
	}
	return nil, errorAt(n, "unexpected YAML node")
}

func mapping(n *yaml.Node) (ast.Node, error) {
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}

	kind := ""
	for k := range allowed {
		if _, ok := fields[k]; ok {
			if kind != "" {
				return nil, errorAt(n, "node has both %q and %q", kind, k)
			}
			kind = k
		}
	}
	if kind == "" {
		return nil, errorAt(n, "node needs one of %s", strings.Join(kinds(), ", "))
	}
	for k := range fields {
		if !contains(allowed[kind], k) {
			return nil, errorAt(fields[k], "unexpected key %q in %s node", k, kind)
		}
	}

	switch kind {
	case "var", "gvar":
		name, err := identifier(fields[kind])
		if err != nil {
			return nil, err
		}
		return &ast.Var{Name: name, Global: kind == "gvar"}, nil

	case "ref", "gref":
		name, err := identifier(fields[kind])
		if err != nil {
			return nil, err
		}
		return &ast.Ref{Name: name, Global: kind == "gref"}, nil

	case "assign", "gassign":
		name, err := identifier(fields[kind])
		if err != nil {
			return nil, err
		}
		vn, ok := fields["value"]
		if !ok {
			return nil, errorAt(n, "%s %s has no value", kind, name)
		}
		val, err := convert(vn)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Target: name, Global: kind == "gassign", Value: val}, nil

	case "call":
		name, err := identifier(fields["call"])
		if err != nil {
			return nil, err
		}
		args, err := nodes(fields["args"])
		if err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args}, nil

	case "seq":
		stmts, err := nodes(fields["seq"])
		if err != nil {
			return nil, err
		}
		return &ast.Seq{Statements: stmts}, nil

	case "if":
		cond, err := convert(fields["if"])
		if err != nil {
			return nil, err
		}
		node := &ast.If{Cond: cond}
		if tn, ok := fields["then"]; ok {
			if node.Then, err = convert(tn); err != nil {
				return nil, err
			}
		}
		if en, ok := fields["else"]; ok {
			if node.Else, err = convert(en); err != nil {
				return nil, err
			}
		}
		return node, nil
	}
	return nil, errorAt(n, "unknown node %q", kind)
}

// nodes converts a sequence of nodes. A missing sequence is empty.
func nodes(n *yaml.Node) ([]ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorAt(n, "expected a list of nodes")
	}
	out := make([]ast.Node, 0, len(n.Content))
	for _, c := range n.Content {
		node, err := convert(c)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// sequence converts a list. A list of literals stays a literal; any other
// element makes it a list expression evaluated at run time.
func sequence(n *yaml.Node) (ast.Node, error) {
	elems, err := nodes(n)
	if err != nil {
		return nil, err
	}
	vals := make([]value.Value, len(elems))
	for i, e := range elems {
		lit, ok := e.(*ast.Literal)
		if !ok {
			return ast.ListOf(elems...), nil
		}
		vals[i] = lit.Value
	}
	return ast.Lit(value.NewList(vals...)), nil
}

func identifier(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", errorAt(n, "expected an identifier")
	}
	return n.Value, nil
}

// constant converts n and requires the result to be a literal.
func constant(n *yaml.Node) (value.Value, error) {
	node, err := convert(n)
	if err != nil {
		return nil, err
	}
	lit, ok := node.(*ast.Literal)
	if !ok {
		return nil, errorAt(n, "expected a literal")
	}
	return lit.Value, nil
}

// literal converts a scalar to a value.
func literal(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			return nil, errorAt(n, "invalid boolean %q", n.Value)
		}
		return value.NewBool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64)
		if err != nil {
			return nil, errorAt(n, "invalid integer %q", n.Value)
		}
		return value.NewInteger(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, errorAt(n, "invalid float %q", n.Value)
		}
		return value.NewFloat(f), nil
	default:
		return value.NewText(n.Value), nil
	}
}

func kinds() []string {
	out := make([]string, 0, len(allowed))
	for k := range allowed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
