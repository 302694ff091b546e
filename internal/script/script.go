// Package script loads precompiled expression trees written as YAML.
//
// A program file has two sections:
//
//	functions:
//	  - name: Fact
//	    params:
//	      - {name: n, type: integer}
//	    returns: integer
//	    body:
//	      if: {call: Equal, args: [{var: n}, 0]}
//	      then: 1
//	      else: {call: Times, args: [{var: n}, {call: Fact, args: [{call: Minus, args: [{var: n}, 1]}]}]}
//	statements:
//	  - {assign: x, value: {call: Fact, args: [5]}}
//
// Scalars are literals. Sequences are lists whose elements may be any node,
// as in [1, {var: x}]. Mappings select a node kind by key: var, gvar, ref, gref, assign or gassign (with value),
// call (with args), seq, and if (with then and else).
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/gcl/internal/ast"
	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/value"
)

// Program is a parsed script: user functions to register and top-level
// statements to execute in order.
type Program struct {
	Path       string
	Functions  []*interp.Descriptor
	Statements []ast.Node
}

type document struct {
	Functions  []functionSpec `yaml:"functions"`
	Statements []yaml.Node    `yaml:"statements"`
}

type functionSpec struct {
	Name    string      `yaml:"name"`
	Doc     string      `yaml:"doc,omitempty"`
	Params  []paramSpec `yaml:"params,omitempty"`
	Returns string      `yaml:"returns,omitempty"`
	Body    yaml.Node   `yaml:"body"`
}

type paramSpec struct {
	Name    string     `yaml:"name"`
	Type    string     `yaml:"type,omitempty"`
	ByRef   bool       `yaml:"byref,omitempty"`
	Default *yaml.Node `yaml:"default,omitempty"`
}

// Load reads and parses a program file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses a program. path is used in error messages only.
func Parse(data []byte, path string) (*Program, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	prog := &Program{Path: path}
	for i := range doc.Functions {
		d, err := doc.Functions[i].descriptor()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		prog.Functions = append(prog.Functions, d)
	}
	for i := range doc.Statements {
		n, err := convert(&doc.Statements[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		prog.Statements = append(prog.Statements, n)
	}
	return prog, nil
}

// ParseNode parses a single expression, typically one line of YAML flow
// syntax such as {call: Plus, args: [1, 2]}.
func ParseNode(src string) (ast.Node, error) {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(src), &n); err != nil {
		return nil, err
	}
	if n.Kind == 0 {
		return nil, &ParseError{Line: 1, Column: 1, Message: "empty expression"}
	}
	return convert(&n)
}

// Install registers the program's functions with in.
func (p *Program) Install(in *interp.Interpreter) error {
	for _, d := range p.Functions {
		if err := in.Register(d); err != nil {
			return fmt.Errorf("%s: %w", p.Path, err)
		}
	}
	return nil
}

func (f *functionSpec) descriptor() (*interp.Descriptor, error) {
	if f.Name == "" {
		return nil, &ParseError{Line: f.Body.Line, Column: f.Body.Column, Message: "function without a name"}
	}
	d := &interp.Descriptor{Name: f.Name, Doc: f.Doc}

	for _, ps := range f.Params {
		p := interp.Param{Name: ps.Name, Type: value.TAny, ByRef: ps.ByRef}
		if ps.Type != "" {
			t, err := value.ParseType(ps.Type)
			if err != nil {
				return nil, fmt.Errorf("function %s parameter %s: %w", f.Name, ps.Name, err)
			}
			p.Type = t
		}
		if ps.Default != nil {
			v, err := constant(ps.Default)
			if err != nil {
				return nil, fmt.Errorf("function %s parameter %s: %w", f.Name, ps.Name, err)
			}
			p.Default = v
		}
		d.Sig.Params = append(d.Sig.Params, p)
	}

	if f.Returns != "" {
		t, err := value.ParseType(f.Returns)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		d.Sig.Returns = t
	}

	if f.Body.Kind == 0 {
		return nil, &ParseError{Message: fmt.Sprintf("function %s has no body", f.Name)}
	}
	body, err := convert(&f.Body)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", f.Name, err)
	}
	d.Body = body
	return d, nil
}
