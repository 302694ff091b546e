// Package ast defines the precompiled expression tree the interpreter walks.
//
// The tree is produced by an external compiler (or built directly in Go, or
// loaded from YAML by package script). The interpreter only relies on the
// node kinds declared here.
package ast

import (
	"fmt"
	"strings"

	"github.com/funvibe/gcl/internal/value"
)

type NodeKind uint8

const (
	LiteralNode NodeKind = iota
	VarNode
	RefNode
	AssignNode
	CallNode
	SeqNode
	IfNode
	ListNode
)

// Node is the base interface for all tree nodes.
type Node interface {
	NodeKind() NodeKind
	String() string
}

// Literal pushes a constant value.
type Literal struct {
	Value value.Value
}

// Var pushes the value bound to Name, from the global table when Global is set.
type Var struct {
	Name   string
	Global bool
}

// Ref pushes Name unresolved; it is looked up when first used.
type Ref struct {
	Name   string
	Global bool
}

// Assign binds Target to the value of Value.
// x := Value, or $x := Value for a global.
type Assign struct {
	Target string
	Global bool
	Value  Node
}

// Call dispatches Name over the values of Args.
type Call struct {
	Name string
	Args []Node
}

// Seq evaluates statements in order; its value is the last one's.
type Seq struct {
	Statements []Node
}

// List builds a list value from the values of Elems.
type List struct {
	Elems []Node
}

// If evaluates Cond and then only the selected branch. A nil Else yields Null.
type If struct {
	Cond Node
	Then Node
	Else Node
}

func (*Literal) NodeKind() NodeKind { return LiteralNode }
func (*Var) NodeKind() NodeKind     { return VarNode }
func (*Ref) NodeKind() NodeKind     { return RefNode }
func (*Assign) NodeKind() NodeKind  { return AssignNode }
func (*Call) NodeKind() NodeKind    { return CallNode }
func (*Seq) NodeKind() NodeKind     { return SeqNode }
func (*If) NodeKind() NodeKind      { return IfNode }
func (*List) NodeKind() NodeKind    { return ListNode }

func (l *Literal) String() string {
	if l.Value == nil {
		return "Null"
	}
	return l.Value.Inspect()
}

func (v *Var) String() string { return qualify(v.Name, v.Global) }

func (r *Ref) String() string { return "<->" + qualify(r.Name, r.Global) }

func (a *Assign) String() string {
	return fmt.Sprintf("%s := %s", qualify(a.Target, a.Global), str(a.Value))
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = str(a)
	}
	return c.Name + "[" + strings.Join(args, ", ") + "]"
}

func (l *List) String() string {
	elems := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		elems[i] = str(e)
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

func (s *Seq) String() string {
	parts := make([]string, len(s.Statements))
	for i, st := range s.Statements {
		parts[i] = str(st)
	}
	return strings.Join(parts, "; ")
}

func (i *If) String() string {
	if i.Else == nil {
		return fmt.Sprintf("If[%s, %s]", str(i.Cond), str(i.Then))
	}
	return fmt.Sprintf("If[%s, %s, %s]", str(i.Cond), str(i.Then), str(i.Else))
}

func qualify(name string, global bool) string {
	if global {
		return "$" + name
	}
	return name
}

func str(n Node) string {
	if n == nil {
		return "<missing>"
	}
	return n.String()
}
