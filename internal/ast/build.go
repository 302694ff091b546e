package ast

import "github.com/funvibe/gcl/internal/value"

// Helpers for building trees in Go code.

func Int(v int64) *Literal       { return &Literal{Value: value.NewInteger(v)} }
func Num(v float64) *Literal     { return &Literal{Value: value.NewFloat(v)} }
func Str(v string) *Literal      { return &Literal{Value: value.NewText(v)} }
func Bool(v bool) *Literal       { return &Literal{Value: value.NewBool(v)} }
func Lit(v value.Value) *Literal { return &Literal{Value: v} }

func Name(name string) *Var       { return &Var{Name: name} }
func GlobalName(name string) *Var { return &Var{Name: name, Global: true} }

func RefTo(name string) *Ref       { return &Ref{Name: name} }
func GlobalRefTo(name string) *Ref { return &Ref{Name: name, Global: true} }

func Set(target string, v Node) *Assign {
	return &Assign{Target: target, Value: v}
}

func SetGlobal(target string, v Node) *Assign {
	return &Assign{Target: target, Global: true, Value: v}
}

func Fn(name string, args ...Node) *Call {
	return &Call{Name: name, Args: args}
}

func ListOf(elems ...Node) *List {
	return &List{Elems: elems}
}

func Block(statements ...Node) *Seq {
	return &Seq{Statements: statements}
}

func Cond(cond, then, els Node) *If {
	return &If{Cond: cond, Then: then, Else: els}
}
