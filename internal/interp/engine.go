package interp

import (
	"log/slog"

	"github.com/funvibe/gcl/internal/ast"
	"github.com/funvibe/gcl/internal/scope"
	"github.com/funvibe/gcl/internal/value"
)

// Execute evaluates tree against the current frame and returns its value.
//
// A top-level Seq is run statement by statement: an error aborts the
// failing statement, restores the frame stack and operand stack to where
// that statement started and is returned, while earlier statements keep
// their effects. userFunc marks the body of a user function, whose errors
// propagate to the caller without being logged here.
func (in *Interpreter) Execute(tree ast.Node, userFunc bool) (value.Value, error) {
	if seq, ok := tree.(*ast.Seq); ok {
		var result value.Value = value.Null{}
		for _, st := range seq.Statements {
			v, err := in.statement(st, userFunc)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil
	}
	return in.statement(tree, userFunc)
}

func (in *Interpreter) statement(node ast.Node, userFunc bool) (value.Value, error) {
	depth := in.stack.Depth()
	frame := in.stack.Top()
	height := frame.Height()

	v, err := in.evalOne(frame, node, "statement")
	if err != nil {
		in.stack.Unwind(depth)
		frame.Truncate(height)
		if !userFunc {
			in.log.Debug("statement aborted",
				slog.String("statement", describe(node)),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	return v, nil
}

// evalOne evaluates node and pops its single result.
func (in *Interpreter) evalOne(frame *scope.Frame, node ast.Node, what string) (value.Value, error) {
	base := frame.Height()
	if err := in.eval(node); err != nil {
		return nil, err
	}
	vals, err := in.popN(frame, base, 1, what)
	if err != nil {
		return nil, err
	}
	return vals[0], nil
}

// eval pushes exactly one value for a well-formed node. A nil node pushes
// nothing, which the consumer reports as a missing operand.
func (in *Interpreter) eval(node ast.Node) error {
	frame := in.stack.Top()

	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Literal:
		frame.Push(n.Value)

	case *ast.Var:
		v, err := in.lookup(n.Name, n.Global)
		if err != nil {
			return err
		}
		frame.Push(v)

	case *ast.Ref:
		return in.PushRef(n.Name, n.Global)

	case *ast.Assign:
		base := frame.Height()
		if err := in.PushRef(n.Target, n.Global); err != nil {
			return err
		}
		if err := in.eval(n.Value); err != nil {
			return err
		}
		ops, err := in.popN(frame, base, 2, "assignment to "+n.Target)
		if err != nil {
			return err
		}
		v, err := in.Assign(ops[0], ops[1])
		if err != nil {
			return err
		}
		frame.Push(v)

	case *ast.Call:
		base := frame.Height()
		for _, a := range n.Args {
			if err := in.eval(a); err != nil {
				return err
			}
		}
		args, err := in.popN(frame, base, len(n.Args), n.Name)
		if err != nil {
			return err
		}
		v, err := in.call(n.Name, args)
		if err != nil {
			return err
		}
		frame.Push(v)

	case *ast.List:
		base := frame.Height()
		for _, e := range n.Elems {
			if err := in.eval(e); err != nil {
				return err
			}
		}
		elems, err := in.popN(frame, base, len(n.Elems), "list")
		if err != nil {
			return err
		}
		for i, e := range elems {
			if elems[i], err = in.resolveOperand(e); err != nil {
				return err
			}
		}
		frame.Push(value.NewList(elems...))

	case *ast.Seq:
		var last value.Value = value.Null{}
		for _, st := range n.Statements {
			v, err := in.evalOne(frame, st, "statement")
			if err != nil {
				return err
			}
			last = v
		}
		frame.Push(last)

	case *ast.If:
		c, err := in.evalOne(frame, n.Cond, "If condition")
		if err != nil {
			return err
		}
		c, err = in.resolveOperand(c)
		if err != nil {
			return err
		}
		b, ok := c.(value.Bool)
		if !ok {
			return in.newError(TypeMismatch, "If condition must be Bool, got %s", c.Kind())
		}
		branch := n.Else
		if b.Value {
			branch = n.Then
		}
		if branch == nil {
			frame.Push(value.Null{})
			return nil
		}
		return in.eval(branch)

	default:
		return in.newError(StackUnderflow, "unsupported node %T", node)
	}
	return nil
}

// popN pops the n operands pushed above base, oldest first.
func (in *Interpreter) popN(frame *scope.Frame, base, n int, what string) ([]value.Value, error) {
	if have := frame.Height() - base; have != n {
		return nil, in.newError(StackUnderflow, "%s expects %d operands, found %d", what, n, have)
	}
	vals := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		vals[i], _ = frame.Pop()
	}
	for _, v := range vals {
		if el, ok := value.Stale(v); ok {
			return nil, in.newError(StaleReference, "%s: operand refers to a removed %s", what, el.ElementKind())
		}
	}
	return vals, nil
}

// PushRef pushes name onto the current operand stack unresolved.
func (in *Interpreter) PushRef(name string, global bool) error {
	if name == "" {
		return in.newError(UnresolvedIdentifier, "empty identifier")
	}
	in.stack.Top().Push(value.Ref{Name: name, Global: global})
	return nil
}

// resolveRef looks r up in the table active now, not when r was pushed.
func (in *Interpreter) resolveRef(r value.Ref) (value.Value, error) {
	return in.lookup(r.Name, r.Global)
}

func (in *Interpreter) resolveOperand(v value.Value) (value.Value, error) {
	if r, ok := v.(value.Ref); ok {
		return in.resolveRef(r)
	}
	return v, nil
}

func (in *Interpreter) table(global bool) *scope.Table {
	if global {
		return in.stack.Global()
	}
	return in.stack.Top().Bindings
}

func (in *Interpreter) lookup(name string, global bool) (value.Value, error) {
	v, ok := in.table(global).Lookup(name)
	if !ok {
		if global {
			return nil, in.newError(UnresolvedIdentifier, "undefined global variable %s", name)
		}
		return nil, in.newError(UnresolvedIdentifier, "undefined variable %s", name)
	}
	if el, stale := value.Stale(v); stale {
		return nil, in.newError(StaleReference, "%s refers to a removed %s", name, el.ElementKind())
	}
	return v, nil
}

// Assign binds the identifier in lhs to the value of rhs and returns the
// bound value. A variable cannot change kind by assignment unless its old
// or new value is Null.
func (in *Interpreter) Assign(lhs, rhs value.Value) (value.Value, error) {
	target, ok := lhs.(value.Ref)
	if !ok {
		return nil, in.newError(TypeMismatch, "cannot assign to %s", lhs.Inspect())
	}
	v, err := in.resolveOperand(rhs)
	if err != nil {
		return nil, err
	}
	if el, stale := value.Stale(v); stale {
		return nil, in.newError(StaleReference, "cannot assign a removed %s to %s", el.ElementKind(), target.Name)
	}

	t := in.table(target.Global)
	if old, ok := t.Lookup(target.Name); ok && !assignable(old, v) {
		return nil, in.newError(TypeMismatch, "cannot change type of %s from %s to %s",
			target.Name, old.Kind(), v.Kind())
	}
	t.Define(target.Name, v)
	return v, nil
}

func assignable(old, v value.Value) bool {
	return old.Kind() == value.KindNull || v.Kind() == value.KindNull || old.Kind() == v.Kind()
}

func describe(node ast.Node) string {
	if node == nil {
		return "<missing>"
	}
	return node.String()
}
