package interp

import (
	"fmt"

	"github.com/funvibe/gcl/internal/scope"
	"github.com/funvibe/gcl/internal/value"
)

// Scoped variants act on the current frame's table; Global variants act on
// the global table at any depth. There is no fallthrough between the two.

func (in *Interpreter) Define(name string, v value.Value) error {
	return in.define(in.stack.Top().Bindings, name, v)
}

func (in *Interpreter) IsDefined(name string) bool {
	return in.stack.Top().Bindings.Has(name)
}

func (in *Interpreter) ValueOf(name string) (value.Value, bool) {
	return in.stack.Top().Bindings.Lookup(name)
}

func (in *Interpreter) Remove(name string) bool {
	_, ok := in.stack.Top().Bindings.Remove(name)
	return ok
}

// Names lists the identifiers bound in the current frame.
func (in *Interpreter) Names() []string {
	return in.stack.Top().Bindings.Names()
}

func (in *Interpreter) GlobalDefine(name string, v value.Value) error {
	return in.define(in.stack.Global(), name, v)
}

func (in *Interpreter) GlobalIsDefined(name string) bool {
	return in.stack.Global().Has(name)
}

func (in *Interpreter) GlobalValueOf(name string) (value.Value, bool) {
	return in.stack.Global().Lookup(name)
}

func (in *Interpreter) GlobalRemove(name string) bool {
	_, ok := in.stack.Global().Remove(name)
	return ok
}

func (in *Interpreter) GlobalNames() []string {
	return in.stack.Global().Names()
}

// Clear drops every binding in every frame and the global table.
// Registered functions are kept.
func (in *Interpreter) Clear() {
	in.stack.Clear()
}

func (in *Interpreter) define(t *scope.Table, name string, v value.Value) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	if v == nil {
		v = value.Null{}
	}
	if _, ok := v.(value.Ref); ok {
		return fmt.Errorf("cannot bind %s to an unresolved reference", name)
	}
	if el, ok := value.Stale(v); ok {
		return in.newError(StaleReference, "cannot bind %s: %s has been removed", name, el.ElementKind())
	}
	t.Define(name, v)
	return nil
}
