// Package builtins is the native function library installed into an
// interpreter: arithmetic, logic, text and list helpers, game editing and
// introspection.
package builtins

import (
	"fmt"

	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/value"
)

// Register installs every native function into in.
func Register(in *interp.Interpreter) error {
	groups := [][]*interp.Descriptor{
		Arithmetic(),
		Logic(),
		Collections(),
		Games(in),
		Introspection(in),
	}
	for _, group := range groups {
		for _, d := range group {
			if err := in.Register(d); err != nil {
				return fmt.Errorf("registering %s: %w", d.Name, err)
			}
		}
	}
	return nil
}

func fn(name string, ret value.Type, impl interp.NativeFunc, params ...interp.Param) *interp.Descriptor {
	return &interp.Descriptor{
		Name:   name,
		Sig:    interp.Signature{Params: params, Returns: ret},
		Native: impl,
	}
}

func doc(d *interp.Descriptor, text string) *interp.Descriptor {
	d.Doc = text
	return d
}

func arg(name string, t value.Type) interp.Param {
	return interp.Param{Name: name, Type: t}
}

func opt(name string, t value.Type, def value.Value) interp.Param {
	return interp.Param{Name: name, Type: t, Default: def}
}

// Argument accessors. Overload resolution has already checked kinds, so a
// failed assertion means a descriptor and its implementation disagree.

func integer(v value.Value) int64 { return v.(value.Integer).Value }

func text(v value.Value) string { return v.(value.Text).Value }

func boolean(v value.Value) bool { return v.(value.Bool).Value }

func list(v value.Value) []value.Value { return v.(value.List).Elems }

func float(v value.Value) float64 {
	switch n := v.(type) {
	case value.Integer:
		return float64(n.Value)
	case value.Float:
		return n.Value
	}
	panic(fmt.Sprintf("not a number: %s", v.Inspect()))
}

func texts(ss []string) value.Value {
	out := make([]value.Value, len(ss))
	for i, s := range ss {
		out[i] = value.NewText(s)
	}
	return value.NewList(out...)
}
