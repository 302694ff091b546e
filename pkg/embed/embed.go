// Package gcl embeds the command-language interpreter in a Go program.
//
// The host binds Go functions and values, evaluates expressions written in
// the YAML tree syntax and runs program files:
//
//	ip, _ := gcl.New(gcl.Options{})
//	defer ip.Close()
//	ip.Bind("Double", func(x int) int { return x * 2 })
//	v, err := ip.Eval(`{call: Double, args: [21]}`)
package gcl

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/funvibe/gcl/internal/builtins"
	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/game"
	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/script"
	"github.com/funvibe/gcl/internal/value"
)

// Options tunes a new interpreter. Zero values select the defaults.
type Options struct {
	MaxCallDepth int
	Logger       *slog.Logger
}

// Interpreter wraps the execution engine with the builtin library and a
// Go-facing API.
type Interpreter struct {
	engine     *interp.Interpreter
	marshaller *Marshaller
}

// New creates an interpreter with every builtin installed.
func New(opts Options) (*Interpreter, error) {
	cfg := config.Default()
	if opts.MaxCallDepth != 0 {
		if opts.MaxCallDepth < 1 || opts.MaxCallDepth > config.HardMaxCallDepth {
			return nil, fmt.Errorf("max call depth %d out of range 1..%d", opts.MaxCallDepth, config.HardMaxCallDepth)
		}
		cfg.MaxCallDepth = opts.MaxCallDepth
	}
	engine := interp.New(cfg, opts.Logger)
	if err := builtins.Register(engine); err != nil {
		return nil, err
	}
	return &Interpreter{engine: engine, marshaller: NewMarshaller()}, nil
}

// Bind registers a Go function as a native overload of name. Parameter
// types map to interpreter types (integers, floats, bool, string, slices,
// game elements, value.Value for Any). The function may return nothing, a
// value, or a value and an error.
func (ip *Interpreter) Bind(name string, fn interface{}) error {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return fmt.Errorf("bind %s: expected a function, got %T", name, fn)
	}
	if ft.IsVariadic() {
		return fmt.Errorf("bind %s: variadic functions are not supported", name)
	}
	numOut := ft.NumOut()
	if numOut > 2 || (numOut == 2 && ft.Out(1) != errorType) {
		return fmt.Errorf("bind %s: results must be (), (T) or (T, error)", name)
	}

	sig := interp.Signature{}
	for i := 0; i < ft.NumIn(); i++ {
		t, err := typeFor(ft.In(i))
		if err != nil {
			return fmt.Errorf("bind %s parameter %d: %w", name, i+1, err)
		}
		sig.Params = append(sig.Params, interp.Param{Name: fmt.Sprintf("arg%d", i+1), Type: t})
	}
	if numOut > 0 && ft.Out(0) != errorType {
		if t, err := typeFor(ft.Out(0)); err == nil {
			sig.Returns = t
		}
	}

	native := func(args []value.Value) (value.Value, error) {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			rv, err := ip.marshaller.fromValue(a, ft.In(i))
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			in[i] = rv
		}
		out := fv.Call(in)
		if len(out) == 0 {
			return value.Null{}, nil
		}
		last := out[len(out)-1]
		if last.Type() == errorType && !last.IsNil() {
			return nil, last.Interface().(error)
		}
		if out[0].Type() == errorType {
			return value.Null{}, nil
		}
		v, err := ip.marshaller.ToValue(out[0].Interface())
		if err != nil {
			return nil, err
		}
		ip.watch(v)
		return v, nil
	}

	return ip.engine.Register(&interp.Descriptor{Name: name, Sig: sig, Native: native})
}

// Set binds a global variable to a Go value.
func (ip *Interpreter) Set(name string, val interface{}) error {
	v, err := ip.marshaller.ToValue(val)
	if err != nil {
		return err
	}
	ip.watch(v)
	return ip.engine.GlobalDefine(name, v)
}

// Get returns the Go form of a global variable.
func (ip *Interpreter) Get(name string) (interface{}, error) {
	v, ok := ip.engine.GlobalValueOf(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return ip.marshaller.FromValue(v, nil)
}

// Call invokes the best overload of name for the Go arguments.
func (ip *Interpreter) Call(name string, args ...interface{}) (interface{}, error) {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		v, err := ip.marshaller.ToValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		ip.watch(v)
		vals[i] = v
	}
	result, err := ip.engine.Invoke(name, vals...)
	if err != nil {
		return nil, err
	}
	return ip.marshaller.FromValue(result, nil)
}

// Eval evaluates one expression as a top-level statement.
func (ip *Interpreter) Eval(expr string) (interface{}, error) {
	node, err := script.ParseNode(expr)
	if err != nil {
		return nil, err
	}
	result, err := ip.engine.Execute(node, false)
	if err != nil {
		return nil, err
	}
	return ip.marshaller.FromValue(result, nil)
}

// LoadFile registers the functions of a program file and runs its
// statements. Every statement runs; the failures are joined.
func (ip *Interpreter) LoadFile(path string) error {
	prog, err := script.Load(path)
	if err != nil {
		return err
	}
	if err := prog.Install(ip.engine); err != nil {
		return err
	}
	var errs []error
	for _, st := range prog.Statements {
		if _, err := ip.engine.Execute(st, false); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st, err))
		}
	}
	return errors.Join(errs...)
}

// watch subscribes the interpreter to the games that v refers to, so
// their edits retract bindings as they do for games made by NewGame.
func (ip *Interpreter) watch(v value.Value) {
	switch x := v.(type) {
	case value.List:
		for _, e := range x.Elems {
			ip.watch(e)
		}
	case value.Handle:
		var g *game.Game
		switch e := x.Elem.(type) {
		case *game.Game:
			g = e
		case *game.Node:
			g = e.Game()
		case *game.Infoset:
			g = e.Game()
		case *game.Action:
			g = e.Game()
		}
		if g != nil {
			g.Watch(ip.engine)
		}
	}
}

// Close releases every binding. It fails if a reference count survived.
func (ip *Interpreter) Close() error {
	return ip.engine.Close()
}
