package interp

import (
	"errors"

	"github.com/funvibe/gcl/internal/value"
)

// Invoke calls the overload of name that best matches args. Arguments may
// be value.Ref identifiers, resolved against the current frame. The frame
// stack has the same depth afterwards whether or not the call fails.
func (in *Interpreter) Invoke(name string, args ...value.Value) (value.Value, error) {
	depth := in.stack.Depth()
	defer in.stack.Unwind(depth)

	for _, a := range args {
		if el, ok := value.Stale(a); ok {
			return nil, in.newError(StaleReference, "argument to %s refers to a removed %s", name, el.ElementKind())
		}
	}
	return in.call(name, args)
}

func (in *Interpreter) call(name string, args []value.Value) (value.Value, error) {
	infos := make([]argument, len(args))
	for i, a := range args {
		if a == nil {
			a = value.Null{}
			args[i] = a
		}
		info := argument{val: a, kind: a.Kind()}
		if r, ok := a.(value.Ref); ok {
			info.ref = true
			if v, found := in.table(r.Global).Lookup(r.Name); found {
				info.bound = true
				info.kind = v.Kind()
			}
		}
		infos[i] = info
	}

	d, err := in.resolve(name, infos)
	if err != nil {
		return nil, err
	}
	return in.invoke(d, args)
}

func (in *Interpreter) invoke(d *Descriptor, args []value.Value) (value.Value, error) {
	params := make([]value.Value, len(d.Sig.Params))
	for i, p := range d.Sig.Params {
		switch {
		case i >= len(args):
			params[i] = p.Default
		case p.ByRef:
			params[i] = args[i]
		default:
			v, err := in.resolveOperand(args[i])
			if err != nil {
				return nil, err
			}
			params[i] = v
		}
	}

	var (
		result value.Value
		err    error
	)
	if d.Native != nil {
		result, err = d.Native(params)
		if err != nil {
			var rtErr *Error
			if errors.As(err, &rtErr) {
				return nil, rtErr
			}
			return nil, in.wrapError(NativeFailure, err, "%s", d.Name)
		}
	} else {
		result, err = in.callUser(d, params)
		if err != nil {
			return nil, err
		}
	}

	if result == nil {
		result = value.Null{}
	}
	if el, ok := value.Stale(result); ok {
		return nil, in.newError(StaleReference, "%s returned a removed %s", d.Name, el.ElementKind())
	}
	if d.Sig.Returns != 0 && result.Kind() != value.KindNull && typeCost(d.Sig.Returns, result.Kind()) == incompatible {
		return nil, in.newError(TypeMismatch, "%s returned %s, declared %s", d.Name, result.Kind(), d.Sig.Returns)
	}
	return result, nil
}

// callUser runs a user function body in a fresh frame. By-reference
// parameters start with the caller's current value, when bound, and their
// final value is assigned back to the caller's identifier after the frame
// is gone.
func (in *Interpreter) callUser(d *Descriptor, params []value.Value) (value.Value, error) {
	initial := make([]value.Value, len(params))
	for i, p := range d.Sig.Params {
		r, ok := params[i].(value.Ref)
		if !ok || !p.ByRef {
			initial[i] = params[i]
			continue
		}
		if v, found := in.table(r.Global).Lookup(r.Name); found {
			initial[i] = v
		}
	}

	result, outs, err := in.runUser(d, initial)
	if err != nil {
		return nil, err
	}

	for i, p := range d.Sig.Params {
		r, ok := params[i].(value.Ref)
		if !ok || !p.ByRef || outs[i] == nil {
			continue
		}
		if _, err := in.Assign(r, outs[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (in *Interpreter) runUser(d *Descriptor, initial []value.Value) (value.Value, []value.Value, error) {
	frame, err := in.stack.Push(d.Name)
	if err != nil {
		e := in.newError(DepthExceeded, "%v", err)
		e.cause = err
		return nil, nil, e
	}
	defer in.stack.Pop(frame)

	for i, p := range d.Sig.Params {
		if initial[i] != nil {
			frame.Bindings.Define(p.Name, initial[i])
		}
	}

	result, err := in.Execute(d.Body, true)
	if err != nil {
		return nil, nil, err
	}

	outs := make([]value.Value, len(d.Sig.Params))
	for i, p := range d.Sig.Params {
		if !p.ByRef {
			continue
		}
		if v, ok := frame.Bindings.Lookup(p.Name); ok {
			outs[i] = v
		}
	}
	return result, outs, nil
}
