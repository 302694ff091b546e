package interp

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/funvibe/gcl/internal/ast"
	"github.com/funvibe/gcl/internal/value"
)

// NativeFunc implements a built-in function. Arguments arrive resolved,
// except for by-reference parameters which receive the value.Ref itself.
type NativeFunc func(args []value.Value) (value.Value, error)

// Param is one formal parameter of a signature.
type Param struct {
	Name string
	Type value.Type
	// ByRef parameters take an identifier, and the callee's final value is
	// assigned back to it when a user function returns.
	ByRef bool
	// Default makes the parameter optional; optional parameters must trail.
	Default value.Value
}

type Signature struct {
	Params  []Param
	Returns value.Type
}

func (s Signature) required() int {
	n := 0
	for _, p := range s.Params {
		if p.Default == nil {
			n++
		}
	}
	return n
}

func (s Signature) sameParams(o Signature) bool {
	if len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i].Type != o.Params[i].Type || s.Params[i].ByRef != o.Params[i].ByRef {
			return false
		}
	}
	return true
}

// Descriptor is one overload of a function: either Native or Body is set.
type Descriptor struct {
	Name   string
	Sig    Signature
	Native NativeFunc
	Body   ast.Node
	Doc    string
}

func (d *Descriptor) IsUser() bool { return d.Body != nil }

func (d *Descriptor) String() string {
	params := make([]string, len(d.Sig.Params))
	for i, p := range d.Sig.Params {
		arrow := "->"
		if p.ByRef {
			arrow = "<->"
		}
		params[i] = fmt.Sprintf("%s %s %s", p.Name, arrow, p.Type)
		if p.Default != nil {
			params[i] += " = " + p.Default.Inspect()
		}
	}
	return fmt.Sprintf("%s[%s] =: %s", d.Name, strings.Join(params, ", "), d.Sig.Returns)
}

func (d *Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDescriptor)
	}
	if (d.Native == nil) == (d.Body == nil) {
		return fmt.Errorf("%w: %s needs exactly one of a native implementation or a body", ErrInvalidDescriptor, d.Name)
	}
	seen := make(map[string]bool)
	optional := false
	for _, p := range d.Sig.Params {
		if p.Name == "" || seen[p.Name] {
			return fmt.Errorf("%w: %s has an empty or repeated parameter name %q", ErrInvalidDescriptor, d.Name, p.Name)
		}
		seen[p.Name] = true
		if p.Type == 0 {
			return fmt.Errorf("%w: %s parameter %s has no type", ErrInvalidDescriptor, d.Name, p.Name)
		}
		if p.Default != nil {
			optional = true
			if typeCost(p.Type, p.Default.Kind()) == incompatible {
				return fmt.Errorf("%w: %s default for %s is %s, not %s", ErrInvalidDescriptor, d.Name, p.Name, p.Default.Kind(), p.Type)
			}
		} else if optional {
			return fmt.Errorf("%w: %s required parameter %s follows an optional one", ErrInvalidDescriptor, d.Name, p.Name)
		}
	}
	return nil
}

// Register installs d. Registering a second descriptor with the same name
// and parameter types fails with ErrConflict.
func (in *Interpreter) Register(d *Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	for _, other := range in.funcs[d.Name] {
		if other.Sig.sameParams(d.Sig) {
			return fmt.Errorf("%w: %s", ErrConflict, other)
		}
	}
	in.funcs[d.Name] = append(in.funcs[d.Name], d)
	in.log.Debug("register function", slog.String("signature", d.String()), slog.Bool("user", d.IsUser()))
	return nil
}

// Unregister removes the overload of d.Name with d's parameter types.
func (in *Interpreter) Unregister(d *Descriptor) error {
	list := in.funcs[d.Name]
	for i, other := range list {
		if other.Sig.sameParams(d.Sig) {
			list = append(list[:i:i], list[i+1:]...)
			if len(list) == 0 {
				delete(in.funcs, d.Name)
			} else {
				in.funcs[d.Name] = list
			}
			in.log.Debug("unregister function", slog.String("signature", other.String()))
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, d)
}

// Functions returns the registered function names in sorted order.
func (in *Interpreter) Functions() []string {
	names := make([]string, 0, len(in.funcs))
	for name := range in.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns the signatures registered under name. Names match
// case-insensitively, as in GCL's Help[].
func (in *Interpreter) Help(name string) []string {
	var out []string
	for _, fn := range in.Functions() {
		if !strings.EqualFold(fn, name) {
			continue
		}
		for _, d := range in.funcs[fn] {
			out = append(out, d.String())
		}
	}
	return out
}

// Conversion costs, lower is more specific. See resolve.
const (
	incompatible = -1
	costExact    = 0
	costUnion    = 1
	costPromote  = 2
	costAny      = 3
)

func typeCost(t value.Type, k value.Kind) int {
	switch {
	case t == value.TypeOf(k):
		return costExact
	case t == value.TAny:
		if t.Has(k) {
			return costAny
		}
	case t.Has(k):
		return costUnion
	case k == value.KindInteger && t.Has(value.KindFloat):
		return costPromote
	}
	return incompatible
}

// argument describes an actual argument for overload resolution.
type argument struct {
	val   value.Value
	ref   bool
	bound bool
	kind  value.Kind
}

func paramCost(p Param, a argument) int {
	if p.ByRef {
		if !a.ref {
			return incompatible
		}
		if !a.bound {
			return costAny
		}
		return typeCost(p.Type, a.kind)
	}
	if a.ref && !a.bound {
		return incompatible
	}
	return typeCost(p.Type, a.kind)
}

type candidate struct {
	d     *Descriptor
	costs []int
}

// beats reports whether c is at least as specific as o at every argument
// and strictly more specific at one.
func (c candidate) beats(o candidate) bool {
	strict := false
	for i := range c.costs {
		if c.costs[i] > o.costs[i] {
			return false
		}
		if c.costs[i] < o.costs[i] {
			strict = true
		}
	}
	return strict
}

// resolve selects the overload of name for args. Per argument an exact kind
// match is preferred to membership in a union type, which is preferred to
// Integer to Float promotion, which is preferred to Any. The chosen
// candidate must beat every other compatible candidate.
func (in *Interpreter) resolve(name string, args []argument) (*Descriptor, error) {
	list, ok := in.funcs[name]
	if !ok {
		return nil, in.newError(OverloadUnresolved, "undefined function %s", name)
	}

	var cands []candidate
	for _, d := range list {
		if len(args) > len(d.Sig.Params) || len(args) < d.Sig.required() {
			continue
		}
		costs := make([]int, len(args))
		fits := true
		for i, a := range args {
			costs[i] = paramCost(d.Sig.Params[i], a)
			if costs[i] == incompatible {
				fits = false
				break
			}
		}
		if fits {
			cands = append(cands, candidate{d: d, costs: costs})
		}
	}

	switch len(cands) {
	case 0:
		for _, a := range args {
			if a.ref && !a.bound {
				r := a.val.(value.Ref)
				return nil, in.newError(UnresolvedIdentifier, "undefined variable %s in call to %s", r.Name, name)
			}
		}
		return nil, in.newError(OverloadUnresolved, "no overload of %s accepts %s; candidates: %s",
			name, describeArgs(args), signatures(list))
	case 1:
		return cands[0].d, nil
	}

	for _, c := range cands {
		best := true
		for _, o := range cands {
			if o.d != c.d && !c.beats(o) {
				best = false
				break
			}
		}
		if best {
			return c.d, nil
		}
	}

	tied := make([]*Descriptor, 0, len(cands))
	for _, c := range cands {
		beaten := false
		for _, o := range cands {
			if o.d != c.d && o.beats(c) {
				beaten = true
				break
			}
		}
		if !beaten {
			tied = append(tied, c.d)
		}
	}
	return nil, in.newError(OverloadAmbiguous, "call %s%s matches %s", name, describeArgs(args), signatures(tied))
}

func describeArgs(args []argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch {
		case a.ref && !a.bound:
			parts[i] = "<->undefined"
		case a.ref:
			parts[i] = "<->" + a.kind.String()
		default:
			parts[i] = a.kind.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func signatures(ds []*Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}
