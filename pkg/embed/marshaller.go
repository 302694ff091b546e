package gcl

import (
	"fmt"
	"math"
	"reflect"

	"github.com/funvibe/gcl/internal/game"
	"github.com/funvibe/gcl/internal/value"
)

var (
	valueType   = reflect.TypeOf((*value.Value)(nil)).Elem()
	elementType = reflect.TypeOf((*value.Element)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// elementTypes maps the reference game model onto parameter types.
var elementTypes = map[reflect.Type]value.Type{
	reflect.TypeOf((*game.Game)(nil)):    value.TGame,
	reflect.TypeOf((*game.Node)(nil)):    value.TNode,
	reflect.TypeOf((*game.Infoset)(nil)): value.TInfoset,
	reflect.TypeOf((*game.Action)(nil)):  value.TAction,
}

// Marshaller handles conversion between Go values and interpreter values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to an interpreter value. Game elements become
// handles, slices become lists.
func (m *Marshaller) ToValue(val interface{}) (value.Value, error) {
	if val == nil {
		return value.Null{}, nil
	}
	if rv := reflect.ValueOf(val); (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return value.Null{}, nil
	}
	switch v := val.(type) {
	case value.Value:
		return v, nil
	case value.Element:
		return value.NewHandle(v), nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.NewInteger(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("%d does not fit an Integer", v.Uint())
		}
		return value.NewInteger(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.NewFloat(v.Float()), nil
	case reflect.Bool:
		return value.NewBool(v.Bool()), nil
	case reflect.String:
		return value.NewText(v.String()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]value.Value, v.Len())
		for i := range elems {
			e, err := m.ToValue(v.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i+1, err)
			}
			elems[i] = e
		}
		return value.NewList(elems...), nil
	}
	return nil, fmt.Errorf("unsupported Go type %T", val)
}

// FromValue converts an interpreter value to a Go value. targetType is
// optional; without it integers become int64, lists []interface{} and
// handles the wrapped element.
func (m *Marshaller) FromValue(v value.Value, targetType reflect.Type) (interface{}, error) {
	rv, err := m.fromValue(v, targetType)
	if err != nil || !rv.IsValid() {
		return nil, err
	}
	return rv.Interface(), nil
}

func (m *Marshaller) fromValue(v value.Value, t reflect.Type) (reflect.Value, error) {
	if t != nil && t == valueType {
		return reflect.ValueOf(&v).Elem(), nil
	}
	if v == nil || v.Kind() == value.KindNull {
		if t == nil {
			return reflect.Value{}, nil
		}
		return reflect.Zero(t), nil
	}

	var out reflect.Value
	switch x := v.(type) {
	case value.Integer:
		out = reflect.ValueOf(x.Value)
	case value.Float:
		out = reflect.ValueOf(x.Value)
	case value.Bool:
		out = reflect.ValueOf(x.Value)
	case value.Text:
		out = reflect.ValueOf(x.Value)
	case value.Handle:
		out = reflect.ValueOf(x.Elem)
	case value.List:
		return m.listToSlice(x, t)
	default:
		return reflect.Value{}, fmt.Errorf("cannot convert %s to a Go value", v.Kind())
	}

	if t == nil || out.Type() == t {
		return out, nil
	}
	if t.Kind() == reflect.Interface && out.Type().Implements(t) {
		conv := reflect.New(t).Elem()
		conv.Set(out)
		return conv, nil
	}
	if isNumeric(out.Kind()) && isNumeric(t.Kind()) {
		return convertNumber(out, t)
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", v.Kind(), t)
}

func (m *Marshaller) listToSlice(l value.List, t reflect.Type) (reflect.Value, error) {
	sliceType := reflect.TypeOf([]interface{}{})
	if t != nil && t.Kind() == reflect.Slice {
		sliceType = t
	} else if t != nil && t.Kind() != reflect.Interface {
		return reflect.Value{}, fmt.Errorf("cannot convert List to %s", t)
	}

	out := reflect.MakeSlice(sliceType, len(l.Elems), len(l.Elems))
	for i, e := range l.Elems {
		ev, err := m.fromValue(e, sliceType.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i+1, err)
		}
		if ev.IsValid() {
			out.Index(i).Set(ev)
		}
	}
	return out, nil
}

// convertNumber converts v to the numeric type t, refusing values that t
// cannot hold exactly: out of range, negative into unsigned, or fractional
// into an integer type.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	fail := func(reason string) (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("cannot convert %v to %s: %s", v.Interface(), t, reason)
	}

	switch {
	case isInt(t.Kind()):
		var n int64
		switch {
		case isInt(v.Kind()):
			n = v.Int()
		case isUint(v.Kind()):
			if v.Uint() > math.MaxInt64 {
				return fail("out of range")
			}
			n = int64(v.Uint())
		default:
			f := v.Float()
			if f != math.Trunc(f) {
				return fail("not an integer")
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return fail("out of range")
			}
			n = int64(f)
		}
		if out.OverflowInt(n) {
			return fail("out of range")
		}
		out.SetInt(n)

	case isUint(t.Kind()):
		var u uint64
		switch {
		case isInt(v.Kind()):
			if v.Int() < 0 {
				return fail("negative")
			}
			u = uint64(v.Int())
		case isUint(v.Kind()):
			u = v.Uint()
		default:
			f := v.Float()
			if f != math.Trunc(f) {
				return fail("not an integer")
			}
			if f < 0 {
				return fail("negative")
			}
			if f >= math.MaxUint64 {
				return fail("out of range")
			}
			u = uint64(f)
		}
		if out.OverflowUint(u) {
			return fail("out of range")
		}
		out.SetUint(u)

	default:
		var f float64
		switch {
		case isInt(v.Kind()):
			f = float64(v.Int())
		case isUint(v.Kind()):
			f = float64(v.Uint())
		default:
			f = v.Float()
		}
		if out.OverflowFloat(f) {
			return fail("out of range")
		}
		out.SetFloat(f)
	}
	return out, nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

// typeFor maps a Go parameter type to the interpreter type it accepts.
func typeFor(t reflect.Type) (value.Type, error) {
	if vt, ok := elementTypes[t]; ok {
		return vt, nil
	}
	switch {
	case t == valueType:
		return value.TAny, nil
	case t == elementType:
		return value.TElement, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.TInteger, nil
	case reflect.Float32, reflect.Float64:
		return value.TFloat, nil
	case reflect.Bool:
		return value.TBool, nil
	case reflect.String:
		return value.TText, nil
	case reflect.Slice:
		return value.TList, nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return value.TAny, nil
		}
	}
	return 0, fmt.Errorf("unsupported parameter type %s", t)
}
