package builtins

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/value"
)

var (
	errDivideByZero = errors.New("division by zero")
	errOverflow     = errors.New("integer overflow")
)

// Arithmetic returns the numeric builtins. Integer overloads take
// precedence; mixed calls promote to the Float overload.
func Arithmetic() []*interp.Descriptor {
	return []*interp.Descriptor{
		fn("Plus", value.TInteger, builtinPlusInteger, arg("x", value.TInteger), arg("y", value.TInteger)),
		fn("Plus", value.TFloat, builtinPlusFloat, arg("x", value.TFloat), arg("y", value.TFloat)),
		fn("Plus", value.TText, builtinPlusText, arg("x", value.TText), arg("y", value.TText)),

		fn("Minus", value.TInteger, builtinMinusInteger, arg("x", value.TInteger), arg("y", value.TInteger)),
		fn("Minus", value.TFloat, builtinMinusFloat, arg("x", value.TFloat), arg("y", value.TFloat)),

		fn("Times", value.TInteger, builtinTimesInteger, arg("x", value.TInteger), arg("y", value.TInteger)),
		fn("Times", value.TFloat, builtinTimesFloat, arg("x", value.TFloat), arg("y", value.TFloat)),

		doc(fn("Divide", value.TFloat, builtinDivide, arg("x", value.TFloat), arg("y", value.TFloat)),
			"Divide always produces a Float; integer arguments are promoted."),

		fn("Negate", value.TInteger, builtinNegateInteger, arg("x", value.TInteger)),
		fn("Negate", value.TFloat, builtinNegateFloat, arg("x", value.TFloat)),
	}
}

func builtinPlusInteger(args []value.Value) (value.Value, error) {
	x, y := integer(args[0]), integer(args[1])
	sum := x + y
	if (sum > x) != (y > 0) {
		return nil, fmt.Errorf("%w: %d + %d", errOverflow, x, y)
	}
	return value.NewInteger(sum), nil
}

func builtinPlusFloat(args []value.Value) (value.Value, error) {
	return value.NewFloat(float(args[0]) + float(args[1])), nil
}

func builtinPlusText(args []value.Value) (value.Value, error) {
	return value.NewText(text(args[0]) + text(args[1])), nil
}

func builtinMinusInteger(args []value.Value) (value.Value, error) {
	x, y := integer(args[0]), integer(args[1])
	diff := x - y
	if (diff < x) != (y > 0) {
		return nil, fmt.Errorf("%w: %d - %d", errOverflow, x, y)
	}
	return value.NewInteger(diff), nil
}

func builtinMinusFloat(args []value.Value) (value.Value, error) {
	return value.NewFloat(float(args[0]) - float(args[1])), nil
}

func builtinTimesInteger(args []value.Value) (value.Value, error) {
	x, y := integer(args[0]), integer(args[1])
	if x == 0 || y == 0 {
		return value.NewInteger(0), nil
	}
	prod := x * y
	if prod/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return nil, fmt.Errorf("%w: %d * %d", errOverflow, x, y)
	}
	return value.NewInteger(prod), nil
}

func builtinTimesFloat(args []value.Value) (value.Value, error) {
	return value.NewFloat(float(args[0]) * float(args[1])), nil
}

func builtinDivide(args []value.Value) (value.Value, error) {
	y := float(args[1])
	if y == 0 {
		return nil, errDivideByZero
	}
	return value.NewFloat(float(args[0]) / y), nil
}

func builtinNegateInteger(args []value.Value) (value.Value, error) {
	x := integer(args[0])
	if x == math.MinInt64 {
		return nil, fmt.Errorf("%w: -(%d)", errOverflow, x)
	}
	return value.NewInteger(-x), nil
}

func builtinNegateFloat(args []value.Value) (value.Value, error) {
	return value.NewFloat(-float(args[0])), nil
}

// Logic returns comparison and boolean builtins. And and Or evaluate both
// operands.
func Logic() []*interp.Descriptor {
	return []*interp.Descriptor{
		fn("Equal", value.TBool, builtinEqual, arg("x", value.TAny), arg("y", value.TAny)),

		fn("Less", value.TBool, builtinLessInteger, arg("x", value.TInteger), arg("y", value.TInteger)),
		fn("Less", value.TBool, builtinLessFloat, arg("x", value.TFloat), arg("y", value.TFloat)),
		fn("Less", value.TBool, builtinLessText, arg("x", value.TText), arg("y", value.TText)),

		fn("Not", value.TBool, builtinNot, arg("x", value.TBool)),
		fn("And", value.TBool, builtinAnd, arg("x", value.TBool), arg("y", value.TBool)),
		fn("Or", value.TBool, builtinOr, arg("x", value.TBool), arg("y", value.TBool)),

		fn("IsNull", value.TBool, builtinIsNull, arg("x", value.TAny)),
	}
}

func builtinEqual(args []value.Value) (value.Value, error) {
	return value.NewBool(value.Equal(args[0], args[1])), nil
}

func builtinLessInteger(args []value.Value) (value.Value, error) {
	return value.NewBool(integer(args[0]) < integer(args[1])), nil
}

func builtinLessFloat(args []value.Value) (value.Value, error) {
	return value.NewBool(float(args[0]) < float(args[1])), nil
}

func builtinLessText(args []value.Value) (value.Value, error) {
	return value.NewBool(text(args[0]) < text(args[1])), nil
}

func builtinNot(args []value.Value) (value.Value, error) {
	return value.NewBool(!boolean(args[0])), nil
}

func builtinAnd(args []value.Value) (value.Value, error) {
	return value.NewBool(boolean(args[0]) && boolean(args[1])), nil
}

func builtinOr(args []value.Value) (value.Value, error) {
	return value.NewBool(boolean(args[0]) || boolean(args[1])), nil
}

func builtinIsNull(args []value.Value) (value.Value, error) {
	return value.NewBool(args[0].Kind() == value.KindNull), nil
}

// Collections returns list and text builtins. Positions count from 1.
func Collections() []*interp.Descriptor {
	return []*interp.Descriptor{
		fn("Length", value.TInteger, builtinLengthList, arg("x", value.TList)),
		fn("Length", value.TInteger, builtinLengthText, arg("x", value.TText)),

		fn("NthElement", value.TAny, builtinNthElement, arg("list", value.TList), arg("n", value.TInteger)),

		fn("Concat", value.TList, builtinConcatList, arg("x", value.TList), arg("y", value.TList)),
		fn("Concat", value.TText, builtinPlusText, arg("x", value.TText), arg("y", value.TText)),

		doc(fn("Text", value.TText, builtinText, arg("x", value.TAny)),
			"Text renders any value; a Text argument is returned unchanged."),
	}
}

func builtinLengthList(args []value.Value) (value.Value, error) {
	return value.NewInteger(int64(len(list(args[0])))), nil
}

func builtinLengthText(args []value.Value) (value.Value, error) {
	return value.NewInteger(int64(utf8.RuneCountInString(text(args[0])))), nil
}

func builtinNthElement(args []value.Value) (value.Value, error) {
	elems := list(args[0])
	n := integer(args[1])
	if n < 1 || n > int64(len(elems)) {
		return nil, fmt.Errorf("index %d out of range 1..%d", n, len(elems))
	}
	return elems[n-1], nil
}

func builtinConcatList(args []value.Value) (value.Value, error) {
	x, y := list(args[0]), list(args[1])
	out := make([]value.Value, 0, len(x)+len(y))
	out = append(out, x...)
	out = append(out, y...)
	return value.NewList(out...), nil
}

func builtinText(args []value.Value) (value.Value, error) {
	if t, ok := args[0].(value.Text); ok {
		return t, nil
	}
	return value.NewText(args[0].Inspect()), nil
}
