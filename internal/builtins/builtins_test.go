package builtins

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/funvibe/gcl/internal/ast"
	"github.com/funvibe/gcl/internal/game"
	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/value"
)

func newInterp(t *testing.T) *interp.Interpreter {
	t.Helper()
	in := interp.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := Register(in); err != nil {
		t.Fatal(err)
	}
	return in
}

func run(t *testing.T, in *interp.Interpreter, node ast.Node) value.Value {
	t.Helper()
	v, err := in.Execute(node, false)
	if err != nil {
		t.Fatalf("%s: %v", node, err)
	}
	return v
}

func TestValues(t *testing.T) {
	in := newInterp(t)
	tests := []struct {
		name string
		expr ast.Node
		want string
	}{
		{"int plus", ast.Fn("Plus", ast.Int(2), ast.Int(3)), "5"},
		{"promoted plus", ast.Fn("Plus", ast.Int(2), ast.Num(0.5)), "2.5"},
		{"text plus", ast.Fn("Plus", ast.Str("ab"), ast.Str("c")), `"abc"`},
		{"minus", ast.Fn("Minus", ast.Int(2), ast.Int(5)), "-3"},
		{"times float", ast.Fn("Times", ast.Num(1.5), ast.Int(2)), "3"},
		{"divide", ast.Fn("Divide", ast.Int(7), ast.Int(2)), "3.5"},
		{"negate", ast.Fn("Negate", ast.Int(4)), "-4"},
		{"equal mixed", ast.Fn("Equal", ast.Int(2), ast.Num(2)), "true"},
		{"less text", ast.Fn("Less", ast.Str("a"), ast.Str("b")), "true"},
		{"less promoted", ast.Fn("Less", ast.Int(3), ast.Num(2.5)), "false"},
		{"not", ast.Fn("Not", ast.Bool(false)), "true"},
		{"and", ast.Fn("And", ast.Bool(true), ast.Bool(false)), "false"},
		{"or", ast.Fn("Or", ast.Bool(true), ast.Bool(false)), "true"},
		{"is null", ast.Fn("IsNull", ast.Lit(value.Null{})), "true"},
		{"length text", ast.Fn("Length", ast.Str("héllo")), "5"},
		{"length list", ast.Fn("Length", ast.Lit(value.NewList(value.NewInteger(1), value.NewInteger(2)))), "2"},
		{"nth", ast.Fn("NthElement", ast.Lit(value.NewList(value.NewText("a"), value.NewText("b"))), ast.Int(2)), `"b"`},
		{"concat", ast.Fn("Concat", ast.Lit(value.NewList(value.NewInteger(1))), ast.Lit(value.NewList(value.NewInteger(2)))), "{1, 2}"},
		{"text of float", ast.Fn("Text", ast.Num(1.5)), `"1.5"`},
		{"text of text", ast.Fn("Text", ast.Str("x")), `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, in, tt.expr).Inspect(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNativeFailures(t *testing.T) {
	in := newInterp(t)
	tests := []struct {
		name  string
		expr  ast.Node
		cause error
	}{
		{"divide by zero", ast.Fn("Divide", ast.Int(1), ast.Int(0)), errDivideByZero},
		{"overflow", ast.Fn("Times", ast.Int(1<<62), ast.Int(4)), errOverflow},
		{"negate min", ast.Fn("Negate", ast.Fn("Minus", ast.Int(-1<<63+1), ast.Int(1))), errOverflow},
		{"nth out of range", ast.Fn("NthElement", ast.Lit(value.NewList()), ast.Int(1)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Execute(tt.expr, false)
			if !interp.IsKind(err, interp.NativeFailure) {
				t.Fatalf("expected a runtime error, got %v", err)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("expected cause %v, got %v", tt.cause, err)
			}
		})
	}
}

func TestGameEditing(t *testing.T) {
	in := newInterp(t)
	run(t, in, ast.Block(
		ast.Set("g", ast.Fn("NewGame", ast.Str("demo"))),
		ast.Set("root", ast.Fn("RootNode", ast.Name("g"))),
		ast.Set("s", ast.Fn("AppendMove", ast.Name("root"), ast.Str("P1"), ast.Int(3))),
		ast.Set("c", ast.Fn("NthChild", ast.Name("root"), ast.Int(2))),
		ast.SetGlobal("kids", ast.Fn("Children", ast.Name("root"))),
	))

	if got := run(t, in, ast.Fn("Length", ast.GlobalName("kids"))).Inspect(); got != "3" {
		t.Errorf("Length[$kids] = %s", got)
	}
	act := ast.Fn("NthElement", ast.Fn("Actions", ast.Name("s")), ast.Int(2))
	if got := run(t, in, ast.Fn("Name", act)).Inspect(); got != `"2"` {
		t.Errorf("action name = %s", got)
	}
	run(t, in, ast.Fn("SetName", ast.Name("c"), ast.Str("middle")))
	if got := run(t, in, ast.Fn("Name", ast.Name("c"))).Inspect(); got != `"middle"` {
		t.Errorf("renamed node = %s", got)
	}
	parent := ast.Fn("Equal", ast.Fn("Parent", ast.Name("c")), ast.Name("root"))
	if got := run(t, in, parent).Inspect(); got != "true" {
		t.Errorf("Parent[c] should be root")
	}
	if got := run(t, in, ast.Fn("IsNull", ast.Fn("Parent", ast.Name("root")))).Inspect(); got != "true" {
		t.Errorf("root has no parent")
	}

	run(t, in, ast.Fn("DeleteTree", ast.Name("root")))
	for _, name := range []string{"c", "s"} {
		if in.IsDefined(name) {
			t.Errorf("%s should be retracted", name)
		}
	}
	if in.GlobalIsDefined("kids") {
		t.Error("$kids should be retracted")
	}
	if !in.IsDefined("root") || !in.IsDefined("g") {
		t.Error("root and g survive DeleteTree")
	}
	if got := run(t, in, ast.Fn("Length", ast.Fn("Children", ast.Name("root")))).Inspect(); got != "0" {
		t.Errorf("root should be terminal, has %s children", got)
	}

	run(t, in, ast.Fn("DiscardGame", ast.Name("g")))
	if in.IsDefined("g") || in.IsDefined("root") {
		t.Error("discarding the game retracts every binding into it")
	}
	if err := in.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestEditRefusedWhileOperandHeld(t *testing.T) {
	in := newInterp(t)
	run(t, in, ast.Block(
		ast.Set("g", ast.Fn("NewGame")),
		ast.Set("root", ast.Fn("RootNode", ast.Name("g"))),
		ast.Fn("AppendMove", ast.Name("root"), ast.Str("P1")),
		ast.Set("c", ast.Fn("NthChild", ast.Name("root"), ast.Int(1))),
	))

	// c is on the operand stack while DeleteTree runs.
	_, err := in.Execute(ast.Fn("Equal", ast.Name("c"), ast.Fn("DeleteTree", ast.Name("root"))), false)
	if !interp.IsKind(err, interp.NativeFailure) || !errors.Is(err, game.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if got := run(t, in, ast.Fn("Length", ast.Fn("Children", ast.Name("root")))).Inspect(); got != "2" {
		t.Errorf("refused edit must leave the tree alone, root has %s children", got)
	}
	if !in.IsDefined("c") {
		t.Error("refused edit must not retract bindings")
	}
	c, _ := in.ValueOf("c")
	if got := in.Pinned(c.(value.Handle).Elem.ElementID()); got != 0 {
		t.Errorf("Pinned(c) = %d after the statement, want 0", got)
	}
	if in.Depth() != 1 {
		t.Errorf("depth = %d after error", in.Depth())
	}
}

func TestRemoveActionAndInfoset(t *testing.T) {
	in := newInterp(t)
	run(t, in, ast.Block(
		ast.Set("root", ast.Fn("RootNode", ast.Fn("NewGame"))),
		ast.Set("s", ast.Fn("AppendMove", ast.Name("root"), ast.Str("P1"), ast.Int(2))),
		ast.Set("a", ast.Fn("NthElement", ast.Fn("Actions", ast.Name("s")), ast.Int(1))),
		ast.Set("first", ast.Fn("NthChild", ast.Name("root"), ast.Int(1))),
	))

	run(t, in, ast.Fn("RemoveAction", ast.Name("a")))
	if in.IsDefined("a") || in.IsDefined("first") {
		t.Error("the action and the node it led to should be retracted")
	}
	_, err := in.Execute(ast.Fn("RemoveAction", ast.Fn("NthElement", ast.Fn("Actions", ast.Name("s")), ast.Int(1))), false)
	if !errors.Is(err, game.ErrLastMove) {
		t.Errorf("expected ErrLastMove, got %v", err)
	}

	run(t, in, ast.Fn("RemoveInfoset", ast.Name("s")))
	if in.IsDefined("s") {
		t.Error("s should be retracted")
	}
	if got := run(t, in, ast.Fn("IsNull", ast.Fn("Infoset", ast.Name("root")))).Inspect(); got != "true" {
		t.Errorf("root should no longer belong to an infoset")
	}
}

func TestIntrospection(t *testing.T) {
	in := newInterp(t)
	if got := run(t, in, ast.Fn("Length", ast.Fn("Help", ast.Str("plus")))).Inspect(); got != "3" {
		t.Errorf("Help[plus] lists %s overloads, want 3", got)
	}
	run(t, in, ast.Block(ast.Set("b", ast.Int(1)), ast.Set("a", ast.Int(2))))
	if got := run(t, in, ast.Fn("Names")).Inspect(); got != `{"a", "b"}` {
		t.Errorf("Names[] = %s", got)
	}
	if got := run(t, in, ast.Fn("UserFuncName")).Inspect(); got != `""` {
		t.Errorf("UserFuncName[] = %s at top level", got)
	}
}
