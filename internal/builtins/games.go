package builtins

import (
	"fmt"

	"github.com/funvibe/gcl/internal/game"
	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/value"
)

// Games returns the game construction and editing builtins. Games created
// by NewGame report their destructive edits to in, so bindings into a
// removed part of a game are retracted before the edit completes.
func Games(in *interp.Interpreter) []*interp.Descriptor {
	newGame := func(args []value.Value) (value.Value, error) {
		g := game.New(text(args[0]))
		g.Watch(in)
		return value.NewHandle(g), nil
	}

	return []*interp.Descriptor{
		// Construction
		fn("NewGame", value.TGame, newGame, opt("title", value.TText, value.NewText(""))),
		doc(fn("AppendMove", value.TInfoset, builtinAppendMove,
			arg("node", value.TNode), arg("player", value.TText), opt("actions", value.TInteger, value.NewInteger(2))),
			"AppendMove gives a terminal node a new infoset with the given number of actions."),
		fn("JoinInfoset", value.TNode, builtinJoinInfoset, arg("node", value.TNode), arg("infoset", value.TInfoset)),

		// Navigation
		fn("RootNode", value.TNode, builtinRootNode, arg("game", value.TGame)),
		fn("Children", value.TList, builtinChildren, arg("node", value.TNode)),
		fn("NthChild", value.TNode, builtinNthChild, arg("node", value.TNode), arg("n", value.TInteger)),
		fn("Parent", value.TNode|value.TNull, builtinParent, arg("node", value.TNode)),
		fn("Infoset", value.TInfoset|value.TNull, builtinInfoset, arg("node", value.TNode)),
		fn("Actions", value.TList, builtinActions, arg("infoset", value.TInfoset)),
		fn("Members", value.TList, builtinMembers, arg("infoset", value.TInfoset)),

		// Labels
		fn("Name", value.TText, builtinName, arg("x", value.TElement)),
		fn("SetName", value.TElement, builtinSetName, arg("x", value.TElement), arg("name", value.TText)),

		// Editing
		fn("DeleteTree", value.TNode, builtinDeleteTree, arg("node", value.TNode)),
		fn("RemoveAction", value.TInfoset, builtinRemoveAction, arg("action", value.TAction)),
		fn("RemoveInfoset", value.TNull, builtinRemoveInfoset, arg("infoset", value.TInfoset)),
		fn("DiscardGame", value.TNull, builtinDiscardGame, arg("game", value.TGame)),
	}
}

// element extracts the game object wrapped by a handle argument.
func element[T value.Element](v value.Value) (T, error) {
	var zero T
	h, ok := v.(value.Handle)
	if !ok {
		return zero, fmt.Errorf("expected a game object, got %s", v.Kind())
	}
	e, ok := h.Elem.(T)
	if !ok {
		return zero, fmt.Errorf("%s does not belong to a game of this library", v.Inspect())
	}
	return e, nil
}

func handles[T value.Element](elems []T) value.Value {
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[i] = value.NewHandle(e)
	}
	return value.NewList(out...)
}

func builtinAppendMove(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	k := integer(args[2])
	if k < 1 || k > 1<<16 {
		return nil, fmt.Errorf("AppendMove: action count %d out of range", k)
	}
	s, err := n.Game().AppendMove(n, text(args[1]), int(k))
	if err != nil {
		return nil, err
	}
	return value.NewHandle(s), nil
}

func builtinJoinInfoset(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	s, err := element[*game.Infoset](args[1])
	if err != nil {
		return nil, err
	}
	if err := n.Game().JoinInfoset(n, s); err != nil {
		return nil, err
	}
	return value.NewHandle(n), nil
}

func builtinRootNode(args []value.Value) (value.Value, error) {
	g, err := element[*game.Game](args[0])
	if err != nil {
		return nil, err
	}
	return value.NewHandle(g.Root()), nil
}

func builtinChildren(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	return handles(n.Children()), nil
}

func builtinNthChild(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	i := integer(args[1])
	c, ok := n.Child(int(i))
	if !ok {
		return nil, fmt.Errorf("child %d out of range 1..%d", i, n.NumChildren())
	}
	return value.NewHandle(c), nil
}

func builtinParent(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	if n.Parent() == nil {
		return value.Null{}, nil
	}
	return value.NewHandle(n.Parent()), nil
}

func builtinInfoset(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	if n.Infoset() == nil {
		return value.Null{}, nil
	}
	return value.NewHandle(n.Infoset()), nil
}

func builtinActions(args []value.Value) (value.Value, error) {
	s, err := element[*game.Infoset](args[0])
	if err != nil {
		return nil, err
	}
	return handles(s.Actions()), nil
}

func builtinMembers(args []value.Value) (value.Value, error) {
	s, err := element[*game.Infoset](args[0])
	if err != nil {
		return nil, err
	}
	return handles(s.Members()), nil
}

func builtinName(args []value.Value) (value.Value, error) {
	e, err := element[value.Element](args[0])
	if err != nil {
		return nil, err
	}
	return value.NewText(e.Label()), nil
}

func builtinSetName(args []value.Value) (value.Value, error) {
	name := text(args[1])
	h := args[0].(value.Handle)
	switch e := h.Elem.(type) {
	case *game.Game:
		e.SetTitle(name)
	case *game.Node:
		e.SetName(name)
	case *game.Infoset:
		e.SetName(name)
	case *game.Action:
		e.SetName(name)
	default:
		return nil, fmt.Errorf("%s cannot be renamed", h.Inspect())
	}
	return h, nil
}

func builtinDeleteTree(args []value.Value) (value.Value, error) {
	n, err := element[*game.Node](args[0])
	if err != nil {
		return nil, err
	}
	if err := n.Game().DeleteTree(n); err != nil {
		return nil, err
	}
	return value.NewHandle(n), nil
}

func builtinRemoveAction(args []value.Value) (value.Value, error) {
	a, err := element[*game.Action](args[0])
	if err != nil {
		return nil, err
	}
	s := a.Infoset()
	if err := a.Game().RemoveAction(a); err != nil {
		return nil, err
	}
	return value.NewHandle(s), nil
}

func builtinRemoveInfoset(args []value.Value) (value.Value, error) {
	s, err := element[*game.Infoset](args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Game().RemoveInfoset(s)
}

func builtinDiscardGame(args []value.Value) (value.Value, error) {
	g, err := element[*game.Game](args[0])
	if err != nil {
		return nil, err
	}
	return nil, g.Discard()
}
