package game

import (
	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

type Node struct {
	id       uuid.UUID
	name     string
	game     *Game
	parent   *Node
	children []*Node
	infoset  *Infoset
	removed  bool
}

func (n *Node) ElementID() uuid.UUID    { return n.id }
func (n *Node) GameID() uuid.UUID       { return n.game.id }
func (n *Node) ElementKind() value.Kind { return value.KindNode }
func (n *Node) Label() string           { return n.name }
func (n *Node) Valid() bool             { return !n.removed && !n.game.discarded }

func (n *Node) Game() *Game         { return n.game }
func (n *Node) Name() string        { return n.name }
func (n *Node) SetName(name string) { n.name = name }
func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) Infoset() *Infoset   { return n.infoset }
func (n *Node) IsTerminal() bool    { return len(n.children) == 0 }
func (n *Node) NumChildren() int    { return len(n.children) }

func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Child returns the i'th child, counting from 1.
func (n *Node) Child(i int) (*Node, bool) {
	if i < 1 || i > len(n.children) {
		return nil, false
	}
	return n.children[i-1], true
}

// subtree lists n and its descendants breadth first.
func (n *Node) subtree() []*Node {
	out := []*Node{n}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].children...)
	}
	return out
}

type Infoset struct {
	id      uuid.UUID
	name    string
	game    *Game
	player  string
	actions []*Action
	members []*Node
	removed bool
}

func (s *Infoset) ElementID() uuid.UUID    { return s.id }
func (s *Infoset) GameID() uuid.UUID       { return s.game.id }
func (s *Infoset) ElementKind() value.Kind { return value.KindInfoset }
func (s *Infoset) Label() string           { return s.name }
func (s *Infoset) Valid() bool             { return !s.removed && !s.game.discarded }

func (s *Infoset) Game() *Game         { return s.game }
func (s *Infoset) Name() string        { return s.name }
func (s *Infoset) SetName(name string) { s.name = name }
func (s *Infoset) Player() string      { return s.player }
func (s *Infoset) NumActions() int     { return len(s.actions) }

func (s *Infoset) Actions() []*Action {
	return append([]*Action(nil), s.actions...)
}

func (s *Infoset) Members() []*Node {
	return append([]*Node(nil), s.members...)
}

func (s *Infoset) dropMember(n *Node) {
	for i, m := range s.members {
		if m == n {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return
		}
	}
}

type Action struct {
	id      uuid.UUID
	name    string
	infoset *Infoset
	removed bool
}

func (a *Action) ElementID() uuid.UUID    { return a.id }
func (a *Action) GameID() uuid.UUID       { return a.infoset.game.id }
func (a *Action) ElementKind() value.Kind { return value.KindAction }
func (a *Action) Label() string           { return a.name }
func (a *Action) Valid() bool             { return !a.removed && !a.infoset.game.discarded }

func (a *Action) Game() *Game         { return a.infoset.game }
func (a *Action) Infoset() *Infoset   { return a.infoset }
func (a *Action) Name() string        { return a.name }
func (a *Action) SetName(name string) { a.name = name }

// Number is the action's position in its infoset, counting from 1, or 0
// once removed.
func (a *Action) Number() int {
	for i, b := range a.infoset.actions {
		if b == a {
			return i + 1
		}
	}
	return 0
}
