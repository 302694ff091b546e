// Package game is a small extensive-form game model: a tree of nodes whose
// decision nodes are grouped into information sets with actions.
//
// The interpreter does not own games. A destructive edit is refused with
// ErrInUse while a watching Invalidator pins one of the doomed elements.
// Otherwise the watchers are notified so they can retract whatever refers
// to those elements, and the edit proceeds once nothing holds a reference.
package game

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

var (
	ErrInUse    = errors.New("element is still referenced")
	ErrRemoved  = errors.New("element has been removed")
	ErrForeign  = errors.New("element belongs to another game")
	ErrNotEmpty = errors.New("node already has a move")
	ErrLastMove = errors.New("cannot remove the only action of an infoset")
)

// Invalidator is notified before elements of a game are removed.
// *interp.Interpreter satisfies it.
type Invalidator interface {
	NotifyElementRemoved(g value.Graph, kind value.Kind, id uuid.UUID) int
	NotifySubtreeRemoved(g value.Graph, root uuid.UUID) int
	InvalidateAllBindingsFor(g value.Graph) int
	References(id uuid.UUID) int
	Pinned(id uuid.UUID) int
}

type Game struct {
	id        uuid.UUID
	title     string
	root      *Node
	nodes     map[uuid.UUID]*Node
	infosets  map[uuid.UUID]*Infoset
	actions   map[uuid.UUID]*Action
	watchers  []Invalidator
	discarded bool
}

// New creates a game holding a single root node.
func New(title string) *Game {
	g := &Game{
		id:       uuid.New(),
		title:    title,
		nodes:    make(map[uuid.UUID]*Node),
		infosets: make(map[uuid.UUID]*Infoset),
		actions:  make(map[uuid.UUID]*Action),
	}
	g.root = g.newNode(nil, "")
	return g
}

// Watch registers w for removal notifications.
func (g *Game) Watch(w Invalidator) {
	for _, existing := range g.watchers {
		if existing == w {
			return
		}
	}
	g.watchers = append(g.watchers, w)
}

func (g *Game) ElementID() uuid.UUID    { return g.id }
func (g *Game) GameID() uuid.UUID       { return g.id }
func (g *Game) ElementKind() value.Kind { return value.KindGame }
func (g *Game) Label() string           { return g.title }
func (g *Game) Valid() bool             { return !g.discarded }

func (g *Game) Title() string         { return g.title }
func (g *Game) SetTitle(title string) { g.title = title }
func (g *Game) Root() *Node           { return g.root }
func (g *Game) NumNodes() int         { return len(g.nodes) }
func (g *Game) NumInfosets() int      { return len(g.infosets) }

func (g *Game) Node(id uuid.UUID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Game) Infoset(id uuid.UUID) (*Infoset, bool) {
	s, ok := g.infosets[id]
	return s, ok
}

// Subtree returns root and all nodes below it, parents before children.
func (g *Game) Subtree(root uuid.UUID) []uuid.UUID {
	n, ok := g.nodes[root]
	if !ok {
		return nil
	}
	var ids []uuid.UUID
	for _, m := range n.subtree() {
		ids = append(ids, m.id)
	}
	return ids
}

func (g *Game) ActionsOf(infoset uuid.UUID) []uuid.UUID {
	s, ok := g.infosets[infoset]
	if !ok {
		return nil
	}
	ids := make([]uuid.UUID, len(s.actions))
	for i, a := range s.actions {
		ids[i] = a.id
	}
	return ids
}

func (g *Game) newNode(parent *Node, name string) *Node {
	n := &Node{id: uuid.New(), name: name, game: g, parent: parent}
	g.nodes[n.id] = n
	return n
}

func (g *Game) owns(e value.Element) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %s %q", ErrRemoved, e.ElementKind(), e.Label())
	}
	if e.GameID() != g.id {
		return fmt.Errorf("%w: %s %q", ErrForeign, e.ElementKind(), e.Label())
	}
	return nil
}

// AppendMove turns the terminal node n into a decision node of a new
// infoset for player with the given number of actions. Actions are named
// "1".."k" and n gains one child per action.
func (g *Game) AppendMove(n *Node, player string, actions int) (*Infoset, error) {
	if err := g.owns(n); err != nil {
		return nil, err
	}
	if actions < 1 {
		return nil, fmt.Errorf("a move needs at least one action, got %d", actions)
	}
	if !n.IsTerminal() {
		return nil, fmt.Errorf("%w: %q", ErrNotEmpty, n.name)
	}

	s := &Infoset{id: uuid.New(), game: g, player: player}
	g.infosets[s.id] = s
	for i := 1; i <= actions; i++ {
		a := &Action{id: uuid.New(), name: strconv.Itoa(i), infoset: s}
		g.actions[a.id] = a
		s.actions = append(s.actions, a)
	}
	g.join(n, s)
	return s, nil
}

// JoinInfoset makes the terminal node n another member of s, giving it one
// child per action of s.
func (g *Game) JoinInfoset(n *Node, s *Infoset) error {
	if err := g.owns(n); err != nil {
		return err
	}
	if err := g.owns(s); err != nil {
		return err
	}
	if !n.IsTerminal() {
		return fmt.Errorf("%w: %q", ErrNotEmpty, n.name)
	}
	g.join(n, s)
	return nil
}

func (g *Game) join(n *Node, s *Infoset) {
	n.infoset = s
	s.members = append(s.members, n)
	for range s.actions {
		n.children = append(n.children, g.newNode(n, ""))
	}
}
