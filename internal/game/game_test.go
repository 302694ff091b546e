package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

// recorder is an Invalidator that logs notifications and reports counts
// from fixed tables.
type recorder struct {
	subtrees []uuid.UUID
	elements []value.Kind
	games    int
	refs     map[uuid.UUID]int
	pinned   map[uuid.UUID]int
}

func (r *recorder) NotifyElementRemoved(g value.Graph, kind value.Kind, id uuid.UUID) int {
	r.elements = append(r.elements, kind)
	return 0
}

func (r *recorder) NotifySubtreeRemoved(g value.Graph, root uuid.UUID) int {
	r.subtrees = append(r.subtrees, root)
	return 0
}

func (r *recorder) InvalidateAllBindingsFor(g value.Graph) int {
	r.games++
	return 0
}

func (r *recorder) References(id uuid.UUID) int { return r.refs[id] + r.pinned[id] }
func (r *recorder) Pinned(id uuid.UUID) int     { return r.pinned[id] }

// twoStage builds root -> (P1, 2 actions) -> each child gets a P2 move
// with 2 actions, both in one infoset.
func twoStage(t *testing.T) (*Game, *Infoset, *Infoset) {
	t.Helper()
	g := New("two stage")
	s1, err := g.AppendMove(g.Root(), "P1", 2)
	if err != nil {
		t.Fatal(err)
	}
	left, _ := g.Root().Child(1)
	right, _ := g.Root().Child(2)
	s2, err := g.AppendMove(left, "P2", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.JoinInfoset(right, s2); err != nil {
		t.Fatal(err)
	}
	return g, s1, s2
}

func TestBuild(t *testing.T) {
	g, s1, s2 := twoStage(t)
	if g.NumNodes() != 7 {
		t.Errorf("NumNodes = %d, want 7", g.NumNodes())
	}
	if g.NumInfosets() != 2 {
		t.Errorf("NumInfosets = %d, want 2", g.NumInfosets())
	}
	if len(s2.Members()) != 2 || s1.NumActions() != 2 {
		t.Errorf("unexpected infoset shape")
	}
	if got := len(g.Subtree(g.Root().ElementID())); got != 7 {
		t.Errorf("Subtree(root) = %d ids, want 7", got)
	}
	if got := len(g.ActionsOf(s2.ElementID())); got != 2 {
		t.Errorf("ActionsOf = %d, want 2", got)
	}
	a := s2.Actions()[1]
	if a.Number() != 2 || a.Name() != "2" {
		t.Errorf("action numbering: %d %q", a.Number(), a.Name())
	}
	if _, err := g.AppendMove(g.Root(), "P1", 2); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("AppendMove on decision node: %v", err)
	}
}

func TestDeleteTreeNotifiesAndRemoves(t *testing.T) {
	g, s1, s2 := twoStage(t)
	rec := &recorder{}
	g.Watch(rec)
	g.Watch(rec)

	left, _ := g.Root().Child(1)
	if err := g.DeleteTree(left); err != nil {
		t.Fatal(err)
	}
	if len(rec.subtrees) != 2 {
		t.Errorf("expected one notification per removed child, got %d", len(rec.subtrees))
	}
	if !left.IsTerminal() || left.Infoset() != nil {
		t.Errorf("left should be terminal and outside any infoset")
	}
	if g.NumNodes() != 5 {
		t.Errorf("NumNodes = %d, want 5", g.NumNodes())
	}
	if len(s2.Members()) != 1 || !s2.Valid() {
		t.Errorf("s2 should keep its other member")
	}
	if !s1.Valid() {
		t.Errorf("s1 untouched")
	}

	right, _ := g.Root().Child(2)
	grandchild, _ := right.Child(1)
	if err := g.DeleteTree(right); err != nil {
		t.Fatal(err)
	}
	if s2.Valid() {
		t.Errorf("s2 lost its last member and should be removed")
	}
	if grandchild.Valid() {
		t.Errorf("removed node still valid")
	}
	if len(rec.elements) != 1 || rec.elements[0] != value.KindInfoset {
		t.Errorf("expected one infoset notification, got %v", rec.elements)
	}
}

func TestDeleteTreeRefusedWhileReferenced(t *testing.T) {
	g, _, _ := twoStage(t)
	left, _ := g.Root().Child(1)
	leaf, _ := left.Child(2)
	rec := &recorder{refs: map[uuid.UUID]int{leaf.ElementID(): 1}}
	g.Watch(rec)

	err := g.DeleteTree(left)
	if !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if !leaf.Valid() || left.IsTerminal() {
		t.Errorf("refused edit must not mutate the game")
	}
}

func TestPinnedElementRefusedBeforeNotifying(t *testing.T) {
	tests := []struct {
		name string
		edit func(g *Game, s1, s2 *Infoset) error
		pin  func(g *Game, s1, s2 *Infoset) uuid.UUID
	}{
		{
			name: "delete tree",
			edit: func(g *Game, _, _ *Infoset) error { return g.DeleteTree(g.Root()) },
			pin: func(g *Game, _, _ *Infoset) uuid.UUID {
				n, _ := g.Root().Child(2)
				return n.ElementID()
			},
		},
		{
			name: "remove action",
			edit: func(g *Game, _, s2 *Infoset) error { return g.RemoveAction(s2.Actions()[1]) },
			pin:  func(_ *Game, _, s2 *Infoset) uuid.UUID { return s2.Actions()[1].ElementID() },
		},
		{
			name: "remove infoset",
			edit: func(g *Game, _, s2 *Infoset) error { return g.RemoveInfoset(s2) },
			pin:  func(_ *Game, _, s2 *Infoset) uuid.UUID { return s2.ElementID() },
		},
		{
			name: "discard",
			edit: func(g *Game, _, _ *Infoset) error { return g.Discard() },
			pin:  func(g *Game, _, _ *Infoset) uuid.UUID { return g.ElementID() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s1, s2 := twoStage(t)
			rec := &recorder{pinned: map[uuid.UUID]int{tt.pin(g, s1, s2): 1}}
			g.Watch(rec)

			if err := tt.edit(g, s1, s2); !errors.Is(err, ErrInUse) {
				t.Fatalf("expected ErrInUse, got %v", err)
			}
			if len(rec.subtrees) != 0 || len(rec.elements) != 0 || rec.games != 0 {
				t.Errorf("watchers must not be notified of a refused edit: %+v", rec)
			}
			if g.NumNodes() != 7 || !s2.Valid() || s2.NumActions() != 2 {
				t.Errorf("refused edit must not mutate the game")
			}
		})
	}
}

func TestRemoveAction(t *testing.T) {
	g, _, s2 := twoStage(t)
	rec := &recorder{}
	g.Watch(rec)

	a := s2.Actions()[0]
	if err := g.RemoveAction(a); err != nil {
		t.Fatal(err)
	}
	if a.Valid() || s2.NumActions() != 1 {
		t.Errorf("action should be gone")
	}
	for _, m := range s2.Members() {
		if m.NumChildren() != 1 {
			t.Errorf("member kept %d children, want 1", m.NumChildren())
		}
	}
	if len(rec.subtrees) != 2 {
		t.Errorf("expected a subtree notification per member, got %d", len(rec.subtrees))
	}
	if err := g.RemoveAction(s2.Actions()[0]); !errors.Is(err, ErrLastMove) {
		t.Errorf("expected ErrLastMove, got %v", err)
	}
}

func TestRemoveInfoset(t *testing.T) {
	g, s1, s2 := twoStage(t)
	if err := g.RemoveInfoset(s1); err != nil {
		t.Fatal(err)
	}
	if s1.Valid() || s2.Valid() {
		t.Errorf("s1 and the infoset below it should be removed")
	}
	if !g.Root().IsTerminal() || g.NumNodes() != 1 {
		t.Errorf("root should be the only node left, have %d", g.NumNodes())
	}
}

func TestDiscard(t *testing.T) {
	g, _, _ := twoStage(t)
	root := g.Root()
	rec := &recorder{refs: map[uuid.UUID]int{g.ElementID(): 2}}
	g.Watch(rec)

	if err := g.Discard(); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	delete(rec.refs, g.ElementID())
	if err := g.Discard(); err != nil {
		t.Fatal(err)
	}
	if g.Valid() || root.Valid() {
		t.Errorf("discarded game elements must be invalid")
	}
	if rec.games != 2 {
		t.Errorf("InvalidateAllBindingsFor called %d times, want 2", rec.games)
	}
}

func TestForeignElements(t *testing.T) {
	g1 := New("a")
	g2 := New("b")
	if _, err := g1.AppendMove(g2.Root(), "P1", 2); !errors.Is(err, ErrForeign) {
		t.Errorf("expected ErrForeign, got %v", err)
	}
}
