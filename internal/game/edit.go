package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

// removal is the set of elements one edit takes out of a game.
type removal struct {
	roots    []*Node // each removed together with its descendants
	infosets []*Infoset
	actions  []*Action
}

func (r *removal) nodes() []*Node {
	var out []*Node
	for _, root := range r.roots {
		out = append(out, root.subtree()...)
	}
	return out
}

func (r *removal) ids() []uuid.UUID {
	var ids []uuid.UUID
	for _, n := range r.nodes() {
		ids = append(ids, n.id)
	}
	for _, s := range r.infosets {
		ids = append(ids, s.id)
		for _, a := range s.actions {
			ids = append(ids, a.id)
		}
	}
	for _, a := range r.actions {
		ids = append(ids, a.id)
	}
	return ids
}

// emptied returns the infosets left without members once the nodes in gone
// are removed and the nodes in leaving stop being members.
func (g *Game) emptied(gone, leaving map[*Node]bool) []*Infoset {
	var out []*Infoset
	for _, s := range g.infosets {
		if len(s.members) == 0 {
			continue
		}
		remaining := 0
		for _, m := range s.members {
			if !gone[m] && !leaving[m] {
				remaining++
			}
		}
		if remaining == 0 {
			out = append(out, s)
		}
	}
	return out
}

// notify refuses the edit while a watcher pins a doomed element, tells
// every watcher what is about to be removed, then checks that nothing
// still refers to it.
func (g *Game) notify(r *removal) error {
	ids := r.ids()
	if err := g.pinned(ids...); err != nil {
		return err
	}
	for _, w := range g.watchers {
		for _, root := range r.roots {
			w.NotifySubtreeRemoved(g, root.id)
		}
		for _, s := range r.infosets {
			w.NotifyElementRemoved(g, value.KindInfoset, s.id)
		}
		for _, a := range r.actions {
			w.NotifyElementRemoved(g, value.KindAction, a.id)
		}
	}
	for _, w := range g.watchers {
		for _, id := range ids {
			if n := w.References(id); n > 0 {
				return fmt.Errorf("%w: %d live references to %s", ErrInUse, n, id)
			}
		}
	}
	return nil
}

func (g *Game) pinned(ids ...uuid.UUID) error {
	for _, w := range g.watchers {
		for _, id := range ids {
			if n := w.Pinned(id); n > 0 {
				return fmt.Errorf("%w: %s is held by %d pending operands", ErrInUse, id, n)
			}
		}
	}
	return nil
}

func (g *Game) dropNodes(nodes []*Node) {
	for _, n := range nodes {
		n.removed = true
		delete(g.nodes, n.id)
		if n.infoset != nil {
			n.infoset.dropMember(n)
		}
	}
}

func (g *Game) dropInfosets(sets []*Infoset) {
	for _, s := range sets {
		s.removed = true
		delete(g.infosets, s.id)
		for _, a := range s.actions {
			a.removed = true
			delete(g.actions, a.id)
		}
		for _, m := range s.members {
			m.infoset = nil
		}
		s.members = nil
	}
}

func nodeSet(nodes ...*Node) map[*Node]bool {
	set := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}

// DeleteTree removes every node below n, leaving n terminal and outside any
// infoset. Infosets left without members are removed as well.
func (g *Game) DeleteTree(n *Node) error {
	if err := g.owns(n); err != nil {
		return err
	}
	if n.IsTerminal() {
		return nil
	}

	r := &removal{roots: n.Children()}
	gone := r.nodes()
	r.infosets = g.emptied(nodeSet(gone...), nodeSet(n))
	if err := g.notify(r); err != nil {
		return err
	}

	g.dropNodes(gone)
	if n.infoset != nil {
		n.infoset.dropMember(n)
		n.infoset = nil
	}
	n.children = nil
	g.dropInfosets(r.infosets)
	return nil
}

// RemoveAction deletes a from its infoset together with the subtree that
// follows a at every member.
func (g *Game) RemoveAction(a *Action) error {
	if err := g.owns(a); err != nil {
		return err
	}
	s := a.infoset
	if len(s.actions) == 1 {
		return fmt.Errorf("%w: %q", ErrLastMove, s.name)
	}
	idx := a.Number() - 1

	r := &removal{actions: []*Action{a}}
	for _, m := range s.members {
		r.roots = append(r.roots, m.children[idx])
	}
	gone := r.nodes()
	r.infosets = g.emptied(nodeSet(gone...), nil)
	if err := g.notify(r); err != nil {
		return err
	}

	g.dropNodes(gone)
	for _, m := range s.members {
		m.children = append(m.children[:idx], m.children[idx+1:]...)
	}
	a.removed = true
	delete(g.actions, a.id)
	s.actions = append(s.actions[:idx], s.actions[idx+1:]...)
	g.dropInfosets(r.infosets)
	return nil
}

// RemoveInfoset deletes s and its actions. Its members become terminal
// nodes and everything below them is removed.
func (g *Game) RemoveInfoset(s *Infoset) error {
	if err := g.owns(s); err != nil {
		return err
	}

	r := &removal{}
	for _, m := range s.members {
		r.roots = append(r.roots, m.children...)
	}
	gone := r.nodes()
	r.infosets = append(r.infosets, s)
	for _, e := range g.emptied(nodeSet(gone...), nodeSet(s.members...)) {
		if e != s {
			r.infosets = append(r.infosets, e)
		}
	}
	if err := g.notify(r); err != nil {
		return err
	}

	g.dropNodes(gone)
	for _, m := range s.Members() {
		m.children = nil
	}
	g.dropInfosets(r.infosets)
	return nil
}

// Discard invalidates the whole game. It fails with ErrInUse while any
// watcher pins it, or still refers to it after retracting its bindings.
func (g *Game) Discard() error {
	if g.discarded {
		return nil
	}
	if err := g.pinned(g.id); err != nil {
		return err
	}
	for _, w := range g.watchers {
		w.InvalidateAllBindingsFor(g)
	}
	for _, w := range g.watchers {
		if n := w.References(g.id); n > 0 {
			return fmt.Errorf("%w: %d live references to game %q", ErrInUse, n, g.title)
		}
	}
	g.discarded = true
	g.nodes = make(map[uuid.UUID]*Node)
	g.infosets = make(map[uuid.UUID]*Infoset)
	g.actions = make(map[uuid.UUID]*Action)
	return nil
}
