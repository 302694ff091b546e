package interp

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

// The owner of a game calls these before a destructive edit. Each one
// retracts, from the global table and every live frame, the bindings whose
// values depend on what is about to go, and returns how many it retracted.

// NotifyElementRemoved retracts bindings that depend on one element.
// Removing an infoset also removes its actions; removing a game is the same
// as InvalidateAllBindingsFor.
func (in *Interpreter) NotifyElementRemoved(g value.Graph, kind value.Kind, id uuid.UUID) int {
	switch kind {
	case value.KindGame:
		return in.InvalidateAllBindingsFor(g)
	case value.KindInfoset:
		ids := append([]uuid.UUID{id}, g.ActionsOf(id)...)
		return in.retract(g, "infoset removed", ids)
	default:
		return in.retract(g, kind.String()+" removed", []uuid.UUID{id})
	}
}

// NotifySubtreeRemoved retracts bindings that depend on root or any node
// below it.
func (in *Interpreter) NotifySubtreeRemoved(g value.Graph, root uuid.UUID) int {
	ids := g.Subtree(root)
	if len(ids) == 0 {
		ids = []uuid.UUID{root}
	}
	return in.retract(g, "subtree removed", ids)
}

// InvalidateAllBindingsFor retracts every binding that depends on any part
// of g.
func (in *Interpreter) InvalidateAllBindingsFor(g value.Graph) int {
	return in.retract(g, "game discarded", []uuid.UUID{g.ElementID()})
}

// References returns how many interpreter slots currently refer to id.
// Zero means the owner may destroy the object.
func (in *Interpreter) References(id uuid.UUID) int {
	return in.refs.Count(id)
}

// Pinned returns the references to id that retraction cannot release:
// operands of calls still in progress. An owner refuses an edit while any
// element it removes is pinned.
func (in *Interpreter) Pinned(id uuid.UUID) int {
	return in.refs.Count(id) - in.stack.Bound(id)
}

func (in *Interpreter) retract(g value.Graph, reason string, ids []uuid.UUID) int {
	n := in.stack.Retract(ids...)
	in.log.Debug("retract bindings",
		slog.String("reason", reason),
		slog.String("game", g.Label()),
		slog.Int("elements", len(ids)),
		slog.Int("bindings", n))
	return n
}
