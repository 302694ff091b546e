// Package scope implements binding tables, call frames and the frame stack.
//
// All frames live in one slice. The bottom frame is the top-level frame and
// is never popped; the global table belongs to the stack itself and is
// reachable at every depth. The stack also keeps an index from external
// identities to the bindings that depend on them, so retracting the
// bindings affected by a game edit never walks unrelated scopes.
package scope

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/refcount"
)

var ErrDepthExceeded = errors.New("maximum call depth exceeded")

// InvariantError reports a corrupted frame stack.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "frame stack invariant violated: " + e.Message
}

type Stack struct {
	frames   []*Frame
	global   *Table
	refs     *refcount.Registry
	index    map[uuid.UUID]map[*Binding]struct{}
	maxDepth int
	log      *slog.Logger
}

// NewStack creates a stack holding only the top-level frame.
// maxDepth bounds Depth(); zero selects config.DefaultMaxCallDepth.
func NewStack(refs *refcount.Registry, maxDepth int, log *slog.Logger) *Stack {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxCallDepth
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Stack{
		frames:   make([]*Frame, 0, config.InitialFrameCount),
		refs:     refs,
		index:    make(map[uuid.UUID]map[*Binding]struct{}),
		maxDepth: maxDepth,
		log:      log,
	}
	s.global = newTable(config.GlobalTableName, s)
	s.frames = append(s.frames, newFrame(config.TopLevelFrameName, s))
	return s
}

// Push opens a frame for function. It fails with ErrDepthExceeded when the
// stack is already at its limit.
func (s *Stack) Push(function string) (*Frame, error) {
	if len(s.frames) >= s.maxDepth {
		return nil, fmt.Errorf("%w (%d) calling %s", ErrDepthExceeded, s.maxDepth, function)
	}
	f := newFrame(function, s)
	s.frames = append(s.frames, f)
	s.log.Debug("push stack frame",
		slog.String("function", function),
		slog.Int("stack-size", len(s.frames)))
	return f, nil
}

// Pop closes f, releasing its operands and bindings. f must be the top
// frame and must not be the top-level frame.
func (s *Stack) Pop(f *Frame) {
	top := len(s.frames) - 1
	if top == 0 || s.frames[top] != f {
		err := &InvariantError{Message: fmt.Sprintf("pop of %q is not the innermost frame", f.Function)}
		s.log.Error(err.Error(), slog.Int("stack-size", len(s.frames)))
		panic(err)
	}
	f.teardown()
	s.frames[top] = nil
	s.frames = s.frames[:top]
	s.log.Debug("pop stack frame",
		slog.String("function", f.Function),
		slog.Int("stack-size", len(s.frames)))
}

// Unwind pops frames until the stack is depth frames deep.
func (s *Stack) Unwind(depth int) {
	if depth < 1 {
		depth = 1
	}
	for len(s.frames) > depth {
		s.Pop(s.frames[len(s.frames)-1])
	}
}

// Depth counts frames, the top-level frame included.
func (s *Stack) Depth() int { return len(s.frames) }

func (s *Stack) MaxDepth() int { return s.maxDepth }

func (s *Stack) Top() *Frame { return s.frames[len(s.frames)-1] }

func (s *Stack) Bottom() *Frame { return s.frames[0] }

func (s *Stack) Global() *Table { return s.global }

// Functions returns frame names from the bottom of the stack up.
func (s *Stack) Functions() []string {
	names := make([]string, len(s.frames))
	for i, f := range s.frames {
		names[i] = f.Function
	}
	return names
}

// Tables returns the global table followed by every frame's table, bottom up.
func (s *Stack) Tables() []*Table {
	tables := make([]*Table, 0, len(s.frames)+1)
	tables = append(tables, s.global)
	for _, f := range s.frames {
		tables = append(tables, f.Bindings)
	}
	return tables
}

// Dependents returns the live bindings whose values depend on any of ids,
// ordered by table (global first, then bottom up) and name.
func (s *Stack) Dependents(ids ...uuid.UUID) []*Binding {
	set := make(map[*Binding]struct{})
	for _, id := range ids {
		for b := range s.index[id] {
			set[b] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}

	order := make(map[*Table]int)
	for i, t := range s.Tables() {
		order[t] = i
	}
	out := make([]*Binding, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := order[out[i].table], order[out[j].table]
		if ti != tj {
			return ti < tj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Retract removes every binding that depends on any of ids and returns how
// many were removed.
func (s *Stack) Retract(ids ...uuid.UUID) int {
	n := 0
	for _, b := range s.Dependents(ids...) {
		if cur, ok := b.table.entries[b.Name]; ok && cur == b {
			b.table.Remove(b.Name)
			n++
		}
	}
	return n
}

// Clear empties the global table and every frame. Frames above the
// top-level frame are popped.
func (s *Stack) Clear() {
	s.Unwind(1)
	s.frames[0].teardown()
	s.global.clear()
}

func (s *Stack) subscribe(id uuid.UUID, b *Binding) {
	set, ok := s.index[id]
	if !ok {
		set = make(map[*Binding]struct{})
		s.index[id] = set
	}
	set[b] = struct{}{}
}

func (s *Stack) unsubscribe(id uuid.UUID, b *Binding) {
	set, ok := s.index[id]
	if !ok {
		return
	}
	delete(set, b)
	if len(set) == 0 {
		delete(s.index, id)
	}
}

// Bound returns how many live bindings depend on id. Each holds exactly
// one reference to it.
func (s *Stack) Bound(id uuid.UUID) int { return len(s.index[id]) }

// Subscriptions returns the number of identities with dependent bindings.
func (s *Stack) Subscriptions() int { return len(s.index) }
