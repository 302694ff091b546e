// Package refcount counts how many interpreter slots reference each
// external game object.
//
// A count of zero for an identity means no binding, operand or composite
// value held by the interpreter refers to it, which is what authorizes the
// owner to destroy the object.
package refcount

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

// InvariantError reports a count that would go negative. It indicates a bug
// in the interpreter rather than in the program being run.
type InvariantError struct {
	ID    uuid.UUID
	Count int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("reference count for %s would drop below zero (count %d)", e.ID, e.Count)
}

// Registry is an owned table of reference counts. It is not safe for
// concurrent use.
type Registry struct {
	counts map[uuid.UUID]int
	log    *slog.Logger
}

func New(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{counts: make(map[uuid.UUID]int), log: log}
}

func (r *Registry) Acquire(id uuid.UUID) int {
	r.counts[id]++
	return r.counts[id]
}

// Release decrements the count for id and returns the new count.
// It panics with *InvariantError if the count is already zero.
func (r *Registry) Release(id uuid.UUID) int {
	n, ok := r.counts[id]
	if !ok || n <= 0 {
		err := &InvariantError{ID: id, Count: n}
		r.log.Error("refcount invariant violated", slog.String("id", id.String()), slog.Int("count", n))
		panic(err)
	}
	n--
	if n == 0 {
		delete(r.counts, id)
	} else {
		r.counts[id] = n
	}
	return n
}

func (r *Registry) Count(id uuid.UUID) int {
	return r.counts[id]
}

// Live returns the number of identities with a nonzero count.
func (r *Registry) Live() int {
	return len(r.counts)
}

// AcquireValue acquires every identity v depends on.
func (r *Registry) AcquireValue(v value.Value) {
	for _, id := range value.Deps(v) {
		r.Acquire(id)
	}
}

// ReleaseValue releases every identity v depends on.
func (r *Registry) ReleaseValue(v value.Value) {
	for _, id := range value.Deps(v) {
		r.Release(id)
	}
}

// Close drops all counts. It reports the identities that were still
// referenced, which means some slot was never released.
func (r *Registry) Close() error {
	if len(r.counts) == 0 {
		return nil
	}
	leaked := make([]string, 0, len(r.counts))
	for id, n := range r.counts {
		leaked = append(leaked, fmt.Sprintf("%s=%d", id, n))
	}
	sort.Strings(leaked)
	r.counts = make(map[uuid.UUID]int)
	return fmt.Errorf("%d identities still referenced: %v", len(leaked), leaked)
}
