package scope

import (
	"sort"

	"github.com/google/uuid"

	"github.com/funvibe/gcl/internal/value"
)

// Binding is one identifier bound inside exactly one Table.
type Binding struct {
	Name  string
	Value value.Value
	table *Table
	deps  []uuid.UUID
}

func (b *Binding) Table() *Table { return b.table }

// Table maps identifiers to values for one scope. Every store acquires the
// value's external identities and every removal releases them.
type Table struct {
	label   string
	entries map[string]*Binding
	stack   *Stack
}

func newTable(label string, s *Stack) *Table {
	return &Table{label: label, entries: make(map[string]*Binding), stack: s}
}

func (t *Table) Label() string { return t.label }

// Define binds name to v. A previous binding is released before the new
// one is installed; it is returned with true.
func (t *Table) Define(name string, v value.Value) (value.Value, bool) {
	if v == nil {
		v = value.Null{}
	}
	prev, had := t.Remove(name)

	b := &Binding{Name: name, Value: v, table: t, deps: value.Deps(v)}
	for _, id := range b.deps {
		t.stack.refs.Acquire(id)
		t.stack.subscribe(id, b)
	}
	t.entries[name] = b
	return prev, had
}

func (t *Table) Lookup(name string) (value.Value, bool) {
	b, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	return b.Value, true
}

func (t *Table) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Remove unbinds name and releases its value.
func (t *Table) Remove(name string) (value.Value, bool) {
	b, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	delete(t.entries, name)
	for _, id := range b.deps {
		t.stack.unsubscribe(id, b)
		t.stack.refs.Release(id)
	}
	return b.Value, true
}

func (t *Table) Len() int { return len(t.entries) }

// Names returns the bound identifiers in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) clear() {
	for _, name := range t.Names() {
		t.Remove(name)
	}
}
