package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindText
	KindList
	KindRef
	KindGame
	KindNode
	KindInfoset
	KindAction
	kindCount
)

var kindNames = [kindCount]string{
	KindNull:    "Null",
	KindBool:    "Bool",
	KindInteger: "Integer",
	KindFloat:   "Float",
	KindText:    "Text",
	KindList:    "List",
	KindRef:     "Ref",
	KindGame:    "Game",
	KindNode:    "Node",
	KindInfoset: "Infoset",
	KindAction:  "Action",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsElement reports whether values of this kind wrap an external game object.
func (k Kind) IsElement() bool {
	return k >= KindGame && k <= KindAction
}

// Value is a runtime datum of the command language.
type Value interface {
	Kind() Kind
	Inspect() string
}

// Element is an external game object (a game, node, infoset or action)
// that a Handle can reference. The interpreter never owns elements.
type Element interface {
	ElementID() uuid.UUID
	// GameID is the identity of the owning game; a game returns its own ID.
	GameID() uuid.UUID
	ElementKind() Kind
	Label() string
	// Valid turns false once the owner has removed the element.
	Valid() bool
}

// Graph is a game seen from the interpreter: an element that can describe
// the structural regions an edit is about to remove.
type Graph interface {
	Element
	// Subtree returns root and every node below it.
	Subtree(root uuid.UUID) []uuid.UUID
	ActionsOf(infoset uuid.UUID) []uuid.UUID
}

type Null struct{}

type Bool struct{ Value bool }

type Integer struct{ Value int64 }

type Float struct{ Value float64 }

type Text struct{ Value string }

type List struct{ Elems []Value }

// Ref is an identifier pushed unresolved; it is looked up at first use.
type Ref struct {
	Name   string
	Global bool
}

// Handle wraps a reference to an external game object.
type Handle struct{ Elem Element }

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Integer) Kind() Kind { return KindInteger }
func (Float) Kind() Kind   { return KindFloat }
func (Text) Kind() Kind    { return KindText }
func (List) Kind() Kind    { return KindList }
func (Ref) Kind() Kind     { return KindRef }
func (h Handle) Kind() Kind {
	if h.Elem == nil {
		return KindNull
	}
	return h.Elem.ElementKind()
}

func (Null) Inspect() string      { return "Null" }
func (b Bool) Inspect() string    { return strconv.FormatBool(b.Value) }
func (i Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }
func (f Float) Inspect() string   { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (t Text) Inspect() string    { return strconv.Quote(t.Value) }

func (l List) Inspect() string {
	var out strings.Builder
	out.WriteString("{")
	for i, e := range l.Elems {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(e.Inspect())
	}
	out.WriteString("}")
	return out.String()
}

func (r Ref) Inspect() string {
	if r.Global {
		return "<->$" + r.Name
	}
	return "<->" + r.Name
}

func (h Handle) Inspect() string {
	if h.Elem == nil {
		return "Null"
	}
	if !h.Elem.Valid() {
		return fmt.Sprintf("(%s) <removed>", h.Elem.ElementKind())
	}
	return fmt.Sprintf("(%s) %q", h.Elem.ElementKind(), h.Elem.Label())
}

// Constructors

func NewInteger(v int64) Value       { return Integer{Value: v} }
func NewFloat(v float64) Value       { return Float{Value: v} }
func NewText(v string) Value         { return Text{Value: v} }
func NewBool(v bool) Value           { return Bool{Value: v} }
func NewList(vs ...Value) Value      { return List{Elems: vs} }
func NewHandle(e Element) Value      { return Handle{Elem: e} }
func NewRef(name string) Value       { return Ref{Name: name} }
func NewGlobalRef(name string) Value { return Ref{Name: name, Global: true} }

// Deps returns the external identities v depends on, without duplicates.
// A handle depends on its element and on the owning game; a list depends
// on everything its elements depend on.
func Deps(v Value) []uuid.UUID {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	collectDeps(v, seen, &ids)
	return ids
}

func collectDeps(v Value, seen map[uuid.UUID]bool, ids *[]uuid.UUID) {
	switch v := v.(type) {
	case Handle:
		if v.Elem == nil {
			return
		}
		for _, id := range [2]uuid.UUID{v.Elem.ElementID(), v.Elem.GameID()} {
			if !seen[id] {
				seen[id] = true
				*ids = append(*ids, id)
			}
		}
	case List:
		for _, e := range v.Elems {
			collectDeps(e, seen, ids)
		}
	}
}

// Stale returns the first removed element v refers to.
func Stale(v Value) (Element, bool) {
	switch v := v.(type) {
	case Handle:
		if v.Elem != nil && !v.Elem.Valid() {
			return v.Elem, true
		}
	case List:
		for _, e := range v.Elems {
			if el, ok := Stale(e); ok {
				return el, true
			}
		}
	}
	return nil, false
}

// Equal compares two values. Integers and floats compare numerically and
// handles compare by element identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a.Value == bb.Value
	case Integer:
		switch bb := b.(type) {
		case Integer:
			return a.Value == bb.Value
		case Float:
			return float64(a.Value) == bb.Value
		}
	case Float:
		switch bb := b.(type) {
		case Integer:
			return a.Value == float64(bb.Value)
		case Float:
			return a.Value == bb.Value
		}
	case Text:
		bb, ok := b.(Text)
		return ok && a.Value == bb.Value
	case List:
		bb, ok := b.(List)
		if !ok || len(a.Elems) != len(bb.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], bb.Elems[i]) {
				return false
			}
		}
		return true
	case Ref:
		bb, ok := b.(Ref)
		return ok && a == bb
	case Handle:
		bb, ok := b.(Handle)
		if !ok || a.Elem == nil || bb.Elem == nil {
			return ok && a.Elem == nil && bb.Elem == nil
		}
		return a.Elem.ElementID() == bb.Elem.ElementID()
	}
	return false
}
