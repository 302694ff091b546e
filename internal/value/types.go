package value

import (
	"fmt"
	"strings"
)

// Type is a set of kinds a parameter or result accepts.
type Type uint32

func TypeOf(k Kind) Type { return 1 << k }

var (
	TNull    = TypeOf(KindNull)
	TBool    = TypeOf(KindBool)
	TInteger = TypeOf(KindInteger)
	TFloat   = TypeOf(KindFloat)
	TText    = TypeOf(KindText)
	TList    = TypeOf(KindList)
	TGame    = TypeOf(KindGame)
	TNode    = TypeOf(KindNode)
	TInfoset = TypeOf(KindInfoset)
	TAction  = TypeOf(KindAction)

	TNumber  = TInteger | TFloat
	TElement = TGame | TNode | TInfoset | TAction
	// TAny accepts every kind except an unresolved Ref.
	TAny = Type(1<<kindCount-1) &^ TypeOf(KindRef)
)

func (t Type) Has(k Kind) bool { return t&TypeOf(k) != 0 }

// Single reports whether t names exactly one kind.
func (t Type) Single() bool { return t != 0 && t&(t-1) == 0 }

func (t Type) String() string {
	switch t {
	case TAny:
		return "Any"
	case TNumber:
		return "Number"
	case 0:
		return "Nothing"
	}
	var parts []string
	for k := Kind(0); k < kindCount; k++ {
		if t.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "|")
}

var typeNames = map[string]Type{
	"null":    TNull,
	"bool":    TBool,
	"boolean": TBool,
	"integer": TInteger,
	"int":     TInteger,
	"float":   TFloat,
	"number":  TNumber,
	"text":    TText,
	"list":    TList,
	"game":    TGame,
	"node":    TNode,
	"infoset": TInfoset,
	"action":  TAction,
	"element": TElement,
	"any":     TAny,
}

// ParseType reads a type written as kind names joined by "|",
// e.g. "node|null" or "number".
func ParseType(s string) (Type, error) {
	var t Type
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		pt, ok := typeNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown type %q", part)
		}
		t |= pt
	}
	return t, nil
}
