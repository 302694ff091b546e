package scope

import (
	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/value"
)

// Frame is one nested evaluation context: an operand stack, the bindings
// of the invocation and the name of the function that opened it.
type Frame struct {
	Function string
	Bindings *Table
	operands []value.Value
	stack    *Stack
}

// Push stores v on the operand stack and acquires its identities.
func (f *Frame) Push(v value.Value) {
	if v == nil {
		v = value.Null{}
	}
	f.stack.refs.AcquireValue(v)
	f.operands = append(f.operands, v)
}

// Pop removes the top operand and releases it. The caller owns the result.
func (f *Frame) Pop() (value.Value, bool) {
	if len(f.operands) == 0 {
		return nil, false
	}
	v := f.operands[len(f.operands)-1]
	f.operands[len(f.operands)-1] = nil
	f.operands = f.operands[:len(f.operands)-1]
	f.stack.refs.ReleaseValue(v)
	return v, true
}

func (f *Frame) Peek() (value.Value, bool) {
	if len(f.operands) == 0 {
		return nil, false
	}
	return f.operands[len(f.operands)-1], true
}

func (f *Frame) Height() int { return len(f.operands) }

// Truncate pops operands until the stack is h high.
func (f *Frame) Truncate(h int) {
	for len(f.operands) > h {
		f.Pop()
	}
}

func (f *Frame) teardown() {
	f.Truncate(0)
	f.Bindings.clear()
}

func newFrame(function string, s *Stack) *Frame {
	return &Frame{
		Function: function,
		Bindings: newTable(function, s),
		operands: make([]value.Value, 0, config.InitialOperandCount),
		stack:    s,
	}
}
