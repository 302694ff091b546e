package interp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies language-level runtime errors.
type ErrorKind int

const (
	UnresolvedIdentifier ErrorKind = iota
	TypeMismatch
	OverloadUnresolved
	OverloadAmbiguous
	StackUnderflow
	StaleReference
	DepthExceeded
	NativeFailure
)

var errorKindNames = map[ErrorKind]string{
	UnresolvedIdentifier: "unresolved identifier",
	TypeMismatch:         "type mismatch",
	OverloadUnresolved:   "unresolved call",
	OverloadAmbiguous:    "ambiguous call",
	StackUnderflow:       "stack underflow",
	StaleReference:       "stale reference",
	DepthExceeded:        "call depth exceeded",
	NativeFailure:        "runtime error",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Registry errors
var (
	ErrConflict          = errors.New("function already defined with this signature")
	ErrNotFound          = errors.New("function not found")
	ErrInvalidDescriptor = errors.New("invalid function descriptor")
)

// Error is a recoverable runtime error. It aborts the current statement and
// carries the function names active when it was raised.
type Error struct {
	Kind       ErrorKind
	Message    string
	StackTrace []string
	cause      error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Trace renders the error followed by the active functions, innermost first.
func (e *Error) Trace() string {
	var out strings.Builder
	out.WriteString(e.Error())
	for i := len(e.StackTrace) - 1; i >= 0; i-- {
		out.WriteString("\n  in ")
		out.WriteString(e.StackTrace[i])
	}
	return out.String()
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func (in *Interpreter) newError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, a...),
		StackTrace: in.stack.Functions(),
	}
}

func (in *Interpreter) wrapError(kind ErrorKind, cause error, format string, a ...interface{}) *Error {
	e := in.newError(kind, format, a...)
	e.Message += ": " + cause.Error()
	e.cause = cause
	return e
}
