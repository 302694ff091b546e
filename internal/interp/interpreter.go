// Package interp is the execution engine of the command language.
//
// An Interpreter owns a frame stack, a function registry and a reference
// counter for the external game objects its values point at. Game owners
// notify it before destructive edits so that no binding is left holding a
// handle into a removed part of a game.
//
// An Interpreter is not safe for concurrent use.
package interp

import (
	"log/slog"

	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/refcount"
	"github.com/funvibe/gcl/internal/scope"
)

type Interpreter struct {
	cfg   *config.Config
	log   *slog.Logger
	refs  *refcount.Registry
	stack *scope.Stack
	funcs map[string][]*Descriptor
}

// New creates an interpreter. A nil cfg selects config.Default() and a nil
// log selects slog.Default().
func New(cfg *config.Config, log *slog.Logger) *Interpreter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	refs := refcount.New(log)
	return &Interpreter{
		cfg:   cfg,
		log:   log,
		refs:  refs,
		stack: scope.NewStack(refs, cfg.MaxCallDepth, log),
		funcs: make(map[string][]*Descriptor),
	}
}

// Close drops every binding and function. It reports reference counts
// that survived the teardown, which would mean a slot leaked.
func (in *Interpreter) Close() error {
	in.stack.Clear()
	in.funcs = make(map[string][]*Descriptor)
	return in.refs.Close()
}

func (in *Interpreter) Logger() *slog.Logger { return in.log }

func (in *Interpreter) Config() *config.Config { return in.cfg }

// Depth is the number of live call frames, the top-level frame included.
func (in *Interpreter) Depth() int { return in.stack.Depth() }

// UserFuncName returns the innermost user function being executed, or ""
// at top level.
func (in *Interpreter) UserFuncName() string {
	if in.stack.Depth() == 1 {
		return ""
	}
	return in.stack.Top().Function
}
