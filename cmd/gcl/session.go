package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/gcl/internal/ast"
	"github.com/funvibe/gcl/internal/builtins"
	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/transcript"
	"github.com/funvibe/gcl/internal/value"
)

// session is one interpreter with its builtins, output streams and
// optional transcript.
type session struct {
	in     *interp.Interpreter
	store  *transcript.Store
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer
	color  bool
	echo   bool
}

func newSession(ctx context.Context, cfg *config.Config, source string, out, errOut io.Writer) (*session, error) {
	log := cfg.Logger(errOut)
	in := interp.New(cfg, log)
	if err := builtins.Register(in); err != nil {
		return nil, err
	}

	s := &session{
		in:     in,
		log:    log,
		out:    out,
		errOut: errOut,
		color:  useColor(cfg.Color, errOut),
	}
	if cfg.Transcript != "" {
		store, err := transcript.Open(ctx, cfg.Transcript, source)
		if err != nil {
			return nil, err
		}
		s.store = store
		log.Info("transcript session started",
			slog.String("path", cfg.Transcript),
			slog.Int64("session", store.Session()))
	}
	return s, nil
}

// exec runs one top-level statement, reports a failure on errOut and
// records the outcome.
func (s *session) exec(ctx context.Context, node ast.Node) (value.Value, error) {
	v, err := s.in.Execute(node, false)

	entry := transcript.Entry{Statement: node.String(), Depth: s.in.Depth()}
	if err != nil {
		entry.Err = err.Error()
		s.report(err)
	} else {
		entry.Result = v.Inspect()
		if s.echo {
			fmt.Fprintln(s.out, v.Inspect())
		}
	}

	if s.store != nil {
		if _, rerr := s.store.Record(ctx, entry); rerr != nil {
			s.log.Warn("transcript write failed", slog.String("error", rerr.Error()))
		}
	}
	return v, err
}

func (s *session) report(err error) {
	msg := err.Error()
	var rtErr *interp.Error
	if errors.As(err, &rtErr) {
		msg = rtErr.Trace()
	}
	if s.color {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(s.errOut, msg)
}

func (s *session) close() error {
	err := s.in.Close()
	if err != nil {
		s.log.Error("interpreter teardown", slog.String("error", err.Error()))
	}
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// finish closes the session. A teardown failure is reported and turns a
// successful exit code into 1.
func (s *session) finish(code int) int {
	if err := s.close(); err != nil {
		s.report(fmt.Errorf("session teardown: %w", err))
		if code == 0 {
			return 1
		}
	}
	return code
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
