package main

import (
	"context"
	"fmt"
	"io"

	"github.com/funvibe/gcl/internal/script"
)

// cmdRun executes every statement of a program file. A failing statement
// is reported and execution continues with the next one; the exit code is
// 1 when any statement failed or the session did not tear down cleanly.
func cmdRun(args []string, stdout, stderr io.Writer) (code int) {
	opts, rest, err := parseFlags("run", args, stderr)
	if err != nil {
		return exitCode(err)
	}
	if len(rest) != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	prog, err := script.Load(rest[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx := context.Background()
	s, err := newSession(ctx, cfg, rest[0], stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	s.echo = opts.echo
	defer func() { code = s.finish(code) }()

	if err := prog.Install(s.in); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	failed := 0
	for _, st := range prog.Statements {
		if _, err := s.exec(ctx, st); err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d statements failed\n", failed, len(prog.Statements))
		return 1
	}
	return 0
}
