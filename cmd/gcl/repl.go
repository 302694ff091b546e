package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/script"
)

const historyFile = ".gcl_history"

const replHelp = `Enter one expression per line in YAML flow syntax, for example
  {assign: g, value: {call: NewGame, args: ["demo"]}}
Commands:
  :vars         list scoped and global variables
  :funcs        list registered functions
  :help NAME    show the signatures of NAME
  :clear        drop every variable
  :quit         leave
`

func cmdRepl(args []string, stdout, stderr io.Writer) (code int) {
	opts, _, err := parseFlags("repl", args, stderr)
	if err != nil {
		return exitCode(err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx := context.Background()
	s, err := newSession(ctx, cfg, "repl", stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	s.echo = true
	defer func() { code = s.finish(code) }()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(stdout, "GCL %s. Type :help for help.\n", config.Version)
	for n := 1; ; {
		line, err := ln.Prompt(fmt.Sprintf("GCL%d:= ", n))
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(stdout)
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if quit := s.command(line); quit {
				return 0
			}
			continue
		}

		node, err := script.ParseNode(line)
		if err != nil {
			s.report(err)
			continue
		}
		s.exec(ctx, node)
		n++
	}
}

// command handles a REPL command line and reports whether to quit.
func (s *session) command(line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q":
		return true
	case ":vars":
		for _, name := range s.in.Names() {
			v, _ := s.in.ValueOf(name)
			fmt.Fprintf(s.out, "%s = %s\n", name, v.Inspect())
		}
		for _, name := range s.in.GlobalNames() {
			v, _ := s.in.GlobalValueOf(name)
			fmt.Fprintf(s.out, "$%s = %s\n", name, v.Inspect())
		}
	case ":funcs":
		fmt.Fprintln(s.out, strings.Join(s.in.Functions(), " "))
	case ":help":
		if len(fields) < 2 {
			fmt.Fprint(s.out, replHelp)
			break
		}
		sigs := s.in.Help(fields[1])
		if len(sigs) == 0 {
			fmt.Fprintf(s.out, "no function named %s\n", fields[1])
		}
		for _, sig := range sigs {
			fmt.Fprintln(s.out, sig)
		}
	case ":clear":
		s.in.Clear()
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for help.\n", fields[0])
	}
	return false
}
