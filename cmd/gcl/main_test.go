package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/gcl/internal/config"
	"github.com/funvibe/gcl/internal/transcript"
)

const program = `
functions:
  - name: Double
    params: [{name: x, type: number}]
    body: {call: Times, args: [{var: x}, 2]}
statements:
  - {assign: g, value: {call: NewGame, args: ["demo"]}}
  - {call: AppendMove, args: [{call: RootNode, args: [{var: g}]}, "P1", 3]}
  - {call: Length, args: [{call: Children, args: [{call: RootNode, args: [{var: g}]}]}]}
  - {call: Double, args: [21]}
  - {call: Plus, args: [{var: nowhere}, 1]}
  - {gassign: after, value: "still runs"}
`

func writeFiles(t *testing.T) (dir, prog, cfg string) {
	t.Helper()
	dir = t.TempDir()
	prog = filepath.Join(dir, "prog.yaml")
	cfg = filepath.Join(dir, "gcl.yaml")
	if err := os.WriteFile(prog, []byte(program), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg, []byte("color: never\ntranscript: session.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, prog, cfg
}

func TestRun(t *testing.T) {
	dir, prog, cfg := writeFiles(t)
	var out, errOut bytes.Buffer

	code := realMain([]string{"run", "-config", cfg, "-v", prog}, &out, &errOut)
	if code != 1 {
		t.Errorf("exit code = %d, want 1 for one failing statement", code)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{`(Game) "demo"`, `(Infoset) ""`, "3", "42", `"still runs"`}
	if len(lines) != len(want) {
		t.Fatalf("output:\n%s", out.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, lines[i], want[i])
		}
	}
	if !strings.Contains(errOut.String(), "undefined variable nowhere") {
		t.Errorf("stderr should report the failure:\n%s", errOut.String())
	}
	if strings.Contains(errOut.String(), "\x1b[") {
		t.Error("color: never must not colour diagnostics")
	}

	store, err := transcript.Open(context.Background(), filepath.Join(dir, "session.db"), "check")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	entries, err := store.SessionEntries(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 {
		t.Fatalf("transcript has %d entries, want 6", len(entries))
	}
	if entries[4].Err == "" || entries[5].Err != "" {
		t.Errorf("only the fifth statement failed: %+v", entries)
	}
	for _, e := range entries {
		if e.Depth != 1 {
			t.Errorf("statement %d left depth %d", e.Seq, e.Depth)
		}
	}
}

func TestTeardownFailureSetsExitCode(t *testing.T) {
	cfg := config.Default()
	cfg.Color = config.ColorNever
	cfg.Transcript = filepath.Join(t.TempDir(), "teardown.db")

	var out, errOut bytes.Buffer
	s, err := newSession(context.Background(), cfg, "teardown", &out, &errOut)
	if err != nil {
		t.Fatal(err)
	}
	// The store is closed behind the session's back, so its own close fails.
	if err := s.store.Close(); err != nil {
		t.Fatal(err)
	}

	if code := s.finish(0); code != 1 {
		t.Errorf("finish(0) = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "session teardown") {
		t.Errorf("teardown failure should be reported:\n%s", errOut.String())
	}

	clean, err := newSession(context.Background(), config.Default(), "clean", &out, &errOut)
	if err != nil {
		t.Fatal(err)
	}
	if code := clean.finish(0); code != 0 {
		t.Errorf("clean finish = %d, want 0", code)
	}
}

func TestUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := realMain(nil, &out, &errOut); code != 2 {
		t.Errorf("no arguments: exit %d", code)
	}
	if code := realMain([]string{"frobnicate"}, &out, &errOut); code != 2 {
		t.Errorf("unknown command: exit %d", code)
	}
	out.Reset()
	if code := realMain([]string{"version"}, &out, &errOut); code != 0 || !strings.HasPrefix(out.String(), "gcl ") {
		t.Errorf("version: exit %d, output %q", code, out.String())
	}
	if code := realMain([]string{"run"}, &out, &errOut); code != 2 {
		t.Errorf("run without a file: exit %d", code)
	}
}
