package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/funvibe/gcl/internal/config"
)

const usage = `usage:
  gcl run [-config file] [-transcript file] [-v] program.yaml
  gcl repl [-config file] [-transcript file]
  gcl version
`

type options struct {
	configPath string
	transcript string
	echo       bool
}

func main() {
	// Report panics as internal errors unless DEBUG=1
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch args[0] {
	case "run":
		return cmdRun(args[1:], stdout, stderr)
	case "repl":
		return cmdRepl(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "gcl %s\n", config.Version)
		return 0
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	}
	fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
	return 2
}

func parseFlags(name string, args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default: nearest gcl.yaml)")
	fs.StringVar(&opts.transcript, "transcript", "", "record executed statements in this SQLite file")
	if name == "run" {
		fs.BoolVar(&opts.echo, "v", false, "print the value of every statement")
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

// loadConfig reads the configuration named by opts, or the nearest
// gcl.yaml above the working directory, or the defaults.
func loadConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.transcript != "" {
		cfg.Transcript = opts.transcript
	}
	return cfg, nil
}

func exitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}
