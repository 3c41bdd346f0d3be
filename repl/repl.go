// Copyright © 2024 The ELPS authors

// Package repl provides an interactive inspector for a finished
// reactor.  It is used by the CLI after an analysis run to explore the
// computed attributes and the accumulated errors.
//
// Commands:
//
//	attrs            list valued attributes with indices
//	get <index>      show the value of an attribute
//	node <index>     show every attribute of that attribute's node
//	errors           list root errors
//	all-errors       list all errors, including derived ones
//	report           dump the root error report
//	help             show this list
//	exit             leave the inspector
package repl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/reactor"
)

type config struct {
	stdin  io.ReadCloser
	stderr io.Writer
}

func newConfig(opts ...Option) *config {
	config := &config{stderr: os.Stderr}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the inspector.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the inspector.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// RunInspector runs an interactive query loop over r.  The
// printLocation function renders error locations, as for
// reactor.ReportErrors.
func RunInspector(r *reactor.Reactor, printLocation func(any) string, opts ...Option) {
	cfg := newConfig(opts...)

	rlCfg := &readline.Config{
		Stdout:            cfg.stderr,
		Stderr:            cfg.stderr,
		Prompt:            "reactor> ",
		HistorySearchFold: true,
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		panic(err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	i := &inspector{r: r, w: cfg.stderr, printLocation: printLocation}
	for {
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}
		if !i.dispatch(strings.Fields(string(line))) {
			return
		}
	}
}

type inspector struct {
	r             *reactor.Reactor
	w             io.Writer
	printLocation func(any) string
}

// dispatch runs one command, returning false to leave the loop.
func (i *inspector) dispatch(fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "exit", "quit":
		return false
	case "help":
		i.printf("commands: attrs, get <index>, node <index>, errors, all-errors, report, exit")
	case "attrs":
		for j, attr := range i.r.Attributes() {
			i.printf("%3d %v", j, attr)
		}
	case "get":
		if attr, ok := i.attrArg(fields); ok {
			i.printf("%v = %v", attr, i.r.Get(attr))
		}
	case "node":
		if attr, ok := i.attrArg(fields); ok {
			for _, entry := range i.r.GetAll(attr.Node) {
				i.printf("%v = %v", entry.Attr, entry.Value)
			}
		}
	case "errors":
		i.printErrors(i.r.Errors())
	case "all-errors":
		i.printErrors(i.r.AllErrors())
	case "report":
		i.printf("%s", i.r.ReportErrors(i.printLocation))
	default:
		i.printf("unknown command %q (try help)", fields[0])
	}
	return true
}

func (i *inspector) attrArg(fields []string) (reactor.Attribute, bool) {
	if len(fields) != 2 {
		i.printf("usage: %s <index>", fields[0])
		return reactor.Attribute{}, false
	}
	attrs := i.r.Attributes()
	j, err := strconv.Atoi(fields[1])
	if err != nil || j < 0 || j >= len(attrs) {
		i.printf("no attribute %q (see attrs)", fields[1])
		return reactor.Attribute{}, false
	}
	return attrs[j], true
}

func (i *inspector) printErrors(errs []*reactor.SemanticError) {
	if len(errs) == 0 {
		i.printf("no errors")
		return
	}
	for _, err := range errs {
		if loc := err.Location(); loc != nil {
			i.printf("%s (at %s)", err.Description, i.printLocation(loc))
			continue
		}
		i.printf("%s", err.Description)
	}
}

func (i *inspector) printf(format string, v ...any) {
	fmt.Fprintf(i.w, format+"\n", v...) //nolint:errcheck // best-effort REPL output
}
