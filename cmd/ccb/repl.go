package main

import (
	"context"
	"errors"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/wudi/ccb/compiler"
	"github.com/wudi/ccb/internal/ccblog"
	"github.com/wudi/ccb/internal/config"
	"github.com/wudi/ccb/lexer"
	"github.com/wudi/ccb/parser"
	"github.com/wudi/ccb/vm"
)

var (
	promptColor = color.New(color.FgCyan)
	bannerColor = color.New(color.FgGreen)
)

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "start an interactive read-compile-run loop",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runRepl(cmd.Bool("trace"))
	},
}

// runRepl reads one line at a time, compiling and running it against a
// persistent compiler and VM so "let"/"fn" definitions accumulate across
// lines (SPEC_FULL.md §2.3). It is supplemental tooling layered on top of
// the core pipeline, not part of spec.md's specified CLI surface.
func runRepl(trace bool) error {
	bannerColor.Println("ccb repl -- Ctrl-D to exit")

	rl, err := readline.New(promptColor.Sprint("ccb> "))
	if err != nil {
		return err
	}
	defer rl.Close()

	c := compiler.New()
	tracer := ccblog.New(rl.Stderr(), trace)
	// "in" statements read from os.Stdin directly rather than through rl:
	// readline owns the terminal only for prompt line editing, not for the
	// program's own blocking reads.
	m := vm.New(config.Default(), rl.Stdout(), os.Stdin, tracer)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil // io.EOF: Ctrl-D
		}
		if line == "" {
			continue
		}

		l := lexer.New(line)
		p := parser.New(l)
		prog := p.ParseProgram()
		if len(p.Errors) > 0 {
			errColor.Fprintln(rl.Stderr(), p.Errors[0].Error())
			continue
		}

		start, err := c.CompileIncrement(prog)
		if err != nil {
			errColor.Fprintln(rl.Stderr(), err.Error())
			continue
		}
		if err := m.RunFrom(c.Snapshot().Chunk, start); err != nil {
			errColor.Fprintln(rl.Stderr(), err.Error())
		}
	}
}
