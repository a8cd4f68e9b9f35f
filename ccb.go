// Package ccb wires the four pipeline stages together: Interpret runs a
// source string to completion, returning the first error from whichever
// stage produced one, matching spec.md §5's synchronous, single-shot
// contract.
package ccb

import (
	"fmt"
	"io"
	"strings"

	"github.com/wudi/ccb/ast"
	"github.com/wudi/ccb/compiler"
	"github.com/wudi/ccb/internal/ccblog"
	"github.com/wudi/ccb/internal/config"
	"github.com/wudi/ccb/lexer"
	"github.com/wudi/ccb/parser"
	"github.com/wudi/ccb/vm"
)

// CompileOnly runs the lexer/parser/compiler stages and returns the parsed
// tree alongside the resulting Result without executing it, for
// "-dump-ast"/"-dump-chunk".
func CompileOnly(source string) (*ast.Program, *compiler.Result, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors) > 0 {
		return prog, nil, p.Errors[0]
	}
	result, err := compiler.Compile(prog)
	if err != nil {
		return prog, nil, err
	}
	return prog, result, nil
}

// Options configures one Interpret call.
type Options struct {
	Limits config.Limits
	Tracer *ccblog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

// Interpret lexes, parses, compiles, and runs source, returning the
// per-opcode execution counts of the run.
func Interpret(source string, opts Options) (map[string]int, error) {
	_, result, err := CompileOnly(source)
	if err != nil {
		return nil, err
	}

	lim := opts.Limits
	if lim.StackSize == 0 {
		lim.StackSize = config.Default().StackSize
	}
	if lim.FrameStackSize == 0 {
		lim.FrameStackSize = config.Default().FrameStackSize
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	m := vm.New(lim, stdout, stdin, opts.Tracer)
	if err := m.Run(result.Chunk); err != nil {
		return nil, err
	}

	profile := make(map[string]int, len(m.Profile()))
	for op, n := range m.Profile() {
		profile[fmt.Sprint(op)] = n
	}
	return profile, nil
}
