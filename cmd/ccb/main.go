// Command ccb is the CLI entry point for the CCB toolchain: it reads a
// ".ccb" source file, compiles it, and runs it (spec.md §6). Its own
// argument parsing, diagnostic coloring, and REPL are deliberately outside
// the specified core (spec.md §1) but follow the teacher's own CLI shape.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/wudi/ccb"
	"github.com/wudi/ccb/ast"
	"github.com/wudi/ccb/internal/ccblog"
	"github.com/wudi/ccb/internal/config"
	"github.com/wudi/ccb/internal/diag"
	"github.com/wudi/ccb/internal/disasm"
	"github.com/wudi/ccb/version"
)

var errColor = color.New(color.FgRed)

func init() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		errColor.DisableColor()
	}
}

func main() {
	app := &cli.Command{
		Name:  "ccb",
		Usage: "lex, compile, and run CCB source files",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "trace", Usage: "log one line per executed instruction"},
			&cli.BoolFlag{Name: "dump-ast", Usage: "print the parsed tree instead of running it"},
			&cli.BoolFlag{Name: "dump-chunk", Usage: "print the disassembled chunk instead of running it"},
			&cli.StringFlag{Name: "config", Usage: "path to a YAML file of VM limits"},
			&cli.BoolFlag{Name: "version", Aliases: []string{"v"}, Usage: "show version"},
		},
		Commands: []*cli.Command{
			replCommand,
			{
				Name:      "run",
				Usage:     "compile and run a .ccb source file (default action)",
				ArgsUsage: "PATH",
				Action:    runFile,
			},
		},
		Action: runFile,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		printError(err)
		os.Exit(exitCodeFor(err))
	}
}

func runFile(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("version") {
		fmt.Println(version.Version())
		return nil
	}

	path := cmd.Args().First()
	if path == "" {
		return usageError{"usage: ccb [flags] PATH"}
	}
	if !strings.EqualFold(extOf(path), ".ccb") {
		return usageError{fmt.Sprintf("%s: source file must have a .ccb extension", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return usageError{err.Error()}
	}
	source := string(data)

	lim := config.Default()
	if cfgPath := cmd.String("config"); cfgPath != "" {
		lim, err = config.Load(cfgPath)
		if err != nil {
			return usageError{err.Error()}
		}
	}

	if cmd.Bool("dump-ast") || cmd.Bool("dump-chunk") {
		prog, result, err := ccb.CompileOnly(source)
		if err != nil {
			return err
		}
		if cmd.Bool("dump-ast") {
			ast.Print(os.Stdout, prog)
		}
		if cmd.Bool("dump-chunk") {
			disasm.Chunk(os.Stdout, result.Chunk)
			fmt.Println("# globals")
			disasm.Globals(os.Stdout, result.GlobalNames)
		}
		return nil
	}

	tracer := ccblog.New(os.Stderr, cmd.Bool("trace"))
	_, err = ccb.Interpret(source, ccb.Options{
		Limits: lim,
		Tracer: tracer,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	})
	return err
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

// usageError marks argument/IO errors, which exit 1 per spec.md §6.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func exitCodeFor(err error) int {
	if _, ok := err.(usageError); ok {
		return 1
	}
	return diag.ExitCode(err)
}

func printError(err error) {
	errColor.Fprintf(os.Stderr, "%s\n", err.Error())
}
