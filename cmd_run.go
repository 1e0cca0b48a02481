package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"locks/builtin"
	"locks/interpreter"
)

// runCmd executes a source file directly on the tree-walking
// interpreter: lex, parse, analyze, then walk the AST for effect.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Run a Locks source file with the tree-walking interpreter" }
func (*runCmd) Usage() string {
	return `run <file>:
  Execute a Locks source file directly, without compiling to bytecode.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 no source file provided")
		return subcommands.ExitStatus(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %q: %v\n", args[0], err)
		return subcommands.ExitStatus(1)
	}

	stmts, err := frontend(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(-1)
	}

	runCtx := &builtin.Context{Out: os.Stdout, In: bufio.NewReader(os.Stdin)}
	if err := interpreter.New(runCtx).Run(stmts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(-1)
	}
	return subcommands.ExitSuccess
}
