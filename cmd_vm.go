package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"locks/asm"
	"locks/builtin"
	"locks/compiler"
	"locks/vm"
)

// vmCmd runs a source file on the bytecode back-end: lex, parse,
// analyze, compile to textual IR, assemble to a binary-ready
// CodeObject, then execute on the stack-based VM.
type vmCmd struct{}

func (*vmCmd) Name() string     { return "vm" }
func (*vmCmd) Synopsis() string { return "Run a Locks source file on the bytecode VM" }
func (*vmCmd) Usage() string {
	return `vm <file>:
  Compile a Locks source file to bytecode and execute it on the VM.
`
}
func (r *vmCmd) SetFlags(f *flag.FlagSet) {}

func (r *vmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	ir, err := compiler.Compile(stmts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(-1)
	}

	co, err := asm.Assemble(ir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(-1)
	}

	runCtx := &builtin.Context{Out: os.Stdout, In: bufio.NewReader(os.Stdin)}
	if err := vm.New(runCtx).Run(co); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(-1)
	}
	return subcommands.ExitSuccess
}
