package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"locks/asm"
	"locks/bytecode"
	"locks/compiler"
)

// asmCmd compiles a source file down to the binary bytecode image
// format, writing it alongside the source file (replacing its
// extension with .lbc). With -disasm it prints a readable disassembly
// to stdout instead of writing the binary image.
type asmCmd struct {
	disasm bool
}

func (*asmCmd) Name() string { return "asm" }
func (*asmCmd) Synopsis() string {
	return "Compile a Locks source file to a bytecode image"
}
func (*asmCmd) Usage() string {
	return `asm [-disasm] <file>:
  Compile and assemble a Locks source file, writing <file>.lbc.
  With -disasm, print a disassembly listing instead.
`
}

func (cmd *asmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disasm, "disasm", false, "print a disassembly listing instead of writing a .lbc file")
}

func (cmd *asmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if cmd.disasm {
		fmt.Print(asm.Disassemble(co))
		return subcommands.ExitSuccess
	}

	out := strings.TrimSuffix(args[0], filepathExt(args[0])) + ".lbc"
	if err := os.WriteFile(out, bytecode.Encode(co), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write %q: %v\n", out, err)
		return subcommands.ExitStatus(-1)
	}
	return subcommands.ExitSuccess
}

func filepathExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
