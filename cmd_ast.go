package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"locks/lexer"
	"locks/parser"
)

// astCmd parses a source file and prints its AST as prettified JSON,
// skipping semantic analysis and both back-ends entirely — useful for
// inspecting how the parser desugars for loops or nests if/elsif/else.
type astCmd struct {
	out string
}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Print a Locks source file's parsed AST as JSON" }
func (*astCmd) Usage() string {
	return `ast [-out file.json] <file>:
  Parse a Locks source file and print its AST.
`
}

func (cmd *astCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.out, "out", "", "also write the AST JSON to this file (it is printed to stdout either way)")
}

func (cmd *astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	tokens, lexErrs := lexer.New(string(data)).Scan()
	if len(lexErrs) > 0 {
		for _, e := range lexErrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitStatus(-1)
	}

	stmts, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitStatus(-1)
	}

	if cmd.out != "" {
		if err := parser.WriteASTJSONToFile(stmts, cmd.out); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write %q: %v\n", cmd.out, err)
			return subcommands.ExitStatus(-1)
		}
		return subcommands.ExitSuccess
	}

	if _, err := parser.PrintASTJSON(stmts); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to render AST JSON: %v\n", err)
		return subcommands.ExitStatus(-1)
	}
	return subcommands.ExitSuccess
}
