package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"locks/asm"
	"locks/builtin"
	"locks/compiler"
	"locks/lexer"
	"locks/parser"
	"locks/token"
	"locks/vm"
)

// replCompiledCmd starts an interactive session backed by the bytecode
// VM: each complete statement is lexed, parsed, compiled, assembled,
// and run independently.
//
// Globals do not persist across lines: variable slots are renumbered
// from zero on every compile, and each vm.Run starts a fresh main frame,
// so a global declared on one line is not visible to a later, separately
// compiled line the way it is in the tree-walking repl; only the
// session's native function calls and printed output carry across
// lines.
type replCompiledCmd struct{}

func (*replCompiledCmd) Name() string { return "crepl" }
func (*replCompiledCmd) Synopsis() string {
	return "Start an interactive session backed by the bytecode VM"
}
func (*replCompiledCmd) Usage() string {
	return `crepl:
  Start an interactive Locks session backed by the compiler/assembler/VM
  pipeline. Type "exit" to quit.
`
}
func (r *replCompiledCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFilePath(".locks_crepl_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitStatus(-1)
	}
	defer rl.Close()

	fmt.Println("Welcome to Locks! (compiled)")
	runCtx := &builtin.Context{Out: os.Stdout, In: bufio.NewReader(os.Stdin)}
	machine := vm.New(runCtx)

	var buf strings.Builder
	for {
		if buf.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return subcommands.ExitSuccess
			}
			continue
		}
		if strings.TrimSpace(line) == "exit" && buf.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		source := buf.String()

		tokens, lexErrs := lexer.New(source).Scan()
		if len(lexErrs) > 0 {
			for _, e := range lexErrs {
				fmt.Fprintln(os.Stderr, e)
			}
			buf.Reset()
			continue
		}

		if !balanced(tokens) {
			continue
		}

		stmts, parseErrs := parser.Make(tokens).Parse()
		buf.Reset()
		if len(parseErrs) > 0 {
			for _, e := range parseErrs {
				fmt.Fprintln(os.Stderr, e)
			}
			continue
		}

		ir, err := compiler.Compile(stmts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		co, err := asm.Assemble(ir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if err := machine.Run(co); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// balanced reports whether a token stream has matched curly braces,
// the same incomplete-input signal the tree-walking repl never needed
// (it re-parses one line at a time) but the compiled one does, since a
// partial block can't be compiled into a runnable function body.
func balanced(tokens []token.Token) bool {
	depth := 0
	for _, t := range tokens {
		switch t.TokenType {
		case token.LCUR:
			depth++
		case token.RCUR:
			depth--
		}
	}
	return depth <= 0
}
