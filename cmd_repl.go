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

	"locks/builtin"
	"locks/interpreter"
	"locks/lexer"
	"locks/parser"
)

// replCmd starts an interactive tree-walking interpreter session. The
// same Interpreter instance is reused across lines, so a var or fun
// declared on one line stays visible on the next.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive tree-walking interpreter session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive Locks session backed by the tree-walking
  interpreter. Declarations persist across lines; type "exit" to quit.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFilePath(".locks_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitStatus(-1)
	}
	defer rl.Close()

	fmt.Println("Welcome to Locks!")
	runCtx := &builtin.Context{Out: os.Stdout, In: bufio.NewReader(os.Stdin)}
	it := interpreter.New(runCtx)

	for {
		line, err := readLine(rl)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return subcommands.ExitSuccess
			}
			continue
		}
		if strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		tokens, lexErrs := lexer.New(line).Scan()
		if len(lexErrs) > 0 {
			for _, e := range lexErrs {
				fmt.Fprintln(os.Stderr, e)
			}
			continue
		}

		stmts, parseErrs := parser.Make(tokens).Parse()
		if len(parseErrs) > 0 {
			for _, e := range parseErrs {
				fmt.Fprintln(os.Stderr, e)
			}
			continue
		}

		if err := it.Run(stmts); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// readLine reads one line, treating ^C on an empty line as a no-op
// rather than an exit (matching a shell's own readline convention).
func readLine(rl *readline.Instance) (string, error) {
	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", fmt.Errorf("interrupted")
	}
	return line, err
}

func historyFilePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return home + string(os.PathSeparator) + name
}
