package vm

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"locks/asm"
	"locks/builtin"
	"locks/compiler"
	"locks/lexer"
	"locks/parser"
)

// run lexes, parses, compiles to textual IR, assembles to a binary-ready
// CodeObject and executes it on the VM, mirroring the interpreter
// package's own run() helper so the two back-ends can be held to the
// same observable behavior.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	tokens, lexErrs := lexer.New(src).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	stmts, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}

	ir, err := compiler.Compile(stmts)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	co, err := asm.Assemble(ir)
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}

	var out bytes.Buffer
	ctx := &builtin.Context{Out: &out, In: bufio.NewReader(strings.NewReader(""))}
	runErr := New(ctx).Run(co)
	return out.String(), runErr
}

func TestRecursiveFactorial(t *testing.T) {
	out, err := run(t, `fun fact(n){ if (n<=1) { return 1; } return n*fact(n-1); } println(fact(5));`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "120\n" {
		t.Fatalf("got %q", out)
	}
}

func TestWhileWithBreakAndContinue(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 10) {
			i = i + 1;
			if (i == 5) { continue; }
			if (i > 8) { break; }
			sum = sum + i;
		}
		println(sum);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "31\n" {
		t.Fatalf("got %q", out)
	}
}

func TestGlobalVisibleInsideFunctionBody(t *testing.T) {
	out, err := run(t, `
		var x = "outer";
		fun showX() { println(x); }
		showX();
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "outer\n" {
		t.Fatalf("got %q", out)
	}
}

func TestArrayMutationThroughAlias(t *testing.T) {
	out, err := run(t, `
		var a = [1, 2, 3];
		var b = a;
		b[0] = 99;
		println(a[0]);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "99\n" {
		t.Fatalf("expected shared array mutation, got %q", out)
	}
}

func TestDivisionIsAlwaysFloat(t *testing.T) {
	out, err := run(t, `println(4 / 2);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, `println(1 / 0);`)
	if err == nil {
		t.Fatalf("expected a division by zero error")
	}
}

func TestStringConcatenationTypeMismatch(t *testing.T) {
	_, err := run(t, `println("a" + 1);`)
	if err == nil {
		t.Fatalf("expected a type error")
	}
}

func TestOutOfBoundsIndexIsIndexError(t *testing.T) {
	_, err := run(t, `var a = [1]; println(a[5]);`)
	if err == nil {
		t.Fatalf("expected an index error")
	}
}

func TestForLoopDesugaring(t *testing.T) {
	out, err := run(t, `
		var total = 0;
		for (var i = 0; i < 5; i = i + 1) {
			total = total + i;
		}
		println(total);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "10\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFlooredModuloMatchesInterpreter(t *testing.T) {
	out, err := run(t, `println(-7 % 3);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestNonShortCircuitLogicalOperators(t *testing.T) {
	// Unlike the tree-walking interpreter, BINARY_AND/BINARY_OR evaluate
	// both operands unconditionally; a side-effecting right-hand side
	// still runs even when the left-hand side alone decides the result.
	out, err := run(t, `
		fun touch() { println("touched"); return true; }
		var r = false and touch();
		println(r);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "touched\nfalse\n" {
		t.Fatalf("got %q", out)
	}
}
