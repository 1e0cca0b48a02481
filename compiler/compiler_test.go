package compiler

import (
	"strings"
	"testing"

	"locks/lexer"
	"locks/parser"
)

func compileSource(t *testing.T, src string) string {
	t.Helper()
	tokens, lexErrs := lexer.New(src).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	stmts, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	ir, err := Compile(stmts)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return ir
}

func TestBipushForSmallIntLiteral(t *testing.T) {
	ir := compileSource(t, `var x = 5;`)
	if !strings.Contains(ir, "BIPUSH 5") {
		t.Fatalf("expected a BIPUSH for small integer literal, got:\n%s", ir)
	}
}

func TestLoadConstForLargeIntAndFloatAndString(t *testing.T) {
	ir := compileSource(t, `var a = 1000; var b = 1.5; var c = "hi";`)
	if strings.Count(ir, "LOAD_CONST") != 3 {
		t.Fatalf("expected three LOAD_CONST instructions, got:\n%s", ir)
	}
	if !strings.Contains(ir, "i 1000") || !strings.Contains(ir, "d 1.5") || !strings.Contains(ir, `s "hi"`) {
		t.Fatalf("expected constant pool entries for int/float/string, got:\n%s", ir)
	}
}

func TestGlobalsUseGlobalOpcodesInsideMain(t *testing.T) {
	ir := compileSource(t, `var x = 1; x = 2;`)
	if !strings.Contains(ir, "STORE_GLOBAL x") {
		t.Fatalf("expected STORE_GLOBAL for a main-level var, got:\n%s", ir)
	}
}

func TestFunctionParamsAndLocalsUseLocalOpcodes(t *testing.T) {
	ir := compileSource(t, `fun f(n) { var d = n * 2; return d; }`)
	if !strings.Contains(ir, "fn f") {
		t.Fatalf("expected a separate fn chunk for f, got:\n%s", ir)
	}
	if !strings.Contains(ir, "STORE_LOCAL n") || !strings.Contains(ir, "STORE_LOCAL d") || !strings.Contains(ir, "LOAD_LOCAL d") {
		t.Fatalf("expected param/local binds to use LOCAL opcodes, got:\n%s", ir)
	}
}

func TestFunctionWithoutExplicitReturnGetsImplicitNilReturn(t *testing.T) {
	ir := compileSource(t, `fun noop() { var x = 1; }`)
	idx := strings.Index(ir, "fn noop")
	if idx < 0 {
		t.Fatalf("expected a fn chunk for noop, got:\n%s", ir)
	}
	tail := ir[idx:]
	if !strings.Contains(tail, "LOAD_NIL") || !strings.Contains(tail, "RETURN_VALUE") {
		t.Fatalf("expected an implicit LOAD_NIL; RETURN_VALUE tail, got:\n%s", tail)
	}
}

func TestNestedFunctionDeclarationHoistsToItsOwnChunk(t *testing.T) {
	ir := compileSource(t, `
		fun outer() {
			fun inner() { return 1; }
			return inner();
		}
	`)
	if !strings.Contains(ir, "fn outer") || !strings.Contains(ir, "fn inner") {
		t.Fatalf("expected both outer and inner as their own top-level chunks, got:\n%s", ir)
	}
	if !strings.Contains(ir, "CALL_FUNCTION inner") {
		t.Fatalf("expected outer to call inner by name, got:\n%s", ir)
	}
}

func TestIfElsifElseEmitsLabeledJumps(t *testing.T) {
	ir := compileSource(t, `
		if (1 < 2) { println("a"); }
		elsif (2 < 3) { println("b"); }
		else { println("c"); }
	`)
	if !strings.Contains(ir, "POP_JMP_IF_FALSE") || !strings.Contains(ir, "GOTO") {
		t.Fatalf("expected conditional and unconditional jumps for an if/elsif/else chain, got:\n%s", ir)
	}
}

func TestWhileLoopBreakAndContinueJumpToLoopLabels(t *testing.T) {
	ir := compileSource(t, `
		var i = 0;
		while (i < 10) {
			if (i == 5) { continue; }
			if (i == 8) { break; }
			i = i + 1;
		}
	`)
	if strings.Count(ir, "GOTO") < 3 {
		t.Fatalf("expected a back-edge GOTO plus continue/break GOTOs, got:\n%s", ir)
	}
}

func TestBuiltinCallUsesCallNative(t *testing.T) {
	ir := compileSource(t, `println("hi");`)
	if !strings.Contains(ir, "CALL_NATIVE println") {
		t.Fatalf("expected println to compile to CALL_NATIVE, got:\n%s", ir)
	}
}

func TestUserFunctionCallUsesCallFunction(t *testing.T) {
	ir := compileSource(t, `fun f() { return 1; } f();`)
	if !strings.Contains(ir, "CALL_FUNCTION f") {
		t.Fatalf("expected a user function call to compile to CALL_FUNCTION, got:\n%s", ir)
	}
}

func TestLogicalOperatorsCompileToNonShortCircuitOpcodes(t *testing.T) {
	ir := compileSource(t, `var r = true and false;`)
	if !strings.Contains(ir, "BINARY_AND") {
		t.Fatalf("expected 'and' to compile to BINARY_AND (both operands always evaluated), got:\n%s", ir)
	}
}

func TestArrayLiteralAndSubscriptOpcodes(t *testing.T) {
	ir := compileSource(t, `var a = [1, 2, 3]; var x = a[0]; a[1] = 9;`)
	if !strings.Contains(ir, "BUILD_LIST 3") {
		t.Fatalf("expected BUILD_LIST 3 for a three-element array literal, got:\n%s", ir)
	}
	if !strings.Contains(ir, "BINARY_SUBSCR") {
		t.Fatalf("expected BINARY_SUBSCR for array read, got:\n%s", ir)
	}
	if !strings.Contains(ir, "STORE_SUBSCR") {
		t.Fatalf("expected STORE_SUBSCR for array element assignment, got:\n%s", ir)
	}
}

func TestProgramEndsWithEND(t *testing.T) {
	ir := compileSource(t, `println(1);`)
	lines := strings.Split(strings.TrimRight(ir, "\n"), "\n")
	if lines[len(lines)-1] != "END" {
		t.Fatalf("expected main chunk to end with END, got:\n%s", ir)
	}
}
