package semantic

import (
	"testing"

	"locks/lexer"
	"locks/parser"
)

func analyze(t *testing.T, src string) []error {
	t.Helper()
	tokens, lexErrs := lexer.New(src).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	stmts, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	_, errs := Analyze(stmts)
	return errs
}

func TestUndeclaredNameIsNameError(t *testing.T) {
	errs := analyze(t, "println(x);")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestDuplicateVarDeclarationIsError(t *testing.T) {
	errs := analyze(t, "var x = 1; var x = 2;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestDuplicateFunDeclarationIsError(t *testing.T) {
	errs := analyze(t, "fun f() {} fun f() {}")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestCallArityMismatchIsError(t *testing.T) {
	errs := analyze(t, "fun f(a, b) { return a; } f(1);")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestCallWithCorrectArityIsOK(t *testing.T) {
	errs := analyze(t, "fun f(a, b) { return a; } f(1, 2);")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCallingANonFunctionIsError(t *testing.T) {
	errs := analyze(t, "var x = 1; x();")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestBreakOutsideLoopIsSyntaxError(t *testing.T) {
	errs := analyze(t, "break;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestContinueInsideLoopIsOK(t *testing.T) {
	errs := analyze(t, "while (true) { continue; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

// Subscripting a plain variable is never flagged statically: a variable's
// tag stays the opaque "variable" regardless of what value it holds at
// runtime, so non-array subscripts surface as a runtime TypeErr and
// out-of-bound ones as a runtime IndexErr instead, not here.
func TestSubscriptingAVariableIsNotFlaggedStatically(t *testing.T) {
	errs := analyze(t, "var x = 5; println(x[0]);")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestArithmeticMismatchBetweenStringAndNumberIsTypeError(t *testing.T) {
	errs := analyze(t, `var x = "a" + 1;`)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestArithmeticBetweenTwoNumbersIsOK(t *testing.T) {
	errs := analyze(t, "var x = 1 + 2;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestAssigningAFunctionToAVariableIsTypeError(t *testing.T) {
	errs := analyze(t, "fun f() {} var x = f;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestFunctionParametersAreVisibleInBody(t *testing.T) {
	errs := analyze(t, "fun f(a) { return a; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestRecursiveCallsAreAllowed(t *testing.T) {
	errs := analyze(t, "fun fact(n) { if (n <= 1) { return 1; } return n * fact(n - 1); }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
