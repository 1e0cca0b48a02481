package lexer

import (
	"testing"

	"locks/token"
)

func tokenTypes(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.TokenType)
	}
	return out
}

func assertTypes(t *testing.T, src string, want []token.TokenType) []token.Token {
	t.Helper()
	toks, errs := New(src).Scan()
	if len(errs) != 0 {
		t.Fatalf("Scan(%q) unexpected errors: %v", src, errs)
	}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) = %v, want %v", src, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("Scan(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
	return toks
}

func TestOperators(t *testing.T) {
	assertTypes(t, "==/=*+>-<!=<=>=!%", []token.TokenType{
		token.EQUAL_EQUAL,
		token.DIV,
		token.ASSIGN,
		token.MULT,
		token.ADD,
		token.LARGER,
		token.SUB,
		token.LESS,
		token.NOT_EQUAL,
		token.LESS_EQUAL,
		token.LARGER_EQUAL,
		token.BANG,
		token.MOD,
		token.EOF,
	})
}

func TestPunctuationAndBrackets(t *testing.T) {
	assertTypes(t, "(){}[];,", []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR,
		token.LSQUARE, token.RSQUARE, token.SEMICOLON, token.COMMA,
		token.EOF,
	})
}

func TestKeywords(t *testing.T) {
	assertTypes(t, "fun var if else elsif while for return continue break and or true false nil",
		[]token.TokenType{
			token.FUNC, token.VAR, token.IF, token.ELSE, token.ELSEIF,
			token.WHILE, token.FOR, token.RETURN, token.CONTINUE, token.BREAK,
			token.AND, token.OR, token.TRUE, token.FALSE, token.NIL,
			token.EOF,
		})
}

func TestNumbers(t *testing.T) {
	toks := assertTypes(t, "255 3.14", []token.TokenType{token.INT, token.FLOAT, token.EOF})
	if toks[0].Literal.(int64) != 255 {
		t.Fatalf("expected 255, got %v", toks[0].Literal)
	}
	if toks[1].Literal.(float64) != 3.14 {
		t.Fatalf("expected 3.14, got %v", toks[1].Literal)
	}
}

func TestNumberWithMultipleDecimalPointsIsAnError(t *testing.T) {
	_, errs := New("1.2.3").Scan()
	if len(errs) == 0 {
		t.Fatalf("expected an error for 1.2.3")
	}
}

func TestStringLiteralsBothQuoteStyles(t *testing.T) {
	toks, errs := New(`"ab" 'cd'`).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Literal.(string) != "ab" || toks[1].Literal.(string) != "cd" {
		t.Fatalf("unexpected string literals: %v, %v", toks[0].Literal, toks[1].Literal)
	}
}

func TestStringLiteralNoEscapeProcessing(t *testing.T) {
	toks, errs := New(`"a\nb"`).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Literal.(string) != `a\nb` {
		t.Fatalf("expected literal backslash-n to survive, got %q", toks[0].Literal)
	}
}

func TestUnmatchedQuoteIsSyntaxError(t *testing.T) {
	_, errs := New(`"unterminated`).Scan()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestLineComment(t *testing.T) {
	assertTypes(t, "1 // a comment\n2", []token.TokenType{token.INT, token.INT, token.EOF})
}

func TestBlockCommentDoesNotNest(t *testing.T) {
	// the inner "/*" does not open a second level, so the first "*/"
	// closes the whole comment and the "2" after it is lexed again.
	toks, _ := New("1 /* a /* nested */ 2").Scan()
	if toks[0].TokenType != token.INT {
		t.Fatalf("expected leading INT token, got %v", toks[0].TokenType)
	}
	if toks[1].TokenType != token.INT {
		t.Fatalf("expected INT after the first */, got %v", toks[1].TokenType)
	}
}

func TestOnlyWhitespaceAndCommentsProducesSingleEOF(t *testing.T) {
	toks, errs := New("   \n // just a comment\n  ").Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(toks) != 1 || toks[0].TokenType != token.EOF {
		t.Fatalf("expected a single EOF token, got %v", toks)
	}
}

func TestIllegalCharacterIsAccumulatedAndScanningContinues(t *testing.T) {
	toks, errs := New("1 @ 2").Scan()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	got := tokenTypes(toks)
	want := []token.TokenType{token.INT, token.INT, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
