package builtin

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"locks/value"
)

func newCtx(input string) (*Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &Context{Out: &out, In: bufio.NewReader(strings.NewReader(input))}, &out
}

func TestPrintlnStripsStringQuoting(t *testing.T) {
	ctx, out := newCtx("")
	if _, err := ByName["println"].Call(ctx, []value.Value{value.String("hi")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hi\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestLenOnStringAndArray(t *testing.T) {
	ctx, _ := newCtx("")
	v, err := ByName["len"].Call(ctx, []value.Value{value.String("abc")})
	if err != nil || v.(value.Number).Int != 3 {
		t.Fatalf("expected 3, got %v err=%v", v, err)
	}

	arr := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2)})
	v, err = ByName["len"].Call(ctx, []value.Value{arr})
	if err != nil || v.(value.Number).Int != 2 {
		t.Fatalf("expected 2, got %v err=%v", v, err)
	}
}

func TestLenOnNumberIsTypeError(t *testing.T) {
	ctx, _ := newCtx("")
	_, err := ByName["len"].Call(ctx, []value.Value{value.NewInt(5)})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestIntParsesDigitString(t *testing.T) {
	ctx, _ := newCtx("")
	v, err := ByName["int"].Call(ctx, []value.Value{value.String("42")})
	if err != nil || v.(value.Number).Int != 42 {
		t.Fatalf("expected 42, got %v err=%v", v, err)
	}
}

func TestIntOnInvalidLiteralIsValueError(t *testing.T) {
	ctx, _ := newCtx("")
	_, err := ByName["int"].Call(ctx, []value.Value{value.String("not a number")})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestIsIntegerAcceptsOptionalSign(t *testing.T) {
	ctx, _ := newCtx("")
	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"123", true},
		{"-123", true},
		{"+123", true},
		{"", false},
		{"12a", false},
		{"-", false},
	} {
		v, err := ByName["isinteger"].Call(ctx, []value.Value{value.String(tc.in)})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.in, err)
		}
		if bool(v.(value.Boolean)) != tc.want {
			t.Fatalf("isinteger(%q) = %v, want %v", tc.in, v, tc.want)
		}
	}
}

func TestInputReadsALine(t *testing.T) {
	ctx, out := newCtx("hello\n")
	v, err := ByName["input"].Call(ctx, []value.Value{value.String("prompt: ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(v.(value.String)) != "hello" {
		t.Fatalf("got %q", v)
	}
	if out.String() != "prompt: " {
		t.Fatalf("expected prompt to be written, got %q", out.String())
	}
}
