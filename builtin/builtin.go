// Package builtin implements Locks's native function library: the seven
// functions every program gets for free without declaring them. Both
// back-ends share this package — the tree-walking interpreter dispatches
// into it by name, the bytecode VM's CALL_NATIVE indexes into Table
// directly, and the semantic analyzer pre-populates the global scope from
// the same names so arity checking sees them.
package builtin

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"locks/diag"
	"locks/value"
)

// Context carries the I/O the native functions that need it (print,
// println, input) are wired to. Those functions use Out and In as given;
// the caller fills both in (the commands use os.Stdout and os.Stdin).
type Context struct {
	Out io.Writer
	In  *bufio.Reader
}

// Func is one native function: its declaration-order index (the one
// CALL_NATIVE operands reference), its fixed arity, and its
// implementation.
type Func struct {
	Name  string
	Index int
	Arity int
	Call  func(ctx *Context, args []value.Value) (value.Value, error)
}

func typeErr(msg string) error {
	return diag.NewTypeErr(diag.NoLine, msg)
}

func valueErr(msg string) error {
	return diag.NewValueErr(diag.NoLine, msg)
}

// display strips a String value's canonical quoting for presentation,
// matching print/println's "show the raw text" behavior; any other kind
// renders through its own String().
func display(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return s.Raw()
	}
	return v.String()
}

func printFn(ctx *Context, args []value.Value) (value.Value, error) {
	io.WriteString(ctx.Out, display(args[0]))
	return value.Nil{}, nil
}

func printlnFn(ctx *Context, args []value.Value) (value.Value, error) {
	io.WriteString(ctx.Out, display(args[0])+"\n")
	return value.Nil{}, nil
}

func inputFn(ctx *Context, args []value.Value) (value.Value, error) {
	io.WriteString(ctx.Out, display(args[0]))
	line, err := ctx.In.ReadString('\n')
	if err != nil && line == "" {
		return value.String(""), nil
	}
	return value.String(strings.TrimRight(line, "\r\n")), nil
}

func lenFn(_ *Context, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.String:
		return value.NewInt(int64(len(v.Raw()))), nil
	case value.Array:
		return value.NewInt(int64(v.Len())), nil
	default:
		return nil, typeErr("Invalid argument type for len, '" + value.TypeName(args[0]) + "'")
	}
}

func intFn(_ *Context, args []value.Value) (value.Value, error) {
	var s string
	switch v := args[0].(type) {
	case value.Boolean:
		if v {
			return value.NewInt(1), nil
		}
		return value.NewInt(0), nil
	case value.Number:
		return value.NewInt(int64(v.AsFloat())), nil
	case value.String:
		s = v.Raw()
	default:
		s = v.String()
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, valueErr("Invalid literal for conversion to int, '" + s + "'")
	}
	return value.NewInt(n), nil
}

func strFn(_ *Context, args []value.Value) (value.Value, error) {
	return value.String(args[0].String()), nil
}

func isIntegerFn(_ *Context, args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.String)
	if !ok {
		return nil, typeErr("Argument for 'isinteger' must be of type String")
	}
	raw := s.Raw()
	if len(raw) == 0 {
		return value.Boolean(false), nil
	}
	if raw[0] == '-' || raw[0] == '+' {
		raw = raw[1:]
	}
	if len(raw) == 0 {
		return value.Boolean(false), nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return value.Boolean(false), nil
		}
	}
	return value.Boolean(true), nil
}

// Table holds every native function ordered by its fixed call index
// (print=0 through isinteger=6), the order CALL_NATIVE operands and the
// assembler's/VM's lookup both depend on.
var Table = []Func{
	{Name: "print", Index: 0, Arity: 1, Call: printFn},
	{Name: "println", Index: 1, Arity: 1, Call: printlnFn},
	{Name: "input", Index: 2, Arity: 1, Call: inputFn},
	{Name: "len", Index: 3, Arity: 1, Call: lenFn},
	{Name: "int", Index: 4, Arity: 1, Call: intFn},
	{Name: "str", Index: 5, Arity: 1, Call: strFn},
	{Name: "isinteger", Index: 6, Arity: 1, Call: isIntegerFn},
}

// ByName indexes Table by function name, used by the tree-walking
// interpreter, the compiler and the assembler, which refer to native
// functions by name rather than by numeric index.
var ByName = func() map[string]*Func {
	m := make(map[string]*Func, len(Table))
	for i := range Table {
		m[Table[i].Name] = &Table[i]
	}
	return m
}()
