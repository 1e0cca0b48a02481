// Package interpreter implements Locks's tree-walking back-end: it walks
// the parsed AST directly, evaluating expressions to value.Value and
// executing statements for effect, without ever producing bytecode.
//
// Control flow (continue/break/return) does not unwind through the tree
// the way the original Python implementation piggybacked string
// sentinels onto ordinary return values; it's modeled here as an
// explicit sum type (control) threaded through every statement visitor,
// so a loop can tell "this block fell off the end" apart from "this
// block hit a break" without string comparisons.
package interpreter

import (
	"fmt"

	"locks/ast"
	"locks/builtin"
	"locks/diag"
	"locks/token"
	"locks/value"
)

type controlKind int

const (
	ctrlNone controlKind = iota
	ctrlContinue
	ctrlBreak
	ctrlReturn
)

// control is the explicit sum type a statement visitor returns instead
// of piggybacking a sentinel onto its ordinary result: Normal carries no
// payload, Continue and Break carry none either, and Return carries the
// value being returned.
type control struct {
	kind  controlKind
	value value.Value
}

var normalControl = control{kind: ctrlNone}

// Interpreter walks a parsed program and executes it directly.
type Interpreter struct {
	globals   *Environment
	env       *Environment
	ctx       *builtin.Context
	funcDepth int
}

// New creates an Interpreter whose print/println/input builtins are
// wired to ctx.
func New(ctx *builtin.Context) *Interpreter {
	globals := NewEnvironment(nil)
	return &Interpreter{globals: globals, env: globals, ctx: ctx}
}

// Run executes a parsed program's top-level declarations in order,
// returning the first diagnostic raised, if any.
func (it *Interpreter) Run(declarations []ast.Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	for _, d := range declarations {
		it.exec(d)
	}
	return nil
}

func (it *Interpreter) exec(s ast.Stmt) control {
	return s.Accept(it).(control)
}

func (it *Interpreter) eval(e ast.Expression) value.Value {
	return e.Accept(it).(value.Value)
}

func (it *Interpreter) execBlock(b ast.Block) control {
	for _, s := range b.Statements {
		if c := it.exec(s); c.kind != ctrlNone {
			return c
		}
	}
	return normalControl
}

func raise(err error) {
	panic(err)
}

// --- statements ---

func (it *Interpreter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	it.eval(s.Expression)
	return normalControl
}

func (it *Interpreter) VisitVarDecl(s ast.VarDecl) any {
	v := value.Value(value.Nil{})
	if s.Initializer != nil {
		v = it.eval(s.Initializer)
	}
	it.env.Define(s.Name.Lexeme, v)
	return normalControl
}

func (it *Interpreter) VisitFunDecl(s ast.FunDecl) any {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Lexeme
	}
	fn := value.Function{
		Name:    s.Name.Lexeme,
		Params:  params,
		Body:    &s.Body,
		Closure: it.env,
	}
	it.env.Define(s.Name.Lexeme, fn)
	return normalControl
}

// VisitBlock executes a plain "{ }" block in the current scope: only a
// function call establishes a fresh Environment, matching the scoping
// rule the semantic analyzer also enforces.
func (it *Interpreter) VisitBlock(b ast.Block) any {
	return it.execBlock(b)
}

func (it *Interpreter) VisitIf(s ast.If) any {
	if value.Truthy(it.eval(s.Condition)) {
		return it.execBlock(s.Then)
	}
	for _, ei := range s.ElseIfs {
		if value.Truthy(it.eval(ei.Condition)) {
			return it.execBlock(ei.Body)
		}
	}
	if s.Else != nil {
		return it.execBlock(*s.Else)
	}
	return normalControl
}

func (it *Interpreter) VisitWhile(s ast.While) any {
	for value.Truthy(it.eval(s.Condition)) {
		c := it.execBlock(s.Body)
		switch c.kind {
		case ctrlBreak:
			return normalControl
		case ctrlReturn:
			return c
		}
	}
	return normalControl
}

func (it *Interpreter) VisitReturn(s ast.Return) any {
	if it.funcDepth == 0 {
		raise(diag.NewSyntaxErr(s.Line, diag.NoColumn, "'return' outside function"))
	}
	v := value.Value(value.Nil{})
	if s.Value != nil {
		v = it.eval(s.Value)
	}
	return control{kind: ctrlReturn, value: v}
}

func (it *Interpreter) VisitContinue(ast.Continue) any {
	return control{kind: ctrlContinue}
}

func (it *Interpreter) VisitBreak(ast.Break) any {
	return control{kind: ctrlBreak}
}

// --- expressions ---

func literalValue(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Nil{}
	case bool:
		return value.Boolean(t)
	case int64:
		return value.NewInt(t)
	case float64:
		return value.NewFloat(t)
	case string:
		return value.String(t)
	default:
		return value.Nil{}
	}
}

func (it *Interpreter) VisitLiteral(l ast.Literal) any {
	return literalValue(l.Value)
}

func (it *Interpreter) VisitGrouping(g ast.Grouping) any {
	return it.eval(g.Expression)
}

func (it *Interpreter) VisitIdentifier(i ast.Identifier) any {
	v, err := it.env.Get(i.Name)
	if err != nil {
		raise(err)
	}
	return v
}

func (it *Interpreter) VisitArrayLiteral(a ast.ArrayLiteral) any {
	elems := make([]value.Value, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = it.eval(e)
	}
	return value.NewArray(elems)
}

// indexInto validates that base is an Array and idx is an integral
// Number in range, returning the array and the integer index.
func (it *Interpreter) indexInto(base value.Value, idx value.Value, line int32) (value.Array, int) {
	arr, ok := base.(value.Array)
	if !ok {
		raise(diag.NewTypeErr(line, "Type '"+value.TypeName(base)+"' is not subscriptable"))
	}
	num, ok := idx.(value.Number)
	if !ok {
		raise(diag.NewTypeErr(line, "Array indices must be integers, not '"+value.TypeName(idx)+"'"))
	}
	if !num.IsInt {
		raise(diag.NewTypeErr(line, "Array indices must be integers, not float"))
	}
	i := int(num.Int)
	if i < 0 || i >= arr.Len() {
		raise(diag.NewIndexErr(line))
	}
	return arr, i
}

func (it *Interpreter) VisitSubscript(s ast.Subscript) any {
	base := it.eval(s.Base)
	idx := it.eval(s.Index)
	arr, i := it.indexInto(base, idx, s.Bracket.Line)
	return arr.Get(i)
}

func (it *Interpreter) VisitAssign(a ast.Assign) any {
	v := it.eval(a.Value)

	switch target := a.Target.(type) {
	case ast.Identifier:
		if err := it.env.Assign(target.Name, v); err != nil {
			raise(err)
		}
	case ast.Subscript:
		base := it.eval(target.Base)
		idx := it.eval(target.Index)
		arr, i := it.indexInto(base, idx, target.Bracket.Line)
		arr.Set(i, v)
	default:
		raise(diag.NewSyntaxErr(diag.NoLine, diag.NoColumn, "invalid assignment target"))
	}
	return v
}

func (it *Interpreter) VisitLogical(l ast.Logical) any {
	left := it.eval(l.Left)
	if l.Operator.TokenType == token.AND {
		if !value.Truthy(left) {
			return value.Boolean(false)
		}
		return value.Boolean(value.Truthy(it.eval(l.Right)))
	}
	// OR
	if value.Truthy(left) {
		return value.Boolean(true)
	}
	return value.Boolean(value.Truthy(it.eval(l.Right)))
}

func (it *Interpreter) VisitUnary(u ast.Unary) any {
	v := it.eval(u.Right)
	switch u.Operator.TokenType {
	case token.BANG:
		return value.Boolean(!value.Truthy(v))
	case token.SUB:
		n, ok := v.(value.Number)
		if !ok {
			raise(diag.NewTypeErr(u.Operator.Line, "Cannot negate "+value.TypeName(v)))
		}
		if n.IsInt {
			return value.NewInt(-n.Int)
		}
		return value.NewFloat(-n.Float)
	default:
		raise(diag.NewSyntaxErr(u.Operator.Line, u.Operator.Column, "operator not supported for unary operations"))
		return nil
	}
}

var comparableEqualityKinds = map[string]bool{"Nil": true, "Number": true, "Boolean": true, "String": true}

func numbers(l, r value.Value) (value.Number, value.Number, bool) {
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	return ln, rn, lok && rok
}

func (it *Interpreter) VisitBinary(b ast.Binary) any {
	left := it.eval(b.Left)
	right := it.eval(b.Right)
	line := b.Operator.Line

	switch b.Operator.TokenType {
	case token.ADD:
		if ls, ok := left.(value.String); ok {
			rs, ok := right.(value.String)
			if !ok {
				raise(diag.NewTypeErr(line, "Cannot add "+value.TypeName(right)+" to String"))
			}
			return value.String(ls.Raw() + rs.Raw())
		}
		ln, rn, ok := numbers(left, right)
		if !ok {
			if _, isNum := left.(value.Number); isNum {
				raise(diag.NewTypeErr(line, "Cannot add "+value.TypeName(right)+" to Number"))
			}
			raise(diag.NewTypeErr(line, "Addition not defined for type '"+value.TypeName(left)+"'"))
		}
		return value.AddNumbers(ln, rn)

	case token.SUB:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, "Cannot subtract "+value.TypeName(right)+" from "+value.TypeName(left)))
		}
		return value.SubNumbers(ln, rn)

	case token.MULT:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, "Cannot multiply "+value.TypeName(left)+" by "+value.TypeName(right)))
		}
		return value.MulNumbers(ln, rn)

	case token.DIV:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, "Cannot divide "+value.TypeName(left)+" by "+value.TypeName(right)))
		}
		if rn.AsFloat() == 0 {
			raise(diag.NewZeroDivErr(line))
		}
		return value.DivNumbers(ln, rn)

	case token.MOD:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, fmt.Sprintf("Invalid operand type for modulo,%s and %s", value.TypeName(left), value.TypeName(right))))
		}
		if rn.AsFloat() == 0 {
			raise(diag.NewZeroDivErr(line))
		}
		return value.ModNumbers(ln, rn)

	case token.LARGER:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, fmt.Sprintf("Invalid operand type for greater than operator, %s and %s", value.TypeName(left), value.TypeName(right))))
		}
		return value.Boolean(ln.AsFloat() > rn.AsFloat())

	case token.LARGER_EQUAL:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, fmt.Sprintf("Invalid operand type for greater than equals operator, %s and %s", value.TypeName(left), value.TypeName(right))))
		}
		return value.Boolean(ln.AsFloat() >= rn.AsFloat())

	case token.LESS:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, fmt.Sprintf("Invalid operand type for less than operator, %s and %s", value.TypeName(left), value.TypeName(right))))
		}
		return value.Boolean(ln.AsFloat() < rn.AsFloat())

	case token.LESS_EQUAL:
		ln, rn, ok := numbers(left, right)
		if !ok {
			raise(diag.NewTypeErr(line, fmt.Sprintf("Invalid operand type for less than equals operator, %s and %s", value.TypeName(left), value.TypeName(right))))
		}
		return value.Boolean(ln.AsFloat() <= rn.AsFloat())

	case token.EQUAL_EQUAL, token.NOT_EQUAL:
		if !comparableEqualityKinds[value.TypeName(left)] || !comparableEqualityKinds[value.TypeName(right)] {
			raise(diag.NewTypeErr(line, "Cannot compare "+value.TypeName(left)+" and "+value.TypeName(right)))
		}
		eq := value.Equal(left, right)
		if b.Operator.TokenType == token.NOT_EQUAL {
			return value.Boolean(!eq)
		}
		return value.Boolean(eq)

	default:
		raise(diag.NewSyntaxErr(line, b.Operator.Column, "operator '"+string(b.Operator.TokenType)+"' not supported"))
		return nil
	}
}

func (it *Interpreter) VisitCall(c ast.Call) any {
	ident, ok := c.Callee.(ast.Identifier)
	if !ok {
		raise(diag.NewTypeErr(c.Paren.Line, "call target is not callable"))
	}

	if fn, ok := builtin.ByName[ident.Name.Lexeme]; ok {
		args := make([]value.Value, len(c.Args))
		for i, a := range c.Args {
			args[i] = it.eval(a)
		}
		result, err := fn.Call(it.ctx, args)
		if err != nil {
			raise(err)
		}
		return result
	}

	callee, err := it.env.Get(ident.Name)
	if err != nil {
		raise(err)
	}
	fn, ok := callee.(value.Function)
	if !ok {
		raise(diag.NewTypeErr(c.Paren.Line, "'"+ident.Name.Lexeme+"' is not callable"))
	}

	closure, _ := fn.Closure.(*Environment)
	callEnv := NewEnvironment(closure)
	for i, param := range fn.Params {
		callEnv.Define(param, it.eval(c.Args[i]))
	}

	body, _ := fn.Body.(*ast.Block)

	prevEnv := it.env
	it.env = callEnv
	it.funcDepth++
	result := it.execBlock(*body)
	it.funcDepth--
	it.env = prevEnv

	if result.kind == ctrlReturn {
		return result.value
	}
	return value.Value(value.Nil{})
}
