// analyzer.go implements the semantic analyzer: it walks the parsed AST
// checking that every name used is declared, that break/continue only
// appear inside loops, and performing the language's light static type
// checking (arithmetic operand types, call arity, "can't assign/return a
// function").
//
// Type checking here is intentionally shallow: most expressions resolve
// to one of a handful of opaque tags ("number", "string", "boolean",
// "nil", "array", "function", "variable", "call") and the analyzer only
// ever refuses to combine two tags it's certain conflict, exactly
// mirroring the dynamically-typed nature of the language — the real
// type error surface is caught at runtime, in the interpreter and VM.
package semantic

import (
	"fmt"

	"locks/ast"
	"locks/diag"
	"locks/token"
)

// builtinFunctionNames lists the native functions pre-declared in the
// global scope, every one of them unary, matching the fixed call-table
// the compiler and interpreter both index into.
var builtinFunctionNames = []string{
	"print", "println", "input",
	"len",
	"int", "str",
	"isinteger",
}

var reservedTypeNames = []string{"int", "float", "double", "string"}

// exprType is the result of analyzing an expression: its opaque type tag
// plus the token to blame a diagnostic on.
type exprType struct {
	Tag string
	Tok token.Token
}

// Analyzer walks a parsed program checking names and light types.
type Analyzer struct {
	main    *Table
	current *Table

	// pendingParams holds a function's parameter symbols between
	// declaring the function in its enclosing scope and entering the
	// scope that owns the function body.
	pendingParams []Symbol

	inLoop bool
	errs   []error
}

// New creates an Analyzer with an empty, not-yet-populated global scope.
func New() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) nameErr(msg string, tok token.Token) {
	a.errs = append(a.errs, diag.NewNameErr(tok.Line, tok.Column, msg))
}

func (a *Analyzer) typeErr(msg string, tok token.Token) {
	a.errs = append(a.errs, diag.NewTypeErr(tok.Line, msg))
}

func (a *Analyzer) syntaxErr(msg string, tok token.Token) {
	a.errs = append(a.errs, diag.NewSyntaxErr(tok.Line, tok.Column, msg))
}

func (a *Analyzer) initMain() {
	a.main = NewTable("main")
	a.current = a.main

	for _, t := range reservedTypeNames {
		a.main.Add(Symbol{Name: t, Kind: KindType})
	}
	for _, f := range builtinFunctionNames {
		a.main.Add(Symbol{Name: f, Kind: KindFunction, Arity: 1})
	}
}

// Analyze walks every top-level declaration, returning the populated
// global symbol table (useful to a caller that wants to know what's
// declared) and any diagnostics found.
func Analyze(declarations []ast.Stmt) (*Table, []error) {
	a := New()
	a.initMain()

	for _, d := range declarations {
		a.visitStmt(d)
	}

	return a.main, a.errs
}

func (a *Analyzer) visitStmt(s ast.Stmt) {
	s.Accept(a)
}

func (a *Analyzer) visitExpr(e ast.Expression) exprType {
	return e.Accept(a).(exprType)
}

// --- statements ---

func (a *Analyzer) VisitExpressionStmt(s ast.ExpressionStmt) any {
	a.visitExpr(s.Expression)
	return nil
}

func (a *Analyzer) VisitVarDecl(s ast.VarDecl) any {
	if _, ok := a.current.Get(s.Name.Lexeme, true); ok {
		a.nameErr("duplicate definition of name '"+s.Name.Lexeme+"'", s.Name)
		return nil
	}
	a.current.Add(Symbol{Name: s.Name.Lexeme, Kind: KindVariable})

	if s.Initializer != nil {
		result := a.visitExpr(s.Initializer)
		if result.Tag == "function" {
			a.typeErr("cannot assign function '"+result.Tok.Lexeme+"' to variable", result.Tok)
		}
	}
	return nil
}

func (a *Analyzer) VisitFunDecl(s ast.FunDecl) any {
	if _, ok := a.current.Get(s.Name.Lexeme, true); ok {
		a.nameErr("duplicate definition of name '"+s.Name.Lexeme+"'", s.Name)
		return nil
	}

	a.current.Add(Symbol{Name: s.Name.Lexeme, Kind: KindFunction, Arity: len(s.Params)})

	params := make([]Symbol, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, Symbol{Name: p.Lexeme, Kind: KindVariable})
	}

	body := NewTable("block")
	body.SetEnclosing(a.current)
	for _, p := range params {
		body.Add(p)
	}

	enclosing := a.current
	wasInLoop := a.inLoop
	a.current = body
	a.inLoop = false
	for _, stmt := range s.Body.Statements {
		a.visitStmt(stmt)
	}
	a.current = enclosing
	a.inLoop = wasInLoop

	return nil
}

// VisitBlock analyzes a plain "{ }" block in the current scope: Locks
// blocks other than a function's own body don't introduce a new scope.
func (a *Analyzer) VisitBlock(b ast.Block) any {
	for _, stmt := range b.Statements {
		a.visitStmt(stmt)
	}
	return nil
}

func (a *Analyzer) VisitIf(s ast.If) any {
	a.visitExpr(s.Condition)
	a.VisitBlock(s.Then)
	for _, ei := range s.ElseIfs {
		a.visitExpr(ei.Condition)
		a.VisitBlock(ei.Body)
	}
	if s.Else != nil {
		a.VisitBlock(*s.Else)
	}
	return nil
}

func (a *Analyzer) VisitWhile(s ast.While) any {
	wasInLoop := a.inLoop
	a.inLoop = true
	a.visitExpr(s.Condition)
	a.VisitBlock(s.Body)
	a.inLoop = wasInLoop
	return nil
}

func (a *Analyzer) VisitReturn(s ast.Return) any {
	if s.Value == nil {
		return nil
	}
	result := a.visitExpr(s.Value)
	if result.Tag == "function" {
		a.typeErr("cannot return function '"+result.Tok.Lexeme+"' from function", result.Tok)
	}
	return nil
}

func (a *Analyzer) VisitContinue(s ast.Continue) any {
	if !a.inLoop {
		a.syntaxErr("'continue' outside loop", s.Tok)
	}
	return nil
}

func (a *Analyzer) VisitBreak(s ast.Break) any {
	if !a.inLoop {
		a.syntaxErr("'break' outside loop", s.Tok)
	}
	return nil
}

// --- expressions ---

func (a *Analyzer) VisitLiteral(l ast.Literal) any {
	switch l.Value.(type) {
	case nil:
		return exprType{Tag: "nil"}
	case bool:
		return exprType{Tag: "boolean"}
	case int64, float64:
		return exprType{Tag: "number"}
	case string:
		return exprType{Tag: "string"}
	default:
		return exprType{Tag: "nil"}
	}
}

func (a *Analyzer) VisitGrouping(g ast.Grouping) any {
	return a.visitExpr(g.Expression)
}

func (a *Analyzer) VisitIdentifier(i ast.Identifier) any {
	sym, ok := a.current.Get(i.Name.Lexeme, false)
	if !ok {
		a.nameErr("name '"+i.Name.Lexeme+"' not declared", i.Name)
		return exprType{Tag: "identifier", Tok: i.Name}
	}
	switch sym.Kind {
	case KindFunction:
		return exprType{Tag: "function", Tok: i.Name}
	case KindType:
		return exprType{Tag: sym.Name, Tok: i.Name}
	default:
		return exprType{Tag: "variable", Tok: i.Name}
	}
}

func (a *Analyzer) VisitArrayLiteral(arr ast.ArrayLiteral) any {
	tok := arr.Bracket
	for _, el := range arr.Elements {
		result := a.visitExpr(el)
		tok = result.Tok
	}
	return exprType{Tag: "array", Tok: tok}
}

func (a *Analyzer) VisitSubscript(s ast.Subscript) any {
	base := a.visitExpr(s.Base)
	if base.Tag != "array" && base.Tag != "variable" {
		a.typeErr("Type '"+base.Tag+"' is not subscriptable", base.Tok)
	}
	a.visitExpr(s.Index)
	return exprType{Tag: "variable"}
}

func (a *Analyzer) VisitAssign(assign ast.Assign) any {
	a.visitExpr(assign.Target)
	result := a.visitExpr(assign.Value)
	if result.Tag == "function" {
		a.typeErr("cannot assign function '"+result.Tok.Lexeme+"' to variable", result.Tok)
	}
	return result
}

func (a *Analyzer) VisitLogical(l ast.Logical) any {
	left := a.visitExpr(l.Left)
	a.visitExpr(l.Right)
	return left
}

// arithmeticOp describes one arithmetic operator for VisitBinary's type
// check. verb is a message template that VisitBinary does not read (it
// builds its messages in its own switch). skipOnEitherOpq reports
// whether a "call" operand counts as opaque alongside "variable"; the
// check is skipped when either operand is opaque.
type arithmeticOp struct {
	verb            string
	skipOnEitherOpq bool
}

var arithmeticOps = map[token.TokenType]arithmeticOp{
	token.ADD:  {"add %s to %s", true},
	token.SUB:  {"subtract %s from %s", false},
	token.MULT: {"multiply %s by %s", false},
	token.DIV:  {"divide %s by %s", false},
	token.MOD:  {"modulo %s by %s", false},
}

func isOpaque(tag string, includeCall bool) bool {
	if tag == "variable" {
		return true
	}
	return includeCall && tag == "call"
}

func (a *Analyzer) VisitBinary(b ast.Binary) any {
	left := a.visitExpr(b.Left)
	right := a.visitExpr(b.Right)

	op, isArithmetic := arithmeticOps[b.Operator.TokenType]
	if !isArithmetic {
		// comparisons and equality perform no static type checking in
		// this language; their result is checked at runtime.
		return left
	}

	leftOpaque := isOpaque(left.Tag, op.skipOnEitherOpq)
	rightOpaque := isOpaque(right.Tag, op.skipOnEitherOpq)
	if !leftOpaque && !rightOpaque && left.Tag != right.Tag {
		switch b.Operator.TokenType {
		case token.ADD:
			a.typeErr(fmt.Sprintf("cannot add '%s' to '%s'", left.Tag, right.Tag), left.Tok)
		case token.SUB:
			a.typeErr(fmt.Sprintf("cannot subtract '%s' from '%s'", right.Tag, left.Tag), left.Tok)
		case token.MULT:
			a.typeErr(fmt.Sprintf("cannot multiply '%s' by '%s'", left.Tag, right.Tag), left.Tok)
		case token.DIV:
			a.typeErr(fmt.Sprintf("cannot divide '%s' by '%s'", left.Tag, right.Tag), left.Tok)
		case token.MOD:
			a.typeErr(fmt.Sprintf("cannot modulo '%s' by '%s'", left.Tag, right.Tag), left.Tok)
		}
	}

	return left
}

func (a *Analyzer) VisitUnary(u ast.Unary) any {
	result := a.visitExpr(u.Right)
	if u.Operator.TokenType == token.BANG {
		return exprType{Tag: "variable"}
	}
	return result
}

func (a *Analyzer) VisitCall(c ast.Call) any {
	callee := a.visitExpr(c.Callee)
	if callee.Tag != "function" {
		a.typeErr("Symbol '"+callee.Tok.Lexeme+"' of type '"+callee.Tag+"' is not callable", callee.Tok)
		return exprType{Tag: "call", Tok: callee.Tok}
	}

	argc := 0
	for _, arg := range c.Args {
		a.visitExpr(arg)
		argc++
	}

	ident, ok := c.Callee.(ast.Identifier)
	if ok {
		sym, _ := a.current.Get(ident.Name.Lexeme, false)
		if sym.Arity != argc {
			a.typeErr(fmt.Sprintf("Expected %d positional argument(s) for '%s', got %d", sym.Arity, callee.Tok.Lexeme, argc), callee.Tok)
		}
	}

	return exprType{Tag: "call", Tok: callee.Tok}
}
