package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"locks/ast"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// astPrinter implements the Visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices. Each
// Visit method returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	return map[string]any{"type": "ExpressionStmt", "expression": s.Expression.Accept(p)}
}

func (p astPrinter) VisitVarDecl(d ast.VarDecl) any {
	return map[string]any{
		"type":        "VarDecl",
		"name":        d.Name.Lexeme,
		"initializer": nilOrAccept(d.Initializer, p),
	}
}

func (p astPrinter) VisitFunDecl(d ast.FunDecl) any {
	params := make([]string, 0, len(d.Params))
	for _, tok := range d.Params {
		params = append(params, tok.Lexeme)
	}
	return map[string]any{
		"type":   "FunDecl",
		"name":   d.Name.Lexeme,
		"params": params,
		"body":   d.Body.Accept(p),
	}
}

func (p astPrinter) VisitBlock(b ast.Block) any {
	stmts := make([]any, 0, len(b.Statements))
	for _, stmt := range b.Statements {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{"type": "Block", "statements": stmts}
}

func (p astPrinter) VisitIf(s ast.If) any {
	elsifs := make([]any, 0, len(s.ElseIfs))
	for _, e := range s.ElseIfs {
		elsifs = append(elsifs, map[string]any{
			"condition": e.Condition.Accept(p),
			"body":      e.Body.Accept(p),
		})
	}
	var elseVal any
	if s.Else != nil {
		elseVal = s.Else.Accept(p)
	}
	return map[string]any{
		"type":      "If",
		"condition": s.Condition.Accept(p),
		"then":      s.Then.Accept(p),
		"elsif":     elsifs,
		"else":      elseVal,
	}
}

func (p astPrinter) VisitWhile(s ast.While) any {
	return map[string]any{
		"type":      "While",
		"condition": s.Condition.Accept(p),
		"body":      s.Body.Accept(p),
	}
}

func (p astPrinter) VisitReturn(s ast.Return) any {
	return map[string]any{"type": "Return", "value": nilOrAccept(s.Value, p)}
}

func (p astPrinter) VisitContinue(ast.Continue) any {
	return map[string]any{"type": "Continue"}
}

func (p astPrinter) VisitBreak(ast.Break) any {
	return map[string]any{"type": "Break"}
}

func (p astPrinter) VisitLogical(e ast.Logical) any {
	return map[string]any{
		"type": "Logical", "operator": e.Operator.Lexeme,
		"left": e.Left.Accept(p), "right": e.Right.Accept(p),
	}
}

func (p astPrinter) VisitAssign(a ast.Assign) any {
	return map[string]any{"type": "Assign", "target": a.Target.Accept(p), "value": a.Value.Accept(p)}
}

func (p astPrinter) VisitIdentifier(i ast.Identifier) any {
	return map[string]any{"type": "Identifier", "name": i.Name.Lexeme}
}

func (p astPrinter) VisitBinary(b ast.Binary) any {
	return map[string]any{
		"type": "Binary", "operator": b.Operator.Lexeme,
		"left": b.Left.Accept(p), "right": b.Right.Accept(p),
	}
}

func (p astPrinter) VisitUnary(u ast.Unary) any {
	return map[string]any{"type": "Unary", "operator": u.Operator.Lexeme, "right": u.Right.Accept(p)}
}

func (p astPrinter) VisitLiteral(l ast.Literal) any {
	// literals are terminal values and can be used directly in JSON
	return l.Value
}

func (p astPrinter) VisitGrouping(g ast.Grouping) any {
	return map[string]any{"type": "Grouping", "expression": g.Expression.Accept(p)}
}

func (p astPrinter) VisitArrayLiteral(a ast.ArrayLiteral) any {
	elems := make([]any, 0, len(a.Elements))
	for _, e := range a.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{"type": "ArrayLiteral", "elements": elems}
}

func (p astPrinter) VisitSubscript(s ast.Subscript) any {
	return map[string]any{"type": "Subscript", "base": s.Base.Accept(p), "index": s.Index.Accept(p)}
}

func (p astPrinter) VisitCall(c ast.Call) any {
	args := make([]any, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, a.Accept(p))
	}
	return map[string]any{"type": "Call", "callee": c.Callee.Accept(p), "args": args}
}

// nilOrAccept returns nil if expr is nil, otherwise it continues
// processing the expression and returns the result.
func nilOrAccept(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON converts a slice of statements into a prettified JSON string.
func PrintASTJSON(statements []ast.Stmt) (string, error) {
	printer := astPrinter{}
	out := make([]any, 0, len(statements))
	for _, s := range statements {
		out = append(out, s.Accept(printer))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(statements []ast.Stmt, path string) error {
	s, err := PrintASTJSON(statements)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer fDescriptor.Close()

	if _, err := fDescriptor.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}
