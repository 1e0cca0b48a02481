package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"locks/ast"
	"locks/lexer"
	"locks/token"
)

func lexSource(t *testing.T, src string) []token.Token {
	t.Helper()
	tokens, errs := lexer.New(src).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	return tokens
}

func TestPrintASTJSON_ExpressionStmt(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Literal{Value: int64(42)}},
	}

	jsonString, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonString), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, _ := node["type"].(string); typ != "ExpressionStmt" {
		t.Fatalf("expected type ExpressionStmt, got %v", node["type"])
	}

	expr := node["expression"]
	if num, ok := expr.(float64); !ok || num != 42 {
		t.Fatalf("expected expression 42, got %v", expr)
	}
}

func TestPrintASTJSON_VarDecl_NilInitializer(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "x", 0, 0)
	stmts := []ast.Stmt{
		ast.VarDecl{Name: name, Initializer: nil},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	node := out[0]
	if typ, _ := node["type"].(string); typ != "VarDecl" {
		t.Fatalf("expected type VarDecl, got %v", node["type"])
	}
	if nameVal, _ := node["name"].(string); nameVal != "x" {
		t.Fatalf("expected name 'x', got %v", node["name"])
	}
	if initVal, exists := node["initializer"]; !exists || initVal != nil {
		t.Fatalf("expected initializer to be nil, got %v", initVal)
	}
}

func TestPrintASTJSON_BinaryExpression(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Binary{
			Left:     ast.Literal{Value: int64(1)},
			Operator: token.CreateToken(token.ADD, 0, 0),
			Right:    ast.Literal{Value: int64(2)},
		}},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	node := out[0]
	expr, ok := node["expression"].(map[string]any)
	if !ok {
		t.Fatalf("expected expression object, got %v", node["expression"])
	}
	if typ, _ := expr["type"].(string); typ != "Binary" {
		t.Fatalf("expected Binary expression, got %v", expr["type"])
	}
	if op, _ := expr["operator"].(string); op != "+" {
		t.Fatalf("expected operator '+', got %v", expr["operator"])
	}
}

func TestPrintASTJSON_IfWithElsif(t *testing.T) {
	tokens := lexSource(t, `if (1) { } elsif (2) { } else { }`)
	p := Make(tokens)
	stmts, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	jsonString, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonString), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	node := out[0]
	if typ, _ := node["type"].(string); typ != "If" {
		t.Fatalf("expected type If, got %v", node["type"])
	}
	elsifs, ok := node["elsif"].([]any)
	if !ok || len(elsifs) != 1 {
		t.Fatalf("expected 1 elsif clause, got %v", node["elsif"])
	}
	if node["else"] == nil {
		t.Fatalf("expected else clause to be present")
	}
}

func TestWriteASTJSONToFile(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Literal{Value: "hello locks!"}},
	}

	filePath := filepath.Join(os.TempDir(), "locks_ast_printer_test.json")
	defer os.Remove(filePath)

	if err := WriteASTJSONToFile(stmts, filePath); err != nil {
		t.Fatalf("WriteASTJSONToFile error: %v", err)
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(bytes, &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	node := out[0]
	if expr, _ := node["expression"].(string); expr != "hello locks!" {
		t.Fatalf("expected expression 'hello locks!', got %v", node["expression"])
	}
}
