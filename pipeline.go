package main

import (
	"locks/ast"
	"locks/diag"
	"locks/lexer"
	"locks/parser"
	"locks/semantic"
)

// frontend runs a source program through lexing, parsing, and semantic
// analysis: the three phases every back-end (tree-walking interpreter,
// bytecode compiler) shares before diverging. It stops and reports at
// the first phase that accumulates any diagnostics, since later phases
// assume an already-valid program.
func frontend(src string) ([]ast.Stmt, error) {
	tokens, lexErrs := lexer.New(src).Scan()
	if len(lexErrs) > 0 {
		return nil, diag.Combine(lexErrs)
	}

	stmts, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		return nil, diag.Combine(parseErrs)
	}

	if _, semErrs := semantic.Analyze(stmts); len(semErrs) > 0 {
		return nil, diag.Combine(semErrs)
	}

	return stmts, nil
}
