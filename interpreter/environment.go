package interpreter

import (
	"locks/diag"
	"locks/token"
	"locks/value"
)

// Environment holds the variable bindings visible at one lexical scope,
// chained to the scope it is nested in. A function's Environment is
// created fresh on every call, enclosed by the environment captured at
// the function's declaration site — not the caller's — giving Locks
// lexical rather than dynamic scoping.
type Environment struct {
	values    map[string]value.Value
	enclosing *Environment
}

// NewEnvironment creates an environment enclosed by parent (nil for the
// global scope).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values:    make(map[string]value.Value),
		enclosing: parent,
	}
}

// Define binds name to v in this environment, shadowing any binding of
// the same name in an enclosing scope.
func (e *Environment) Define(name string, v value.Value) {
	e.values[name] = v
}

// Get resolves name, walking outward through enclosing scopes.
func (e *Environment) Get(name token.Token) (value.Value, error) {
	if v, ok := e.values[name.Lexeme]; ok {
		return v, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, diag.NewNameErr(name.Line, name.Column, "name '"+name.Lexeme+"' not declared")
}

// Assign rebinds an already-declared name, walking outward through
// enclosing scopes to find the scope that owns it.
func (e *Environment) Assign(name token.Token, v value.Value) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = v
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, v)
	}
	return diag.NewNameErr(name.Line, name.Column, "name '"+name.Lexeme+"' not declared")
}
