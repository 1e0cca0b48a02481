// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A recursive descent parser is a top-down parser because it starts from
// the top grammar rule and works its way down into the nested
// sub-expressions before reaching the leaves of the syntax tree
// (terminal rules).
package parser

import (
	"fmt"

	"locks/ast"
	"locks/token"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorExpressionTypes = []token.TokenType{
	token.MULT,
	token.DIV,
	token.MOD,
}

var unaryExpressionTypes = []token.TokenType{
	token.BANG,
	token.SUB,
}

// synchronizeTokenTypes is the set of tokens the parser resumes on after a
// syntax error: the end of the erroring statement, or the start of one
// that plausibly begins a fresh declaration.
var synchronizeTokenTypes = map[token.TokenType]bool{
	token.SEMICOLON: true,
	token.EOF:       true,
	token.VAR:       true,
	token.FUNC:      true,
	token.RPA:       true,
	token.RCUR:      true,
	token.RETURN:    true,
}

type Parser struct {
	tokens   []token.Token
	position int
}

// NOTE: the parser's position is the index of the current (not yet
// consumed) token; previous() is the one just before it.

// Make initializes and returns a new Parser instance over the given
// token stream (as produced by the lexer).
func Make(tokens []token.Token) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
	}
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(statements []ast.Stmt) {
	_, err := PrintASTJSON(statements)
	if err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided statements to a .json file
// at the given path.
func (parser *Parser) PrintToFile(statements []ast.Stmt, path string) error {
	return WriteASTJSONToFile(statements, path)
}

func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

func (parser *Parser) isFinished() bool {
	return parser.peek().TokenType == token.EOF
}

func (parser *Parser) checkType(tokenType token.TokenType) bool {
	if parser.isFinished() {
		return false
	}
	return parser.peek().TokenType == tokenType
}

func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// Parse parses the entire token stream into a slice of Stmt (statement)
// nodes, continuing until the end of input. Errors during parsing are
// collected but parsing continues to find additional errors where
// possible.
func (parser *Parser) Parse() ([]ast.Stmt, []error) {
	statements := []ast.Stmt{}
	errors := []error{}

	for !parser.isFinished() {
		statement, err := parser.declaration()
		if err != nil {
			errors = append(errors, err)
			parser.synchronize()
			continue
		}
		statements = append(statements, statement)
	}

	return statements, errors
}

// synchronize discards tokens until one of `; EOF var fun ) } return` is
// next, so a single malformed statement doesn't cascade into spurious
// follow-on errors.
func (parser *Parser) synchronize() {
	if parser.checkType(token.SEMICOLON) {
		parser.advance()
		return
	}
	for !parser.isFinished() && !synchronizeTokenTypes[parser.peek().TokenType] {
		parser.advance()
	}
	if parser.checkType(token.SEMICOLON) {
		parser.advance()
	}
}

// declaration parses a top-level declaration: a function declaration, a
// variable declaration, or a plain statement.
func (parser *Parser) declaration() (ast.Stmt, error) {
	if parser.isMatch([]token.TokenType{token.FUNC}) {
		return parser.funDeclaration()
	}
	if parser.isMatch([]token.TokenType{token.VAR}) {
		return parser.variableDeclaration()
	}
	return parser.statement()
}

func (parser *Parser) funDeclaration() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "Expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LPA, "Expected '(' after function name"); err != nil {
		return nil, err
	}

	params := []token.Token{}
	if !parser.checkType(token.RPA) {
		for {
			param, err := parser.consume(token.IDENTIFIER, "Expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after parameter list"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' before function body"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	return ast.FunDecl{Name: name, Params: params, Body: ast.Block{Statements: body}}, nil
}

// variableDeclaration parses a variable declaration statement. It expects
// an identifier token for the variable name, followed by an optional '='
// and initializer expression, terminated by ';'.
func (parser *Parser) variableDeclaration() (ast.Stmt, error) {
	tok, err := parser.consume(token.IDENTIFIER, "Expected variable name")
	if err != nil {
		return nil, err
	}

	var initializer ast.Expression
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		initializer, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := parser.consumeSemicolon(); err != nil {
		return nil, err
	}

	return ast.VarDecl{Name: tok, Initializer: initializer}, nil
}

// statement parses a single statement.
func (parser *Parser) statement() (ast.Stmt, error) {
	switch {
	case parser.isMatch([]token.TokenType{token.LCUR}):
		statements, err := parser.block()
		if err != nil {
			return nil, err
		}
		return ast.Block{Statements: statements}, nil

	case parser.isMatch([]token.TokenType{token.IF}):
		return parser.ifStatement()

	case parser.isMatch([]token.TokenType{token.WHILE}):
		return parser.whileStatement()

	case parser.isMatch([]token.TokenType{token.FOR}):
		return parser.forStatement()

	case parser.isMatch([]token.TokenType{token.RETURN}):
		return parser.returnStatement()

	case parser.isMatch([]token.TokenType{token.CONTINUE}):
		tok := parser.previous()
		if _, err := parser.consumeSemicolon(); err != nil {
			return nil, err
		}
		return ast.Continue{Tok: tok}, nil

	case parser.isMatch([]token.TokenType{token.BREAK}):
		tok := parser.previous()
		if _, err := parser.consumeSemicolon(); err != nil {
			return nil, err
		}
		return ast.Break{Tok: tok}, nil
	}

	return parser.expressionStatement()
}

func (parser *Parser) expressionStatement() (ast.Stmt, error) {
	expression, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consumeSemicolon(); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: expression}, nil
}

// whileStatement parses a while loop: "while" "(" expr ")" block.
func (parser *Parser) whileStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after while condition"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' to begin while body"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return ast.While{Condition: cond, Body: ast.Block{Statements: body}}, nil
}

// forStatement desugars "for (init; cond; update) body" into
// "{ init; while (cond_or_true) { body; update } }" at parse time; a
// missing condition becomes literal true.
func (parser *Parser) forStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	switch {
	case parser.isMatch([]token.TokenType{token.SEMICOLON}):
		init = nil
	case parser.isMatch([]token.TokenType{token.VAR}):
		decl, err := parser.variableDeclaration()
		if err != nil {
			return nil, err
		}
		init = decl
	default:
		stmt, err := parser.expressionStatement()
		if err != nil {
			return nil, err
		}
		init = stmt
	}

	var cond ast.Expression
	if !parser.checkType(token.SEMICOLON) {
		var err error
		cond, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after loop condition"); err != nil {
		return nil, err
	}

	var update ast.Expression
	if !parser.checkType(token.RPA) {
		var err error
		update, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after for clauses"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' to begin for body"); err != nil {
		return nil, err
	}
	bodyStatements, err := parser.block()
	if err != nil {
		return nil, err
	}
	body := ast.Block{Statements: bodyStatements}

	if cond == nil {
		cond = ast.Literal{Value: true}
	}

	if update != nil {
		body.Statements = append(body.Statements, ast.ExpressionStmt{Expression: update})
	}

	loop := ast.While{Condition: cond, Body: body}

	if init == nil {
		return loop, nil
	}
	return ast.Block{Statements: []ast.Stmt{init, loop}}, nil
}

// ifStatement parses an if/elsif*/else chain.
func (parser *Parser) ifStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after if condition"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' to begin if body"); err != nil {
		return nil, err
	}
	thenStatements, err := parser.block()
	if err != nil {
		return nil, err
	}

	ifStmt := ast.If{Condition: cond, Then: ast.Block{Statements: thenStatements}}

	for parser.isMatch([]token.TokenType{token.ELSEIF}) {
		if _, err := parser.consume(token.LPA, "Expected '(' after 'elsif'"); err != nil {
			return nil, err
		}
		elsifCond, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after elsif condition"); err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.LCUR, "Expected '{' to begin elsif body"); err != nil {
			return nil, err
		}
		elsifStatements, err := parser.block()
		if err != nil {
			return nil, err
		}
		ifStmt.ElseIfs = append(ifStmt.ElseIfs, ast.ElseIf{
			Condition: elsifCond,
			Body:      ast.Block{Statements: elsifStatements},
		})
	}

	if parser.isMatch([]token.TokenType{token.ELSE}) {
		if _, err := parser.consume(token.LCUR, "Expected '{' to begin else body"); err != nil {
			return nil, err
		}
		elseStatements, err := parser.block()
		if err != nil {
			return nil, err
		}
		elseBlock := ast.Block{Statements: elseStatements}
		ifStmt.Else = &elseBlock
	}

	return ifStmt, nil
}

func (parser *Parser) returnStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	var value ast.Expression
	if !parser.checkType(token.SEMICOLON) {
		var err error
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consumeSemicolon(); err != nil {
		return nil, err
	}
	return ast.Return{Value: value, Line: keyword.Line}, nil
}

// block parses a block statement's contents; the opening '{' has already
// been consumed by the caller.
func (parser *Parser) block() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}

	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	if _, err := parser.consume(token.RCUR, "Expected '}' after block"); err != nil {
		return nil, err
	}
	return statements, nil
}

func (parser *Parser) expression() (ast.Expression, error) {
	return parser.assignment()
}

// assignment parses an assignment expression. The left-hand side is
// parsed at `or` precedence; if it's followed by '=', the LHS must
// reduce to an Identifier or a Subscript to be a valid assignment target.
func (parser *Parser) assignment() (ast.Expression, error) {
	expression, err := parser.or()
	if err != nil {
		return nil, err
	}
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		equalsToken := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		switch expression.(type) {
		case ast.Identifier, ast.Subscript:
			return ast.Assign{Target: expression, Value: value}, nil
		default:
			return nil, CreateSyntaxError(equalsToken.Line, equalsToken.Column, "Invalid assignment target")
		}
	}
	return expression, nil
}

func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		right, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		right, err := parser.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) equality() (ast.Expression, error) {
	exp, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		operator := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

func (parser *Parser) comparison() (ast.Expression, error) {
	exp, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		operator := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

func (parser *Parser) term() (ast.Expression, error) {
	exp, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		operator := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

func (parser *Parser) factor() (ast.Expression, error) {
	exp, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

// unary parses unary prefix expressions using operators "!" or "-".
func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch(unaryExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Operator: operator, Right: right}, nil
	}
	return parser.call()
}

// call parses postfix call and subscript chains over a primary
// expression: "primary ( '(' args ')' | '[' index ']' )*".
func (parser *Parser) call() (ast.Expression, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case parser.isMatch([]token.TokenType{token.LPA}):
			expr, err = parser.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case parser.isMatch([]token.TokenType{token.LSQUARE}):
			bracket := parser.previous()
			index, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RSQUARE, "Expected ']' after array index"); err != nil {
				return nil, err
			}
			expr = ast.Subscript{Base: expr, Index: index, Bracket: bracket}
		default:
			return expr, nil
		}
	}
}

func (parser *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	args := []ast.Expression{}
	if !parser.checkType(token.RPA) {
		for {
			arg, err := parser.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	paren, err := parser.consume(token.RPA, "Expected ')' after arguments")
	if err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Args: args, Paren: paren}, nil
}

// primary parses the most basic forms of expressions: literals, array
// literals, identifiers, and parenthesized groupings.
func (parser *Parser) primary() (ast.Expression, error) {
	switch {
	case parser.isMatch([]token.TokenType{token.FALSE}):
		return ast.Literal{Value: false}, nil
	case parser.isMatch([]token.TokenType{token.TRUE}):
		return ast.Literal{Value: true}, nil
	case parser.isMatch([]token.TokenType{token.NIL}):
		return ast.Literal{Value: nil}, nil
	case parser.isMatch([]token.TokenType{token.FLOAT, token.INT, token.STRING}):
		return ast.Literal{Value: parser.previous().Literal}, nil
	case parser.isMatch([]token.TokenType{token.IDENTIFIER}):
		return ast.Identifier{Name: parser.previous()}, nil
	case parser.isMatch([]token.TokenType{token.LPA}):
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after expression"); err != nil {
			return nil, err
		}
		return ast.Grouping{Expression: expr}, nil
	case parser.isMatch([]token.TokenType{token.LSQUARE}):
		bracket := parser.previous()
		elements := []ast.Expression{}
		if !parser.checkType(token.RSQUARE) {
			for {
				el, err := parser.expression()
				if err != nil {
					return nil, err
				}
				elements = append(elements, el)
				if !parser.isMatch([]token.TokenType{token.COMMA}) {
					break
				}
			}
		}
		if _, err := parser.consume(token.RSQUARE, "Expected ']' after array elements"); err != nil {
			return nil, err
		}
		return ast.ArrayLiteral{Elements: elements, Bracket: bracket}, nil
	}

	currentToken := parser.peek()
	return nil, CreateSyntaxError(currentToken.Line, currentToken.Column, "Unrecognised expression.")
}

// consume advances past the current token if it matches tokenType,
// otherwise returns a SyntaxErr at the current token's position.
func (parser *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	currentToken := parser.peek()
	return token.Token{}, CreateSyntaxError(currentToken.Line, currentToken.Column, errorMessage)
}

// consumeSemicolon consumes a terminating ';', reporting the error at the
// previous token's position (the end of the statement that's missing it)
// rather than wherever the parser happened to stop.
func (parser *Parser) consumeSemicolon() (token.Token, error) {
	if parser.checkType(token.SEMICOLON) {
		return parser.advance(), nil
	}
	prev := parser.previous()
	return token.Token{}, CreateSyntaxError(prev.Line, prev.Column, fmt.Sprintf("Expected '%s' after statement.", token.SEMICOLON))
}
