package lexer

import (
	"strconv"

	"locks/diag"
	"locks/token"
)

func isLetter(char rune) bool {
	return rune('a') <= char && char <= rune('z') || rune('A') <= char && char <= rune('Z') || char == rune('_')
}

func isNumber(char rune) bool {
	return rune('0') <= char && char <= rune('9')
}

// Lexer represents a lexical scanner for processing input text into
// tokens. It maintains the current scanning state, including the
// position within the input, the current character, and metadata for
// line/column tracking. The Lexer also records tokens and errors
// encountered during scanning.
type Lexer struct {
	// rune slice of the input string being scanned.
	characters []rune

	// Total number of runes in the input.
	totalChars int

	// Stores the sequence of tokens produced during lexing.
	tokens []token.Token

	// The index of the character that was previously read.
	position int

	// The current character being examined.
	currentChar rune

	// The index of the next position where the next character will be
	// read.
	readPosition int

	// Tracks the number of lines processed (incremented on newline);
	// 1-based to match source line numbers a user would count.
	lineCount int32

	// Tracks the character's position within the current line. Gets
	// reset on every new line back to 0.
	column int

	// Stores any scanning errors that occur during lexing.
	errors []error
}

// New initializes and returns a new Lexer instance over the given source
// text.
func New(input string) *Lexer {
	lexer := &Lexer{
		characters: []rune(input),
		lineCount:  1,
	}
	lexer.totalChars = len(lexer.characters)
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) advance() {
	lexer.position = lexer.readPosition
	lexer.readPosition++
	lexer.column = lexer.readPosition
}

func (lexer *Lexer) isFinished() bool {
	return lexer.readPosition >= lexer.totalChars
}

func (lexer *Lexer) readChar() {
	if lexer.isFinished() {
		lexer.currentChar = rune(0)
	} else {
		lexer.currentChar = lexer.characters[lexer.readPosition]
	}
	lexer.advance()
}

// readIllegal reads a sequence of characters from the input until
// whitespace or end-of-file, used to capture the extent of an illegal
// token for the diagnostic message.
func (lexer *Lexer) readIllegal(startPos int) string {
	for !lexer.isWhiteSpace(lexer.currentChar) && !lexer.isFinished() {
		lexer.readChar()
	}
	return string(lexer.characters[startPos:lexer.readPosition])
}

func (lexer *Lexer) peek() rune {
	if lexer.isFinished() {
		return rune(0)
	}
	return lexer.characters[lexer.readPosition]
}

func (lexer *Lexer) peekNext() rune {
	nextReadPos := lexer.readPosition + 1
	if nextReadPos >= lexer.totalChars {
		return rune(0)
	}
	return lexer.characters[nextReadPos]
}

// handleLineComment consumes a "//" comment to the end of the line.
func (lexer *Lexer) handleLineComment() {
	for lexer.currentChar != rune('\n') && !lexer.isFinished() {
		lexer.readChar()
	}
}

// handleBlockComment consumes a "/* ... */" comment. It does not nest:
// the first "*/" closes the outermost "/*", matching the original
// lexer's behavior.
func (lexer *Lexer) handleBlockComment() {
	for !lexer.isFinished() {
		if lexer.currentChar == rune('*') && lexer.peek() == rune('/') {
			lexer.readChar()
			break
		}
		if lexer.currentChar == rune('\n') {
			lexer.lineCount++
			lexer.column = 0
		}
		lexer.readChar()
	}
}

// handleNumber scans a sequence of digits (and at most one decimal
// point) from the input and creates an integer or floating-point
// literal token accordingly.
func (lexer *Lexer) handleNumber() error {
	initPos := lexer.position
	decimalCount := 0

	for {
		nextChar := lexer.peek()
		if nextChar == rune(0) || nextChar == rune('\n') || (!isNumber(nextChar) && nextChar != rune('.')) {
			break
		}
		if nextChar == '.' {
			decimalCount++
		}
		lexer.advance()
	}
	number := string(lexer.characters[initPos:lexer.readPosition])
	if decimalCount > 1 {
		return diag.NewSyntaxErr(lexer.lineCount, lexer.column, "Number contains more than 1 decimal point(s)")
	}

	var tok token.Token
	if decimalCount == 0 {
		result, _ := strconv.ParseInt(number, 10, 64)
		tok = token.CreateLiteralToken(token.INT, result, number, lexer.lineCount, lexer.column)
	} else {
		result, _ := strconv.ParseFloat(number, 64)
		tok = token.CreateLiteralToken(token.FLOAT, result, number, lexer.lineCount, lexer.column)
	}
	lexer.tokens = append(lexer.tokens, tok)
	return nil
}

// handleIdentifier processes a user identifier or a language keyword in
// the source code.
func (lexer *Lexer) handleIdentifier() {
	initPos := lexer.position
	for {
		result := lexer.peek()
		if result == rune(0) || (!isLetter(result) && !isNumber(result)) {
			break
		}
		lexer.advance()
	}

	identifier := string(lexer.characters[initPos:lexer.readPosition])
	tok := token.Token{
		TokenType: token.IDENTIFIER,
		Lexeme:    identifier,
		Line:      lexer.lineCount,
		Column:    lexer.column,
	}
	if keywordType, exists := token.KeyWords[identifier]; exists {
		tok.TokenType = keywordType
	}
	lexer.tokens = append(lexer.tokens, tok)
}

// handleStringLiteral processes string literals delimited by either '
// or ". The body is consumed literally with no escape processing
// (§9): `\n` in source stays the two characters `\` and `n`.
func (lexer *Lexer) handleStringLiteral(quote rune) error {
	startLine, startColumn := lexer.lineCount, lexer.column
	initPos := lexer.position
	isClosed := false

	for {
		result := lexer.peek()
		if result == 0 {
			break
		}
		lexer.advance()
		if result == '\n' {
			lexer.lineCount++
			lexer.column = 0
		}
		if result == quote {
			isClosed = true
			break
		}
	}

	if !isClosed {
		return diag.NewSyntaxErr(startLine, startColumn, "Unmatched Quote")
	}

	stringLiteral := string(lexer.characters[initPos+1 : lexer.position])
	lexer.tokens = append(lexer.tokens, token.CreateLiteralToken(token.STRING, stringLiteral, stringLiteral, startLine, startColumn))
	return nil
}

func (lexer *Lexer) isMatch(expected rune) bool {
	if lexer.isFinished() {
		return false
	}
	if lexer.characters[lexer.readPosition] == expected {
		lexer.readPosition++
		return true
	}
	return false
}

// isWhiteSpace determines whether a given rune represents whitespace:
// carriage return, tab, ASCII space, or newline. Newlines also advance
// the line counter and reset the column.
func (lexer *Lexer) isWhiteSpace(char rune) bool {
	if char == rune(' ') || char == rune('\r') || char == rune('\t') {
		return true
	}
	if lexer.currentChar == rune('\n') {
		lexer.lineCount++
		lexer.column = 0
		return true
	}
	return false
}

func (lexer *Lexer) skipWhiteSpace() {
	for lexer.isWhiteSpace(lexer.currentChar) {
		lexer.readChar()
	}
}

// createToken processes the current character and appends a token (or
// records a diagnostic) for it. Two-character operators (==, !=, <=,
// >=) take priority over their single-character counterparts.
func (lexer *Lexer) createToken() {
	lexer.skipWhiteSpace()

	switch lexer.currentChar {
	case rune('('):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.LPA, lexer.lineCount, lexer.column))
	case rune(')'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.RPA, lexer.lineCount, lexer.column))
	case rune('['):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.LSQUARE, lexer.lineCount, lexer.column))
	case rune(']'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.RSQUARE, lexer.lineCount, lexer.column))
	case rune('{'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.LCUR, lexer.lineCount, lexer.column))
	case rune('}'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.RCUR, lexer.lineCount, lexer.column))
	case rune(';'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.SEMICOLON, lexer.lineCount, lexer.column))
	case rune(','):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.COMMA, lexer.lineCount, lexer.column))
	case rune('*'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.MULT, lexer.lineCount, lexer.column))
	case rune('+'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.ADD, lexer.lineCount, lexer.column))
	case rune('-'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.SUB, lexer.lineCount, lexer.column))
	case rune('%'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.MOD, lexer.lineCount, lexer.column))
	case rune('/'):
		if lexer.peek() == rune('/') {
			lexer.handleLineComment()
		} else if lexer.peek() == rune('*') {
			lexer.readChar()
			lexer.readChar()
			lexer.handleBlockComment()
		} else {
			lexer.tokens = append(lexer.tokens, token.CreateToken(token.DIV, lexer.lineCount, lexer.column))
		}
	case rune('='):
		tok := token.CreateToken(token.ASSIGN, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.EQUAL_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('!'):
		tok := token.CreateToken(token.BANG, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.NOT_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('<'):
		tok := token.CreateToken(token.LESS, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.LESS_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('>'):
		tok := token.CreateToken(token.LARGER, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.LARGER_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('"'), rune('\''):
		if err := lexer.handleStringLiteral(lexer.currentChar); err != nil {
			lexer.errors = append(lexer.errors, err)
		}
	default:
		if isLetter(lexer.currentChar) {
			lexer.handleIdentifier()
		} else if isNumber(lexer.currentChar) {
			if err := lexer.handleNumber(); err != nil {
				lexer.errors = append(lexer.errors, err)
			}
		} else if !lexer.isFinished() {
			position := lexer.position
			line, column := lexer.lineCount, lexer.column
			currentChar := lexer.currentChar
			illegal := lexer.readIllegal(position)
			lexer.errors = append(lexer.errors, diag.NewIllegalCharError(line, column,
				"unexpected character '"+string(currentChar)+"' in '"+illegal+"'"))
		}
	}

	lexer.readChar()
}

// Scan performs lexical analysis on the input and returns every token
// produced, ending with EOF, plus any diagnostics accumulated along the
// way. The lexer always proceeds to EOF regardless of errors so the
// caller sees every lexical mistake in one pass.
func (lexer *Lexer) Scan() ([]token.Token, []error) {
	if lexer.totalChars > 0 {
		for lexer.currentChar != rune(0) {
			lexer.createToken()
		}
	}
	lexer.tokens = append(lexer.tokens, token.CreateToken(token.EOF, lexer.lineCount, lexer.column))
	return lexer.tokens, lexer.errors
}
