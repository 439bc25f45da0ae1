// Package parser provides a front end for the source expression language.
//
// # Usage
//
//	stmts, err := parser.Parse("let x = 1; x += f();")
//	if err != nil {
//	    // handle error
//	}
//
//	expr, err := parser.ParseExpression("a >>> b")
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for the subset of the
// language the compiler lowers:
//
//	program     → statement*
//	statement   → var_decl | return_stmt | for_stmt | expr_stmt | ";"
//	var_decl    → ("let" | "const" | "var") declarator ("," declarator)* [";"]
//	declarator  → IDENT ["=" assignment]
//	return_stmt → "return" [expression] [";"]
//	for_stmt    → "for" "(" [var_decl | expression] ";" [expression] ";" [expression] ")" body
//	body        → "{" statement* "}" | statement
//	expr_stmt   → expression [";"]
//
// Expressions are parsed by precedence climbing; see parser_expr.go.
// Semicolons may be omitted before a line break, a closing brace or the
// end of input.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Parser parses source text into core AST nodes.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	prev   token.Token // last consumed token
	errors []error
}

// NewParser creates a new parser for the given input.
func NewParser(src string) *Parser {
	p := &Parser{lexer: NewLexer(src)}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole program and returns its statements.
func Parse(src string) ([]core.Stmt, error) {
	p := NewParser(src)
	stmts := p.parseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmts, nil
}

// ParseExpression parses a single expression, including comma sequences.
func ParseExpression(src string) (core.Expr, error) {
	p := NewParser(src)
	expr := p.parseExpression()
	if len(p.errors) == 0 && !p.check(token.EOF) {
		p.unexpected("end of input")
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return expr, nil
}

// Errors returns every error collected so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prev = p.token
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.unexpected(t.String())
	return false
}

// unexpected reports the current token as unexpected.
func (p *Parser) unexpected(want string) {
	if p.check(token.ILLEGAL) {
		p.illegal()
		return
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), want))
}

// illegal reports the lexical error behind an ILLEGAL token.
func (p *Parser) illegal() {
	if err := p.lexer.errorAt(p.token.Pos.Offset); err != nil {
		p.errors = append(p.errors, err)
		return
	}
	p.addError(fmt.Sprintf("unexpected %q", p.token.Literal))
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.addErrorAt(p.token.Pos, msg)
}

// addErrorAt adds a parse error at pos.
func (p *Parser) addErrorAt(pos token.Position, msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     pos,
		Message: msg,
	})
}

// failed reports whether any error has been recorded.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// span returns the range from start to the end of the last consumed token.
func (p *Parser) span(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prev.End}
}

// onNewLine reports whether the current token starts a new line.
func (p *Parser) onNewLine() bool {
	return p.prev.End.IsValid() && p.token.Pos.Line > p.prev.End.Line
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER:
		return fmt.Sprintf("%s %s", tok.Type, tok.Literal)
	case token.STRING:
		return fmt.Sprintf("STRING %q", tok.Literal)
	default:
		return tok.Type.String()
	}
}
