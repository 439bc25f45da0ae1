package parser

import (
	"fmt"

	"github.com/leapstack-labs/leaplua/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %s, expected %s"
	ErrUnexpectedExpr      = "unexpected token %s, expected expression"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrInvalidEscape       = "invalid escape sequence"
	ErrInvalidNumber       = "invalid number literal"
	ErrInvalidTarget       = "invalid assignment target"
	ErrInvalidDelete       = "delete operand must be a property access"
	ErrUnaryExponent       = "unary operator before ** requires parentheses"
	ErrMissingSemicolon    = "expected ; after statement"
	ErrForDeclarators      = "for initializer declares more than one variable"
	ErrConstWithoutInit    = "const declaration requires an initializer"
)
