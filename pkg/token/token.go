// Package token defines the token types of the source expression language.
//
// Operators are grouped so that range checks (IsOperator, IsAssign) stay cheap.
// Compound assignment tokens map back to the binary operator they apply
// through BaseOperator.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // ALL_CAPS names follow the lexer convention
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 123, 45.67, 0x1F
	STRING // 'hello' or "hello"

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	STARSTAR // **
	EQ       // ==
	STRICTEQ // ===
	NE       // !=
	STRICTNE // !==
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	ANDAND   // &&
	OROR     // ||
	BANG     // !
	AMP      // &
	PIPE     // |
	CARET    // ^
	TILDE    // ~
	SHL      // <<
	SHR      // >>
	USHR     // >>>
	INC      // ++
	DEC      // --

	// Assignment operators
	ASSIGN          // =
	PLUS_ASSIGN     // +=
	MINUS_ASSIGN    // -=
	STAR_ASSIGN     // *=
	SLASH_ASSIGN    // /=
	PERCENT_ASSIGN  // %=
	STARSTAR_ASSIGN // **=
	AMP_ASSIGN      // &=
	PIPE_ASSIGN     // |=
	CARET_ASSIGN    // ^=
	SHL_ASSIGN      // <<=
	SHR_ASSIGN      // >>=
	USHR_ASSIGN     // >>>=

	// Punctuation
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }

	// Keywords (alphabetical)
	CONST
	DELETE
	FALSE
	FOR
	IN
	LET
	NULL
	RETURN
	TRUE
	UNDEFINED
	VAR
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their source spelling.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	STARSTAR: "**",
	EQ:       "==",
	STRICTEQ: "===",
	NE:       "!=",
	STRICTNE: "!==",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	ANDAND:   "&&",
	OROR:     "||",
	BANG:     "!",
	AMP:      "&",
	PIPE:     "|",
	CARET:    "^",
	TILDE:    "~",
	SHL:      "<<",
	SHR:      ">>",
	USHR:     ">>>",
	INC:      "++",
	DEC:      "--",

	ASSIGN:          "=",
	PLUS_ASSIGN:     "+=",
	MINUS_ASSIGN:    "-=",
	STAR_ASSIGN:     "*=",
	SLASH_ASSIGN:    "/=",
	PERCENT_ASSIGN:  "%=",
	STARSTAR_ASSIGN: "**=",
	AMP_ASSIGN:      "&=",
	PIPE_ASSIGN:     "|=",
	CARET_ASSIGN:    "^=",
	SHL_ASSIGN:      "<<=",
	SHR_ASSIGN:      ">>=",
	USHR_ASSIGN:     ">>>=",

	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	LBRACE:    "{",
	RBRACE:    "}",

	CONST:     "const",
	DELETE:    "delete",
	FALSE:     "false",
	FOR:       "for",
	IN:        "in",
	LET:       "let",
	NULL:      "null",
	RETURN:    "return",
	TRUE:      "true",
	UNDEFINED: "undefined",
	VAR:       "var",
}

// keywords maps keyword spellings to their token types.
var keywords = map[string]TokenType{
	"const":     CONST,
	"delete":    DELETE,
	"false":     FALSE,
	"for":       FOR,
	"in":        IN,
	"let":       LET,
	"null":      NULL,
	"return":    RETURN,
	"true":      TRUE,
	"undefined": UNDEFINED,
	"var":       VAR,
}

// compoundBase maps compound assignment tokens to the binary operator they apply.
var compoundBase = map[TokenType]TokenType{
	PLUS_ASSIGN:     PLUS,
	MINUS_ASSIGN:    MINUS,
	STAR_ASSIGN:     STAR,
	SLASH_ASSIGN:    SLASH,
	PERCENT_ASSIGN:  PERCENT,
	STARSTAR_ASSIGN: STARSTAR,
	AMP_ASSIGN:      AMP,
	PIPE_ASSIGN:     PIPE,
	CARET_ASSIGN:    CARET,
	SHL_ASSIGN:      SHL,
	SHR_ASSIGN:      SHR,
	USHR_ASSIGN:     USHR,
}

// LookupIdent returns the keyword token for ident, or IDENT.
// Keywords are case-sensitive.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= CONST && t <= VAR
}

// IsOperator returns true if the token type is an expression operator
// (excluding assignment forms).
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= DEC
}

// IsAssign returns true for "=" and every compound assignment token.
func IsAssign(t TokenType) bool {
	return t >= ASSIGN && t <= USHR_ASSIGN
}

// BaseOperator returns the binary operator applied by a compound assignment.
// The second result is false for tokens that are not compound assignments.
func BaseOperator(t TokenType) (TokenType, bool) {
	op, ok := compoundBase[t]
	return op, ok
}

// CompoundOf returns the compound assignment token for a binary operator.
func CompoundOf(op TokenType) (TokenType, bool) {
	for compound, base := range compoundBase {
		if base == op {
			return compound, true
		}
	}
	return ILLEGAL, false
}

// Token represents a lexical token with position information.
// End is the position just past the last character of the token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	End     Position
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{Start: t.Pos, End: t.End}
}
