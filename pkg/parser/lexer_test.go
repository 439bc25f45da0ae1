package parser

import (
	"testing"

	"github.com/leapstack-labs/leaplua/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := NewLexer(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
		require.Less(t, len(toks), 1000, "lexer did not terminate")
	}
}

func TestLexerOperatorsLongestMatch(t *testing.T) {
	toks := lexAll(t, "a >>>= b >>> c >>= d >> e >= f > g")
	var types []token.TokenType
	for _, tok := range toks {
		if tok.Type != token.IDENT {
			types = append(types, tok.Type)
		}
	}
	assert.Equal(t, []token.TokenType{
		token.USHR_ASSIGN, token.USHR, token.SHR_ASSIGN, token.SHR, token.GE, token.GT, token.EOF,
	}, types)
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.TokenType
	}{
		{"update", "x++ --y", []token.TokenType{token.IDENT, token.INC, token.DEC, token.IDENT, token.EOF}},
		{"strict equality", "a === b !== c", []token.TokenType{token.IDENT, token.STRICTEQ, token.IDENT, token.STRICTNE, token.IDENT, token.EOF}},
		{"exponent assign", "a **= 2", []token.TokenType{token.IDENT, token.STARSTAR_ASSIGN, token.NUMBER, token.EOF}},
		{"keywords", "let const var for in delete return", []token.TokenType{
			token.LET, token.CONST, token.VAR, token.FOR, token.IN, token.DELETE, token.RETURN, token.EOF,
		}},
		{"literals", "true false null undefined", []token.TokenType{token.TRUE, token.FALSE, token.NULL, token.UNDEFINED, token.EOF}},
		{"comments", "a // line\n/* block */ b", []token.TokenType{token.IDENT, token.IDENT, token.EOF}},
		{"logical", "a && b || !c", []token.TokenType{token.IDENT, token.ANDAND, token.IDENT, token.OROR, token.BANG, token.IDENT, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []token.TokenType
			for _, tok := range lexAll(t, tt.src) {
				got = append(got, tok.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"3.25", "3.25"},
		{".5", ".5"},
		{"1e3", "1e3"},
		{"2.5E-2", "2.5E-2"},
		{"1_000_000", "1000000"},
		{"0xFF", "255"},
		{"0b1010", "10"},
		{"0o17", "15"},
		{"0x_ff", "255"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := lexAll(t, tt.src)
			require.Len(t, toks, 2)
			assert.Equal(t, token.NUMBER, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single quotes", `'abc'`, "abc"},
		{"double quotes", `"abc"`, "abc"},
		{"escaped quote", `'it\'s'`, "it's"},
		{"newline", `"a\nb"`, "a\nb"},
		{"hex", `"\x41"`, "A"},
		{"unicode", `"é"`, "é"},
		{"unicode braces", `"\u{1F600}"`, "😀"},
		{"unknown escape", `"\q"`, "q"},
		{"nul", `"\0"`, "\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(t, tt.src)
			require.Len(t, toks, 2)
			assert.Equal(t, token.STRING, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unterminated string", `"abc`, ErrUnterminatedString},
		{"string across lines", "'a\nb'", ErrUnterminatedString},
		{"bad hex escape", `"\xZZ"`, ErrInvalidEscape},
		{"bad number", "1e", ErrInvalidNumber},
		{"bad binary", "0b102", ErrInvalidNumber},
		{"unterminated comment", "/* never", ErrUnterminatedComment},
		{"unexpected character", "a @ b", "unexpected character '@'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.src)
			for l.NextToken().Type != token.EOF {
			}
			require.NotEmpty(t, l.Errors())
			assert.Equal(t, tt.msg, l.Errors()[0].Message)
		})
	}
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll(t, "let x\n  = 10")
	require.Len(t, toks, 5)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 4, Offset: 3}, toks[0].End)
	assert.Equal(t, token.Position{Line: 1, Column: 5, Offset: 4}, toks[1].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 8}, toks[2].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 5, Offset: 10}, toks[3].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 7, Offset: 12}, toks[3].End)
}
