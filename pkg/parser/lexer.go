package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Lexer tokenizes source input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)

	errors []*LexError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors found so far.
func (l *Lexer) Errors() []*LexError {
	return l.errors
}

// errorAt returns the lexical error reported at offset, if any.
func (l *Lexer) errorAt(offset int) *LexError {
	for _, err := range l.errors {
		if err.Pos.Offset == offset {
			return err
		}
	}
	return nil
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

type symbol struct {
	text string
	typ  token.TokenType
}

// symbols lists operator and punctuation spellings, longest first.
var symbols = []symbol{
	{">>>=", token.USHR_ASSIGN},
	{">>>", token.USHR},
	{"===", token.STRICTEQ},
	{"!==", token.STRICTNE},
	{"**=", token.STARSTAR_ASSIGN},
	{"<<=", token.SHL_ASSIGN},
	{">>=", token.SHR_ASSIGN},
	{"**", token.STARSTAR},
	{"==", token.EQ},
	{"!=", token.NE},
	{"<=", token.LE},
	{">=", token.GE},
	{"&&", token.ANDAND},
	{"||", token.OROR},
	{"<<", token.SHL},
	{">>", token.SHR},
	{"++", token.INC},
	{"--", token.DEC},
	{"+=", token.PLUS_ASSIGN},
	{"-=", token.MINUS_ASSIGN},
	{"*=", token.STAR_ASSIGN},
	{"/=", token.SLASH_ASSIGN},
	{"%=", token.PERCENT_ASSIGN},
	{"&=", token.AMP_ASSIGN},
	{"|=", token.PIPE_ASSIGN},
	{"^=", token.CARET_ASSIGN},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.PERCENT},
	{"<", token.LT},
	{">", token.GT},
	{"!", token.BANG},
	{"&", token.AMP},
	{"|", token.PIPE},
	{"^", token.CARET},
	{"~", token.TILDE},
	{"=", token.ASSIGN},
	{".", token.DOT},
	{",", token.COMMA},
	{";", token.SEMICOLON},
	{":", token.COLON},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{"{", token.LBRACE},
	{"}", token.RBRACE},
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	tok := token.Token{Pos: pos}

	switch {
	case l.atEOF():
		tok.Type = token.EOF
	case l.ch == '\'' || l.ch == '"':
		tok.Type = token.STRING
		lit, ok := l.readString()
		tok.Literal = lit
		if !ok {
			tok.Type = token.ILLEGAL
		}
	case isLetter(l.ch):
		tok.Literal = l.readIdentifier()
		tok.Type = token.LookupIdent(tok.Literal)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		lit, ok := l.readNumber()
		tok.Type = token.NUMBER
		tok.Literal = lit
		if !ok {
			tok.Type = token.ILLEGAL
		}
	default:
		if sym, ok := l.matchSymbol(); ok {
			tok.Type = sym.typ
			tok.Literal = sym.text
			break
		}
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		tok.Type = token.ILLEGAL
		tok.Literal = string(r)
		l.addError(pos, "unexpected character "+strconv.QuoteRune(r))
		for range len(tok.Literal) {
			l.readChar()
		}
	}

	tok.End = l.currentPos()
	return tok
}

// matchSymbol consumes the longest operator or punctuation at the current position.
func (l *Lexer) matchSymbol() (symbol, bool) {
	remaining := l.input[l.pos:]
	for _, sym := range symbols {
		if strings.HasPrefix(remaining, sym.text) {
			for range len(sym.text) {
				l.readChar()
			}
			return sym, true
		}
	}
	return symbol{}, false
}

// skipWhitespaceAndComments skips whitespace, line comments and block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			start := l.currentPos()
			l.readChar()
			l.readChar()
			closed := false
			for !l.atEOF() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				l.addError(start, ErrUnterminatedComment)
			}
			continue
		}

		break
	}
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a number literal and returns its decimal Lua spelling.
// Binary, octal and hex integers are converted; digit separators are dropped.
func (l *Lexer) readNumber() (string, bool) {
	pos := l.currentPos()
	start := l.pos

	if l.ch == '0' && isRadixPrefix(l.peekChar()) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		text := l.input[start:l.pos]
		n, err := strconv.ParseUint(strings.ReplaceAll(text, "_", ""), 0, 64)
		if err != nil {
			l.addError(pos, ErrInvalidNumber)
			return text, false
		}
		return strconv.FormatUint(n, 10), true
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	text := strings.ReplaceAll(l.input[start:l.pos], "_", "")
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		l.addError(pos, ErrInvalidNumber)
		return text, false
	}
	return text, true
}

// readString reads a quoted string and returns its unescaped value.
func (l *Lexer) readString() (string, bool) {
	pos := l.currentPos()
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for {
		switch l.ch {
		case quote:
			l.readChar()
			return sb.String(), true
		case '\n':
			l.addError(pos, ErrUnterminatedString)
			return sb.String(), false
		case '\\':
			l.readChar()
			if !l.readEscape(&sb) {
				l.addError(pos, ErrInvalidEscape)
				return sb.String(), false
			}
		default:
			if l.atEOF() {
				l.addError(pos, ErrUnterminatedString)
				return sb.String(), false
			}
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// atEOF reports whether the input is exhausted.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// readEscape decodes the escape sequence after a backslash.
func (l *Lexer) readEscape(sb *strings.Builder) bool {
	ch := l.ch
	l.readChar()
	switch ch {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		return l.readHexEscape(sb, 2)
	case 'u':
		if l.ch == '{' {
			l.readChar()
			start := l.pos
			for isHexDigit(l.ch) {
				l.readChar()
			}
			if l.ch != '}' || l.pos == start {
				return false
			}
			n, err := strconv.ParseUint(l.input[start:l.pos], 16, 32)
			l.readChar()
			if err != nil || n > utf8.MaxRune {
				return false
			}
			sb.WriteRune(rune(n))
			return true
		}
		return l.readHexEscape(sb, 4)
	default:
		if l.pos > len(l.input) {
			return false
		}
		sb.WriteByte(ch)
	}
	return true
}

// readHexEscape reads exactly n hex digits and writes the code point.
func (l *Lexer) readHexEscape(sb *strings.Builder, n int) bool {
	start := l.pos
	for range n {
		if !isHexDigit(l.ch) {
			return false
		}
		l.readChar()
	}
	v, err := strconv.ParseUint(l.input[start:l.pos], 16, 32)
	if err != nil {
		return false
	}
	if n == 2 {
		sb.WriteByte(byte(v))
	} else {
		sb.WriteRune(rune(v))
	}
	return true
}

func (l *Lexer) addError(pos token.Position, msg string) {
	l.errors = append(l.errors, &LexError{Pos: pos, Message: msg})
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isRadixPrefix(ch byte) bool {
	switch ch {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}
