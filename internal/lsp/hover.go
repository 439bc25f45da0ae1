package lsp

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/lower"
	"github.com/leapstack-labs/leaplua/pkg/parser"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// getHover describes how the current target lowers the operator under the cursor.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	tok, arity, ok := operatorAt(doc.Content, offset)
	if !ok {
		return nil
	}

	op := tok.Type
	if base, isCompound := token.BaseOperator(op); isCompound {
		op = base
	}

	c := s.currentCompiler()
	strategy, err := lower.Resolve(op, arity, c.Dialect(), lower.Options{LibraryImport: c.Options().LibraryImport})
	if err != nil {
		s.logger.Debug("hover: no strategy", "op", tok.Literal, "error", err)
		return nil
	}

	r := Range{Start: toPosition(tok.Pos), End: toPosition(tok.End)}
	return &Hover{
		Contents: MarkupContent{
			Kind:  MarkupKindMarkdown,
			Value: formatOperatorHover(tok, arity, strategy, c.Options().Target.DisplayName()),
		},
		Range: &r,
	}
}

// operatorAt lexes src and returns the operator token covering offset
// together with the arity it is used with.
func operatorAt(src string, offset int) (token.Token, int, bool) {
	lexer := parser.NewLexer(src)
	prev := token.Token{Type: token.EOF}
	for {
		tok := lexer.NextToken()
		if tok.Type == token.EOF || tok.Pos.Offset > offset {
			return token.Token{}, 0, false
		}
		if offset < tok.End.Offset {
			if !isHoverOperator(tok.Type) {
				return token.Token{}, 0, false
			}
			return tok, operatorArity(tok.Type, prev.Type), true
		}
		prev = tok
	}
}

func isHoverOperator(t token.TokenType) bool {
	if t == token.INC || t == token.DEC {
		return false
	}
	if token.IsOperator(t) {
		return true
	}
	_, ok := token.BaseOperator(t)
	return ok
}

// operatorArity classifies an operator as unary when nothing that ends an
// operand precedes it.
func operatorArity(op, prev token.TokenType) int {
	switch op {
	case token.BANG, token.TILDE:
		return 1
	case token.PLUS, token.MINUS:
		if !endsOperand(prev) {
			return 1
		}
	}
	return 2
}

func endsOperand(t token.TokenType) bool {
	switch t {
	case token.IDENT, token.NUMBER, token.STRING,
		token.RPAREN, token.RBRACKET,
		token.TRUE, token.FALSE, token.NULL, token.UNDEFINED,
		token.INC, token.DEC:
		return true
	}
	return false
}

func formatOperatorHover(tok token.Token, arity int, s lower.Strategy, target string) string {
	var sb strings.Builder

	form := "binary"
	if arity == 1 {
		form = "unary"
	}
	fmt.Fprintf(&sb, "**`%s`** %s %s operator\n\n", tok.Literal, form, s.Category)
	fmt.Fprintf(&sb, "%s: `%s`", target, s)

	if s.Kind == lower.KindUnsupported {
		if def, ok := diag.Lookup(s.Code); ok {
			fmt.Fprintf(&sb, "\n\n%s %s: %s", def.Code, def.Name, def.Description)
			if def.Fix != "" {
				sb.WriteString("\n\n" + def.Fix)
			}
		}
	}
	return sb.String()
}
