package lsp

import (
	"encoding/json"

	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/parser"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// handleCodeAction handles the textDocument/codeAction request.
func (s *Server) handleCodeAction(msg *JSONRPCMessage) error {
	var params CodeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	actions := s.getCodeActions(params)
	s.sendResponse(msg.ID, actions, nil)
	return nil
}

// getCodeActions offers quick fixes for the diagnostics in the request.
// Right shifts reported as LW02 can be rewritten to the zero-fill form.
func (s *Server) getCodeActions(params CodeActionParams) []CodeAction {
	actions := []CodeAction{}
	if !wantsQuickFix(params.Context.Only) {
		return actions
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return actions
	}

	for _, d := range params.Context.Diagnostics {
		if d.Code != string(diag.CodeUnsupportedRightShift) {
			continue
		}
		edit, ok := rightShiftFix(doc, d.Range)
		if !ok {
			continue
		}
		actions = append(actions, CodeAction{
			Title:       "Use " + edit.NewText + " instead of " + doc.GetTextInRange(edit.Range),
			Kind:        CodeActionKindQuickFix,
			Diagnostics: []Diagnostic{d},
			IsPreferred: true,
			Edit: &WorkspaceEdit{
				Changes: map[string][]TextEdit{params.TextDocument.URI: {edit}},
			},
		})
	}
	return actions
}

func wantsQuickFix(only []CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, kind := range only {
		if kind == CodeActionKindQuickFix {
			return true
		}
	}
	return false
}

// rightShiftFix finds the operator a right shift diagnostic refers to.
// The diagnostic spans the whole shift expression, so the operator is the
// shallowest >>= or, failing that, the last shallowest >> within the range.
func rightShiftFix(doc *Document, r Range) (TextEdit, bool) {
	start := doc.PositionToOffset(r.Start)
	end := doc.PositionToOffset(r.End)

	var found *token.Token
	foundDepth, depth := 0, 0
	better := func() bool {
		switch {
		case found == nil:
			return true
		case depth != foundDepth:
			return depth < foundDepth
		case found.Type == token.SHR_ASSIGN:
			return false
		default:
			return true
		}
	}

	lexer := parser.NewLexer(doc.Content)
	for {
		tok := lexer.NextToken()
		if tok.Type == token.EOF || tok.Pos.Offset >= end {
			break
		}
		if tok.Pos.Offset < start {
			continue
		}
		switch tok.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
		case token.SHR, token.SHR_ASSIGN:
			if better() {
				t := tok
				found, foundDepth = &t, depth
			}
		}
	}
	if found == nil {
		return TextEdit{}, false
	}

	replacement := ">>>"
	if found.Type == token.SHR_ASSIGN {
		replacement = ">>>="
	}
	return TextEdit{
		Range: Range{
			Start: doc.OffsetToPosition(found.Pos.Offset),
			End:   doc.OffsetToPosition(found.End.Offset),
		},
		NewText: replacement,
	}, true
}
