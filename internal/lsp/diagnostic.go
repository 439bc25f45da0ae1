package lsp

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/parser"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// diagnosticSource labels every diagnostic the server publishes.
const diagnosticSource = "leaplua"

// publishDiagnostics compiles the document and publishes its diagnostics.
// Documents that are not source files get an empty list.
func (s *Server) publishDiagnostics(doc *Document) {
	diagnostics := []Diagnostic{}
	if strings.HasSuffix(URIToPath(doc.URI), SourceExt) {
		diagnostics = s.diagnose(doc)
	}

	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

// diagnose compiles doc for the current target.
func (s *Server) diagnose(doc *Document) []Diagnostic {
	res, err := s.currentCompiler().CompileSource(URIToPath(doc.URI), doc.Content)
	if err != nil {
		return []Diagnostic{errorToDiagnostic(err)}
	}

	diagnostics := make([]Diagnostic, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		diagnostics = append(diagnostics, convertDiagnostic(d))
	}
	return diagnostics
}

// convertDiagnostic converts a lowering diagnostic to its LSP form.
func convertDiagnostic(d diag.Diagnostic) Diagnostic {
	r := spanToRange(d.Span)
	if r.End == r.Start {
		r.End.Character++
	}
	return Diagnostic{
		Range:    r,
		Severity: convertSeverity(d.Severity),
		Code:     string(d.Code),
		Source:   diagnosticSource,
		Message:  d.Message,
	}
}

// errorToDiagnostic reports a compile failure. Parse and lex errors point at
// their position; anything else is anchored at the start of the document.
func errorToDiagnostic(err error) Diagnostic {
	pos := token.Position{Line: 1, Column: 1}
	msg := err.Error()

	var parseErr *parser.ParseError
	var lexErr *parser.LexError
	switch {
	case errors.As(err, &parseErr):
		pos, msg = parseErr.Pos, parseErr.Message
	case errors.As(err, &lexErr):
		pos, msg = lexErr.Pos, lexErr.Message
	}

	start := toPosition(pos)
	return Diagnostic{
		Range:    Range{Start: start, End: Position{Line: start.Line, Character: start.Character + 1}},
		Severity: DiagnosticSeverityError,
		Source:   diagnosticSource,
		Message:  msg,
	}
}

func convertSeverity(s diag.Severity) DiagnosticSeverity {
	switch s {
	case diag.SeverityError:
		return DiagnosticSeverityError
	case diag.SeverityWarning:
		return DiagnosticSeverityWarning
	case diag.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}

// toPosition converts a 1-based source position to a 0-based LSP position.
func toPosition(p token.Position) Position {
	return Position{
		Line:      uint32(max(0, p.Line-1)),   //nolint:gosec // G115: line is always non-negative
		Character: uint32(max(0, p.Column-1)), //nolint:gosec // G115: column is always non-negative
	}
}

func spanToRange(s token.Span) Range {
	r := Range{Start: toPosition(s.Start), End: toPosition(s.End)}
	if !s.End.IsValid() {
		r.End = r.Start
	}
	return r
}
