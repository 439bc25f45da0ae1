package diag

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Reporter accumulates the diagnostics of one compile unit.
// It is append-only and not safe for concurrent use: every unit owns one.
type Reporter struct {
	diags []Diagnostic
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report appends a diagnostic for code at span. args fill the code's
// message template. Unknown codes are reported with the code as message.
func (r *Reporter) Report(code Code, span token.Span, args ...any) {
	d := Diagnostic{Code: code, Span: span, Severity: SeverityError, Message: string(code)}
	if def, ok := Lookup(code); ok {
		d.Name = def.Name
		d.Severity = def.Severity
		if def.Format != "" {
			d.Message = fmt.Sprintf(def.Format, args...)
		} else {
			d.Message = def.Description
		}
	}
	r.diags = append(r.diags, d)
}

// Diagnostics returns a copy of the diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// Sorted returns a copy of the diagnostics ordered by source position.
// Diagnostics at the same position keep report order.
func (r *Reporter) Sorted() []Diagnostic {
	out := r.Diagnostics()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Before(out[j].Span.Start)
	})
	return out
}

// Len returns the number of diagnostics reported.
func (r *Reporter) Len() int {
	return len(r.diags)
}

// Count returns the number of diagnostics with the given code.
func (r *Reporter) Count(code Code) int {
	n := 0
	for _, d := range r.diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Codes returns the codes in report order.
func (r *Reporter) Codes() []Code {
	out := make([]Code, len(r.diags))
	for i, d := range r.diags {
		out[i] = d.Code
	}
	return out
}
