package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/leaplua/pkg/diag"
)

// Diagnostic writes d to the error output as "file:line:col: severity CODE message".
func (r *Renderer) Diagnostic(file string, d diag.Diagnostic) {
	loc := d.Span.String()
	if file != "" {
		loc = file + ":" + loc
	}
	sev := r.severityStyle(d.Severity).Render(d.Severity.String())
	_, _ = fmt.Fprintf(r.errOut, "%s: %s %s %s\n",
		r.styles.FilePath.Render(loc),
		sev,
		r.styles.Bold.Render(string(d.Code)),
		d.Message,
	)
}

func (r *Renderer) severityStyle(s diag.Severity) lipgloss.Style {
	switch s {
	case diag.SeverityError:
		return r.styles.Error
	case diag.SeverityWarning:
		return r.styles.Warning
	case diag.SeverityInfo:
		return r.styles.Info
	default:
		return r.styles.Muted
	}
}
