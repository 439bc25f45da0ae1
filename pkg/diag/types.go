// Package diag collects the non-fatal diagnostics of one compile unit.
//
// Every diagnostic carries a stable code registered in this package.
// Codes are tool-consumable: IDE integrations, CI gates and golden tests
// match on Code, never on Message.
package diag

import "github.com/leapstack-labs/leaplua/pkg/token"

// Code is a stable diagnostic identifier, e.g. "LW01".
type Code string

// Stable diagnostic codes.
const (
	// CodeUnsupportedForTarget reports a construct with no representation
	// under the selected dialect and configuration.
	CodeUnsupportedForTarget Code = "LW01"
	// CodeUnsupportedRightShift reports a right shift whose native form
	// would silently produce different results.
	CodeUnsupportedRightShift Code = "LW02"
)

// Definition describes a diagnostic code for documentation and tooling.
type Definition struct {
	Code        Code     `json:"code" yaml:"code"`
	Name        string   `json:"name" yaml:"name"` // kebab-case, e.g. "unsupported-for-target"
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Format      string   `json:"-" yaml:"-"` // fmt template for Message

	// Documentation fields
	Rationale   string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	BadExample  string `json:"bad_example,omitempty" yaml:"bad_example,omitempty"`
	GoodExample string `json:"good_example,omitempty" yaml:"good_example,omitempty"`
	Fix         string `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// Diagnostic represents one reported problem bound to a source span.
type Diagnostic struct {
	Code     Code       `json:"code" yaml:"code"`
	Name     string     `json:"name" yaml:"name"`
	Severity Severity   `json:"severity" yaml:"severity"`
	Message  string     `json:"message" yaml:"message"`
	Span     token.Span `json:"span" yaml:"span"`
}

// Pos returns the start of the diagnostic's span.
func (d Diagnostic) Pos() token.Position {
	return d.Span.Start
}

// String formats the diagnostic as "line:col: CODE message".
func (d Diagnostic) String() string {
	return d.Span.String() + ": " + string(d.Code) + " " + d.Message
}
