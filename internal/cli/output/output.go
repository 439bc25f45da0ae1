// Package output renders CLI results for terminals, pipes and tools.
//
// A Renderer writes styled text to a terminal, plain markdown when the
// output is piped, and JSON or YAML when asked for machine-readable output.
package output

import (
	"fmt"
	"strings"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto" // text on a TTY, markdown otherwise
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML}

// ParseMode converts a flag or configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "text":
		return ModeText, nil
	case "md", "markdown":
		return ModeMarkdown, nil
	case "json":
		return ModeJSON, nil
	case "yaml", "yml":
		return ModeYAML, nil
	default:
		return ModeAuto, fmt.Errorf("invalid output mode %q", s)
	}
}

// IsStructured reports whether the mode is meant for tools rather than people.
func (m Mode) IsStructured() bool {
	return m == ModeJSON || m == ModeYAML
}
