// Package loader prepares source files for compilation.
//
// Sources may be written as full TypeScript. StripTypes removes the type
// syntax with esbuild so the remaining expression code can be lowered.
// Positions reported for a stripped unit refer to esbuild's output, which
// keeps statements in order but may reflow lines.
package loader

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/leapstack-labs/leaplua/pkg/parser"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// StripTypes returns src with TypeScript type annotations, interfaces,
// type aliases and casts removed. Syntax errors are returned as
// *parser.ParseError positioned in src.
func StripTypes(name, src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:     api.LoaderTS,
		Sourcefile: name,
		Target:     api.ESNext,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", messageError(result.Errors[0])
	}
	return string(result.Code), nil
}

// messageError converts an esbuild message into a parse error.
// esbuild columns are 0-based byte offsets within the line.
func messageError(msg api.Message) error {
	pe := &parser.ParseError{Message: strings.TrimSpace(msg.Text)}
	if loc := msg.Location; loc != nil {
		pe.Pos = token.Position{Line: loc.Line, Column: loc.Column + 1}
	}
	return pe
}
