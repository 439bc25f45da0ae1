package format

import (
	"strings"

	"github.com/leapstack-labs/leaplua/pkg/lua"
)

// Chunk formats a statement list as a Lua chunk, ending in a newline.
// An empty chunk formats as the empty string.
func Chunk(stmts []lua.Statement) string {
	if len(stmts) == 0 {
		return ""
	}
	p := newPrinter()
	p.formatBlock(stmts)
	return p.String()
}

// Statement formats a single statement without the trailing newline.
func Statement(s lua.Statement) string {
	p := newPrinter()
	p.formatStmt(s)
	return strings.TrimRight(p.output.String(), "\n")
}

// Expression formats one expression. Expressions containing functions span several lines.
func Expression(e lua.Expression) string {
	p := newPrinter()
	p.formatExpr(e)
	return p.output.String()
}
