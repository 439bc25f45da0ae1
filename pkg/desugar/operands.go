package desugar

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/lua"
)

// ordered lowers operands left to right. When a later operand needs prelude
// statements, every earlier non-constant operand is captured first so the
// prelude cannot change a value that was already evaluated.
func (t *Transformer) ordered(exprs ...core.Expr) ([]lua.Statement, []lua.Expression) {
	results := make([]Result, len(exprs))
	last := -1
	for i, e := range exprs {
		results[i] = t.expr(e)
		if len(results[i].Prelude) > 0 {
			last = i
		}
	}

	var prelude []lua.Statement
	out := make([]lua.Expression, len(exprs))
	for i, r := range results {
		prelude = append(prelude, r.Prelude...)
		if i < last {
			out[i] = t.capture("temp", r.Expr, &prelude)
		} else {
			out[i] = r.Expr
		}
	}
	return prelude, out
}

// isSimple reports whether reading e twice is indistinguishable from reading
// it once: identifiers, literals, and index chains built from them.
func isSimple(e core.Expr) bool {
	switch x := core.Unparen(e).(type) {
	case *core.Identifier, *core.Literal:
		return true
	case *core.IndexExpr:
		return isSimple(x.Base) && isSimple(x.Key)
	default:
		return false
	}
}

// identifier maps a source name to a Lua name. Lua reserved words are prefixed.
func identifier(name string) string {
	if lua.IsKeyword(name) {
		return "____" + name
	}
	return name
}
