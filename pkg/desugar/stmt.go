package desugar

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// effect lowers e in statement position; its value is discarded.
func (t *Transformer) effect(e core.Expr) []lua.Statement {
	switch x := e.(type) {
	case *core.ParenExpr:
		return t.effect(x.Expr)

	case *core.NonNullExpr:
		return t.effect(x.Expr)

	case *core.AssignExpr:
		return t.assign(x, false).Prelude

	case *core.CompoundAssignExpr:
		return t.compound(x.BinaryOp(), x.Target, x.Value, x.Span(), useNone).Prelude

	case *core.UpdateExpr:
		// Prefix and postfix only differ in their value.
		return t.compound(updateOp(x.Op), x.Target, nil, x.Span(), useNone).Prelude

	case *core.SequenceExpr:
		var out []lua.Statement
		for _, item := range x.Exprs {
			out = append(out, t.effect(item)...)
		}
		return out

	case *core.DeleteExpr:
		return t.delete(x)

	case *core.LogicalExpr:
		left := t.expr(x.Left)
		right := t.effect(x.Right)
		if t.unsupportedLogical(x.Op) {
			t.binary(x.Op, left.Expr, lua.Nil(), x.Span())
			return left.Prelude
		}
		if len(right) == 0 {
			return append(left.Prelude, discard(left.Expr)...)
		}
		cond := left.Expr
		if x.Op == token.OROR {
			cond = lua.Unary("not", cond)
		}
		return append(left.Prelude, &lua.IfStatement{Cond: cond, Then: right})

	default:
		r := t.expr(e)
		return append(r.Prelude, discard(r.Expr)...)
	}
}

// discard turns a value into a statement. Lua only allows calls as
// expression statements; anything else is bound to a throwaway local.
func discard(e lua.Expression) []lua.Statement {
	switch x := e.(type) {
	case *lua.CallExpression:
		return []lua.Statement{&lua.CallStatement{Call: x}}
	case *lua.Placeholder, nil:
		return nil
	default:
		return []lua.Statement{lua.Local("_", e)}
	}
}

// statement lowers one source statement.
func (t *Transformer) statement(s core.Stmt) []lua.Statement {
	t.resetTemps()

	switch x := s.(type) {
	case *core.VarDecl:
		name := identifier(x.Name)
		if x.Init == nil {
			return []lua.Statement{lua.Local(name, nil)}
		}
		r := t.expr(x.Init)
		return append(r.Prelude, lua.Local(name, r.Expr))

	case *core.ExprStmt:
		return t.effect(x.Expr)

	case *core.ReturnStmt:
		if x.Value == nil {
			return []lua.Statement{lua.Return()}
		}
		r := t.expr(x.Value)
		return append(r.Prelude, lua.Return(r.Expr))

	case *core.ForStmt:
		return t.forStatement(x)

	default:
		t.fail(unknownNode(s))
		return nil
	}
}

// forStatement lowers for (init; cond; update) body to
//
//	do
//	    init
//	    while cond do
//	        body
//	        update
//	    end
//	end
//
// The condition runs on every iteration, so a condition with prelude
// statements is lowered in single-expression shape.
func (t *Transformer) forStatement(x *core.ForStmt) []lua.Statement {
	var block []lua.Statement
	if x.Init != nil {
		block = append(block, t.statement(x.Init)...)
	}

	t.resetTemps()
	var cond lua.Expression = lua.Bool(true)
	if x.Cond != nil {
		cond = t.expr(x.Cond).Single()
	}

	var body []lua.Statement
	for _, s := range x.Body {
		body = append(body, t.statement(s)...)
	}
	if x.Update != nil {
		t.resetTemps()
		body = append(body, t.effect(x.Update)...)
	}

	block = append(block, &lua.WhileStatement{Cond: cond, Body: body})
	return []lua.Statement{&lua.DoStatement{Body: block}}
}
