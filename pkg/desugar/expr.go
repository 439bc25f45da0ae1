package desugar

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/lower"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// expr lowers e in a position where its value is used.
func (t *Transformer) expr(e core.Expr) Result {
	switch x := e.(type) {
	case *core.Identifier:
		return Result{Expr: lua.Ident(identifier(x.Name))}

	case *core.Literal:
		return Result{Expr: literal(x)}

	case *core.ParenExpr:
		return t.expr(x.Expr)

	case *core.NonNullExpr:
		return t.expr(x.Expr)

	case *core.CallExpr:
		prelude, ops := t.ordered(append([]core.Expr{x.Callee}, x.Args...)...)
		return Result{Prelude: prelude, Expr: lua.Call(ops[0], ops[1:]...)}

	case *core.IndexExpr:
		prelude, ops := t.ordered(x.Base, x.Key)
		return Result{Prelude: prelude, Expr: lua.Index(ops[0], ops[1])}

	case *core.UnaryExpr:
		r := t.expr(x.Operand)
		out, err := t.lower.LowerUnary(x.Op, r.Expr, x.Span())
		if err != nil {
			t.fail(err)
		}
		return Result{Prelude: r.Prelude, Expr: out}

	case *core.BinaryExpr:
		prelude, ops := t.ordered(x.Left, x.Right)
		return Result{Prelude: prelude, Expr: t.binary(x.Op, ops[0], ops[1], x.Span())}

	case *core.LogicalExpr:
		return t.logical(x)

	case *core.AssignExpr:
		return t.assign(x, true)

	case *core.CompoundAssignExpr:
		return t.compound(x.BinaryOp(), x.Target, x.Value, x.Span(), useNewValue)

	case *core.UpdateExpr:
		use := useNewValue
		if !x.Prefix {
			use = useOldValue
		}
		return t.compound(updateOp(x.Op), x.Target, nil, x.Span(), use)

	case *core.SequenceExpr:
		return t.sequence(x)

	case *core.InExpr:
		prelude, ops := t.ordered(x.Key, x.Object)
		key := ops[0]
		if core.HasSideEffects(x.Key) {
			// Lua reads the table before the key.
			key = t.capture("key", key, &prelude)
		}
		lookup := lua.Index(ops[1], key)
		return Result{Prelude: prelude, Expr: t.binary(token.NE, lookup, lua.Nil(), x.Span())}

	case *core.DeleteExpr:
		return Result{Prelude: t.delete(x), Expr: lua.Bool(true)}

	default:
		t.fail(unknownNode(e))
		return Result{}
	}
}

// binary lowers one primitive binary operator application.
func (t *Transformer) binary(op token.TokenType, left, right lua.Expression, span token.Span) lua.Expression {
	out, err := t.lower.LowerBinary(op, left, right, span)
	if err != nil {
		t.fail(err)
	}
	return out
}

// logical lowers && and ||. When the right operand needs prelude statements
// they must only run if the left operand does not short-circuit.
func (t *Transformer) logical(x *core.LogicalExpr) Result {
	left := t.expr(x.Left)
	right := t.expr(x.Right)
	if len(right.Prelude) == 0 {
		return Result{Prelude: left.Prelude, Expr: t.binary(x.Op, left.Expr, right.Expr, x.Span())}
	}

	if t.unsupportedLogical(x.Op) {
		// Reports the operator; the right operand's effects are dropped.
		return Result{Prelude: left.Prelude, Expr: t.binary(x.Op, left.Expr, right.Expr, x.Span())}
	}

	prelude := left.Prelude
	name := t.newTemp("cond")
	prelude = append(prelude, lua.Local(name, left.Expr))
	var cond lua.Expression = lua.Ident(name)
	if x.Op == token.OROR {
		cond = lua.Unary("not", cond)
	}
	body := append(right.Prelude, lua.Assign(lua.Ident(name), right.Expr))
	prelude = append(prelude, &lua.IfStatement{Cond: cond, Then: body})
	return Result{Prelude: prelude, Expr: lua.Ident(name)}
}

// unsupportedLogical resolves a logical operator whose short circuit is
// lowered to an if statement and reports whether the dialect rejects it.
// Matrix defects abort the unit.
func (t *Transformer) unsupportedLogical(op token.TokenType) bool {
	s, err := t.lower.Strategy(op, 2)
	if err != nil {
		t.fail(err)
	}
	return s.Kind == lower.KindUnsupported
}

// sequence lowers a comma expression: every element but the last is
// evaluated for its effects, the last one supplies the value.
func (t *Transformer) sequence(x *core.SequenceExpr) Result {
	if len(x.Exprs) == 0 {
		return Result{Expr: lua.Nil()}
	}
	var prelude []lua.Statement
	for _, e := range x.Exprs[:len(x.Exprs)-1] {
		prelude = append(prelude, t.effect(e)...)
	}
	last := t.expr(x.Exprs[len(x.Exprs)-1])
	return Result{Prelude: append(prelude, last.Prelude...), Expr: last.Expr}
}

// delete lowers delete base[key] to base[key] = nil.
func (t *Transformer) delete(x *core.DeleteExpr) []lua.Statement {
	target, ok := core.Unparen(x.Target).(*core.IndexExpr)
	if !ok {
		// Deleting a plain binding has no effect beyond evaluating it.
		return t.effect(x.Target)
	}
	prelude, ops := t.ordered(target.Base, target.Key)
	return append(prelude, lua.Assign(lua.Index(ops[0], ops[1]), lua.Nil()))
}

func literal(x *core.Literal) lua.Expression {
	switch x.Kind {
	case core.LiteralNumber:
		return lua.Num(x.Value)
	case core.LiteralString:
		return lua.Str(x.Value)
	case core.LiteralBool:
		return lua.Bool(x.Value == "true")
	default:
		return lua.Nil()
	}
}

func updateOp(op token.TokenType) token.TokenType {
	if op == token.DEC {
		return token.MINUS
	}
	return token.PLUS
}
