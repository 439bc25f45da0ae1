package desugar

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// valueUse says which value of a read-modify-write the caller consumes.
type valueUse int

const (
	useNone     valueUse = iota // statement position
	useNewValue                 // a op= b, ++a
	useOldValue                 // a++
)

// reference resolves an assignment target into an expression that can be
// both read and written. Index targets whose base or key is not simple are
// evaluated once into temporaries.
func (t *Transformer) reference(target core.Expr) ([]lua.Statement, lua.Expression) {
	switch x := core.Unparen(target).(type) {
	case *core.Identifier:
		return nil, lua.Ident(identifier(x.Name))

	case *core.IndexExpr:
		if isSimple(x.Base) && isSimple(x.Key) {
			prelude, ops := t.ordered(x.Base, x.Key)
			return prelude, lua.Index(ops[0], ops[1])
		}
		base := t.expr(x.Base)
		prelude := base.Prelude
		b := t.capture("base", base.Expr, &prelude)
		key := t.expr(x.Key)
		prelude = append(prelude, key.Prelude...)
		k := t.capture("key", key.Expr, &prelude)
		return prelude, lua.Index(b, k)

	default:
		t.fail(invalidTarget(target))
		return nil, nil
	}
}

// pin captures the base and key of an index reference so a later prelude
// cannot redirect the write to another slot.
func (t *Transformer) pin(ref lua.Expression, prelude *[]lua.Statement) lua.Expression {
	ix, ok := ref.(*lua.IndexExpression)
	if !ok {
		return ref
	}
	b := t.capture("base", ix.Base, prelude)
	k := t.capture("key", ix.Key, prelude)
	return lua.Index(b, k)
}

// assign lowers target = value.
func (t *Transformer) assign(x *core.AssignExpr, needValue bool) Result {
	switch target := core.Unparen(x.Target).(type) {
	case *core.Identifier:
		value := t.expr(x.Value)
		ref := lua.Ident(identifier(target.Name))
		prelude := append(value.Prelude, lua.Assign(ref, value.Expr))
		if !needValue {
			return Result{Prelude: prelude}
		}
		return Result{Prelude: prelude, Expr: ref}

	case *core.IndexExpr:
		prelude, ops := t.ordered(target.Base, target.Key, x.Value)
		value := ops[2]
		if needValue {
			value = t.capture("value", value, &prelude)
		}
		prelude = append(prelude, lua.Assign(lua.Index(ops[0], ops[1]), value))
		if !needValue {
			return Result{Prelude: prelude}
		}
		return Result{Prelude: prelude, Expr: value}

	default:
		t.fail(invalidTarget(x.Target))
		return Result{}
	}
}

// compound lowers a read-modify-write: target op= value, or an increment
// when value is nil. The target's base and key are evaluated once, and the
// old value is read before the right operand runs.
func (t *Transformer) compound(op token.TokenType, target, value core.Expr, span token.Span, use valueUse) Result {
	prelude, ref := t.reference(target)

	var rhs Result
	if value != nil {
		rhs = t.expr(value)
	} else {
		rhs = Result{Expr: lua.Num("1")}
	}

	if len(rhs.Prelude) > 0 {
		ref = t.pin(ref, &prelude)
	}

	var old lua.Expression = ref
	if len(rhs.Prelude) > 0 || use == useOldValue {
		old = t.capture("old", ref, &prelude)
	}
	prelude = append(prelude, rhs.Prelude...)

	updated := t.binary(op, old, rhs.Expr, span)
	if ph, ok := updated.(*lua.Placeholder); ok {
		// The operator was reported; emit no write.
		return Result{Prelude: prelude, Expr: ph}
	}

	switch use {
	case useNone:
		return Result{Prelude: append(prelude, lua.Assign(ref, updated))}
	case useOldValue:
		return Result{Prelude: append(prelude, lua.Assign(ref, updated)), Expr: old}
	default:
		if _, ok := ref.(*lua.Identifier); ok {
			return Result{Prelude: append(prelude, lua.Assign(ref, updated)), Expr: ref}
		}
		name := t.newTemp("value")
		prelude = append(prelude, lua.Local(name, updated), lua.Assign(ref, lua.Ident(name)))
		return Result{Prelude: prelude, Expr: lua.Ident(name)}
	}
}
