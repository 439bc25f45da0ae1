// Package desugar rewrites composite source expressions into primitive
// operator applications and Lua statements.
//
// Compound assignment, increment/decrement, comma sequences, membership
// tests and deletes are expanded here. Every side-effecting operand is
// evaluated exactly once and in source order. Primitive operators are
// handed to pkg/lower, so all unsupported-operator reporting happens there.
package desugar

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/lower"
	"github.com/leapstack-labs/leaplua/pkg/lua"
)

// Shape tells the desugarer what kind of Lua construct the caller needs.
type Shape int

const (
	// ShapeExpression yields prelude statements plus a final expression.
	ShapeExpression Shape = iota
	// ShapeStatements yields an ordered statement list; the value is discarded.
	ShapeStatements
	// ShapeSingleExpression yields one expression with no prelude. Preludes are
	// wrapped in an immediately invoked function.
	ShapeSingleExpression
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeExpression:
		return "expression"
	case ShapeStatements:
		return "statements"
	case ShapeSingleExpression:
		return "single"
	default:
		return "unknown"
	}
}

// ParseShape converts a shape name to a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "expression", "expr", "":
		return ShapeExpression, nil
	case "statements", "stmts":
		return ShapeStatements, nil
	case "single":
		return ShapeSingleExpression, nil
	default:
		return ShapeExpression, fmt.Errorf("invalid shape %q (want expression, statements or single)", s)
	}
}

// Result is the lowering of one expression: statements that must run first,
// followed by the expression producing the value.
type Result struct {
	Prelude []lua.Statement
	Expr    lua.Expression
}

// Single collapses the result into one expression, wrapping any prelude in
// (function() ... return expr end)().
func (r Result) Single() lua.Expression {
	if len(r.Prelude) == 0 {
		return r.Expr
	}
	return lua.IIFE(r.Prelude, r.Expr)
}

// Transformer desugars the expressions and statements of one compile unit.
// It is not safe for concurrent use.
type Transformer struct {
	lower  *lower.Lowerer
	logger *slog.Logger

	// Temporaries, scoped to the statement being transformed
	tempCount int
	temps     map[string]struct{}
}

// New creates a transformer that lowers primitive operators with l.
func New(l *lower.Lowerer, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transformer{
		lower:  l,
		logger: logger,
		temps:  make(map[string]struct{}),
	}
}

// Lowerer returns the lowerer used for primitive operators.
func (t *Transformer) Lowerer() *lower.Lowerer {
	return t.lower
}

// Expression desugars e into the requested shape.
// The only error is a fatal *lower.InvariantError.
func (t *Transformer) Expression(e core.Expr, shape Shape) (res Result, err error) {
	defer t.recoverBailout(&err)

	switch shape {
	case ShapeStatements:
		return Result{Prelude: t.effect(e)}, nil
	case ShapeSingleExpression:
		return Result{Expr: t.expr(e).Single()}, nil
	default:
		return t.expr(e), nil
	}
}

// Statement desugars one source statement. Temporary names restart for each statement.
func (t *Transformer) Statement(s core.Stmt) (out []lua.Statement, err error) {
	defer t.recoverBailout(&err)
	return t.statement(s), nil
}

// bailout carries a fatal error out of the recursive walk.
type bailout struct {
	err error
}

func (t *Transformer) fail(err error) {
	panic(bailout{err: err})
}

func (t *Transformer) recoverBailout(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		t.logger.Debug("desugaring aborted", "error", b.err)
		*err = b.err
	}
}

// resetTemps starts a new temporary scope.
func (t *Transformer) resetTemps() {
	t.tempCount = 0
	clear(t.temps)
}

// newTemp returns a fresh temporary name such as ____old_0.
func (t *Transformer) newTemp(hint string) string {
	name := fmt.Sprintf("____%s_%d", hint, t.tempCount)
	t.tempCount++
	t.temps[name] = struct{}{}
	return name
}

// isTemp reports whether e reads a temporary of the current statement.
// Temporaries are never reassigned by later operands, so they need no capture.
func (t *Transformer) isTemp(e lua.Expression) bool {
	id, ok := e.(*lua.Identifier)
	if !ok {
		return false
	}
	_, ok = t.temps[id.Name]
	return ok
}

// capture stores e in a fresh local and returns a reference to it.
func (t *Transformer) capture(hint string, e lua.Expression, prelude *[]lua.Statement) lua.Expression {
	if lua.IsConstant(e) || t.isTemp(e) {
		return e
	}
	name := t.newTemp(hint)
	*prelude = append(*prelude, lua.Local(name, e))
	return lua.Ident(name)
}
