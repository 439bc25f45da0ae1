package core

import "github.com/leapstack-labs/leaplua/pkg/token"

// ---------- Leaf and Access Expressions ----------

// Identifier is a reference to a named variable.
type Identifier struct {
	Loc
	Name string
}

func (*Identifier) exprNode() {}

// LiteralKind represents the kind of a literal.
type LiteralKind int

// LiteralKind constants for source literal values.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
	LiteralUndefined
)

// Literal is a constant value. Value holds the source spelling for numbers,
// the unquoted text for strings and "true"/"false" for booleans.
type Literal struct {
	Loc
	Kind  LiteralKind
	Value string
}

func (*Literal) exprNode() {}

// CallExpr is a function call.
type CallExpr struct {
	Loc
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// IndexExpr is an element access base[key]. Property access base.name is an
// IndexExpr with a string Literal key and Dot set.
type IndexExpr struct {
	Loc
	Base Expr
	Key  Expr
	Dot  bool
}

func (*IndexExpr) exprNode() {}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Loc
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// NonNullExpr is a non-null assertion x!. It has no runtime effect.
type NonNullExpr struct {
	Loc
	Expr Expr
}

func (*NonNullExpr) exprNode() {}

// ---------- Operator Expressions ----------

// UnaryExpr is a prefix operator application: -x, +x, !x, ~x.
type UnaryExpr struct {
	Loc
	Op      token.TokenType
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryExpr is an arithmetic, comparison or bitwise operator application.
type BinaryExpr struct {
	Loc
	Op    token.TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// LogicalExpr is a short-circuiting && or ||.
type LogicalExpr struct {
	Loc
	Op    token.TokenType
	Left  Expr
	Right Expr
}

func (*LogicalExpr) exprNode() {}

// AssignExpr is a plain assignment target = value.
type AssignExpr struct {
	Loc
	Target Expr // *Identifier or *IndexExpr
	Value  Expr
}

func (*AssignExpr) exprNode() {}

// CompoundAssignExpr is target op= value. Op is the compound token (PIPE_ASSIGN, ...).
type CompoundAssignExpr struct {
	Loc
	Op     token.TokenType
	Target Expr // *Identifier or *IndexExpr
	Value  Expr
}

func (*CompoundAssignExpr) exprNode() {}

// BinaryOp returns the binary operator applied by the compound assignment.
func (c *CompoundAssignExpr) BinaryOp() token.TokenType {
	op, _ := token.BaseOperator(c.Op)
	return op
}

// UpdateExpr is ++x, --x, x++ or x--.
type UpdateExpr struct {
	Loc
	Op     token.TokenType // INC or DEC
	Prefix bool
	Target Expr
}

func (*UpdateExpr) exprNode() {}

// SequenceExpr is a comma expression. Only the last value survives.
type SequenceExpr struct {
	Loc
	Exprs []Expr
}

func (*SequenceExpr) exprNode() {}

// InExpr is the membership test key in object.
type InExpr struct {
	Loc
	Key    Expr
	Object Expr
}

func (*InExpr) exprNode() {}

// DeleteExpr is delete base[key]. It evaluates to true.
type DeleteExpr struct {
	Loc
	Target Expr
}

func (*DeleteExpr) exprNode() {}

// Unparen strips any ParenExpr and NonNullExpr wrappers.
func Unparen(e Expr) Expr {
	for {
		switch x := e.(type) {
		case *ParenExpr:
			e = x.Expr
		case *NonNullExpr:
			e = x.Expr
		default:
			return e
		}
	}
}

// HasSideEffects reports whether evaluating e may have observable effects:
// calls, assignments, updates and deletes anywhere in the tree.
func HasSideEffects(e Expr) bool {
	found := false
	Inspect(e, func(n Node) bool {
		switch n.(type) {
		case *CallExpr, *AssignExpr, *CompoundAssignExpr, *UpdateExpr, *DeleteExpr:
			found = true
		}
		return !found
	})
	return found
}
