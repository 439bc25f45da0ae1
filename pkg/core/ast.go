package core

import "github.com/leapstack-labs/leaplua/pkg/token"

// Node is the base interface for all source tree nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
	// Span returns the node's source range.
	Span() token.Span
}

// Expr is a marker interface for expression nodes.
// The set of implementations is closed: only this package can add variants.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// Loc carries the source range of a node. Every node embeds it.
type Loc struct {
	Range token.Span
}

// Pos implements Node.
func (l Loc) Pos() token.Position { return l.Range.Start }

// End implements Node.
func (l Loc) End() token.Position { return l.Range.End }

// Span implements Node.
func (l Loc) Span() token.Span { return l.Range }

// At returns a Loc covering span.
func At(span token.Span) Loc { return Loc{Range: span} }

// Inspect traverses the tree rooted at n in depth-first order, calling fn for
// each node. If fn returns false, the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch x := n.(type) {
	case *CallExpr:
		Inspect(x.Callee, fn)
		for _, a := range x.Args {
			Inspect(a, fn)
		}
	case *IndexExpr:
		Inspect(x.Base, fn)
		Inspect(x.Key, fn)
	case *ParenExpr:
		Inspect(x.Expr, fn)
	case *NonNullExpr:
		Inspect(x.Expr, fn)
	case *UnaryExpr:
		Inspect(x.Operand, fn)
	case *BinaryExpr:
		Inspect(x.Left, fn)
		Inspect(x.Right, fn)
	case *LogicalExpr:
		Inspect(x.Left, fn)
		Inspect(x.Right, fn)
	case *AssignExpr:
		Inspect(x.Target, fn)
		Inspect(x.Value, fn)
	case *CompoundAssignExpr:
		Inspect(x.Target, fn)
		Inspect(x.Value, fn)
	case *UpdateExpr:
		Inspect(x.Target, fn)
	case *SequenceExpr:
		for _, e := range x.Exprs {
			Inspect(e, fn)
		}
	case *InExpr:
		Inspect(x.Key, fn)
		Inspect(x.Object, fn)
	case *DeleteExpr:
		Inspect(x.Target, fn)
	case *VarDecl:
		if x.Init != nil {
			Inspect(x.Init, fn)
		}
	case *ExprStmt:
		Inspect(x.Expr, fn)
	case *ReturnStmt:
		if x.Value != nil {
			Inspect(x.Value, fn)
		}
	case *ForStmt:
		if x.Init != nil {
			Inspect(x.Init, fn)
		}
		if x.Cond != nil {
			Inspect(x.Cond, fn)
		}
		if x.Update != nil {
			Inspect(x.Update, fn)
		}
		for _, s := range x.Body {
			Inspect(s, fn)
		}
	}
}
