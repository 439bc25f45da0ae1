package core

import "github.com/leapstack-labs/leaplua/pkg/token"

// VarDecl declares a single variable: let x = init.
type VarDecl struct {
	Loc
	Kind token.TokenType // LET, CONST or VAR
	Name string
	Init Expr // optional
}

func (*VarDecl) stmtNode() {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Loc
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// ReturnStmt returns from the enclosing chunk.
type ReturnStmt struct {
	Loc
	Value Expr // optional
}

func (*ReturnStmt) stmtNode() {}

// ForStmt is a C-style loop. Init is a *VarDecl, an *ExprStmt, or nil.
type ForStmt struct {
	Loc
	Init   Stmt
	Cond   Expr // optional
	Update Expr // optional
	Body   []Stmt
}

func (*ForStmt) stmtNode() {}
