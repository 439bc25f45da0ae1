// Package lua defines the target Lua syntax fragments produced by lowering.
//
// Fragments are plain trees. Precedence and parenthesization are decided by
// the printer in pkg/format, so constructors never add grouping nodes.
package lua

// Node is the base interface for all Lua fragments.
type Node interface {
	luaNode()
}

// Expression is a marker interface for Lua expressions.
type Expression interface {
	Node
	exprNode()
}

// Statement is a marker interface for Lua statements.
type Statement interface {
	Node
	stmtNode()
}

// ---------- Expressions ----------

// Identifier is a Lua name, possibly dotted for library members ("bit32.band").
type Identifier struct {
	Name string
}

// NumberLiteral is a numeric constant in source spelling.
type NumberLiteral struct {
	Value string
}

// StringLiteral is a string constant. Value is unquoted.
type StringLiteral struct {
	Value string
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
}

// NilLiteral is nil.
type NilLiteral struct{}

// BinaryExpression applies a binary operator ("+", "and", "~", ...).
type BinaryExpression struct {
	Op    string
	Left  Expression
	Right Expression
}

// UnaryExpression applies a prefix operator ("-", "not", "~", "#").
type UnaryExpression struct {
	Op      string
	Operand Expression
}

// CallExpression is a function call.
type CallExpression struct {
	Callee Expression
	Args   []Expression
}

// IndexExpression is base[key]. The printer uses base.key for identifier-like string keys.
type IndexExpression struct {
	Base Expression
	Key  Expression
}

// FunctionExpression is an anonymous function.
type FunctionExpression struct {
	Params []string
	Body   []Statement
}

// ParenExpression forces grouping. Used where Lua truncates multiple values.
type ParenExpression struct {
	Expr Expression
}

// Placeholder stands in for a construct that could not be lowered.
// It prints as nil and is never a valid translation of anything.
type Placeholder struct {
	Reason string
}

func (*Identifier) luaNode()         {}
func (*NumberLiteral) luaNode()      {}
func (*StringLiteral) luaNode()      {}
func (*BooleanLiteral) luaNode()     {}
func (*NilLiteral) luaNode()         {}
func (*BinaryExpression) luaNode()   {}
func (*UnaryExpression) luaNode()    {}
func (*CallExpression) luaNode()     {}
func (*IndexExpression) luaNode()    {}
func (*FunctionExpression) luaNode() {}
func (*ParenExpression) luaNode()    {}
func (*Placeholder) luaNode()        {}

func (*Identifier) exprNode()         {}
func (*NumberLiteral) exprNode()      {}
func (*StringLiteral) exprNode()      {}
func (*BooleanLiteral) exprNode()     {}
func (*NilLiteral) exprNode()         {}
func (*BinaryExpression) exprNode()   {}
func (*UnaryExpression) exprNode()    {}
func (*CallExpression) exprNode()     {}
func (*IndexExpression) exprNode()    {}
func (*FunctionExpression) exprNode() {}
func (*ParenExpression) exprNode()    {}
func (*Placeholder) exprNode()        {}

// ---------- Statements ----------

// LocalStatement declares locals: local a, b = x, y.
type LocalStatement struct {
	Names  []string
	Values []Expression
}

// AssignmentStatement assigns: a, t[k] = x, y.
type AssignmentStatement struct {
	Targets []Expression
	Values  []Expression
}

// CallStatement evaluates a call for its effects.
type CallStatement struct {
	Call *CallExpression
}

// ReturnStatement returns zero or more values.
type ReturnStatement struct {
	Values []Expression
}

// IfStatement is if cond then ... [else ...] end.
type IfStatement struct {
	Cond Expression
	Then []Statement
	Else []Statement
}

// WhileStatement is while cond do ... end.
type WhileStatement struct {
	Cond Expression
	Body []Statement
}

// DoStatement is a do ... end block.
type DoStatement struct {
	Body []Statement
}

// RawStatement is verbatim Lua, used for runtime helper definitions.
type RawStatement struct {
	Code string
}

func (*LocalStatement) luaNode()      {}
func (*AssignmentStatement) luaNode() {}
func (*CallStatement) luaNode()       {}
func (*ReturnStatement) luaNode()     {}
func (*IfStatement) luaNode()         {}
func (*WhileStatement) luaNode()      {}
func (*DoStatement) luaNode()         {}
func (*RawStatement) luaNode()        {}

func (*LocalStatement) stmtNode()      {}
func (*AssignmentStatement) stmtNode() {}
func (*CallStatement) stmtNode()       {}
func (*ReturnStatement) stmtNode()     {}
func (*IfStatement) stmtNode()         {}
func (*WhileStatement) stmtNode()      {}
func (*DoStatement) stmtNode()         {}
func (*RawStatement) stmtNode()        {}
