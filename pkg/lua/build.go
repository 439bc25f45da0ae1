package lua

// Ident returns an identifier expression.
func Ident(name string) *Identifier { return &Identifier{Name: name} }

// Num returns a number literal.
func Num(value string) *NumberLiteral { return &NumberLiteral{Value: value} }

// Str returns a string literal.
func Str(value string) *StringLiteral { return &StringLiteral{Value: value} }

// Bool returns a boolean literal.
func Bool(value bool) *BooleanLiteral { return &BooleanLiteral{Value: value} }

// Nil returns the nil literal.
func Nil() *NilLiteral { return &NilLiteral{} }

// Binary returns left op right.
func Binary(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{Op: op, Left: left, Right: right}
}

// Unary returns op operand.
func Unary(op string, operand Expression) *UnaryExpression {
	return &UnaryExpression{Op: op, Operand: operand}
}

// Call returns callee(args...).
func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{Callee: callee, Args: args}
}

// Index returns base[key].
func Index(base, key Expression) *IndexExpression {
	return &IndexExpression{Base: base, Key: key}
}

// Local returns local name = value. A nil value declares without initializer.
func Local(name string, value Expression) *LocalStatement {
	if value == nil {
		return &LocalStatement{Names: []string{name}}
	}
	return &LocalStatement{Names: []string{name}, Values: []Expression{value}}
}

// Assign returns target = value.
func Assign(target, value Expression) *AssignmentStatement {
	return &AssignmentStatement{Targets: []Expression{target}, Values: []Expression{value}}
}

// Return returns return values...
func Return(values ...Expression) *ReturnStatement {
	return &ReturnStatement{Values: values}
}

// IIFE wraps statements and a result into an immediately invoked function:
// (function() body; return result end)().
func IIFE(body []Statement, result Expression) *CallExpression {
	stmts := make([]Statement, 0, len(body)+1)
	stmts = append(stmts, body...)
	stmts = append(stmts, Return(result))
	return Call(&FunctionExpression{Body: stmts})
}

// IsConstant reports whether e has no effects and always yields the same value.
func IsConstant(e Expression) bool {
	switch e.(type) {
	case *NumberLiteral, *StringLiteral, *BooleanLiteral, *NilLiteral, *Placeholder:
		return true
	}
	return false
}
