package dialect

import "github.com/leapstack-labs/leaplua/pkg/token"

// OperatorDef describes how one source operator maps onto each strategy family.
type OperatorDef struct {
	Token    token.TokenType
	Arity    int      // 1 for prefix operators, 2 for binary
	Category Category // policy group

	Native     string // Lua operator spelling when lowered natively
	NativeCall string // global function used instead of an operator (unary + -> tonumber)
	LibFunc    string // function name in the bit library table
	Polyfill   string // helper name when the dialect polyfills the category
}

// LuaOperators contains every operator the lowering engine accepts.
var LuaOperators = []OperatorDef{
	// Arithmetic
	{Token: token.PLUS, Arity: 2, Category: CategoryArithmetic, Native: "+"},
	{Token: token.MINUS, Arity: 2, Category: CategoryArithmetic, Native: "-"},
	{Token: token.STAR, Arity: 2, Category: CategoryArithmetic, Native: "*"},
	{Token: token.SLASH, Arity: 2, Category: CategoryArithmetic, Native: "/"},
	{Token: token.PERCENT, Arity: 2, Category: CategoryArithmetic, Native: "%"},
	{Token: token.STARSTAR, Arity: 2, Category: CategoryArithmetic, Native: "^"},
	{Token: token.MINUS, Arity: 1, Category: CategoryArithmetic, Native: "-"},
	{Token: token.PLUS, Arity: 1, Category: CategoryArithmetic, NativeCall: "tonumber"},

	// Comparison
	{Token: token.EQ, Arity: 2, Category: CategoryComparison, Native: "=="},
	{Token: token.STRICTEQ, Arity: 2, Category: CategoryComparison, Native: "=="},
	{Token: token.NE, Arity: 2, Category: CategoryComparison, Native: "~="},
	{Token: token.STRICTNE, Arity: 2, Category: CategoryComparison, Native: "~="},
	{Token: token.LT, Arity: 2, Category: CategoryComparison, Native: "<"},
	{Token: token.GT, Arity: 2, Category: CategoryComparison, Native: ">"},
	{Token: token.LE, Arity: 2, Category: CategoryComparison, Native: "<="},
	{Token: token.GE, Arity: 2, Category: CategoryComparison, Native: ">="},

	// Logical
	{Token: token.ANDAND, Arity: 2, Category: CategoryLogical, Native: "and"},
	{Token: token.OROR, Arity: 2, Category: CategoryLogical, Native: "or"},
	{Token: token.BANG, Arity: 1, Category: CategoryLogical, Native: "not"},

	// Bitwise
	{Token: token.AMP, Arity: 2, Category: CategoryBitwise, Native: "&", LibFunc: "band"},
	{Token: token.PIPE, Arity: 2, Category: CategoryBitwise, Native: "|", LibFunc: "bor"},
	{Token: token.CARET, Arity: 2, Category: CategoryBitwise, Native: "~", LibFunc: "bxor"},
	{Token: token.SHL, Arity: 2, Category: CategoryBitwise, Native: "<<", LibFunc: "lshift"},
	{Token: token.TILDE, Arity: 1, Category: CategoryBitwise, Native: "~", LibFunc: "bnot"},

	// Shifts
	{Token: token.SHR, Arity: 2, Category: CategoryRightShift, Native: ">>", LibFunc: "arshift"},
	{Token: token.USHR, Arity: 2, Category: CategoryUnsignedRightShift, Native: ">>", LibFunc: "rshift",
		Polyfill: "__TS__UnsignedRightShift"},
}

type opKey struct {
	tok   token.TokenType
	arity int
}

var operatorIndex = func() map[opKey]OperatorDef {
	m := make(map[opKey]OperatorDef, len(LuaOperators))
	for _, def := range LuaOperators {
		m[opKey{def.Token, def.Arity}] = def
	}
	return m
}()

// LookupOperator returns the definition of op with the given arity.
// Compound assignment tokens resolve through their base operator.
func LookupOperator(op token.TokenType, arity int) (OperatorDef, bool) {
	if base, ok := token.BaseOperator(op); ok {
		op = base
	}
	def, ok := operatorIndex[opKey{op, arity}]
	return def, ok
}

// CategoryOf returns the policy category of op with the given arity.
func CategoryOf(op token.TokenType, arity int) (Category, bool) {
	def, ok := LookupOperator(op, arity)
	if !ok {
		return 0, false
	}
	return def.Category, true
}
