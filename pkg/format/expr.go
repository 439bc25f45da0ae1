package format

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaplua/pkg/lua"
)

// Lua operator precedence, lowest first.
const (
	precOr = iota + 1
	precAnd
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precConcat
	precAdditive
	precMultiplicative
	precUnary
	precPower
	precPrimary = 100
)

func binaryPrecedence(op string) (prec int, rightAssoc bool) {
	switch op {
	case "or":
		return precOr, false
	case "and":
		return precAnd, false
	case "<", ">", "<=", ">=", "~=", "==":
		return precComparison, false
	case "|":
		return precBitOr, false
	case "~":
		return precBitXor, false
	case "&":
		return precBitAnd, false
	case "<<", ">>":
		return precShift, false
	case "..":
		return precConcat, true
	case "+", "-":
		return precAdditive, false
	case "*", "/", "//", "%":
		return precMultiplicative, false
	case "^":
		return precPower, true
	default:
		return precPrimary, false
	}
}

func precedenceOf(e lua.Expression) int {
	switch x := e.(type) {
	case *lua.BinaryExpression:
		prec, _ := binaryPrecedence(x.Op)
		return prec
	case *lua.UnaryExpression:
		return precUnary
	default:
		return precPrimary
	}
}

func (p *Printer) formatExpr(e lua.Expression) {
	switch x := e.(type) {
	case *lua.Identifier:
		p.write(x.Name)
	case *lua.NumberLiteral:
		p.write(x.Value)
	case *lua.StringLiteral:
		p.write(quote(x.Value))
	case *lua.BooleanLiteral:
		p.write(strconv.FormatBool(x.Value))
	case *lua.NilLiteral, *lua.Placeholder, nil:
		p.write("nil")
	case *lua.BinaryExpression:
		p.formatBinary(x)
	case *lua.UnaryExpression:
		p.formatUnary(x)
	case *lua.CallExpression:
		p.formatPrefix(x.Callee)
		p.write("(")
		p.formatList(len(x.Args), func(i int) { p.formatExpr(x.Args[i]) }, ", ")
		p.write(")")
	case *lua.IndexExpression:
		p.formatPrefix(x.Base)
		if s, ok := x.Key.(*lua.StringLiteral); ok && lua.IsValidName(s.Value) {
			p.write("." + s.Value)
			return
		}
		p.write("[")
		p.formatExpr(x.Key)
		p.write("]")
	case *lua.FunctionExpression:
		p.write("function(" + strings.Join(x.Params, ", ") + ")")
		p.writeln()
		p.indent()
		p.formatBlock(x.Body)
		p.dedent()
		p.write("end")
	case *lua.ParenExpression:
		p.write("(")
		p.formatExpr(x.Expr)
		p.write(")")
	}
}

func (p *Printer) formatBinary(x *lua.BinaryExpression) {
	prec, right := binaryPrecedence(x.Op)

	lp := precedenceOf(x.Left)
	p.formatOperand(x.Left, lp < prec || (lp == prec && right))

	p.write(" " + x.Op + " ")

	rp := precedenceOf(x.Right)
	p.formatOperand(x.Right, rp < prec || (rp == prec && !right))
}

func (p *Printer) formatUnary(x *lua.UnaryExpression) {
	p.write(x.Op)
	if x.Op == "not" {
		p.write(" ")
	}
	wrap := precedenceOf(x.Operand) < precUnary
	// "- -x" would start a comment without grouping
	if inner, ok := x.Operand.(*lua.UnaryExpression); ok && x.Op == "-" && inner.Op == "-" {
		wrap = true
	}
	if n, ok := x.Operand.(*lua.NumberLiteral); ok && x.Op == "-" && strings.HasPrefix(n.Value, "-") {
		wrap = true
	}
	p.formatOperand(x.Operand, wrap)
}

func (p *Printer) formatOperand(e lua.Expression, wrap bool) {
	if wrap {
		p.write("(")
	}
	p.formatExpr(e)
	if wrap {
		p.write(")")
	}
}

// formatPrefix prints a call target or indexed base. Lua only accepts
// names, indexes, calls and parenthesized expressions there.
func (p *Printer) formatPrefix(e lua.Expression) {
	p.formatOperand(e, !isPrefixExpr(e))
}

func isPrefixExpr(e lua.Expression) bool {
	switch e.(type) {
	case *lua.Identifier, *lua.IndexExpression, *lua.CallExpression, *lua.ParenExpression:
		return true
	default:
		return false
	}
}

// quote renders s as a double-quoted Lua string literal understood by every
// dialect. Control bytes use three-digit decimal escapes so a following
// digit is never read as part of the escape.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			d := strconv.Itoa(int(c))
			b.WriteString(`\` + strings.Repeat("0", 3-len(d)) + d)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
