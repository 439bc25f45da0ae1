package parser

import (
	"fmt"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Expression parsing using a Pratt parser.
//
// Precedence levels, lowest first:
//
//	precComma          = 1  (,)
//	precAssign         = 2  (= += -= ... >>>=, right-assoc)
//	precOr             = 3  (||)
//	precAnd            = 4  (&&)
//	precBitOr          = 5  (|)
//	precBitXor         = 6  (^)
//	precBitAnd         = 7  (&)
//	precEquality       = 8  (== != === !==)
//	precRelational     = 9  (< > <= >= in)
//	precShift          = 10 (<< >> >>>)
//	precAdditive       = 11 (+ -)
//	precMultiplicative = 12 (* / %)
//	precExponent       = 13 (**, right-assoc)
//	precUnary          = 14 (! - + ~ ++x --x delete)
//	precPostfix        = 15 (x++ x-- x! call index member)
const (
	precNone = iota
	precComma
	precAssign
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
)

var binaryPrecedence = map[token.TokenType]int{
	token.COMMA:    precComma,
	token.OROR:     precOr,
	token.ANDAND:   precAnd,
	token.PIPE:     precBitOr,
	token.CARET:    precBitXor,
	token.AMP:      precBitAnd,
	token.EQ:       precEquality,
	token.NE:       precEquality,
	token.STRICTEQ: precEquality,
	token.STRICTNE: precEquality,
	token.LT:       precRelational,
	token.GT:       precRelational,
	token.LE:       precRelational,
	token.GE:       precRelational,
	token.IN:       precRelational,
	token.SHL:      precShift,
	token.SHR:      precShift,
	token.USHR:     precShift,
	token.PLUS:     precAdditive,
	token.MINUS:    precAdditive,
	token.STAR:     precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.PERCENT:  precMultiplicative,
	token.STARSTAR: precExponent,
}

// parseExpression parses a full expression, including comma sequences.
func (p *Parser) parseExpression() core.Expr {
	return p.parseExpressionWithPrecedence(precComma)
}

// parseAssignment parses an expression that stops at a top-level comma.
func (p *Parser) parseAssignment() core.Expr {
	return p.parseExpressionWithPrecedence(precAssign)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) core.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for !p.failed() {
		prec := p.infixPrecedence()
		if prec == precNone || prec < minPrecedence {
			break
		}

		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}

	return left
}

// infixPrecedence returns the precedence of the current token as an infix
// or postfix operator, or precNone.
func (p *Parser) infixPrecedence() int {
	t := p.token.Type
	switch {
	case token.IsAssign(t):
		return precAssign
	case t == token.LPAREN, t == token.LBRACKET, t == token.DOT:
		return precPostfix
	case t == token.INC, t == token.DEC, t == token.BANG:
		// A line break ends the operand before a postfix operator.
		if p.onNewLine() {
			return precNone
		}
		return precPostfix
	}
	return binaryPrecedence[t]
}

// parsePrefixExpr parses prefix operators and primary expressions.
func (p *Parser) parsePrefixExpr() core.Expr {
	start := p.token.Pos

	switch p.token.Type {
	case token.BANG, token.MINUS, token.PLUS, token.TILDE:
		op := p.token.Type
		p.nextToken()
		operand := p.parseExpressionWithPrecedence(precUnary)
		return &core.UnaryExpr{Loc: core.At(p.span(start)), Op: op, Operand: operand}

	case token.INC, token.DEC:
		op := p.token.Type
		p.nextToken()
		target := p.parseExpressionWithPrecedence(precUnary)
		target = p.checkTarget(target, start)
		return &core.UpdateExpr{Loc: core.At(p.span(start)), Op: op, Prefix: true, Target: target}

	case token.DELETE:
		p.nextToken()
		target := p.parseExpressionWithPrecedence(precUnary)
		if _, ok := core.Unparen(target).(*core.IndexExpr); !ok && target != nil {
			p.addErrorAt(start, ErrInvalidDelete)
		}
		return &core.DeleteExpr{Loc: core.At(p.span(start)), Target: core.Unparen(target)}

	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses literals, identifiers and parenthesized expressions.
func (p *Parser) parsePrimary() core.Expr {
	tok := p.token
	loc := core.At(tok.Span())

	switch tok.Type {
	case token.NUMBER:
		p.nextToken()
		return &core.Literal{Loc: loc, Kind: core.LiteralNumber, Value: tok.Literal}

	case token.STRING:
		p.nextToken()
		return &core.Literal{Loc: loc, Kind: core.LiteralString, Value: tok.Literal}

	case token.TRUE, token.FALSE:
		p.nextToken()
		return &core.Literal{Loc: loc, Kind: core.LiteralBool, Value: tok.Literal}

	case token.NULL:
		p.nextToken()
		return &core.Literal{Loc: loc, Kind: core.LiteralNull, Value: tok.Literal}

	case token.UNDEFINED:
		p.nextToken()
		return &core.Literal{Loc: loc, Kind: core.LiteralUndefined, Value: tok.Literal}

	case token.IDENT:
		p.nextToken()
		return &core.Identifier{Loc: loc, Name: tok.Literal}

	case token.LPAREN:
		p.nextToken()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		p.expect(token.RPAREN)
		return &core.ParenExpr{Loc: core.At(p.span(tok.Pos)), Expr: inner}

	case token.ILLEGAL:
		p.illegal()
		return nil

	default:
		p.addError(fmt.Sprintf(ErrUnexpectedExpr, describe(tok)))
		return nil
	}
}

// parseInfixExpr parses binary, assignment and postfix operators.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) core.Expr {
	start := left.Pos()
	op := p.token.Type

	switch {
	case op == token.LPAREN:
		return p.parseCall(left)

	case op == token.LBRACKET:
		p.nextToken()
		key := p.parseExpression()
		p.expect(token.RBRACKET)
		return &core.IndexExpr{Loc: core.At(p.span(start)), Base: left, Key: key}

	case op == token.DOT:
		p.nextToken()
		// Keywords are valid property names.
		if !p.check(token.IDENT) && !token.IsKeyword(p.token.Type) {
			p.unexpected("property name")
			return left
		}
		name := p.token
		p.nextToken()
		key := &core.Literal{Loc: core.At(name.Span()), Kind: core.LiteralString, Value: name.Literal}
		return &core.IndexExpr{Loc: core.At(p.span(start)), Base: left, Key: key, Dot: true}

	case op == token.INC, op == token.DEC:
		p.nextToken()
		target := p.checkTarget(left, start)
		return &core.UpdateExpr{Loc: core.At(p.span(start)), Op: op, Target: target}

	case op == token.BANG:
		p.nextToken()
		return &core.NonNullExpr{Loc: core.At(p.span(start)), Expr: left}

	case token.IsAssign(op):
		p.nextToken()
		target := p.checkTarget(left, start)
		// Right-associative: a = b = c parses as a = (b = c).
		value := p.parseExpressionWithPrecedence(precAssign)
		if op == token.ASSIGN {
			return &core.AssignExpr{Loc: core.At(p.span(start)), Target: target, Value: value}
		}
		return &core.CompoundAssignExpr{Loc: core.At(p.span(start)), Op: op, Target: target, Value: value}

	case op == token.COMMA:
		return p.parseSequence(left)

	case op == token.IN:
		p.nextToken()
		object := p.parseExpressionWithPrecedence(prec + 1)
		return &core.InExpr{Loc: core.At(p.span(start)), Key: left, Object: object}

	case op == token.ANDAND, op == token.OROR:
		p.nextToken()
		right := p.parseExpressionWithPrecedence(prec + 1)
		return &core.LogicalExpr{Loc: core.At(p.span(start)), Op: op, Left: left, Right: right}

	case op == token.STARSTAR:
		if _, ok := left.(*core.UnaryExpr); ok {
			p.addError(ErrUnaryExponent)
			return left
		}
		p.nextToken()
		// Right-associative: a ** b ** c parses as a ** (b ** c).
		right := p.parseExpressionWithPrecedence(prec)
		return &core.BinaryExpr{Loc: core.At(p.span(start)), Op: op, Left: left, Right: right}
	}

	p.nextToken()
	right := p.parseExpressionWithPrecedence(prec + 1)
	return &core.BinaryExpr{Loc: core.At(p.span(start)), Op: op, Left: left, Right: right}
}

// parseCall parses an argument list after the callee.
func (p *Parser) parseCall(callee core.Expr) core.Expr {
	start := callee.Pos()
	p.nextToken() // consume (

	var args []core.Expr
	for !p.check(token.RPAREN) && !p.failed() {
		arg := p.parseAssignment()
		if arg == nil {
			break
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)

	return &core.CallExpr{Loc: core.At(p.span(start)), Callee: callee, Args: args}
}

// parseSequence parses the remaining operands of a comma expression.
func (p *Parser) parseSequence(first core.Expr) core.Expr {
	start := first.Pos()
	exprs := []core.Expr{first}
	for p.match(token.COMMA) {
		next := p.parseAssignment()
		if next == nil {
			break
		}
		exprs = append(exprs, next)
	}
	return &core.SequenceExpr{Loc: core.At(p.span(start)), Exprs: exprs}
}

// checkTarget validates an assignment or update target. Parentheses around
// the target are dropped.
func (p *Parser) checkTarget(target core.Expr, start token.Position) core.Expr {
	if target == nil {
		return nil
	}
	switch t := core.Unparen(target).(type) {
	case *core.Identifier, *core.IndexExpr:
		return t
	}
	p.addErrorAt(start, ErrInvalidTarget)
	return target
}
