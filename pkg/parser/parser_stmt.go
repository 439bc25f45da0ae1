package parser

import (
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/token"
)

// Statement parsing.
//
// Grammar:
//
//	statement   → var_decl | return_stmt | for_stmt | expr_stmt | ";"
//	var_decl    → ("let" | "const" | "var") declarator ("," declarator)*
//	for_stmt    → "for" "(" [init] ";" [expression] ";" [expression] ")" body

// parseProgram parses statements until end of input.
func (p *Parser) parseProgram() []core.Stmt {
	var stmts []core.Stmt
	for !p.check(token.EOF) && !p.failed() {
		stmts = append(stmts, p.parseStatement()...)
	}
	return stmts
}

// parseStatement parses one statement. Declarations with several
// declarators yield one VarDecl each.
func (p *Parser) parseStatement() []core.Stmt {
	switch p.token.Type {
	case token.SEMICOLON:
		p.nextToken()
		return nil

	case token.LET, token.CONST, token.VAR:
		decls := p.parseVarDecl()
		p.endStatement()
		return decls

	case token.RETURN:
		return []core.Stmt{p.parseReturn()}

	case token.FOR:
		if stmt := p.parseFor(); stmt != nil {
			return []core.Stmt{stmt}
		}
		return nil

	default:
		start := p.token.Pos
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		stmt := &core.ExprStmt{Loc: core.At(p.span(start)), Expr: expr}
		p.endStatement()
		return []core.Stmt{stmt}
	}
}

// endStatement consumes a semicolon, or accepts its omission before a line
// break, a closing brace or the end of input.
func (p *Parser) endStatement() {
	if p.failed() || p.match(token.SEMICOLON) {
		return
	}
	if p.check(token.EOF) || p.check(token.RBRACE) || p.onNewLine() {
		return
	}
	p.addError(ErrMissingSemicolon)
}

// parseVarDecl parses a declaration keyword and its declarators.
func (p *Parser) parseVarDecl() []core.Stmt {
	kind := p.token.Type
	start := p.token.Pos
	p.nextToken()

	var decls []core.Stmt
	for !p.failed() {
		declStart := start
		if len(decls) > 0 {
			declStart = p.token.Pos
		}
		name := p.token
		if !p.expect(token.IDENT) {
			break
		}
		decl := &core.VarDecl{Kind: kind, Name: name.Literal}
		if p.match(token.ASSIGN) {
			decl.Init = p.parseAssignment()
		} else if kind == token.CONST {
			p.addErrorAt(name.Pos, ErrConstWithoutInit)
		}
		decl.Loc = core.At(p.span(declStart))
		decls = append(decls, decl)

		if !p.match(token.COMMA) {
			break
		}
	}
	return decls
}

// parseReturn parses a return statement. A value on the next line is not
// part of the return.
func (p *Parser) parseReturn() core.Stmt {
	start := p.token.Pos
	p.nextToken()

	stmt := &core.ReturnStmt{}
	if !p.check(token.SEMICOLON) && !p.check(token.EOF) && !p.check(token.RBRACE) && !p.onNewLine() {
		stmt.Value = p.parseExpression()
	}
	stmt.Loc = core.At(p.span(start))
	p.endStatement()
	return stmt
}

// parseFor parses a C-style for loop.
func (p *Parser) parseFor() core.Stmt {
	start := p.token.Pos
	p.nextToken()
	if !p.expect(token.LPAREN) {
		return nil
	}

	stmt := &core.ForStmt{}

	switch p.token.Type {
	case token.SEMICOLON:
	case token.LET, token.CONST, token.VAR:
		declPos := p.token.Pos
		decls := p.parseVarDecl()
		if len(decls) > 1 {
			p.addErrorAt(declPos, ErrForDeclarators)
		}
		if len(decls) > 0 {
			stmt.Init = decls[0]
		}
	default:
		initStart := p.token.Pos
		if expr := p.parseExpression(); expr != nil {
			stmt.Init = &core.ExprStmt{Loc: core.At(p.span(initStart)), Expr: expr}
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	if !p.check(token.SEMICOLON) {
		stmt.Cond = p.parseExpression()
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	if !p.check(token.RPAREN) {
		stmt.Update = p.parseExpression()
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	stmt.Body = p.parseBody()
	stmt.Loc = core.At(p.span(start))
	return stmt
}

// parseBody parses a braced block or a single statement.
func (p *Parser) parseBody() []core.Stmt {
	if !p.match(token.LBRACE) {
		return p.parseStatement()
	}

	var body []core.Stmt
	for !p.check(token.RBRACE) && !p.check(token.EOF) && !p.failed() {
		body = append(body, p.parseStatement()...)
	}
	p.expect(token.RBRACE)
	return body
}
