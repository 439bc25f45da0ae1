package format

import (
	"strings"

	"github.com/leapstack-labs/leaplua/pkg/lua"
)

func (p *Printer) formatBlock(stmts []lua.Statement) {
	for _, s := range stmts {
		p.formatStmt(s)
	}
}

func (p *Printer) formatStmt(s lua.Statement) {
	switch x := s.(type) {
	case *lua.LocalStatement:
		p.write("local " + strings.Join(x.Names, ", "))
		if len(x.Values) > 0 {
			p.write(" = ")
			p.formatExprList(x.Values)
		}

	case *lua.AssignmentStatement:
		p.formatExprList(x.Targets)
		p.write(" = ")
		p.formatExprList(x.Values)

	case *lua.CallStatement:
		// A statement starting with "(" would continue the previous line.
		if !isPrefixExpr(x.Call.Callee) {
			p.write(";")
		}
		p.formatExpr(x.Call)

	case *lua.ReturnStatement:
		p.write("return")
		if len(x.Values) > 0 {
			p.write(" ")
			p.formatExprList(x.Values)
		}

	case *lua.IfStatement:
		p.write("if ")
		p.formatExpr(x.Cond)
		p.write(" then")
		p.writeln()
		p.nested(x.Then)
		if len(x.Else) > 0 {
			p.write("else")
			p.writeln()
			p.nested(x.Else)
		}
		p.write("end")

	case *lua.WhileStatement:
		p.write("while ")
		p.formatExpr(x.Cond)
		p.write(" do")
		p.writeln()
		p.nested(x.Body)
		p.write("end")

	case *lua.DoStatement:
		p.write("do")
		p.writeln()
		p.nested(x.Body)
		p.write("end")

	case *lua.RawStatement:
		lines := strings.Split(strings.TrimRight(x.Code, "\n"), "\n")
		for i, line := range lines {
			p.write(line)
			if i < len(lines)-1 {
				p.writeln()
			}
		}
	}
	p.writeln()
}

func (p *Printer) nested(stmts []lua.Statement) {
	p.indent()
	p.formatBlock(stmts)
	p.dedent()
}

func (p *Printer) formatExprList(exprs []lua.Expression) {
	p.formatList(len(exprs), func(i int) { p.formatExpr(exprs[i]) }, ", ")
}
