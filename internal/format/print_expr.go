package format

import (
	"strconv"

	"yieldc/internal/ast"
)

const (
	precAssign  = 0
	precUnary   = 7
	precPostfix = 8
)

func precedence(e *ast.Expr) int {
	switch d := e.Data.(type) {
	case *ast.AssignData:
		return precAssign
	case *ast.BinaryData:
		return d.Op.Precedence()
	case *ast.UnaryData:
		return precUnary
	default:
		return precPostfix
	}
}

func (p *printer) printExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	w := p.w
	switch d := e.Data.(type) {
	case *ast.IntData:
		w.WriteString(strconv.FormatInt(d.Value, 10))
	case *ast.StringData:
		w.WriteString(strconv.Quote(d.Value))
	case *ast.BoolData:
		w.WriteString(strconv.FormatBool(d.Value))
	case *ast.NameData:
		w.WriteString(d.Name)
	case *ast.MemberData:
		p.printOperand(d.X)
		w.WriteString("." + d.Name)
	case *ast.IndexData:
		p.printOperand(d.X)
		w.WriteString("[")
		p.printExpr(d.Index)
		w.WriteString("]")
	case *ast.CallData:
		p.printOperand(d.Fn)
		if len(d.TypeArgs) > 0 {
			w.WriteString("<")
			List(w, d.TypeArgs, p.printType)
			w.WriteString(">")
		}
		w.WriteString("(")
		List(w, d.Args, p.printExpr)
		w.WriteString(")")
	case *ast.NewData:
		w.WriteString("new ")
		p.printType(d.Type)
		w.WriteString("(")
		List(w, d.Args, p.printExpr)
		w.WriteString(")")
	case *ast.UnaryData:
		w.WriteString(d.Op.String())
		if startsWithSign(d.X) {
			w.WriteString("(")
			p.printExpr(d.X)
			w.WriteString(")")
			break
		}
		p.printSub(d.X, precUnary, false)
	case *ast.BinaryData:
		prec := d.Op.Precedence()
		p.printSub(d.X, prec, false)
		w.WriteString(" " + d.Op.String() + " ")
		p.printSub(d.Y, prec, true)
	case *ast.AssignData:
		p.printExpr(d.Target)
		if d.Op == ast.OpNone {
			w.WriteString(" = ")
		} else {
			w.WriteString(" " + d.Op.String() + "= ")
		}
		p.printExpr(d.Value)
	case *ast.IncDecData:
		p.printOperand(d.Target)
		if d.Dec {
			w.WriteString("--")
		} else {
			w.WriteString("++")
		}
	default:
		switch e.Kind {
		case ast.ExprNull:
			w.WriteString("null")
		case ast.ExprThis:
			w.WriteString("this")
		}
	}
}

// printSub parenthesises x when it binds looser than its context. Binary
// operators are left-associative, so an equal-precedence right operand needs
// parentheses too.
func (p *printer) printSub(x *ast.Expr, ctx int, right bool) {
	px := precedence(x)
	if px < ctx || (right && px == ctx) {
		p.w.WriteString("(")
		p.printExpr(x)
		p.w.WriteString(")")
		return
	}
	p.printExpr(x)
}

// printOperand prints the receiver of a postfix operator.
func (p *printer) printOperand(x *ast.Expr) {
	if precedence(x) < precPostfix || x.Kind == ast.ExprNew {
		p.w.WriteString("(")
		p.printExpr(x)
		p.w.WriteString(")")
		return
	}
	p.printExpr(x)
}

// startsWithSign reports operands that would print as "--x" or "!-x" glued
// to a preceding unary operator.
func startsWithSign(x *ast.Expr) bool {
	switch d := x.Data.(type) {
	case *ast.UnaryData:
		return true
	case *ast.IntData:
		return d.Value < 0
	}
	return false
}
