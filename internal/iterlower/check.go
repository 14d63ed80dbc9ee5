package iterlower

import (
	"yieldc/internal/ast"
	"yieldc/internal/diag"
)

// checkMethod reports iterator shapes that cannot be lowered. It returns
// false when at least one error was reported.
func checkMethod(m *Method, r diag.Reporter) bool {
	ok := true
	fail := func(b *diag.ReportBuilder) {
		ok = false
		b.Emit()
	}
	for _, p := range m.Params {
		if p.Mode != ast.ParamValue {
			fail(diag.ReportError(r, diag.IterAliasParam, p.Span,
				"iterator "+m.Decl.Name+" cannot take "+p.Mode.String()+" parameter '"+p.Name+"'").
				WithNote(m.Span, "iterator declared here"))
		}
	}
	if m.ElemType == nil {
		msg := "iterator " + m.Decl.Name + " must return IEnumerable<T> or IEnumerator<T>"
		sp := m.Span
		if m.Decl.Result != nil {
			msg += ", not " + m.Decl.Result.String()
			sp = m.Decl.Result.Span
		}
		fail(diag.ReportError(r, diag.IterBadReturnType, sp, msg))
	}
	w := bodyChecker{report: func(code diag.Code, s *ast.Stmt, msg string) {
		fail(diag.ReportError(r, code, s.Span, msg))
	}}
	w.walk(m.Body)
	return ok
}

// bodyChecker tracks the syntactic context of each yield.
type bodyChecker struct {
	inCatch    int
	inFinally  int
	inTryCatch int
	inSwitch   int
	report     func(code diag.Code, s *ast.Stmt, msg string)
}

func (c *bodyChecker) walk(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch d := s.Data.(type) {
	case *ast.BlockData:
		for _, x := range d.Stmts {
			c.walk(x)
		}
	case *ast.IfData:
		c.walk(d.Then)
		c.walk(d.Else)
	case *ast.WhileData:
		c.walk(d.Body)
	case *ast.DoData:
		c.walk(d.Body)
	case *ast.ForData:
		for _, x := range d.Init {
			c.walk(x)
		}
		c.walk(d.Body)
	case *ast.ForeachData:
		c.walk(d.Body)
	case *ast.ReturnData:
		c.report(diag.IterReturnInIterator, s, "cannot return a value from an iterator; use 'yield return' or 'yield break'")
	case *ast.YieldData:
		c.checkYield(s)
	case *ast.TryData:
		if len(d.Catches) > 0 {
			c.inTryCatch++
		}
		c.walk(d.Body)
		if len(d.Catches) > 0 {
			c.inTryCatch--
		}
		c.inCatch++
		for _, cc := range d.Catches {
			c.walk(cc.Body)
		}
		c.inCatch--
		c.inFinally++
		c.walk(d.Finally)
		c.inFinally--
	case *ast.SwitchData:
		c.inSwitch++
		for _, sc := range d.Cases {
			for _, x := range sc.Body {
				c.walk(x)
			}
		}
		c.inSwitch--
	}
}

func (c *bodyChecker) checkYield(s *ast.Stmt) {
	if c.inFinally > 0 {
		c.report(diag.IterYieldInFinally, s, "cannot yield in the body of a finally clause")
		return
	}
	if s.Kind != ast.StmtYieldReturn {
		return
	}
	switch {
	case c.inCatch > 0:
		c.report(diag.IterYieldInCatch, s, "cannot yield a value in the body of a catch clause")
	case c.inTryCatch > 0:
		c.report(diag.IterYieldInTryCatch, s, "cannot yield a value in the body of a try block with a catch clause")
	case c.inSwitch > 0:
		c.report(diag.IterUnsupportedConstruct, s, "yield return inside a switch statement is not supported")
	}
}
