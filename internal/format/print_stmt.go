package format

import (
	"yieldc/internal/ast"
)

// printStmt prints s followed by a newline.
func (p *printer) printStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	w := p.w
	switch d := s.Data.(type) {
	case *ast.BlockData:
		p.printBlock(d)
	case *ast.LocalData:
		p.printLocal(d)
		w.WriteString(";")
	case *ast.ExprStmtData:
		p.printExpr(d.X)
		w.WriteString(";")
	case *ast.IfData:
		p.printIf(d)
	case *ast.WhileData:
		if d.Label != "" {
			w.WriteString(d.Label + ": ")
		}
		w.WriteString("while (")
		p.printExpr(d.Cond)
		w.WriteString(")")
		p.printClause(d.Body)
	case *ast.DoData:
		w.WriteString("do")
		p.printClause(d.Body)
		p.beforeTail()
		w.WriteString("while (")
		p.printExpr(d.Cond)
		w.WriteString(");")
	case *ast.ForData:
		w.WriteString("for (")
		p.printForInit(d.Init)
		w.WriteString("; ")
		if d.Cond != nil {
			p.printExpr(d.Cond)
		}
		w.WriteString("; ")
		List(w, d.Post, p.printExpr)
		w.WriteString(")")
		p.printClause(d.Body)
	case *ast.ForeachData:
		w.WriteString("foreach (")
		if d.ElemType != nil {
			p.printType(d.ElemType)
		} else {
			w.WriteString("var")
		}
		w.WriteString(" " + d.Name + " in ")
		p.printExpr(d.Iterable)
		w.WriteString(")")
		p.printClause(d.Body)
	case *ast.BranchData:
		if s.Kind == ast.StmtBreak {
			w.WriteString("break")
		} else {
			w.WriteString("continue")
		}
		if d.Label != "" {
			w.WriteString(" " + d.Label)
		}
		w.WriteString(";")
	case *ast.ReturnData:
		w.WriteString("return")
		if d.Value != nil {
			w.WriteString(" ")
			p.printExpr(d.Value)
		}
		w.WriteString(";")
	case *ast.YieldData:
		if s.Kind == ast.StmtYieldBreak {
			w.WriteString("yield break;")
			break
		}
		w.WriteString("yield return ")
		p.printExpr(d.Value)
		w.WriteString(";")
	case *ast.TryData:
		p.printTry(d)
	case *ast.ThrowData:
		w.WriteString("throw ")
		p.printExpr(d.Value)
		w.WriteString(";")
	case *ast.SwitchData:
		p.printSwitch(d)
	}
	w.Newline()
}

// printBlock prints `{ ... }` without the trailing newline.
func (p *printer) printBlock(d *ast.BlockData) {
	w := p.w
	w.WriteString("{")
	w.Newline()
	w.IndentPush()
	for _, s := range d.Stmts {
		p.printStmt(s)
	}
	w.IndentPop()
	w.WriteString("}")
}

// printClause prints the body of a compound statement: blocks stay on the
// header line, single statements go on their own indented line.
func (p *printer) printClause(s *ast.Stmt) {
	w := p.w
	if s == nil {
		w.WriteString(";")
		return
	}
	if d, ok := s.Data.(*ast.BlockData); ok {
		w.Space()
		p.printBlock(d)
		return
	}
	w.Newline()
	w.IndentPush()
	p.printStmt(s)
	w.IndentPop()
}

// beforeTail positions the writer for `else`, `while`, `catch` or `finally`
// after a clause.
func (p *printer) beforeTail() {
	if !p.w.atLineStart {
		p.w.Space()
	}
}

func (p *printer) printIf(d *ast.IfData) {
	w := p.w
	w.WriteString("if (")
	p.printExpr(d.Cond)
	w.WriteString(")")
	p.printClause(d.Then)
	if d.Else == nil {
		return
	}
	p.beforeTail()
	w.WriteString("else")
	if d.Else.Kind == ast.StmtIf {
		w.Space()
		p.printIf(d.Else.Data.(*ast.IfData))
		return
	}
	p.printClause(d.Else)
}

func (p *printer) printLocal(d *ast.LocalData) {
	if d.Type != nil {
		p.printType(d.Type)
	} else {
		p.w.WriteString("var")
	}
	p.w.WriteString(" " + d.Name)
	if d.Init != nil {
		p.w.WriteString(" = ")
		p.printExpr(d.Init)
	}
}

func (p *printer) printForInit(init []*ast.Stmt) {
	w := p.w
	for i, s := range init {
		switch d := s.Data.(type) {
		case *ast.LocalData:
			if i == 0 {
				p.printLocal(d)
				continue
			}
			w.WriteString(", " + d.Name)
			if d.Init != nil {
				w.WriteString(" = ")
				p.printExpr(d.Init)
			}
		case *ast.ExprStmtData:
			if i > 0 {
				w.WriteString(", ")
			}
			p.printExpr(d.X)
		}
	}
}

func (p *printer) printTry(d *ast.TryData) {
	w := p.w
	w.WriteString("try")
	p.printClause(d.Body)
	for _, c := range d.Catches {
		p.beforeTail()
		w.WriteString("catch")
		if c.Type != nil || c.Name != "" {
			w.WriteString(" (")
			if c.Type != nil {
				p.printType(c.Type)
			} else {
				w.WriteString("Exception")
			}
			if c.Name != "" {
				w.WriteString(" " + c.Name)
			}
			w.WriteString(")")
		}
		p.printClause(c.Body)
	}
	if d.Finally != nil {
		p.beforeTail()
		w.WriteString("finally")
		p.printClause(d.Finally)
	}
}

func (p *printer) printSwitch(d *ast.SwitchData) {
	w := p.w
	w.WriteString("switch (")
	p.printExpr(d.Tag)
	w.WriteString(") {")
	w.Newline()
	w.IndentPush()
	for _, c := range d.Cases {
		if len(c.Values) == 0 {
			w.WriteString("default:")
			w.Newline()
		}
		for _, v := range c.Values {
			w.WriteString("case ")
			p.printExpr(v)
			w.WriteString(":")
			w.Newline()
		}
		w.IndentPush()
		for _, s := range c.Body {
			p.printStmt(s)
		}
		w.IndentPop()
	}
	w.IndentPop()
	w.WriteString("}")
}
