package iterlower

import (
	"yieldc/internal/ast"
)

// rewriter turns source statements into enumerator-class form: hoisted
// locals and parameters become fields, `this` becomes the captured
// instance, and implicit members are qualified.
type rewriter struct {
	m *Method
	g *Graph
	h *hoisting
}

// field is `this.name` carrying the span of the node it replaces.
func (rw *rewriter) field(orig *ast.Expr, name string) *ast.Expr {
	self := ast.This()
	self.Span = orig.Span
	m := ast.Member(self, name)
	m.Span = orig.Span
	return m
}

// instance is `this.$this`.
func (rw *rewriter) instance(orig *ast.Expr) *ast.Expr {
	return rw.field(orig, FieldThis)
}

func (rw *rewriter) expr(e *ast.Expr) *ast.Expr {
	return ast.RewriteExpr(e, rw.rewriteNode)
}

func (rw *rewriter) rewriteNode(e *ast.Expr) *ast.Expr {
	switch e.Kind {
	case ast.ExprThis:
		if rw.g.synthetic[e] {
			return e
		}
		return rw.instance(e)
	case ast.ExprName:
		d := e.Data.(*ast.NameData)
		switch d.Ref.Kind {
		case ast.RefLocal:
			if f, ok := rw.h.fields[d.Ref.Local]; ok {
				return rw.field(e, f)
			}
			if rn, ok := rw.h.renames[d.Ref.Local]; ok {
				d.Name = rn
			}
		case ast.RefParam:
			return rw.field(e, rw.m.Params[d.Ref.Param].Name)
		case ast.RefField, ast.RefMethod:
			var recv *ast.Expr
			if d.Ref.Static {
				recv = ast.TypeName(d.Ref.Owner)
				recv.Span = e.Span
			} else {
				recv = rw.instance(e)
			}
			m := ast.Member(recv, d.Name)
			m.Span = e.Span
			return m
		}
	}
	return e
}

// stmt rewrites s in place and returns its replacement.
func (rw *rewriter) stmt(s *ast.Stmt) *ast.Stmt {
	if s == nil {
		return nil
	}
	switch d := s.Data.(type) {
	case *ast.BlockData:
		for i, c := range d.Stmts {
			d.Stmts[i] = rw.stmt(c)
		}
	case *ast.LocalData:
		d.Init = rw.expr(d.Init)
		if f, ok := rw.h.fields[d.Local]; ok {
			if d.Init == nil {
				return &ast.Stmt{Kind: ast.StmtBlock, Span: s.Span, Data: &ast.BlockData{}}
			}
			assign := ast.Assign(ast.Member(ast.This(), f), d.Init)
			assign.Span = s.Span
			st := ast.ExprStmt(assign)
			st.Span = s.Span
			return st
		}
		if rn, ok := rw.h.renames[d.Local]; ok {
			d.Name = rn
		}
	case *ast.ExprStmtData:
		d.X = rw.expr(d.X)
	case *ast.IfData:
		d.Cond = rw.expr(d.Cond)
		d.Then = rw.stmt(d.Then)
		d.Else = rw.stmt(d.Else)
	case *ast.WhileData:
		d.Cond = rw.expr(d.Cond)
		d.Body = rw.stmt(d.Body)
	case *ast.DoData:
		d.Body = rw.stmt(d.Body)
		d.Cond = rw.expr(d.Cond)
	case *ast.ForData:
		for i, c := range d.Init {
			d.Init[i] = rw.stmt(c)
		}
		d.Cond = rw.expr(d.Cond)
		for i, p := range d.Post {
			d.Post[i] = rw.expr(p)
		}
		d.Body = rw.stmt(d.Body)
	case *ast.ForeachData:
		if rn, ok := rw.h.renames[d.Local]; ok {
			d.Name = rn
		}
		d.Iterable = rw.expr(d.Iterable)
		d.Body = rw.stmt(d.Body)
	case *ast.ReturnData:
		d.Value = rw.expr(d.Value)
	case *ast.YieldData:
		d.Value = rw.expr(d.Value)
	case *ast.TryData:
		d.Body = rw.stmt(d.Body)
		for _, c := range d.Catches {
			if rn, ok := rw.h.renames[c.Local]; ok {
				c.Name = rn
			}
			c.Body = rw.stmt(c.Body)
		}
		d.Finally = rw.stmt(d.Finally)
	case *ast.ThrowData:
		d.Value = rw.expr(d.Value)
	case *ast.SwitchData:
		d.Tag = rw.expr(d.Tag)
		for _, c := range d.Cases {
			for i, v := range c.Values {
				c.Values[i] = rw.expr(v)
			}
			for i, b := range c.Body {
				c.Body[i] = rw.stmt(b)
			}
		}
	}
	return s
}

// apply rewrites every state of the graph. Region finally blocks are left
// as templates; each emitted copy is rewritten by the synthesizer.
func (rw *rewriter) apply() {
	for _, st := range rw.g.States {
		for i, s := range st.Stmts {
			st.Stmts[i] = rw.stmt(s)
		}
		st.Term.Value = rw.expr(st.Term.Value)
	}
}
