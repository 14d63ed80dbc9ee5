package sema

import (
	"strings"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
)

func (tc *typeChecker) checkType(t *ast.TypeRef) {
	if t == nil {
		return
	}
	for _, a := range t.Args {
		tc.checkType(a)
	}
	if strings.Contains(t.Name, ".") || tc.typeParams[t.Name] || builtinTypes[t.Name] || tc.unit.Lookup(t.Name) != nil {
		return
	}
	tc.report(diag.SemaUnknownType, t.Span, "unknown type "+t.Name)
}

// resolveNested resolves a child statement in its own scope.
func (tc *typeChecker) resolveNested(s *ast.Stmt) {
	tc.scopes.push()
	tc.resolveStmt(s)
	tc.scopes.pop()
}

func (tc *typeChecker) resolveLoopBody(label string, body *ast.Stmt) {
	tc.loops = append(tc.loops, loopFrame{label: label})
	tc.resolveNested(body)
	tc.loops = tc.loops[:len(tc.loops)-1]
}

func (tc *typeChecker) resolveStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch d := s.Data.(type) {
	case *ast.BlockData:
		tc.scopes.push()
		for _, c := range d.Stmts {
			tc.resolveStmt(c)
		}
		tc.scopes.pop()
	case *ast.LocalData:
		tc.resolveExpr(d.Init)
		typ := d.Type
		if typ != nil {
			tc.checkType(typ)
		} else {
			typ = tc.typeOf(d.Init)
		}
		d.Local = tc.declare(d.Name, typ, s.Span)
	case *ast.ExprStmtData:
		tc.resolveExpr(d.X)
	case *ast.IfData:
		tc.resolveExpr(d.Cond)
		tc.resolveNested(d.Then)
		tc.resolveNested(d.Else)
	case *ast.WhileData:
		tc.resolveExpr(d.Cond)
		tc.resolveLoopBody(d.Label, d.Body)
	case *ast.DoData:
		tc.resolveLoopBody("", d.Body)
		tc.resolveExpr(d.Cond)
	case *ast.ForData:
		tc.scopes.push()
		for _, c := range d.Init {
			tc.resolveStmt(c)
		}
		tc.resolveExpr(d.Cond)
		for _, p := range d.Post {
			tc.resolveExpr(p)
		}
		tc.resolveLoopBody("", d.Body)
		tc.scopes.pop()
	case *ast.ForeachData:
		tc.resolveExpr(d.Iterable)
		tc.scopes.push()
		elem := d.ElemType
		if elem != nil {
			tc.checkType(elem)
		} else {
			elem = elementOf(tc.typeOf(d.Iterable))
		}
		d.Local = tc.declare(d.Name, elem, s.Span)
		tc.resolveLoopBody("", d.Body)
		tc.scopes.pop()
	case *ast.BranchData:
		tc.checkBranch(s, d)
	case *ast.ReturnData:
		tc.resolveExpr(d.Value)
	case *ast.YieldData:
		if tc.method == nil {
			tc.report(diag.SemaYieldInVoidMethod, s.Span, "yield is only allowed in methods")
		}
		tc.resolveExpr(d.Value)
	case *ast.TryData:
		tc.resolveNested(d.Body)
		for _, c := range d.Catches {
			tc.scopes.push()
			if c.Type != nil {
				tc.checkType(c.Type)
			}
			if c.Name != "" {
				typ := c.Type
				if typ == nil {
					typ = ast.NamedType("Exception")
				}
				c.Local = tc.declare(c.Name, typ.Clone(), c.Span)
			}
			tc.resolveStmt(c.Body)
			tc.scopes.pop()
		}
		tc.resolveNested(d.Finally)
	case *ast.ThrowData:
		tc.resolveExpr(d.Value)
	case *ast.SwitchData:
		tc.resolveExpr(d.Tag)
		tc.loops = append(tc.loops, loopFrame{isSwitch: true})
		for _, c := range d.Cases {
			for _, v := range c.Values {
				tc.resolveExpr(v)
			}
			tc.scopes.push()
			for _, b := range c.Body {
				tc.resolveStmt(b)
			}
			tc.scopes.pop()
		}
		tc.loops = tc.loops[:len(tc.loops)-1]
	}
}

func (tc *typeChecker) checkBranch(s *ast.Stmt, d *ast.BranchData) {
	kw := "break"
	if s.Kind == ast.StmtContinue {
		kw = "continue"
	}
	for i := len(tc.loops) - 1; i >= 0; i-- {
		f := tc.loops[i]
		if d.Label != "" {
			if f.label == d.Label {
				return
			}
			continue
		}
		if s.Kind == ast.StmtBreak || !f.isSwitch {
			return
		}
	}
	msg := kw + " outside of a loop"
	if d.Label != "" {
		msg = kw + " to unknown label " + d.Label
	}
	tc.report(diag.SemaBreakOutsideLoop, s.Span, msg)
}

func (tc *typeChecker) resolveExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case *ast.NameData:
		tc.resolveName(e, d)
	case *ast.MemberData:
		tc.resolveExpr(d.X)
	case *ast.IndexData:
		tc.resolveExpr(d.X)
		tc.resolveExpr(d.Index)
	case *ast.CallData:
		tc.resolveExpr(d.Fn)
		for _, t := range d.TypeArgs {
			tc.checkType(t)
		}
		for _, a := range d.Args {
			tc.resolveExpr(a)
		}
	case *ast.NewData:
		tc.checkType(d.Type)
		for _, a := range d.Args {
			tc.resolveExpr(a)
		}
	case *ast.UnaryData:
		tc.resolveExpr(d.X)
	case *ast.BinaryData:
		tc.resolveExpr(d.X)
		tc.resolveExpr(d.Y)
	case *ast.AssignData:
		tc.resolveExpr(d.Target)
		tc.resolveExpr(d.Value)
	case *ast.IncDecData:
		tc.resolveExpr(d.Target)
	default:
		if e.Kind == ast.ExprThis && tc.static {
			tc.report(diag.SemaThisInStaticContext, e.Span, "'this' is not available in a static member")
		}
	}
}

// resolveName binds an unqualified identifier: locals, then parameters, then
// members of the enclosing class chain, then types.
func (tc *typeChecker) resolveName(e *ast.Expr, d *ast.NameData) {
	if id, ok := tc.scopes.lookup(d.Name); ok {
		d.Ref = ast.Ref{Kind: ast.RefLocal, Local: id}
		return
	}
	if i := tc.paramIndex(d.Name); i >= 0 {
		d.Ref = ast.Ref{Kind: ast.RefParam, Param: i}
		return
	}
	if tc.class != nil {
		if f, owner := tc.findField(tc.class, d.Name); f != nil {
			d.Ref = ast.Ref{Kind: ast.RefField, Static: f.Static, Owner: owner.Name}
			if !f.Static && tc.static {
				tc.report(diag.SemaThisInStaticContext, e.Span, "instance field '"+d.Name+"' used in a static member")
			}
			return
		}
		if ms, owner := tc.findMethods(tc.class, d.Name); len(ms) > 0 {
			static := owner.Static
			for _, m := range ms {
				static = static || m.Static
			}
			d.Ref = ast.Ref{Kind: ast.RefMethod, Static: static, Owner: owner.Name}
			if !static && tc.static {
				tc.report(diag.SemaThisInStaticContext, e.Span, "instance method '"+d.Name+"' used in a static member")
			}
			return
		}
	}
	if tc.typeParams[d.Name] || builtinTypes[d.Name] || tc.unit.Lookup(d.Name) != nil {
		d.Ref = ast.Ref{Kind: ast.RefType}
		return
	}
	d.Ref = ast.Ref{}
	tc.report(diag.SemaUnresolvedSymbol, e.Span, "unresolved name '"+d.Name+"'")
}

// findField walks c and its in-unit base classes.
func (tc *typeChecker) findField(c *ast.ClassDecl, name string) (*ast.FieldDecl, *ast.ClassDecl) {
	for cur, depth := c, 0; cur != nil && depth < 32; depth++ {
		if f := cur.Field(name); f != nil {
			return f, cur
		}
		cur = tc.baseOf(cur)
	}
	return nil, nil
}

func (tc *typeChecker) findMethods(c *ast.ClassDecl, name string) ([]*ast.MethodDecl, *ast.ClassDecl) {
	for cur, depth := c, 0; cur != nil && depth < 32; depth++ {
		if ms := cur.MethodsNamed(name); len(ms) > 0 {
			return ms, cur
		}
		cur = tc.baseOf(cur)
	}
	return nil, nil
}

func (tc *typeChecker) baseOf(c *ast.ClassDecl) *ast.ClassDecl {
	if c.Base == nil {
		return nil
	}
	return tc.unit.Lookup(c.Base.Name)
}
