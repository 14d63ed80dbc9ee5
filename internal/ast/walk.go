package ast

// Visitor callbacks for Inspect. Returning false from OnStmt skips the
// statement's children; OnExpr likewise for expressions. Either may be nil.
type Visitor struct {
	OnStmt func(*Stmt) bool
	OnExpr func(*Expr) bool
}

// Inspect walks s in pre-order.
func Inspect(s *Stmt, v Visitor) {
	if s == nil {
		return
	}
	if v.OnStmt != nil && !v.OnStmt(s) {
		return
	}
	switch d := s.Data.(type) {
	case *BlockData:
		for _, c := range d.Stmts {
			Inspect(c, v)
		}
	case *LocalData:
		InspectExpr(d.Init, v)
	case *ExprStmtData:
		InspectExpr(d.X, v)
	case *IfData:
		InspectExpr(d.Cond, v)
		Inspect(d.Then, v)
		Inspect(d.Else, v)
	case *WhileData:
		InspectExpr(d.Cond, v)
		Inspect(d.Body, v)
	case *DoData:
		Inspect(d.Body, v)
		InspectExpr(d.Cond, v)
	case *ForData:
		for _, c := range d.Init {
			Inspect(c, v)
		}
		InspectExpr(d.Cond, v)
		for _, p := range d.Post {
			InspectExpr(p, v)
		}
		Inspect(d.Body, v)
	case *ForeachData:
		InspectExpr(d.Iterable, v)
		Inspect(d.Body, v)
	case *ReturnData:
		InspectExpr(d.Value, v)
	case *YieldData:
		InspectExpr(d.Value, v)
	case *TryData:
		Inspect(d.Body, v)
		for _, c := range d.Catches {
			Inspect(c.Body, v)
		}
		Inspect(d.Finally, v)
	case *ThrowData:
		InspectExpr(d.Value, v)
	case *SwitchData:
		InspectExpr(d.Tag, v)
		for _, c := range d.Cases {
			for _, x := range c.Values {
				InspectExpr(x, v)
			}
			for _, b := range c.Body {
				Inspect(b, v)
			}
		}
	}
}

// InspectExpr walks e in pre-order.
func InspectExpr(e *Expr, v Visitor) {
	if e == nil {
		return
	}
	if v.OnExpr != nil && !v.OnExpr(e) {
		return
	}
	switch d := e.Data.(type) {
	case *MemberData:
		InspectExpr(d.X, v)
	case *IndexData:
		InspectExpr(d.X, v)
		InspectExpr(d.Index, v)
	case *CallData:
		InspectExpr(d.Fn, v)
		for _, a := range d.Args {
			InspectExpr(a, v)
		}
	case *NewData:
		for _, a := range d.Args {
			InspectExpr(a, v)
		}
	case *UnaryData:
		InspectExpr(d.X, v)
	case *BinaryData:
		InspectExpr(d.X, v)
		InspectExpr(d.Y, v)
	case *AssignData:
		InspectExpr(d.Target, v)
		InspectExpr(d.Value, v)
	case *IncDecData:
		InspectExpr(d.Target, v)
	}
}

// RewriteExpr replaces e bottom-up with fn's result.
func RewriteExpr(e *Expr, fn func(*Expr) *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case *MemberData:
		d.X = RewriteExpr(d.X, fn)
	case *IndexData:
		d.X = RewriteExpr(d.X, fn)
		d.Index = RewriteExpr(d.Index, fn)
	case *CallData:
		d.Fn = RewriteExpr(d.Fn, fn)
		for i := range d.Args {
			d.Args[i] = RewriteExpr(d.Args[i], fn)
		}
	case *NewData:
		for i := range d.Args {
			d.Args[i] = RewriteExpr(d.Args[i], fn)
		}
	case *UnaryData:
		d.X = RewriteExpr(d.X, fn)
	case *BinaryData:
		d.X = RewriteExpr(d.X, fn)
		d.Y = RewriteExpr(d.Y, fn)
	case *AssignData:
		d.Target = RewriteExpr(d.Target, fn)
		d.Value = RewriteExpr(d.Value, fn)
	case *IncDecData:
		d.Target = RewriteExpr(d.Target, fn)
	}
	return fn(e)
}

// RewriteStmtExprs applies RewriteExpr to every expression under s, in place.
func RewriteStmtExprs(s *Stmt, fn func(*Expr) *Expr) {
	if s == nil {
		return
	}
	switch d := s.Data.(type) {
	case *BlockData:
		for _, c := range d.Stmts {
			RewriteStmtExprs(c, fn)
		}
	case *LocalData:
		d.Init = RewriteExpr(d.Init, fn)
	case *ExprStmtData:
		d.X = RewriteExpr(d.X, fn)
	case *IfData:
		d.Cond = RewriteExpr(d.Cond, fn)
		RewriteStmtExprs(d.Then, fn)
		RewriteStmtExprs(d.Else, fn)
	case *WhileData:
		d.Cond = RewriteExpr(d.Cond, fn)
		RewriteStmtExprs(d.Body, fn)
	case *DoData:
		RewriteStmtExprs(d.Body, fn)
		d.Cond = RewriteExpr(d.Cond, fn)
	case *ForData:
		for _, c := range d.Init {
			RewriteStmtExprs(c, fn)
		}
		d.Cond = RewriteExpr(d.Cond, fn)
		for i := range d.Post {
			d.Post[i] = RewriteExpr(d.Post[i], fn)
		}
		RewriteStmtExprs(d.Body, fn)
	case *ForeachData:
		d.Iterable = RewriteExpr(d.Iterable, fn)
		RewriteStmtExprs(d.Body, fn)
	case *ReturnData:
		d.Value = RewriteExpr(d.Value, fn)
	case *YieldData:
		d.Value = RewriteExpr(d.Value, fn)
	case *TryData:
		RewriteStmtExprs(d.Body, fn)
		for _, c := range d.Catches {
			RewriteStmtExprs(c.Body, fn)
		}
		RewriteStmtExprs(d.Finally, fn)
	case *ThrowData:
		d.Value = RewriteExpr(d.Value, fn)
	case *SwitchData:
		d.Tag = RewriteExpr(d.Tag, fn)
		for _, c := range d.Cases {
			for i := range c.Values {
				c.Values[i] = RewriteExpr(c.Values[i], fn)
			}
			for _, b := range c.Body {
				RewriteStmtExprs(b, fn)
			}
		}
	}
}

// ContainsKind reports whether any statement under s has kind k.
func ContainsKind(s *Stmt, k StmtKind) bool {
	found := false
	Inspect(s, Visitor{OnStmt: func(c *Stmt) bool {
		if c.Kind == k {
			found = true
		}
		return !found
	}})
	return found
}
