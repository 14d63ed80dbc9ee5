package ast

// CloneStmt deep-copies a statement tree. Sema bindings (LocalID, Ref) are
// preserved so that clones stay resolvable.
func CloneStmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch d := s.Data.(type) {
	case *BlockData:
		out.Data = &BlockData{Stmts: cloneStmts(d.Stmts)}
	case *LocalData:
		out.Data = &LocalData{Name: d.Name, Type: d.Type.Clone(), Init: CloneExpr(d.Init), Local: d.Local}
	case *ExprStmtData:
		out.Data = &ExprStmtData{X: CloneExpr(d.X)}
	case *IfData:
		out.Data = &IfData{Cond: CloneExpr(d.Cond), Then: CloneStmt(d.Then), Else: CloneStmt(d.Else)}
	case *WhileData:
		out.Data = &WhileData{Label: d.Label, Cond: CloneExpr(d.Cond), Body: CloneStmt(d.Body)}
	case *DoData:
		out.Data = &DoData{Body: CloneStmt(d.Body), Cond: CloneExpr(d.Cond)}
	case *ForData:
		out.Data = &ForData{Init: cloneStmts(d.Init), Cond: CloneExpr(d.Cond), Post: cloneExprs(d.Post), Body: CloneStmt(d.Body)}
	case *ForeachData:
		out.Data = &ForeachData{ElemType: d.ElemType.Clone(), Name: d.Name, Local: d.Local, Iterable: CloneExpr(d.Iterable), Body: CloneStmt(d.Body)}
	case *BranchData:
		out.Data = &BranchData{Label: d.Label}
	case *ReturnData:
		out.Data = &ReturnData{Value: CloneExpr(d.Value)}
	case *YieldData:
		out.Data = &YieldData{Value: CloneExpr(d.Value)}
	case *TryData:
		td := &TryData{Body: CloneStmt(d.Body), Finally: CloneStmt(d.Finally)}
		for _, c := range d.Catches {
			td.Catches = append(td.Catches, &CatchClause{Type: c.Type.Clone(), Name: c.Name, Local: c.Local, Body: CloneStmt(c.Body), Span: c.Span})
		}
		out.Data = td
	case *ThrowData:
		out.Data = &ThrowData{Value: CloneExpr(d.Value)}
	case *SwitchData:
		sd := &SwitchData{Tag: CloneExpr(d.Tag)}
		for _, c := range d.Cases {
			sd.Cases = append(sd.Cases, &SwitchCase{Values: cloneExprs(c.Values), Body: cloneStmts(c.Body)})
		}
		out.Data = sd
	}
	return out
}

func CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Span: e.Span}
	switch d := e.Data.(type) {
	case *IntData:
		out.Data = &IntData{Value: d.Value}
	case *StringData:
		out.Data = &StringData{Value: d.Value}
	case *BoolData:
		out.Data = &BoolData{Value: d.Value}
	case *NameData:
		out.Data = &NameData{Name: d.Name, Ref: d.Ref}
	case *MemberData:
		out.Data = &MemberData{X: CloneExpr(d.X), Name: d.Name}
	case *IndexData:
		out.Data = &IndexData{X: CloneExpr(d.X), Index: CloneExpr(d.Index)}
	case *CallData:
		cd := &CallData{Fn: CloneExpr(d.Fn), Args: cloneExprs(d.Args)}
		for _, t := range d.TypeArgs {
			cd.TypeArgs = append(cd.TypeArgs, t.Clone())
		}
		out.Data = cd
	case *NewData:
		out.Data = &NewData{Type: d.Type.Clone(), Args: cloneExprs(d.Args)}
	case *UnaryData:
		out.Data = &UnaryData{Op: d.Op, X: CloneExpr(d.X)}
	case *BinaryData:
		out.Data = &BinaryData{Op: d.Op, X: CloneExpr(d.X), Y: CloneExpr(d.Y)}
	case *AssignData:
		out.Data = &AssignData{Op: d.Op, Target: CloneExpr(d.Target), Value: CloneExpr(d.Value)}
	case *IncDecData:
		out.Data = &IncDecData{Target: CloneExpr(d.Target), Dec: d.Dec}
	}
	return out
}

// CloneMethod copies a method declaration including its body.
func CloneMethod(m *MethodDecl) *MethodDecl {
	out := *m
	out.TypeParams = append([]string(nil), m.TypeParams...)
	out.Params = make([]*Param, len(m.Params))
	for i, p := range m.Params {
		cp := *p
		cp.Type = p.Type.Clone()
		out.Params[i] = &cp
	}
	out.Result = m.Result.Clone()
	out.Body = CloneStmt(m.Body)
	return &out
}

func cloneStmts(in []*Stmt) []*Stmt {
	if in == nil {
		return nil
	}
	out := make([]*Stmt, len(in))
	for i, s := range in {
		out[i] = CloneStmt(s)
	}
	return out
}

func cloneExprs(in []*Expr) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	for i, e := range in {
		out[i] = CloneExpr(e)
	}
	return out
}
