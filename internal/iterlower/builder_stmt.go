package iterlower

import (
	"strings"

	"yieldc/internal/ast"
)

// suspends reports whether s contains a suspension point.
func suspends(s *ast.Stmt) bool {
	return ast.ContainsKind(s, ast.StmtYieldReturn)
}

// needsStates reports whether s has to be split into states. Besides
// suspension points this covers a plain try/finally left by a branch that
// also leaves a lowered region: copied verbatim, the inlined region cleanups
// would run before the try's own finally block.
func (b *builder) needsStates(s *ast.Stmt) bool {
	return suspends(s) || b.escapesGuarded(s, 0, 0, 0)
}

// escapesGuarded reports a yield break, break or continue that leaves s from
// inside a try with a finally block (guarded > 0) and exits a lowered region.
func (b *builder) escapesGuarded(s *ast.Stmt, loopDepth, breakDepth, guarded int) bool {
	if s == nil {
		return false
	}
	switch d := s.Data.(type) {
	case *ast.BlockData:
		for _, c := range d.Stmts {
			if b.escapesGuarded(c, loopDepth, breakDepth, guarded) {
				return true
			}
		}
	case *ast.IfData:
		return b.escapesGuarded(d.Then, loopDepth, breakDepth, guarded) ||
			b.escapesGuarded(d.Else, loopDepth, breakDepth, guarded)
	case *ast.WhileData:
		return b.escapesGuarded(d.Body, loopDepth+1, breakDepth+1, guarded)
	case *ast.DoData:
		return b.escapesGuarded(d.Body, loopDepth+1, breakDepth+1, guarded)
	case *ast.ForData:
		return b.escapesGuarded(d.Body, loopDepth+1, breakDepth+1, guarded)
	case *ast.ForeachData:
		return b.escapesGuarded(d.Body, loopDepth+1, breakDepth+1, guarded)
	case *ast.TryData:
		inner := guarded
		if len(ast.Stmts(d.Finally)) > 0 {
			inner++
		}
		if b.escapesGuarded(d.Body, loopDepth, breakDepth, inner) {
			return true
		}
		for _, c := range d.Catches {
			if b.escapesGuarded(c.Body, loopDepth, breakDepth, inner) {
				return true
			}
		}
	case *ast.SwitchData:
		for _, c := range d.Cases {
			for _, x := range c.Body {
				if b.escapesGuarded(x, loopDepth, breakDepth+1, guarded) {
					return true
				}
			}
		}
	case *ast.BranchData:
		if d.Label != "" || guarded == 0 || len(b.loops) == 0 {
			return false
		}
		l := b.loops[len(b.loops)-1]
		if s.Kind == ast.StmtBreak && breakDepth == 0 {
			return l.brkDepth < len(b.regions)
		}
		if s.Kind == ast.StmtContinue && loopDepth == 0 {
			return l.contDepth < len(b.regions)
		}
	case *ast.YieldData:
		return s.Kind == ast.StmtYieldBreak && guarded > 0 && len(b.regions) > 0
	}
	return false
}

// stmt lowers s into the graph starting at b.cur. Statements after a
// terminating one (b.cur == nil) are unreachable and dropped.
func (b *builder) stmt(s *ast.Stmt) {
	if s == nil || b.cur == nil || b.err != nil {
		return
	}
	switch s.Kind {
	case ast.StmtYieldBreak:
		b.closeTerminate(s.Span)
		return
	case ast.StmtBreak, ast.StmtContinue:
		if d := s.Data.(*ast.BranchData); d.Label == "" && len(b.loops) > 0 {
			l := b.loops[len(b.loops)-1]
			if s.Kind == ast.StmtBreak {
				b.closeJump(TransJump, l.brk, b.leave(l.brkDepth), s.Span)
			} else {
				b.closeJump(TransJump, l.cont, b.leave(l.contDepth), s.Span)
			}
			return
		}
	}
	if !b.needsStates(s) {
		b.emit(b.passthrough(s))
		return
	}
	switch d := s.Data.(type) {
	case *ast.BlockData:
		for _, c := range d.Stmts {
			b.stmt(c)
		}
	case *ast.YieldData:
		b.closeYield(d.Value, s.Span)
	case *ast.IfData:
		b.lowerIf(s, d)
	case *ast.WhileData:
		b.lowerWhile(s, d)
	case *ast.DoData:
		b.lowerDo(s, d)
	case *ast.ForData:
		b.lowerFor(s, d)
	case *ast.ForeachData:
		b.lowerForeach(s, d)
	case *ast.TryData:
		b.lowerTry(s, d)
	default:
		if !suspends(s) {
			b.unsupported(s.Span, "cannot leave a try/finally nested in a "+lowerKind(s)+
				" statement while an enclosing finally block of the iterator is pending")
			return
		}
		b.fail("cannot lower %s statement containing yield at %s", s.Kind, s.Span)
	}
}

// passthrough copies a non-suspending statement, turning `yield break` into a
// terminate sequence and break/continue aimed at lowered loops into jumps.
func (b *builder) passthrough(s *ast.Stmt) *ast.Stmt {
	return b.rewriteBranches(s, 0, 0)
}

// rewriteBranches walks s; loopDepth and breakDepth count the enclosing
// constructs inside s that capture continue and break respectively.
func (b *builder) rewriteBranches(s *ast.Stmt, loopDepth, breakDepth int) *ast.Stmt {
	if s == nil {
		return nil
	}
	switch d := s.Data.(type) {
	case *ast.BlockData:
		for i, c := range d.Stmts {
			d.Stmts[i] = b.rewriteBranches(c, loopDepth, breakDepth)
		}
	case *ast.IfData:
		d.Then = b.rewriteBranches(d.Then, loopDepth, breakDepth)
		d.Else = b.rewriteBranches(d.Else, loopDepth, breakDepth)
	case *ast.WhileData:
		d.Body = b.rewriteBranches(d.Body, loopDepth+1, breakDepth+1)
	case *ast.DoData:
		d.Body = b.rewriteBranches(d.Body, loopDepth+1, breakDepth+1)
	case *ast.ForData:
		d.Body = b.rewriteBranches(d.Body, loopDepth+1, breakDepth+1)
	case *ast.ForeachData:
		d.Body = b.rewriteBranches(d.Body, loopDepth+1, breakDepth+1)
	case *ast.TryData:
		d.Body = b.rewriteBranches(d.Body, loopDepth, breakDepth)
		for _, c := range d.Catches {
			c.Body = b.rewriteBranches(c.Body, loopDepth, breakDepth)
		}
		d.Finally = b.rewriteBranches(d.Finally, loopDepth, breakDepth)
	case *ast.SwitchData:
		for _, c := range d.Cases {
			for i, x := range c.Body {
				c.Body[i] = b.rewriteBranches(x, loopDepth, breakDepth+1)
			}
		}
	case *ast.BranchData:
		if d.Label != "" {
			return s
		}
		if s.Kind == ast.StmtBreak && breakDepth == 0 {
			return b.branchToLoop(s, true)
		}
		if s.Kind == ast.StmtContinue && loopDepth == 0 {
			return b.branchToLoop(s, false)
		}
	case *ast.YieldData:
		if s.Kind == ast.StmtYieldBreak {
			return b.terminateStmt(s.Span)
		}
	}
	return s
}

func (b *builder) branchToLoop(s *ast.Stmt, isBreak bool) *ast.Stmt {
	if len(b.loops) == 0 {
		b.fail("%w at %s", errNoLoop, s.Span)
		return s
	}
	l := b.loops[len(b.loops)-1]
	if isBreak {
		return b.jumpStmt(l.brk, b.leave(l.brkDepth), s.Span)
	}
	return b.jumpStmt(l.cont, b.leave(l.contDepth), s.Span)
}

// lowerIf:
//
//	cur:  ...; if (c) goto T;  -> E (or J)
//	T:    then...              -> J
//	E:    else...              -> J
func (b *builder) lowerIf(s *ast.Stmt, d *ast.IfData) {
	thenSt := b.newState()
	b.emit(ast.If(d.Cond, b.jumpStmt(b.at(thenSt), nil, s.Span), nil))
	join := &target{}
	var elseSt *State
	if d.Else != nil {
		elseSt = b.newState()
		b.closeJump(TransJump, b.at(elseSt), nil, s.Span)
	} else {
		b.closeJump(TransJump, join, nil, s.Span)
	}

	b.cur = thenSt
	b.stmt(d.Then)
	if b.cur != nil {
		b.closeJump(TransJump, join, nil, s.Span)
	}
	if elseSt != nil {
		b.cur = elseSt
		b.stmt(d.Else)
		if b.cur != nil {
			b.closeJump(TransJump, join, nil, s.Span)
		}
	}
	b.cur = b.resolveIfUsed(join)
}

// lowerWhile:
//
//	H: if (c) goto B;  -> X
//	B: body...         -> H
func (b *builder) lowerWhile(s *ast.Stmt, d *ast.WhileData) {
	header := b.newState()
	b.closeJump(TransContinue, b.at(header), nil, s.Span)
	body := b.newState()
	exit := &target{}

	b.cur = header
	b.emit(ast.If(d.Cond, b.jumpStmt(b.at(body), nil, s.Span), nil))
	b.closeJump(TransJump, exit, nil, s.Span)

	b.loopBody(body, d.Body, loopCtx{brk: exit, cont: b.at(header), brkDepth: len(b.regions), contDepth: len(b.regions)}, s)
	b.cur = b.resolveIfUsed(exit)
}

// lowerDo:
//
//	B: body...         -> C
//	C: if (c) goto B;  -> X
func (b *builder) lowerDo(s *ast.Stmt, d *ast.DoData) {
	body := b.newState()
	b.closeJump(TransContinue, b.at(body), nil, s.Span)
	cond := &target{}
	exit := &target{}

	b.loopBody(body, d.Body, loopCtx{brk: exit, cont: cond, brkDepth: len(b.regions), contDepth: len(b.regions)}, s)
	if c := b.resolveIfUsed(cond); c != nil {
		b.cur = c
		b.emit(ast.If(d.Cond, b.jumpStmt(b.at(body), nil, s.Span), nil))
		b.closeJump(TransJump, exit, nil, s.Span)
	}
	b.cur = b.resolveIfUsed(exit)
}

// lowerFor runs the initialisers in the current state, so back-edges never
// re-run them:
//
//	cur: init...            -> H
//	H:   if (c) goto B;     -> X
//	B:   body...            -> I
//	I:   post...            -> H
func (b *builder) lowerFor(s *ast.Stmt, d *ast.ForData) {
	for _, init := range d.Init {
		b.emit(b.passthrough(init))
	}
	header := b.newState()
	b.closeJump(TransContinue, b.at(header), nil, s.Span)
	body := b.newState()
	exit := &target{}

	b.cur = header
	if d.Cond != nil {
		b.emit(ast.If(d.Cond, b.jumpStmt(b.at(body), nil, s.Span), nil))
		b.closeJump(TransJump, exit, nil, s.Span)
	} else {
		b.closeJump(TransContinue, b.at(body), nil, s.Span)
	}

	incr := &target{}
	b.loopBody(body, d.Body, loopCtx{brk: exit, cont: incr, brkDepth: len(b.regions), contDepth: len(b.regions)}, s)
	if st := b.resolveIfUsed(incr); st != nil {
		b.cur = st
		for _, p := range d.Post {
			b.emit(ast.ExprStmt(p))
		}
		b.closeJump(TransJump, b.at(header), nil, s.Span)
	}
	b.cur = b.resolveIfUsed(exit)
}

// lowerForeach desugars to an explicit enumerator guarded by a cleanup
// region that disposes it:
//
//	cur: $iterN = e.GetEnumerator();      -> H
//	H:   if ($iterN.MoveNext()) goto B;   -> X  (leaving the region)
//	B:   x = $iterN.Current; body...      -> H
func (b *builder) lowerForeach(s *ast.Stmt, d *ast.ForeachData) {
	elem := d.ElemType
	if elem == nil {
		if li := b.m.Local(d.Local); li != nil && li.Type != nil {
			elem = li.Type
		} else {
			elem = ast.NamedType("object")
		}
	}
	iterType := ast.NamedType("IEnumerator", elem.Clone())
	id, name := b.m.newTemp(TempIterPrefix, iterType)
	iterRef := func() *ast.Expr {
		return &ast.Expr{Kind: ast.ExprName, Span: s.Span, Data: &ast.NameData{Name: name, Ref: ast.Ref{Kind: ast.RefLocal, Local: id}}}
	}
	b.emit(ast.DeclareLocal(name, iterType.Clone(), ast.Call(ast.Member(d.Iterable, MethodGetEnumerator)), id))

	outer := len(b.regions)
	b.pushRegion([]*ast.Stmt{ast.ExprStmt(ast.Call(ast.Member(iterRef(), MethodDispose)))}, s.Span)
	header := b.newState()
	b.closeJump(TransContinue, b.at(header), nil, s.Span)
	body := b.newState()
	exit := &target{}

	b.cur = header
	b.emit(ast.If(ast.Call(ast.Member(iterRef(), "MoveNext")), b.jumpStmt(b.at(body), nil, s.Span), nil))
	b.closeJump(TransJump, exit, b.leave(outer), s.Span)

	bodyStmts := []*ast.Stmt{ast.DeclareLocal(d.Name, elem.Clone(), ast.Member(iterRef(), PropCurrent), d.Local)}
	bodyStmts = append(bodyStmts, ast.Stmts(d.Body)...)
	loop := loopCtx{brk: exit, cont: b.at(header), brkDepth: outer, contDepth: len(b.regions)}
	b.loopBody(body, ast.Block(bodyStmts...), loop, s)
	b.popRegion()
	b.cur = b.resolveIfUsed(exit)
}

// loopBody lowers body starting in state st; falling off the end continues
// the loop.
func (b *builder) loopBody(st *State, body *ast.Stmt, l loopCtx, s *ast.Stmt) {
	b.loops = append(b.loops, l)
	b.cur = st
	b.stmt(body)
	if b.cur != nil {
		b.closeJump(TransJump, l.cont, b.leave(l.contDepth), s.Span)
	}
	b.loops = b.loops[:len(b.loops)-1]
}

// lowerTry handles try/finally whose guarded block suspends or is left by
// a branch that runs lowered cleanups. Catch clauses around a suspension are
// rejected before building; around a branch they stay in place inside the
// cleanup region.
func (b *builder) lowerTry(s *ast.Stmt, d *ast.TryData) {
	body := d.Body
	if len(d.Catches) > 0 {
		if suspends(d.Body) {
			b.fail("try with catch around yield reached the builder at %s", s.Span)
			return
		}
		if len(ast.Stmts(d.Finally)) == 0 {
			b.unsupported(s.Span, "cannot leave a try/finally nested in a try/catch statement while an enclosing finally block of the iterator is pending")
			return
		}
		body = ast.Try(d.Body, d.Catches, nil)
		body.Span = s.Span
	}
	outer := len(b.regions)
	b.pushRegion(ast.Stmts(d.Finally), s.Span)
	inner := b.newState()
	b.closeJump(TransContinue, b.at(inner), nil, s.Span)
	b.cur = inner
	b.stmt(body)
	after := &target{}
	if b.cur != nil {
		b.closeJump(TransJump, after, b.leave(outer), s.Span)
	}
	b.popRegion()
	b.cur = b.resolveIfUsed(after)
}

func lowerKind(s *ast.Stmt) string {
	return strings.ToLower(s.Kind.String())
}
