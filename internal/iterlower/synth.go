package iterlower

import (
	"fmt"
	"strings"

	"yieldc/internal/ast"
)

// DisposeMode controls the Dispose body of enumerators without cleanup regions.
type DisposeMode uint8

const (
	// DisposeAuto emits only `this.$state = 0;` when there is nothing to clean up.
	DisposeAuto DisposeMode = iota
	// DisposeAlways emits the snapshot-and-switch form for every enumerator.
	DisposeAlways
)

// ParseDisposeMode accepts "auto" and "always"; empty means auto.
func ParseDisposeMode(s string) (DisposeMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DisposeAuto, nil
	case "always":
		return DisposeAlways, nil
	default:
		return DisposeAuto, fmt.Errorf("unknown dispose mode %q (want auto or always)", s)
	}
}

func (d DisposeMode) String() string {
	if d == DisposeAlways {
		return "always"
	}
	return "auto"
}

type synthesizer struct {
	m    *Method
	g    *Graph
	h    *hoisting
	rw   *rewriter
	name string
	mode DisposeMode
}

// synthesize builds the enumerator class and the replacement body of the
// original method.
func (sy *synthesizer) synthesize() (*ast.ClassDecl, *ast.Stmt, error) {
	m := sy.m
	cls := &ast.ClassDecl{
		Name:       sy.name,
		TypeParams: append([]string(nil), m.TypeParams...),
		Base:       ast.NamedType(BaseType, m.ElemType.Clone()),
		Span:       m.Span,
		Generated:  true,
		Origin:     m.QualifiedName(),
	}

	if !m.Static {
		cls.Fields = append(cls.Fields, &ast.FieldDecl{Name: FieldThis, Type: m.selfType(), Span: m.Span})
	}
	for _, p := range m.Params {
		cls.Fields = append(cls.Fields, &ast.FieldDecl{Name: p.Name, Type: p.Type.Clone(), Span: p.Span})
	}
	for _, v := range sy.h.vars {
		cls.Fields = append(cls.Fields, &ast.FieldDecl{Name: v.Field, Type: v.Type.Clone(), Span: m.Span})
	}
	cls.Fields = append(cls.Fields, &ast.FieldDecl{Name: FieldState, Type: ast.NamedType("int"), Span: m.Span})

	cls.Ctors = append(cls.Ctors, sy.ctor())
	cls.Methods = append(cls.Methods, sy.getEnumerator())
	moveNext, err := sy.moveNext()
	if err != nil {
		return nil, nil, err
	}
	cls.Methods = append(cls.Methods, moveNext, sy.dispose())
	return cls, sy.originalBody(), nil
}

func paramRef(name string, i int) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprName, Data: &ast.NameData{Name: name, Ref: ast.Ref{Kind: ast.RefParam, Param: i}}}
}

func setField(name string, value *ast.Expr) *ast.Stmt {
	return ast.ExprStmt(ast.Assign(ast.ThisField(name), value))
}

// ctor copies the captured instance and the arguments into fields and arms
// the first state. It runs no source statement.
func (sy *synthesizer) ctor() *ast.CtorDecl {
	m := sy.m
	var params []*ast.Param
	var body []*ast.Stmt
	if !m.Static {
		params = append(params, &ast.Param{Name: FieldThis, Type: m.selfType()})
		body = append(body, setField(FieldThis, paramRef(FieldThis, 0)))
	}
	for _, p := range m.Params {
		i := len(params)
		params = append(params, &ast.Param{Name: p.Name, Type: p.Type.Clone(), Span: p.Span})
		body = append(body, setField(p.Name, paramRef(p.Name, i)))
	}
	body = append(body, setField(FieldState, ast.Int(StateStart)))
	return &ast.CtorDecl{Params: params, Body: ast.Block(body...), Span: m.Span}
}

func (sy *synthesizer) getEnumerator() *ast.MethodDecl {
	return &ast.MethodDecl{
		Name:   MethodGetEnumerator,
		Result: ast.NamedType("IEnumerator", sy.m.ElemType.Clone()),
		Body:   ast.Block(ast.Return(ast.This())),
		Span:   sy.m.Span,
	}
}

// finally returns rewritten copies of the finally blocks of leave.
func (sy *synthesizer) finally(leave []RegionID) []*ast.Stmt {
	var out []*ast.Stmt
	for _, r := range leave {
		for _, s := range sy.g.Regions[r].Finally {
			out = append(out, sy.rw.stmt(ast.CloneStmt(s)))
		}
	}
	return out
}

// transition renders the terminal transition of s.
func (sy *synthesizer) transition(s *State) ([]*ast.Stmt, error) {
	t := s.Term
	switch t.Kind {
	case TransYield:
		return []*ast.Stmt{
			setField(FieldCurrent, t.Value),
			setField(FieldState, ast.Int(stateLit(t.Target))),
			ast.Return(ast.Bool(true)),
		}, nil
	case TransTerminate:
		out := []*ast.Stmt{setField(FieldState, ast.Int(StateFinished))}
		out = append(out, sy.finally(t.Leave)...)
		return append(out, ast.Return(ast.Bool(false))), nil
	case TransJump, TransContinue:
		out := []*ast.Stmt{setField(FieldState, ast.Int(stateLit(t.Target)))}
		out = append(out, sy.finally(t.Leave)...)
		return append(out, ast.Continue(DispatchLabel)), nil
	default:
		return nil, fmt.Errorf("state %d has no terminal transition", s.ID)
	}
}

// moveNext:
//
//	$top: while (true) { switch (this.$state) { case k: { ... } } }
//
// wrapped in a handler that disposes and rethrows when cleanup regions exist.
func (sy *synthesizer) moveNext() (*ast.MethodDecl, error) {
	var cases []*ast.SwitchCase
	for _, s := range sy.g.States {
		var body []*ast.Stmt
		if s.ID == StateFinished {
			body = []*ast.Stmt{ast.Return(ast.Bool(false))}
		} else {
			tail, err := sy.transition(s)
			if err != nil {
				return nil, err
			}
			stmts := append(append([]*ast.Stmt(nil), s.Stmts...), tail...)
			if !endsControl(stmts[len(stmts)-1]) {
				return nil, fmt.Errorf("case %d can fall off the end", s.ID)
			}
			body = []*ast.Stmt{ast.Block(stmts...)}
		}
		cases = append(cases, &ast.SwitchCase{Values: []*ast.Expr{ast.Int(stateLit(s.ID))}, Body: body})
	}
	dispatch := ast.While(DispatchLabel, ast.Bool(true), ast.Block(ast.Switch(ast.ThisField(FieldState), cases...)))

	body := dispatch
	if sy.g.HasRegions() {
		id := sy.m.newLocal(ExceptionLocal, ast.NamedType("Exception"))
		exc := &ast.Expr{Kind: ast.ExprName, Data: &ast.NameData{Name: ExceptionLocal, Ref: ast.Ref{Kind: ast.RefLocal, Local: id}}}
		handler := &ast.CatchClause{
			Type:  ast.NamedType("Exception"),
			Name:  ExceptionLocal,
			Local: id,
			Body: ast.Block(
				ast.ExprStmt(ast.Call(ast.ThisField(MethodDispose))),
				ast.Throw(exc),
			),
		}
		body = ast.Try(ast.Block(dispatch), []*ast.CatchClause{handler}, nil)
	}
	return &ast.MethodDecl{
		Name:   MethodMoveNext,
		Result: ast.NamedType("bool"),
		Body:   ast.Block(body),
		Span:   sy.m.Span,
	}, nil
}

// endsControl reports whether s never completes normally.
func endsControl(s *ast.Stmt) bool {
	switch s.Kind {
	case ast.StmtReturn, ast.StmtContinue, ast.StmtThrow:
		return true
	default:
		return false
	}
}

// dispose marks the enumerator finished before running the finally blocks
// active in the state it was suspended in, so a second call does nothing.
//
//	int $s = this.$state; this.$state = 0;
//	switch ($s) { case k: { F_inner; F_outer; } break; }
func (sy *synthesizer) dispose() *ast.MethodDecl {
	decl := &ast.MethodDecl{Name: MethodDispose, Span: sy.m.Span}
	reset := setField(FieldState, ast.Int(StateFinished))
	if !sy.g.HasRegions() && sy.mode == DisposeAuto {
		decl.Body = ast.Block(reset)
		return decl
	}

	snap := ast.DeclareLocal(DisposeLocal, ast.NamedType("int"), ast.ThisField(FieldState), 1)
	snapRef := &ast.Expr{Kind: ast.ExprName, Data: &ast.NameData{Name: DisposeLocal, Ref: ast.Ref{Kind: ast.RefLocal, Local: 1}}}

	// состояния с одинаковым набором регионов делят одну ветку
	var cases []*ast.SwitchCase
	byKey := make(map[string]*ast.SwitchCase)
	for _, s := range sy.g.DisposeStates() {
		key := fmt.Sprint(s.Regions)
		if c, ok := byKey[key]; ok {
			c.Values = append(c.Values, ast.Int(stateLit(s.ID)))
			continue
		}
		c := &ast.SwitchCase{
			Values: []*ast.Expr{ast.Int(stateLit(s.ID))},
			Body:   []*ast.Stmt{ast.Block(sy.finally(s.Regions)...), ast.Break()},
		}
		byKey[key] = c
		cases = append(cases, c)
	}
	stmts := []*ast.Stmt{snap, reset}
	if len(cases) > 0 {
		stmts = append(stmts, ast.Switch(snapRef, cases...))
	}
	decl.Body = ast.Block(stmts...)
	return decl
}

// originalBody is `return new Enumerator<T...>([this,] p1, ...);`.
func (sy *synthesizer) originalBody() *ast.Stmt {
	m := sy.m
	t := &ast.TypeRef{Name: sy.name}
	for _, tp := range m.TypeParams {
		t.Args = append(t.Args, ast.NamedType(tp))
	}
	var args []*ast.Expr
	if !m.Static {
		args = append(args, ast.This())
	}
	for i, p := range m.Params {
		args = append(args, paramRef(p.Name, i))
	}
	ret := ast.Return(ast.New(t, args...))
	ret.Span = m.Decl.Body.Span
	blk := ast.Block(ret)
	blk.Span = m.Decl.Body.Span
	return blk
}
