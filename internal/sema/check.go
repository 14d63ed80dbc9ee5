// Package sema binds names in a parsed unit and collects the per-method
// metadata iterator lowering needs.
package sema

import (
	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/source"
)

// Options configure a semantic pass over a unit.
type Options struct {
	Reporter diag.Reporter
}

// LocalInfo describes one local declaration; Locals[id-1] holds local id.
type LocalInfo struct {
	ID   ast.LocalID
	Name string
	Type *ast.TypeRef
	Span source.Span
}

// MethodInfo is what later phases need to know about a method.
type MethodInfo struct {
	Class     *ast.ClassDecl
	Method    *ast.MethodDecl
	Namespace string
	Params    []*ast.Param
	// ElemType is the produced element type when Result is an enumerable
	// interface; nil otherwise.
	ElemType *ast.TypeRef
	Static   bool
	// TypeParams are the enclosing class's type parameters followed by the method's.
	TypeParams []string
	IsIterator bool
	Locals     []LocalInfo
}

// Local returns the info for id, or nil.
func (mi *MethodInfo) Local(id ast.LocalID) *LocalInfo {
	if id == ast.NoLocalID || int(id) > len(mi.Locals) {
		return nil
	}
	return &mi.Locals[id-1]
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Unit    *ast.Unit
	Methods map[*ast.MethodDecl]*MethodInfo
	// Order lists methods in source order.
	Order []*MethodInfo
}

func (r *Result) Method(m *ast.MethodDecl) *MethodInfo {
	return r.Methods[m]
}

// Iterators returns iterator methods in source order.
func (r *Result) Iterators() []*MethodInfo {
	var out []*MethodInfo
	for _, mi := range r.Order {
		if mi.IsIterator {
			out = append(out, mi)
		}
	}
	return out
}

// Check resolves every name in u, assigns LocalIDs and reports problems.
// It may be run again on a unit that already went through lowering; bindings
// are recomputed from scratch.
func Check(u *ast.Unit, opts Options) *Result {
	res := &Result{Unit: u, Methods: make(map[*ast.MethodDecl]*MethodInfo)}
	if u == nil {
		return res
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	tc := &typeChecker{unit: u, reporter: reporter, result: res}
	tc.run()
	return res
}

type typeChecker struct {
	unit     *ast.Unit
	reporter diag.Reporter
	result   *Result

	class  *ast.ClassDecl
	method *MethodInfo
	params []*ast.Param
	static bool
	scopes scopeStack
	loops  []loopFrame
	// typeParams in scope for the current member.
	typeParams map[string]bool
	// locals collects declarations of the current body; ctors and field
	// initialisers use a throwaway list.
	locals []LocalInfo
}

type loopFrame struct {
	label    string
	isSwitch bool
}

func (tc *typeChecker) report(code diag.Code, sp source.Span, msg string) {
	tc.reporter.Report(code, diag.SevError, sp, msg, nil)
}

func (tc *typeChecker) run() {
	tc.checkDuplicateClasses()
	for _, c := range tc.unit.Types {
		tc.checkClass(c)
	}
}

func (tc *typeChecker) checkDuplicateClasses() {
	seen := make(map[string]bool)
	for _, c := range tc.unit.Types {
		if seen[c.Name] {
			tc.report(diag.SemaDuplicateMember, c.Span, "duplicate class "+c.Name)
		}
		seen[c.Name] = true
	}
}

func (tc *typeChecker) checkClass(c *ast.ClassDecl) {
	tc.class = c
	defer func() { tc.class = nil }()
	tc.checkDuplicateMembers(c)

	classTPs := make(map[string]bool, len(c.TypeParams))
	for _, tp := range c.TypeParams {
		classTPs[tp] = true
	}
	tc.typeParams = classTPs
	if c.Base != nil {
		tc.checkType(c.Base)
	}

	for _, f := range c.Fields {
		tc.checkType(f.Type)
		if f.Init != nil {
			tc.enterBody(nil, f.Static)
			tc.resolveExpr(f.Init)
			tc.leaveBody()
		}
	}
	for _, ctor := range c.Ctors {
		tc.checkParams(ctor.Params)
		tc.enterBody(ctor.Params, false)
		tc.resolveStmt(ctor.Body)
		tc.leaveBody()
	}
	for _, m := range c.Methods {
		tc.checkMethod(c, m, classTPs)
	}
}

func (tc *typeChecker) checkMethod(c *ast.ClassDecl, m *ast.MethodDecl, classTPs map[string]bool) {
	tps := make(map[string]bool, len(classTPs)+len(m.TypeParams))
	for tp := range classTPs {
		tps[tp] = true
	}
	for _, tp := range m.TypeParams {
		tps[tp] = true
	}
	tc.typeParams = tps
	defer func() { tc.typeParams = classTPs }()

	mi := &MethodInfo{
		Class:      c,
		Method:     m,
		Namespace:  tc.unit.Namespace,
		Params:     m.Params,
		Static:     m.Static || c.Static,
		TypeParams: append(append([]string(nil), c.TypeParams...), m.TypeParams...),
		ElemType:   enumerableElem(m.Result),
	}
	mi.IsIterator = ast.ContainsKind(m.Body, ast.StmtYieldReturn) || ast.ContainsKind(m.Body, ast.StmtYieldBreak)
	if m.Result != nil {
		tc.checkType(m.Result)
	} else if mi.IsIterator {
		tc.report(diag.SemaYieldInVoidMethod, m.Span, "method "+m.Name+" uses yield but returns void")
	}
	tc.checkParams(m.Params)

	tc.method = mi
	tc.enterBody(m.Params, mi.Static)
	tc.resolveStmt(m.Body)
	mi.Locals = tc.locals
	tc.leaveBody()
	tc.method = nil

	tc.result.Methods[m] = mi
	tc.result.Order = append(tc.result.Order, mi)
}

func (tc *typeChecker) checkParams(params []*ast.Param) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		tc.checkType(p.Type)
		if seen[p.Name] {
			tc.report(diag.SemaDuplicateLocal, p.Span, "duplicate parameter "+p.Name)
		}
		seen[p.Name] = true
	}
}

func (tc *typeChecker) checkDuplicateMembers(c *ast.ClassDecl) {
	fields := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if fields[f.Name] {
			tc.report(diag.SemaDuplicateMember, f.Span, "duplicate field "+f.Name+" in class "+c.Name)
		}
		fields[f.Name] = true
	}
	for i, m := range c.Methods {
		if fields[m.Name] {
			tc.report(diag.SemaDuplicateMember, m.Span, "method "+m.Name+" conflicts with a field of the same name")
		}
		for _, prev := range c.Methods[:i] {
			if prev.Name == m.Name && sameSignature(prev.Params, m.Params) {
				tc.report(diag.SemaDuplicateMember, m.Span, "duplicate method "+m.Name+" in class "+c.Name)
				break
			}
		}
	}
}

func sameSignature(a, b []*ast.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Mode != b[i].Mode || !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

// enumerableElem extracts T from IEnumerable<T>/IEnumerator<T>; the
// non-generic interfaces produce object.
func enumerableElem(t *ast.TypeRef) *ast.TypeRef {
	if t == nil || t.Array {
		return nil
	}
	switch lastSegment(t.Name) {
	case "IEnumerable", "IEnumerator":
	default:
		return nil
	}
	switch len(t.Args) {
	case 0:
		return ast.NamedType("object")
	case 1:
		return t.Args[0].Clone()
	default:
		return nil
	}
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
