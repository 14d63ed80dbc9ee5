package sema_test

import (
	"testing"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/parser"
	"yieldc/internal/sema"
	"yieldc/internal/source"
)

func check(t *testing.T, src string) (*ast.Unit, *sema.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ys", []byte(src))
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	u := parser.Parse(fs, id, r)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	return u, sema.Check(u, sema.Options{Reporter: r}), bag
}

func TestCheckBindsNamesAndLocals(t *testing.T) {
	u, res, bag := check(t, `class C {
	int scale;
	static int Twice(int v) { return v * 2; }
	IEnumerable<int> Seq(int n) {
		var total = 0;
		for (var i = 0; i < n; i++) {
			total += i * scale;
			yield return Twice(total);
		}
		foreach (var x in new List<string>()) { var y = x; }
	}
}`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	m := u.Types[0].MethodsNamed("Seq")[0]
	mi := res.Method(m)
	if !mi.IsIterator || mi.Static {
		t.Fatalf("Seq should be an instance iterator")
	}
	if mi.ElemType.String() != "int" {
		t.Fatalf("elem type = %s", mi.ElemType)
	}
	names := make([]string, len(mi.Locals))
	for i, l := range mi.Locals {
		names[i] = l.Name + ":" + l.Type.String()
	}
	want := []string{"total:int", "i:int", "x:string", "y:string"}
	if len(names) != len(want) {
		t.Fatalf("locals = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("locals = %v, want %v", names, want)
		}
	}

	refs := map[string]ast.Ref{}
	ast.Inspect(m.Body, ast.Visitor{OnExpr: func(e *ast.Expr) bool {
		if d, ok := e.Data.(*ast.NameData); ok {
			refs[d.Name] = d.Ref
		}
		return true
	}})
	if refs["scale"].Kind != ast.RefField || refs["scale"].Static || refs["scale"].Owner != "C" {
		t.Fatalf("scale ref = %+v", refs["scale"])
	}
	if refs["n"].Kind != ast.RefParam || refs["n"].Param != 0 {
		t.Fatalf("n ref = %+v", refs["n"])
	}
	if refs["Twice"].Kind != ast.RefMethod || !refs["Twice"].Static {
		t.Fatalf("Twice ref = %+v", refs["Twice"])
	}
	if refs["total"].Kind != ast.RefLocal || refs["total"].Local != 1 {
		t.Fatalf("total ref = %+v", refs["total"])
	}
	if refs["x"].Kind != ast.RefLocal {
		t.Fatalf("x ref = %+v", refs["x"])
	}
}

func TestCheckShadowingInSiblingScopesGetsDistinctIDs(t *testing.T) {
	u, res, bag := check(t, `class C {
	static IEnumerable<int> M() {
		{ var a = 1; yield return a; }
		{ var a = 2; yield return a; }
	}
}`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mi := res.Method(u.Types[0].Methods[0])
	if len(mi.Locals) != 2 || mi.Locals[0].ID == mi.Locals[1].ID {
		t.Fatalf("expected two distinct locals, got %+v", mi.Locals)
	}
}

func TestCheckIteratorDetection(t *testing.T) {
	u, res, _ := check(t, `class C {
	static IEnumerable<int> Empty() { yield break; }
	static int Plain() { return 1; }
	static IEnumerator Untyped() { yield return 1; }
}`)
	iters := res.Iterators()
	if len(iters) != 2 || iters[0].Method.Name != "Empty" || iters[1].Method.Name != "Untyped" {
		t.Fatalf("iterators = %d", len(iters))
	}
	if res.Method(u.Types[0].Methods[1]).IsIterator {
		t.Fatalf("Plain is not an iterator")
	}
	if iters[1].ElemType.String() != "object" {
		t.Fatalf("non-generic IEnumerator should produce object, got %s", iters[1].ElemType)
	}
}

func TestCheckTypeParamsOrder(t *testing.T) {
	u, res, bag := check(t, `class Box<T> {
	IEnumerable<U> Map<U>(T seed, U other) { yield return other; }
}`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mi := res.Method(u.Types[0].Methods[0])
	if len(mi.TypeParams) != 2 || mi.TypeParams[0] != "T" || mi.TypeParams[1] != "U" {
		t.Fatalf("type params = %v", mi.TypeParams)
	}
}

func TestCheckDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unresolved", `class C { void M() { x = 1; } }`, diag.SemaUnresolvedSymbol},
		{"duplicate local", `class C { void M() { var a = 1; var a = 2; } }`, diag.SemaDuplicateLocal},
		{"local shadows param", `class C { void M(int a) { var a = 1; } }`, diag.SemaDuplicateLocal},
		{"duplicate field", `class C { int a; int a; }`, diag.SemaDuplicateMember},
		{"duplicate method", `class C { void M(int a) { } void M(int b) { } }`, diag.SemaDuplicateMember},
		{"unknown type", `class C { Widget w; }`, diag.SemaUnknownType},
		{"yield in void", `class C { void M() { yield return 1; } }`, diag.SemaYieldInVoidMethod},
		{"break outside loop", `class C { void M() { break; } }`, diag.SemaBreakOutsideLoop},
		{"continue in switch", `class C { void M(int n) { switch (n) { default: continue; } } }`, diag.SemaBreakOutsideLoop},
		{"this in static", `class C { static void M() { var x = this; } }`, diag.SemaThisInStaticContext},
		{"instance field in static", `class C { int f; static void M() { f = 1; } }`, diag.SemaThisInStaticContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := check(t, tt.src)
			if len(bag.Filter(tt.code)) == 0 {
				t.Fatalf("expected %s, got %v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestCheckOverloadsAllowed(t *testing.T) {
	_, _, bag := check(t, `class C { void M(int a) { } void M(string a) { } }`)
	if bag.Len() != 0 {
		t.Fatalf("overloads by parameter type are legal: %v", bag.Items())
	}
}
