package iterlower_test

import (
	"strings"
	"testing"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/format"
	"yieldc/internal/iterlower"
)

const rejected = `
class Bad {
    static IEnumerable<int> RefParam(ref int x) { yield return x; }
    static IEnumerable<int> Ret() { yield return 1; return null; }
    static IEnumerable<int> InCatch() {
        try { } catch (Exception e) { yield return 1; }
    }
    static IEnumerable<int> InFinally() {
        try { } finally { yield break; }
    }
    static IEnumerable<int> InTryCatch() {
        try { yield return 1; } catch (Exception e) { }
    }
    static IEnumerable<int> InSwitch(int k) {
        switch (k) { case 1: yield return 1; break; }
    }
    static int BadType() { yield return 1; }
    static IEnumerable<int> Fine() { yield return 1; }
}
`

func TestRejectedIterators(t *testing.T) {
	u, res, bag := lowerSource(t, rejected, iterlower.Options{})
	want := []diag.Code{
		diag.IterAliasParam,
		diag.IterReturnInIterator,
		diag.IterYieldInCatch,
		diag.IterYieldInFinally,
		diag.IterYieldInTryCatch,
		diag.IterUnsupportedConstruct,
		diag.IterBadReturnType,
	}
	items := bag.Items()
	if len(items) != len(want) {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	for i, code := range want {
		if items[i].Code != code {
			t.Errorf("diagnostic %d = %s, want %s (%s)", i, items[i].Code.ID(), code.ID(), summary(bag))
		}
		if items[i].Severity != diag.SevError {
			t.Errorf("diagnostic %d severity = %v", i, items[i].Severity)
		}
	}
	if res.Failed != len(want) {
		t.Fatalf("Failed = %d, want %d", res.Failed, len(want))
	}
	if len(res.Lowered) != 1 || res.Lowered[0].Method.Decl.Name != "Fine" {
		t.Fatalf("only Fine should be lowered, got %d", len(res.Lowered))
	}
	var generated int
	for _, c := range u.Types {
		if c.Generated {
			generated++
		}
	}
	if generated != 1 {
		t.Fatalf("generated classes = %d, want 1", generated)
	}
}

func TestLeavingTryInsideSwitchIsRejected(t *testing.T) {
	_, res, bag := lowerSource(t, `
class S {
    static int n;
    static IEnumerable<int> Pick(int k) {
        try {
            yield return 1;
            switch (k) {
                case 1:
                    try { yield break; } finally { n = 1; }
                    break;
            }
        } finally {
            n = 2;
        }
    }
    static IEnumerable<int> Plain(int k) {
        try {
            yield return 1;
            switch (k) {
                case 1: yield break;
            }
        } finally {
            n = 2;
        }
    }
}`, iterlower.Options{})
	got := bag.Filter(diag.IterUnsupportedConstruct)
	if len(got) != 1 || bag.Len() != 1 {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	if !strings.Contains(got[0].Message, "nested in a switch statement") {
		t.Fatalf("message = %q", got[0].Message)
	}
	if res.Failed != 1 || len(res.Lowered) != 1 || res.Lowered[0].Method.Decl.Name != "Plain" {
		t.Fatalf("only Plain should be lowered: failed=%d lowered=%d", res.Failed, len(res.Lowered))
	}
}

const squares = `
class Seq {
    static IEnumerable<int> Squares(int n) {
        for (int i = 0; i < n; i++) yield return i * i;
    }
}
`

func TestSquaresGraph(t *testing.T) {
	_, res, bag := lowerSource(t, squares, iterlower.Options{})
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	l := res.Lowered[0]
	if err := l.Graph.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := l.Graph.YieldCount(); got != 1 {
		t.Errorf("YieldCount = %d, want 1", got)
	}
	if got := len(l.Graph.States); got != 7 {
		t.Errorf("states = %d, want 7", got)
	}
	if l.Graph.HasRegions() {
		t.Errorf("squares has no cleanup regions")
	}
	if len(l.Hoisted) != 1 || l.Hoisted[0].Name != "i" {
		t.Fatalf("hoisted = %+v, want [i]", l.Hoisted)
	}
	for i, ok := range l.Graph.Reachable() {
		if !ok && i != iterlower.StateFinished {
			t.Errorf("state %d unreachable", i)
		}
	}
}

func TestGeneratedClassShape(t *testing.T) {
	u, res, _ := lowerSource(t, squares, iterlower.Options{})
	cls := res.Lowered[0].Class
	if findClass(u, iterlower.ClassPrefix) != cls {
		t.Fatalf("class not installed in the unit")
	}
	if !cls.Generated || cls.Origin != "Seq.Squares" {
		t.Fatalf("Generated=%v Origin=%q", cls.Generated, cls.Origin)
	}
	if cls.Base == nil || cls.Base.Name != iterlower.BaseType || len(cls.Base.Args) != 1 || cls.Base.Args[0].Name != "int" {
		t.Fatalf("base = %v", cls.Base)
	}
	var fields []string
	for _, f := range cls.Fields {
		fields = append(fields, f.Name)
	}
	if got := strings.Join(fields, ","); got != "n,i,"+iterlower.FieldState {
		t.Fatalf("fields = %s", got)
	}
	methods := map[string]bool{}
	for _, m := range cls.Methods {
		methods[m.Name] = true
	}
	for _, name := range []string{iterlower.MethodMoveNext, iterlower.MethodDispose, iterlower.MethodGetEnumerator} {
		if !methods[name] {
			t.Errorf("missing %s", name)
		}
	}

	body := res.Lowered[0].Method.Decl.Body.Data.(*ast.BlockData)
	if len(body.Stmts) != 1 || body.Stmts[0].Kind != ast.StmtReturn {
		t.Fatalf("method body was not replaced")
	}
	out, err := format.FormatUnit(u, format.Options{})
	if err != nil {
		t.Fatalf("FormatUnit: %v", err)
	}
	text := string(out)
	for _, want := range []string{"$top: while (true) {", "switch (this.$state) {", "return new " + cls.Name + "(n);"} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}
}

func disposeBody(t *testing.T, cls *ast.ClassDecl) []*ast.Stmt {
	t.Helper()
	for _, m := range cls.Methods {
		if m.Name == iterlower.MethodDispose {
			return m.Body.Data.(*ast.BlockData).Stmts
		}
	}
	t.Fatalf("no Dispose in %s", cls.Name)
	return nil
}

func TestDisposeMode(t *testing.T) {
	tests := []struct {
		mode iterlower.DisposeMode
		want int
	}{
		{iterlower.DisposeAuto, 1},
		{iterlower.DisposeAlways, 2},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			_, res, _ := lowerSource(t, squares, iterlower.Options{Dispose: tt.mode})
			if got := len(disposeBody(t, res.Lowered[0].Class)); got != tt.want {
				t.Fatalf("Dispose statements = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDisposeMode(t *testing.T) {
	for in, want := range map[string]iterlower.DisposeMode{
		"":       iterlower.DisposeAuto,
		"auto":   iterlower.DisposeAuto,
		"always": iterlower.DisposeAlways,
	} {
		got, err := iterlower.ParseDisposeMode(in)
		if err != nil || got != want {
			t.Errorf("ParseDisposeMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := iterlower.ParseDisposeMode("never"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}

func TestEnumeratorName(t *testing.T) {
	_, res, bag := lowerSource(t, `
namespace Demo.Seq;
class Gen<T> {
    static IEnumerable<U> Pairs<U>(List<int> xs, int[] ys) { yield break; }
}`, iterlower.Options{})
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	want := "YieldEnumerator$Demo$Seq$Gen$1$Pairs$$1$List$1_int$intArray"
	if got := res.Lowered[0].Class.Name; got != want {
		t.Fatalf("name = %s, want %s", got, want)
	}
	if got := iterlower.EnumeratorName(res.Lowered[0].Method); got != want {
		t.Fatalf("EnumeratorName = %s", got)
	}
}

func TestOverloadsGetDistinctClasses(t *testing.T) {
	u, res, bag := lowerSource(t, `
class O {
    static IEnumerable<int> Get(int a) { yield return a; }
    static IEnumerable<int> Get(string a) { yield return 1; }
}`, iterlower.Options{})
	if bag.Len() != 0 || len(res.Lowered) != 2 {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	if res.Lowered[0].Class.Name == res.Lowered[1].Class.Name {
		t.Fatalf("overloads share %s", res.Lowered[0].Class.Name)
	}
	if len(u.Types) != 3 {
		t.Fatalf("types = %d, want 3", len(u.Types))
	}
}

func TestNestedGenericParamsGetDistinctClasses(t *testing.T) {
	_, res, bag := lowerSource(t, `
class Pair<A, B> { }
class O {
    static IEnumerable<int> Get(Pair<Pair<int, int>, int> p) { yield return 1; }
    static IEnumerable<int> Get(Pair<int, Pair<int, int>> p) { yield return 2; }
}`, iterlower.Options{})
	if bag.Len() != 0 || len(res.Lowered) != 2 {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	want := []string{
		"YieldEnumerator$O$Get$Pair$2_Pair$2_int_int_int",
		"YieldEnumerator$O$Get$Pair$2_int_Pair$2_int_int",
	}
	for i, l := range res.Lowered {
		if l.Class.Name != want[i] {
			t.Errorf("class %d = %s, want %s", i, l.Class.Name, want[i])
		}
	}
}

func TestRegistryReplacesOnRelower(t *testing.T) {
	u, sres := frontEnd(t, squares)
	reg := iterlower.NewRegistry()
	mi := sres.Iterators()[0]
	body := mi.Method.Body
	for i := 0; i < 2; i++ {
		mi.Method.Body = body
		l, ok := iterlower.LowerMethod(mi, iterlower.Options{Registry: reg})
		if !ok {
			t.Fatalf("LowerMethod failed")
		}
		iterlower.Install(u, l, reg)
	}
	if len(u.Types) != 2 {
		t.Fatalf("types = %d, want original plus one enumerator", len(u.Types))
	}
}

func TestRegistryClaimConflict(t *testing.T) {
	reg := iterlower.NewRegistry()
	if err := reg.Claim("YieldEnumerator$A$M", "A.M(int)"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := reg.Claim("YieldEnumerator$A$M", "A.M(int)"); err != nil {
		t.Fatalf("same method again: %v", err)
	}
	if err := reg.Claim("YieldEnumerator$A$M", "B.M(int)"); err == nil {
		t.Fatalf("expected a conflict")
	}
}

func TestParallelLoweringKeepsSourceOrder(t *testing.T) {
	var src strings.Builder
	src.WriteString("class Many {\n")
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for _, n := range names {
		src.WriteString("    static IEnumerable<int> " + n + "(int k) { for (int i = 0; i < k; i++) yield return i; }\n")
	}
	src.WriteString("}\n")

	u, res, bag := lowerSource(t, src.String(), iterlower.Options{Jobs: 4})
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %s", summary(bag))
	}
	if len(res.Lowered) != len(names) {
		t.Fatalf("lowered %d", len(res.Lowered))
	}
	for i, l := range res.Lowered {
		if l.Method.Decl.Name != names[i] {
			t.Fatalf("lowered[%d] = %s, want %s", i, l.Method.Decl.Name, names[i])
		}
		if u.Types[i+1] != l.Class {
			t.Fatalf("class %d installed out of order", i)
		}
	}
}
