package iterlower_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/iterlower"
	"yieldc/internal/parser"
	"yieldc/internal/sema"
	"yieldc/internal/source"
	"yieldc/internal/vm"
)

func summary(bag *diag.Bag) string {
	if bag.Len() == 0 {
		return "<none>"
	}
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(lines, "; ")
}

// frontEnd parses and checks src, failing on any diagnostic.
func frontEnd(t *testing.T, src string) (*ast.Unit, *sema.Result) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ys", []byte(src))
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	u := parser.Parse(fs, id, r)
	res := sema.Check(u, sema.Options{Reporter: r})
	if bag.Len() != 0 {
		t.Fatalf("front-end diagnostics: %s", summary(bag))
	}
	return u, res
}

// lowerSource runs the whole pipeline and returns the lowered unit together
// with the lowering diagnostics.
func lowerSource(t *testing.T, src string, opts iterlower.Options) (*ast.Unit, *iterlower.Result, *diag.Bag) {
	t.Helper()
	u, res := frontEnd(t, src)
	bag := diag.NewBag(0)
	opts.Reporter = diag.BagReporter{Bag: bag}
	out, err := iterlower.LowerUnit(context.Background(), u, res, opts)
	if err != nil {
		t.Fatalf("LowerUnit: %v", err)
	}
	return u, out, bag
}

// lowered lowers src, requires a clean re-check and returns a VM over the
// result.
func lowered(t *testing.T, src string) (*vm.VM, *bytes.Buffer) {
	t.Helper()
	u, _, bag := lowerSource(t, src, iterlower.Options{})
	if bag.Len() != 0 {
		t.Fatalf("lowering diagnostics: %s", summary(bag))
	}
	recheck := diag.NewBag(0)
	sema.Check(u, sema.Options{Reporter: diag.BagReporter{Bag: recheck}})
	if recheck.Len() != 0 {
		t.Fatalf("lowered unit does not re-check: %s", summary(recheck))
	}
	var out bytes.Buffer
	machine, err := vm.New(u, vm.Options{Stdout: &out, MaxSteps: 1_000_000})
	if err != nil {
		t.Fatalf("vm.New: %v", err)
	}
	return machine, &out
}

// eager returns a VM that evaluates iterators without lowering.
func eager(t *testing.T, src string) *vm.VM {
	t.Helper()
	u, _ := frontEnd(t, src)
	machine, err := vm.New(u, vm.Options{Eager: true, MaxSteps: 1_000_000})
	if err != nil {
		t.Fatalf("vm.New: %v", err)
	}
	return machine
}

func collect(t *testing.T, machine *vm.VM, class, method string, args ...vm.Value) []string {
	t.Helper()
	ctx := context.Background()
	seq, err := machine.Call(ctx, class, method, args...)
	if err != nil {
		t.Fatalf("%s.%s: %v", class, method, err)
	}
	vals, err := machine.Collect(ctx, seq, 0)
	if err != nil {
		t.Fatalf("enumerating %s.%s: %v", class, method, err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func moveNext(t *testing.T, machine *vm.VM, en vm.Value) bool {
	t.Helper()
	v, err := machine.CallMethod(context.Background(), en, "MoveNext")
	if err != nil {
		t.Fatalf("MoveNext: %v", err)
	}
	if v.Kind != vm.VKBool {
		t.Fatalf("MoveNext returned %s", v.Kind)
	}
	return v.Bool
}

func current(t *testing.T, machine *vm.VM, en vm.Value) string {
	t.Helper()
	v, err := machine.Member(context.Background(), en, "Current")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	return v.String()
}

func call(t *testing.T, machine *vm.VM, recv vm.Value, name string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := machine.CallMethod(context.Background(), recv, name, args...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v
}

func staticCall(t *testing.T, machine *vm.VM, class, method string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := machine.Call(context.Background(), class, method, args...)
	if err != nil {
		t.Fatalf("%s.%s: %v", class, method, err)
	}
	return v
}

func findClass(u *ast.Unit, prefix string) *ast.ClassDecl {
	for _, c := range u.Types {
		if strings.HasPrefix(c.Name, prefix) {
			return c
		}
	}
	return nil
}
