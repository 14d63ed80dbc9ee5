package testkit

import (
	"context"
	"strings"
	"testing"

	"yieldc/internal/diag"
	"yieldc/internal/iterlower"
	"yieldc/internal/parser"
	"yieldc/internal/sema"
	"yieldc/internal/source"
)

const sample = `namespace Demo;

class Seq {
    int step = 2;

    Seq(int s) { step = s; }

    IEnumerable<int> Walk(int n) {
        for (int i = 0; i < n; i++) {
            try { yield return i * step; } finally { step = step + 0; }
        }
    }
}
`

func TestCheckSpanInvariants(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.ys", []byte(sample))
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	u := parser.Parse(fs, id, r)
	res := sema.Check(u, sema.Options{Reporter: r})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	if err := CheckSpanInvariants(u, fs.Get(id)); err != nil {
		t.Fatalf("parsed unit: %v", err)
	}

	// синтезированный код не должен ломать инварианты исходных классов
	if _, err := iterlower.LowerUnit(context.Background(), u, res, iterlower.Options{Reporter: r}); err != nil {
		t.Fatal(err)
	}
	if err := CheckSpanInvariants(u, fs.Get(id)); err != nil {
		t.Fatalf("lowered unit: %v", err)
	}
}

func TestCheckSpanInvariantsReportsEscapes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.ys", []byte(sample))
	u := parser.Parse(fs, id, nil)
	sf := fs.Get(id)

	tests := []struct {
		name   string
		mutate func()
		want   string
	}{
		{"member", func() { u.Types[0].Fields[0].Span.End = u.Types[0].Span.End + 1 }, "escapes class span"},
		{"empty class", func() { u.Types[0].Span.End = u.Types[0].Span.Start }, "empty span"},
		{"foreign file", func() { u.Types[0].Span.File = sf.ID + 1 }, "different file id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u = parser.Parse(fs, id, nil)
			tt.mutate()
			err := CheckSpanInvariants(u, sf)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}
