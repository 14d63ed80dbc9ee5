package diag

import (
	"testing"

	"yieldc/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Add("testdata/sample.ys", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		NewError(IterAliasParam, source.Span{File: file, Start: 2, End: 3}, "cannot capture\nref parameter").
			WithNote(source.Span{File: file, Start: 0, End: 1}, "declared here"),
		New(SevWarning, SemaUnresolvedSymbol, source.Span{File: file, Start: 0, End: 1}, "maybe"),
	}

	want := "note ITR5001 testdata/sample.ys:1:1 declared here\n" +
		"warning SEM3001 testdata/sample.ys:1:1 maybe\n" +
		"error ITR5001 testdata/sample.ys:2:1 cannot capture ref parameter"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestBagLimitSortAndDedup(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	ReportError(r, IterInternal, source.Span{Start: 9, End: 10}, "late").Emit()
	ReportError(r, IterAliasParam, source.Span{Start: 1, End: 2}, "early").Emit()
	ReportError(r, IterAliasParam, source.Span{Start: 1, End: 2}, "early").Emit()
	if bag.Add(NewError(IterInternal, source.Span{}, "over limit")) {
		t.Fatal("expected bag limit to reject fourth diagnostic")
	}

	bag.Dedup()
	bag.Sort()
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Items()[0].Message != "early" {
		t.Errorf("first item = %q, want early", bag.Items()[0].Message)
	}
	if !bag.HasErrors() {
		t.Error("expected HasErrors")
	}
	if got := len(bag.Filter(IterInternal)); got != 1 {
		t.Errorf("Filter(IterInternal) = %d, want 1", got)
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		LexUnknownChar:       "LEX1001",
		SynExpectSemicolon:   "SYN2003",
		SemaUnresolvedSymbol: "SEM3001",
		IOLoadFileError:      "IO4001",
		IterYieldInFinally:   "ITR5005",
		UnknownCode:          "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
}
