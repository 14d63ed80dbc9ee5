package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetAddKeepsEveryVersion(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("demo.ys", []byte("class A {}"), 0)
	second := fs.Add("./demo.ys", []byte("class B {}"), 0)

	if first == second {
		t.Fatalf("re-adding a path reused id %d", first)
	}
	if got := string(fs.Get(first).Content); got != "class A {}" {
		t.Errorf("first version content = %q", got)
	}
	if p := fs.Get(second).Path; p != "demo.ys" {
		t.Errorf("path = %q, want cleaned demo.ys", p)
	}
	if fs.Get(first).Hash == fs.Get(second).Hash {
		t.Errorf("different contents share a hash")
	}
	if fs.Len() != 2 {
		t.Errorf("Len = %d, want 2", fs.Len())
	}
}

func TestResolveAndGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.ys", []byte("int a;\nint bb;\n\nint c;"))
	file := fs.Get(id)
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{7, LineCol{Line: 2, Col: 1}},
		{11, LineCol{Line: 2, Col: 5}},
		{16, LineCol{Line: 4, Col: 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}

	lines := map[uint32]string{1: "int a;", 2: "int bb;", 3: "", 4: "int c;", 5: "", 0: ""}
	for n, want := range lines {
		if got := file.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.ys")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("content = %q, want %q", file.Content, "a\nb\n")
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits", file.Flags)
	}
	if len(file.LineIdx) != 2 || file.LineIdx[0] != 1 || file.LineIdx[1] != 3 {
		t.Errorf("LineIdx = %v, want [1 3]", file.LineIdx)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.ys")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
