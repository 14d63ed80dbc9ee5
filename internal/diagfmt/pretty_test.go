package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"fortio.org/safecast"

	"yieldc/internal/diag"
	"yieldc/internal/source"
)

func spanOf(t *testing.T, id source.FileID, content, needle string) source.Span {
	t.Helper()
	i := strings.Index(content, needle)
	if i < 0 {
		t.Fatalf("%q not in content", needle)
	}
	start, err := safecast.Conv[uint32](i)
	if err != nil {
		t.Fatal(err)
	}
	end, err := safecast.Conv[uint32](i + len(needle))
	if err != nil {
		t.Fatal(err)
	}
	return source.Span{File: id, Start: start, End: end}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := "var x = \"unterminated string\n"
	fileID := fs.AddVirtual("/home/user/project/src/test.ys", []byte(content))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString,
		spanOf(t, fileID, content, "\"unterminated string"), "Unterminated string literal"))

	tests := []struct {
		name    string
		mode    PathMode
		want    string
		mustNot string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, want: "/home/user/project/src/test.ys:1:9"},
		{name: "Relative path", mode: PathModeRelative, want: "src/test.ys:1:9", mustNot: "/home/user"},
		{name: "Basename only", mode: PathModeBasename, want: "test.ys:1:9", mustNot: "src/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode, BaseDir: "/home/user/project"})
			output := buf.String()

			if !strings.Contains(output, tt.want) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.want, output)
			}
			if tt.mustNot != "" && strings.Contains(output, tt.mustNot) {
				t.Errorf("output should not contain %q:\n%s", tt.mustNot, output)
			}
			for _, part := range []string{"ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, part) {
					t.Errorf("Expected %q in output:\n%s", part, output)
				}
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Short path - as is", path: "test.ys", expected: "test.ys:1:9"},
		{name: "Long absolute path - basename", path: "/very/long/absolute/path/to/some/nested/directory/file.ys", expected: "\nfile.ys:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "var x = 42;\n"
			fileID := fs.AddVirtual(tt.path, []byte(content))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, spanOf(t, fileID, content, "42"), "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := "\n" + buf.String()
			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, output)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	fs := source.NewFileSet()
	content := "class C {\n    static IEnumerable<int> M(ref int x) {\n        yield return x;\n    }\n}\n"
	fileID := fs.AddVirtual("test.ys", []byte(content))

	bag := diag.NewBag(4)
	d := diag.NewError(diag.IterAliasParam, spanOf(t, fileID, content, "ref int x"), "iterator M cannot take ref parameter 'x'")
	d = d.WithNote(spanOf(t, fileID, content, "static"), "iterator declared here")
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true})
	want := "" +
		"test.ys:2:31: ERROR ITR5001: iterator M cannot take ref parameter 'x'\n" +
		"1 | class C {\n" +
		"2 |     static IEnumerable<int> M(ref int x) {\n" +
		"  |                               ^~~~~~~~\n" +
		"3 |         yield return x;\n" +
		"  note: test.ys:2:5: iterator declared here\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyCaretUsesDisplayWidth(t *testing.T) {
	fs := source.NewFileSet()
	content := "s = \"日本\" + zz;\n"
	fileID := fs.AddVirtual("wide.ys", []byte(content))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, spanOf(t, fileID, content, "zz"), "unresolved name zz"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	caret := lines[2]
	bar := strings.Index(caret, "|")
	if got := strings.Index(caret, "^") - bar - 2; got != 13 {
		t.Fatalf("caret column = %d, want 13:\n%s", got, buf.String())
	}
	if !strings.HasSuffix(caret, "^~") {
		t.Fatalf("underline should cover two columns: %q", caret)
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	content := "class A { }\nclass A { }\n"
	fileID := fs.AddVirtual("dir/dup.ys", []byte(content))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaDuplicateMember, source.Span{File: fileID, Start: 18, End: 19}, "duplicate class A"))
	bag.Add(diag.New(diag.SevWarning, diag.IterUnsupportedConstruct, source.Span{File: fileID, Start: 0, End: 5}, "w"))

	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeBasename, "")
	want := "dup.ys:2:7: ERROR SEM3003: duplicate class A\ndup.ys:1:1: WARNING ITR5002: w\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	content := "class A { }\n"
	fileID := fs.AddVirtual("a.ys", []byte(content))
	bag := diag.NewBag(0)
	for i := 0; i < 3; i++ {
		bag.Add(diag.NewError(diag.IterInternal, spanOf(t, fileID, content, "A"), "boom").
			WithNote(spanOf(t, fileID, content, "class"), "here"))
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, Max: 2, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "ITR5099" || d.Severity != "ERROR" || d.Location.StartCol != 7 || len(d.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPretty, "pretty": FormatPretty, "short": FormatShort, "json": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Errorf("expected error")
	}
}
