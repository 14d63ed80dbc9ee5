package driver_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yieldc/internal/diag"
	"yieldc/internal/driver"
	"yieldc/internal/iterlower"
	"yieldc/internal/observ"
)

const good = `namespace Demo;

class Seq {
    static IEnumerable<int> Squares(int n) {
        for (int i = 0; i < n; i++) yield return i * i;
    }
}
`

const bad = `class Bad {
    static IEnumerable<int> Ref(ref int x) { yield return x; }
    static IEnumerable<int> Ok() { yield return 1; }
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListSources(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.ys":       good,
		"a.ys":       good,
		"sub/c.ys":   good,
		"notes.txt":  "x",
		"sub/d.yaml": "x",
	})
	got, err := driver.ListSources([]string{dir, filepath.Join(dir, "a.ys")})
	if err != nil {
		t.Fatal(err)
	}
	var rel []string
	for _, p := range got {
		r, _ := filepath.Rel(dir, p)
		rel = append(rel, filepath.ToSlash(r))
	}
	if strings.Join(rel, ",") != "a.ys,b.ys,sub/c.ys" {
		t.Fatalf("sources = %v", rel)
	}
	if _, err := driver.ListSources([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("expected error for a missing path")
	}
}

func TestLowerSession(t *testing.T) {
	dir := writeTree(t, map[string]string{"good.ys": good, "bad.ys": bad})
	paths, err := driver.ListSources([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	timer := observ.NewTimer()
	sess, err := driver.Lower(context.Background(), paths, driver.Options{Jobs: 2, Timer: timer})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(sess.Units) != 2 {
		t.Fatalf("units = %d", len(sess.Units))
	}
	badUnit, goodUnit := sess.Units[0], sess.Units[1]

	if goodUnit.Bag.Len() != 0 || goodUnit.Iterators != 1 || goodUnit.Failed != 0 {
		t.Fatalf("good: diags=%d iterators=%d failed=%d", goodUnit.Bag.Len(), goodUnit.Iterators, goodUnit.Failed)
	}
	if !bytes.Contains(goodUnit.Text, []byte("class YieldEnumerator$Demo$Seq$Squares$int")) {
		t.Fatalf("lowered text lacks enumerator:\n%s", goodUnit.Text)
	}
	if goodUnit.Sema == nil || len(goodUnit.Sema.Iterators()) != 0 {
		t.Fatalf("re-checked unit should have no iterators left")
	}

	if badUnit.Failed != 1 || badUnit.Iterators != 2 {
		t.Fatalf("bad: iterators=%d failed=%d", badUnit.Iterators, badUnit.Failed)
	}
	if got := badUnit.Bag.Filter(diag.IterAliasParam); len(got) != 1 {
		t.Fatalf("expected one alias diagnostic, got %d", len(got))
	}
	if !sess.HasErrors() {
		t.Fatalf("session should report errors")
	}
	if d := sess.Diagnostics(0); d.Len() != 1 {
		t.Fatalf("merged diagnostics = %d", d.Len())
	}
	if len(timer.Report().Phases) == 0 {
		t.Fatalf("timer recorded nothing")
	}
}

func TestFrontEndErrorsSkipLowering(t *testing.T) {
	dir := writeTree(t, map[string]string{"broken.ys": "class X { static IEnumerable<int> M() { yield return y; } }\n"})
	sess, err := driver.Lower(context.Background(), []string{filepath.Join(dir, "broken.ys")}, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	u := sess.Units[0]
	if u.Lowering != nil || u.Text != nil {
		t.Fatalf("unit with front-end errors must not be lowered")
	}
	if len(u.Bag.Filter(diag.SemaUnresolvedSymbol)) != 1 {
		t.Fatalf("expected unresolved name diagnostic")
	}
}

func TestMissingFileBecomesDiagnostic(t *testing.T) {
	sess, err := driver.Lower(context.Background(), []string{filepath.Join(t.TempDir(), "nope.ys")}, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	items := sess.Units[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := writeTree(t, map[string]string{"good.ys": good, "bad.ys": bad})
	paths, err := driver.ListSources([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	cache, err := driver.NewDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Cache: cache, TextOnly: true}

	first, err := driver.Lower(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := driver.Lower(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, u := range second.Units {
		prev := first.Units[i]
		if prev.Cached || !u.Cached {
			t.Fatalf("unit %d: cached first=%v second=%v", i, prev.Cached, u.Cached)
		}
		if !bytes.Equal(prev.Text, u.Text) {
			t.Fatalf("unit %d: cached text differs", i)
		}
		if prev.Bag.Len() != u.Bag.Len() || u.Failed != prev.Failed {
			t.Fatalf("unit %d: cached diagnostics differ", i)
		}
		for j, d := range u.Bag.Items() {
			want := prev.Bag.Items()[j]
			if d.Code != want.Code || d.Primary != want.Primary || d.Message != want.Message || len(d.Notes) != len(want.Notes) {
				t.Fatalf("diagnostic %d differs: %+v vs %+v", j, d, want)
			}
		}
	}

	// другой режим Dispose меняет ключ
	third, err := driver.Lower(context.Background(), paths, driver.Options{Cache: cache, TextOnly: true, Dispose: iterlower.DisposeAlways})
	if err != nil {
		t.Fatal(err)
	}
	if third.Units[0].Cached {
		t.Fatalf("options change must miss the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	fourth, err := driver.Lower(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.Units[0].Cached {
		t.Fatalf("DropAll should empty the cache")
	}
}

func TestCancelledContext(t *testing.T) {
	dir := writeTree(t, map[string]string{"good.ys": good})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Lower(ctx, []string{filepath.Join(dir, "good.ys")}, driver.Options{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
