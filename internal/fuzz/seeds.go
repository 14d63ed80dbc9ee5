package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
	maxFuzzInput = 1 << 16  // 64 KiB
)

// languageSeeds покрывают конструкции, которые не всегда есть в testdata.
var languageSeeds = []string{
	"",
	"class A { }",
	"namespace N; class A { static void Main() { } }",
	"class A { static IEnumerable<int> F() { yield break; } }",
	"class A { static IEnumerable<int> F(int n) { while (n > 0) { n--; yield return n; } } }",
	"class A { static IEnumerable<int> F() { try { yield return 1; } finally { } } }",
	"class A { static IEnumerable<int> F() { try { yield return 1; } catch { } } }",
	"class A { static IEnumerable<int> F(ref int n) { yield return n; } }",
	"class A { static IEnumerable<int> F() { return null; yield return 1; } }",
	"class A { static IEnumerable<int> F(int k) { switch (k) { case 1: yield return 1; break; default: continue; } } }",
	"class A { static IEnumerable<int> F() { do { yield return 0; } while (false); } }",
	"class A { IEnumerable<T> F<T>(T v) { foreach (var x in new List<T>()) yield return v; } }",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.ys файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".ys" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
