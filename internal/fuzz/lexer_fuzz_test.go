package fuzztests

import (
	"testing"

	"yieldc/internal/diag"
	"yieldc/internal/lexer"
	"yieldc/internal/source"
	"yieldc/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.ys", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		lx := lexer.New(file, diag.BagReporter{Bag: bag})
		// каждый токен продвигает курсор, иначе лексер зациклился
		limit := len(file.Content) + 2
		for n := 0; ; n++ {
			if n > limit {
				t.Fatalf("lexer produced more than %d tokens for %d bytes", limit, len(file.Content))
			}
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
		}
	})
}
