package fuzztests

import (
	"context"
	"testing"

	"yieldc/internal/diag"
	"yieldc/internal/format"
	"yieldc/internal/iterlower"
	"yieldc/internal/parser"
	"yieldc/internal/sema"
	"yieldc/internal/source"
)

// FuzzLowerPipeline прогоняет весь конвейер. Код, прошедший проверку, после
// понижения обязан снова проходить sema без ошибок.
func FuzzLowerPipeline(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.ys", input)
		bag := diag.NewBag(128)
		r := diag.BagReporter{Bag: bag}

		u := parser.Parse(fs, fileID, r)
		res := sema.Check(u, sema.Options{Reporter: r})
		if bag.HasErrors() {
			return
		}

		lowerBag := diag.NewBag(128)
		out, err := iterlower.LowerUnit(context.Background(), u, res, iterlower.Options{
			Jobs:     2,
			Reporter: diag.BagReporter{Bag: lowerBag},
		})
		if err != nil {
			t.Fatalf("lower: %v", err)
		}
		if len(out.Lowered) == 0 {
			return
		}

		recheck := diag.NewBag(128)
		sema.Check(u, sema.Options{Reporter: diag.BagReporter{Bag: recheck}})
		if recheck.HasErrors() {
			d := recheck.Items()[0]
			text, _ := format.FormatUnit(u, format.Options{})
			t.Fatalf("lowered code does not check: %s\ninput: %q\nlowered:\n%s",
				d.Message, truncateForLog(input, 200), text)
		}
	})
}
