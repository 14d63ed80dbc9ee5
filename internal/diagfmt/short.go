package diagfmt

import (
	"fmt"
	"io"

	"yieldc/internal/diag"
	"yieldc/internal/source"
)

// Short печатает по одной строке на диагностику, без цвета и контекста:
// <path>:<line>:<col>: <sev> <CODE>: <Message>
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, baseDir string) {
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			displayPath(f, mode, baseDir), start.Line, start.Col,
			d.Severity, d.Code.ID(), d.Message)
	}
}
