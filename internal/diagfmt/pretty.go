package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"yieldc/internal/diag"
	"yieldc/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, loc, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pp := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for _, d := range bag.Items() {
		pp.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (pp *prettyPrinter) location(sp source.Span) string {
	f := pp.fs.Get(sp.File)
	start, _ := pp.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, pp.opts.PathMode, pp.opts.BaseDir), start.Line, start.Col)
}

func (pp *prettyPrinter) diagnostic(d diag.Diagnostic) {
	fmt.Fprintf(pp.w, "%s: %s: %s\n",
		pp.pal.loc.Sprint(pp.location(d.Primary)),
		pp.pal.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID()),
		d.Message)
	pp.snippet(d.Primary)
	if !pp.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(pp.w, "  %s %s: %s\n", pp.pal.note.Sprint("note:"), pp.location(n.Span), n.Msg)
	}
}

// snippet печатает строку span'а с контекстом и подчёркивание под ней.
func (pp *prettyPrinter) snippet(sp source.Span) {
	f := pp.fs.Get(sp.File)
	start, end := pp.fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(pp.opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	if n, err := safecast.Conv[uint32](len(f.LineIdx) + 1); err == nil && last > n {
		last = n
	}
	width := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", width)

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln != start.Line && strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(pp.w, "%s %s\n", pp.pal.gutter.Sprintf("%*d |", width, ln), expandTabs(text))
		if ln != start.Line {
			continue
		}
		pad, n := underline(text, start, end)
		fmt.Fprintf(pp.w, "%s %s%s\n",
			pp.pal.gutter.Sprint(blank+" |"),
			strings.Repeat(" ", pad),
			pp.pal.caret.Sprint("^"+strings.Repeat("~", n-1)))
	}
}

// underline считает отступ и длину подчёркивания в колонках экрана.
// Span на несколько строк подчёркивается до конца первой.
func underline(line string, start, end source.LineCol) (pad, n int) {
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	pad = runewidth.StringWidth(expandTabs(line[:from]))
	n = max(runewidth.StringWidth(expandTabs(line[from:to])), 1)
	return pad, n
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
