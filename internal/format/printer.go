package format

import (
	"errors"
	"fmt"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/parser"
	"yieldc/internal/source"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	return o
}

type printer struct {
	w   *Writer
	opt Options
}

// FormatUnit renders u.
func FormatUnit(u *ast.Unit, opt Options) ([]byte, error) {
	if u == nil {
		return nil, errors.New("format: nil unit")
	}
	opt = opt.withDefaults()
	p := printer{w: NewWriter(opt), opt: opt}
	p.printUnit(u)
	return p.w.Bytes(), nil
}

// FormatClass renders a single class declaration.
func FormatClass(c *ast.ClassDecl, opt Options) string {
	opt = opt.withDefaults()
	p := printer{w: NewWriter(opt), opt: opt}
	p.printClass(c)
	return string(p.w.Bytes())
}

// FormatStmt renders a statement at indentation zero.
func FormatStmt(s *ast.Stmt, opt Options) string {
	opt = opt.withDefaults()
	p := printer{w: NewWriter(opt), opt: opt}
	p.printStmt(s)
	return string(p.w.Bytes())
}

// FormatExpr renders an expression on one line.
func FormatExpr(e *ast.Expr) string {
	p := printer{w: NewWriter(Options{})}
	p.printExpr(e)
	return string(p.w.Bytes())
}

func (p *printer) printUnit(u *ast.Unit) {
	w := p.w
	if u.Namespace != "" {
		w.WriteString("namespace " + u.Namespace + ";")
		w.Newline()
	}
	if len(u.Usings) > 0 {
		if u.Namespace != "" {
			w.BlankLine()
		}
		for _, us := range u.Usings {
			w.WriteString("using " + us + ";")
			w.Newline()
		}
	}
	for _, c := range u.Types {
		w.BlankLine()
		p.printClass(c)
	}
}

// CheckRoundTrip formats u, re-parses the text and compares the class and
// member layout of both units. Units containing generated classes cannot be
// re-parsed and are rejected.
func CheckRoundTrip(u *ast.Unit, opt Options) error {
	for _, c := range u.Types {
		if c.Generated {
			return fmt.Errorf("fmt-check: class %s is generated", c.Name)
		}
	}
	text, err := FormatUnit(u, opt)
	if err != nil {
		return err
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("roundtrip.ys", text)
	bag := diag.NewBag(16)
	again := parser.Parse(fs, id, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		d := bag.Items()[0]
		return fmt.Errorf("fmt-check: reparse failed: %s %s", d.Code.ID(), d.Message)
	}
	if got, want := shape(again), shape(u); got != want {
		return fmt.Errorf("fmt-check: layout differs after round-trip:\n%s\nvs\n%s", got, want)
	}
	return nil
}

func shape(u *ast.Unit) string {
	s := u.Namespace
	for _, c := range u.Types {
		s += fmt.Sprintf("|%s/%d/%d/%d/%d", c.Name, len(c.TypeParams), len(c.Fields), len(c.Ctors), len(c.Methods))
		for _, m := range c.Methods {
			s += fmt.Sprintf(",%s:%d", m.Name, len(ast.Stmts(m.Body)))
		}
	}
	return s
}
