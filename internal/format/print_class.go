package format

import (
	"yieldc/internal/ast"
)

func (p *printer) printClass(c *ast.ClassDecl) {
	w := p.w
	if c.Static {
		w.WriteString("static ")
	}
	w.WriteString("class " + c.Name)
	p.printTypeParams(c.TypeParams)
	if c.Base != nil {
		w.WriteString(" : ")
		p.printType(c.Base)
	}
	w.WriteString(" {")
	w.Newline()
	w.IndentPush()

	for _, f := range c.Fields {
		p.printField(f)
	}
	first := len(c.Fields) == 0
	sep := func() {
		if !first {
			w.BlankLine()
		}
		first = false
	}
	for _, ctor := range c.Ctors {
		sep()
		w.WriteString(c.Name)
		p.printParams(ctor.Params)
		w.Space()
		p.printBody(ctor.Body)
	}
	for _, m := range c.Methods {
		sep()
		p.printMethod(m)
	}

	w.IndentPop()
	w.WriteString("}")
	w.Newline()
}

func (p *printer) printField(f *ast.FieldDecl) {
	w := p.w
	if f.Static {
		w.WriteString("static ")
	}
	p.printType(f.Type)
	w.WriteString(" " + f.Name)
	if f.Init != nil {
		w.WriteString(" = ")
		p.printExpr(f.Init)
	}
	w.WriteString(";")
	w.Newline()
}

func (p *printer) printMethod(m *ast.MethodDecl) {
	w := p.w
	if m.Static {
		w.WriteString("static ")
	}
	if m.Override {
		w.WriteString("override ")
	}
	if m.Result == nil {
		w.WriteString("void")
	} else {
		p.printType(m.Result)
	}
	w.WriteString(" " + m.Name)
	p.printTypeParams(m.TypeParams)
	p.printParams(m.Params)
	w.Space()
	p.printBody(m.Body)
}

// printBody prints a block body; a nil body is printed as an empty block.
func (p *printer) printBody(s *ast.Stmt) {
	if s == nil {
		p.w.WriteString("{ }")
		p.w.Newline()
		return
	}
	p.printStmt(s)
}

func (p *printer) printTypeParams(tps []string) {
	if len(tps) == 0 {
		return
	}
	p.w.WriteString("<")
	List(p.w, tps, p.w.WriteString)
	p.w.WriteString(">")
}

func (p *printer) printParams(params []*ast.Param) {
	p.w.WriteString("(")
	List(p.w, params, func(prm *ast.Param) {
		if mode := prm.Mode.String(); mode != "" {
			p.w.WriteString(mode + " ")
		}
		p.printType(prm.Type)
		p.w.WriteString(" " + prm.Name)
	})
	p.w.WriteString(")")
}

func (p *printer) printType(t *ast.TypeRef) {
	p.w.WriteString(t.String())
}
