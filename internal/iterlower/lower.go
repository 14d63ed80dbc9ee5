// Package iterlower rewrites iterator methods into explicit state machines:
// each method containing `yield` gets a generated enumerator class and its
// body is replaced by the construction of that class.
package iterlower

import (
	"errors"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/sema"
)

// Options control a lowering pass.
type Options struct {
	// Jobs bounds the number of methods lowered concurrently; <=0 means GOMAXPROCS.
	Jobs     int
	Reporter diag.Reporter
	Dispose  DisposeMode
	// Registry is shared between runs over the same unit; nil allocates one.
	Registry *Registry
}

// Lowered is the outcome for one iterator method.
type Lowered struct {
	Method  *Method
	Graph   *Graph
	Hoisted []Hoisted
	Class   *ast.ClassDecl
	// Body replaces the original method body.
	Body *ast.Stmt
}

// LowerMethod lowers one iterator. It reports problems to opts.Reporter and
// returns false when the method must be left unchanged. The unit is not
// modified; see Install.
func LowerMethod(mi *sema.MethodInfo, opts Options) (*Lowered, bool) {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	m := NewMethod(mi)
	if !checkMethod(m, r) {
		return nil, false
	}
	internal := func(err error) (*Lowered, bool) {
		diag.ReportError(r, diag.IterInternal, m.Span,
			"cannot lower iterator "+m.QualifiedName()+": "+err.Error()).Emit()
		return nil, false
	}

	g, err := buildGraph(m)
	var unsup *unsupportedError
	if errors.As(err, &unsup) {
		diag.ReportError(r, diag.IterUnsupportedConstruct, unsup.span, unsup.msg).
			WithNote(m.Span, "iterator declared here").Emit()
		return nil, false
	}
	if err != nil {
		return internal(err)
	}
	h, err := analyzeHoisting(m, g)
	if err != nil {
		return internal(err)
	}
	rw := &rewriter{m: m, g: g, h: h}
	rw.apply()

	name := EnumeratorName(m)
	if err := reg.Claim(name, signature(m)); err != nil {
		return internal(err)
	}
	sy := &synthesizer{m: m, g: g, h: h, rw: rw, name: name, mode: opts.Dispose}
	cls, body, err := sy.synthesize()
	if err != nil {
		return internal(err)
	}
	return &Lowered{Method: m, Graph: g, Hoisted: h.vars, Class: cls, Body: body}, true
}

// Install adds the enumerator class to u and swaps the method body.
func Install(u *ast.Unit, l *Lowered, reg *Registry) {
	if reg == nil {
		installClass(u, l.Class)
	} else {
		reg.Install(u, l.Class)
	}
	l.Method.Decl.Body = l.Body
}
