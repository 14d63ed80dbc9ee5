package iterlower

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"yieldc/internal/ast"
	"yieldc/internal/source"
)

// target is a jump destination whose state may not exist yet. Join and exit
// states are allocated only once something actually reaches them, so that
// every state in the graph is reachable.
type target struct {
	state  *State
	terms  []*State
	inline []inlineRef
}

// inlineRef is a state-number literal inside an embedded jump sequence.
type inlineRef struct {
	from *State
	lit  *ast.IntData
}

func (t *target) used() bool {
	return t.state != nil || len(t.terms) > 0 || len(t.inline) > 0
}

type loopCtx struct {
	brk       *target
	cont      *target
	brkDepth  int
	contDepth int
}

type builder struct {
	m       *Method
	g       *Graph
	cur     *State
	regions []RegionID // active regions, outermost first
	loops   []loopCtx
	err     error
}

// buildGraph splits the method body into states.
func buildGraph(m *Method) (*Graph, error) {
	b := &builder{m: m, g: newGraph()}
	b.cur = b.newState()
	b.stmt(m.Body)
	if b.cur != nil {
		b.closeTerminate(m.Span)
	}
	if b.err != nil {
		return nil, b.err
	}
	if err := b.g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid state graph: %w", err)
	}
	return b.g, nil
}

func (b *builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// unsupportedError is a valid source shape the builder does not model; it
// is reported at span as IterUnsupportedConstruct, not as an internal error.
type unsupportedError struct {
	span source.Span
	msg  string
}

func (e *unsupportedError) Error() string { return e.msg }

func (b *builder) unsupported(span source.Span, msg string) {
	if b.err == nil {
		b.err = &unsupportedError{span: span, msg: msg}
	}
}

// newState allocates a state inside the currently active regions.
func (b *builder) newState() *State {
	s := &State{ID: len(b.g.States)}
	for i := len(b.regions) - 1; i >= 0; i-- {
		s.Regions = append(s.Regions, b.regions[i])
	}
	b.g.States = append(b.g.States, s)
	return s
}

func (b *builder) at(s *State) *target {
	return &target{state: s}
}

// resolve materialises t and patches every pending reference to it.
func (b *builder) resolve(t *target) *State {
	if t.state == nil {
		t.state = b.newState()
	}
	id := t.state.ID
	for _, s := range t.terms {
		s.Term.Target = id
	}
	for _, r := range t.inline {
		r.lit.Value = stateLit(id)
		r.from.Jumps = append(r.from.Jumps, id)
	}
	t.terms, t.inline = nil, nil
	return t.state
}

// resolveIfUsed returns the state for t, or nil when nothing reaches it.
func (b *builder) resolveIfUsed(t *target) *State {
	if !t.used() {
		return nil
	}
	return b.resolve(t)
}

func (b *builder) emit(s *ast.Stmt) {
	b.cur.Stmts = append(b.cur.Stmts, s)
}

// leave lists the regions exited when control moves to nesting depth depth,
// innermost first.
func (b *builder) leave(depth int) []RegionID {
	var out []RegionID
	for i := len(b.regions) - 1; i >= depth; i-- {
		out = append(out, b.regions[i])
	}
	return out
}

func (b *builder) pushRegion(finally []*ast.Stmt, span source.Span) RegionID {
	parent := NoRegion
	if len(b.regions) > 0 {
		parent = b.regions[len(b.regions)-1]
	}
	id := RegionID(len(b.g.Regions))
	b.g.Regions = append(b.g.Regions, &Region{ID: id, Parent: parent, Finally: finally, Span: span})
	b.regions = append(b.regions, id)
	return id
}

func (b *builder) popRegion() {
	b.regions = b.regions[:len(b.regions)-1]
}

// closeJump ends the current state with a jump (or fall-through) to t.
func (b *builder) closeJump(kind TransitionKind, t *target, leave []RegionID, span source.Span) {
	b.cur.Term = Transition{Kind: kind, Leave: leave, Span: span}
	if t.state != nil {
		b.cur.Term.Target = t.state.ID
	} else {
		t.terms = append(t.terms, b.cur)
	}
	b.cur = nil
}

// closeYield ends the current state at a suspension point and opens the
// resumption state.
func (b *builder) closeYield(value *ast.Expr, span source.Span) {
	next := b.newState()
	b.cur.Term = Transition{Kind: TransYield, Target: next.ID, Value: value, Span: span}
	b.cur = next
}

func (b *builder) closeTerminate(span source.Span) {
	b.cur.Term = Transition{Kind: TransTerminate, Leave: b.leave(0), Span: span}
	b.cur = nil
}

// self is a generated `this` that hoisting leaves alone.
func (b *builder) self() *ast.Expr {
	e := ast.This()
	b.g.synthetic[e] = true
	return e
}

func (b *builder) setState(lit *ast.IntData) *ast.Stmt {
	return ast.ExprStmt(ast.Assign(ast.Member(b.self(), FieldState), &ast.Expr{Kind: ast.ExprInt, Data: lit}))
}

func (b *builder) finallyCopies(leave []RegionID) []*ast.Stmt {
	var out []*ast.Stmt
	for _, r := range leave {
		for _, s := range b.g.Regions[r].Finally {
			out = append(out, ast.CloneStmt(s))
		}
	}
	return out
}

// jumpStmt is an embedded jump: `{ this.$state = t; finally...; continue $top; }`.
func (b *builder) jumpStmt(t *target, leave []RegionID, span source.Span) *ast.Stmt {
	lit := &ast.IntData{}
	stmts := []*ast.Stmt{b.setState(lit)}
	stmts = append(stmts, b.finallyCopies(leave)...)
	stmts = append(stmts, ast.Continue(DispatchLabel))
	if t.state != nil {
		lit.Value = stateLit(t.state.ID)
		b.cur.Jumps = append(b.cur.Jumps, t.state.ID)
	} else {
		t.inline = append(t.inline, inlineRef{from: b.cur, lit: lit})
	}
	blk := ast.Block(stmts...)
	blk.Span = span
	return blk
}

// terminateStmt is an embedded `yield break`.
func (b *builder) terminateStmt(span source.Span) *ast.Stmt {
	stmts := []*ast.Stmt{b.setState(&ast.IntData{Value: StateFinished})}
	stmts = append(stmts, b.finallyCopies(b.leave(0))...)
	stmts = append(stmts, ast.Return(ast.Bool(false)))
	blk := ast.Block(stmts...)
	blk.Span = span
	return blk
}

var errNoLoop = errors.New("break or continue outside of any lowered loop")

// stateLit converts a state number for an int literal.
func stateLit(id int) int64 {
	v, err := safecast.Conv[int64](id)
	if err != nil {
		panic(fmt.Errorf("state id overflow: %w", err))
	}
	return v
}
