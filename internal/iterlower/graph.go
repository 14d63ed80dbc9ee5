package iterlower

import (
	"fmt"
	"slices"

	"yieldc/internal/ast"
	"yieldc/internal/source"
)

// TransitionKind selects the payload of a Transition.
type TransitionKind uint8

const (
	// TransNone marks a state that was never closed; Validate rejects it.
	TransNone TransitionKind = iota
	// TransContinue falls through into a freshly opened state.
	TransContinue
	// TransYield produces Value and suspends; resumption starts at Target.
	TransYield
	// TransTerminate finishes the sequence.
	TransTerminate
	// TransJump transfers control to Target without returning to the caller.
	TransJump
)

func (k TransitionKind) String() string {
	switch k {
	case TransContinue:
		return "continue"
	case TransYield:
		return "yield"
	case TransTerminate:
		return "terminate"
	case TransJump:
		return "jump"
	default:
		return "none"
	}
}

// RegionID indexes Graph.Regions.
type RegionID int

const NoRegion RegionID = -1

// Transition ends a state. Leave lists the cleanup regions exited on the way
// to Target, innermost first; their finally blocks run after the state field
// has been set to the destination.
type Transition struct {
	Kind   TransitionKind
	Target int
	Value  *ast.Expr
	Leave  []RegionID
	Span   source.Span
}

// State is a maximal run of statements executed between two suspension points.
type State struct {
	ID    int
	Stmts []*ast.Stmt
	Term  Transition
	// Regions active in this state, innermost first.
	Regions []RegionID
	// Jumps are targets of jump sequences embedded in Stmts.
	Jumps []int
}

// Successors lists every state control can reach directly from s.
func (s *State) Successors() []int {
	out := append([]int(nil), s.Jumps...)
	switch s.Term.Kind {
	case TransContinue, TransYield, TransJump:
		out = append(out, s.Term.Target)
	}
	return out
}

// Region is a try/finally whose guarded block contains a suspension point,
// or the implicit enumerator disposal of a lowered foreach.
type Region struct {
	ID      RegionID
	Parent  RegionID
	Finally []*ast.Stmt
	Span    source.Span
}

// Graph is the state graph of one iterator method. States[0] is the sentinel.
type Graph struct {
	States  []*State
	Regions []*Region

	// synthetic holds `this` nodes created by the builder; hoisting must not
	// redirect them to the enclosing instance.
	synthetic map[*ast.Expr]bool
}

func newGraph() *Graph {
	g := &Graph{synthetic: make(map[*ast.Expr]bool)}
	g.States = append(g.States, &State{ID: StateFinished, Term: Transition{Kind: TransTerminate}})
	return g
}

func (g *Graph) State(id int) *State {
	if id < 0 || id >= len(g.States) {
		return nil
	}
	return g.States[id]
}

func (g *Graph) Region(id RegionID) *Region {
	if id < 0 || int(id) >= len(g.Regions) {
		return nil
	}
	return g.Regions[id]
}

// HasRegions reports whether any cleanup region exists.
func (g *Graph) HasRegions() bool {
	return len(g.Regions) > 0
}

// Validate checks the structural invariants: every state is closed by exactly
// one transition, all targets exist, every state is reachable from StateStart,
// and nothing jumps into the sentinel except through termination.
func (g *Graph) Validate() error {
	if len(g.States) <= StateStart {
		return fmt.Errorf("state graph has no executable state")
	}
	for _, s := range g.States {
		if s.Term.Kind == TransNone {
			return fmt.Errorf("state %d has no terminal transition", s.ID)
		}
		for _, t := range s.Successors() {
			if t <= StateFinished || t >= len(g.States) {
				return fmt.Errorf("state %d targets invalid state %d", s.ID, t)
			}
		}
		for _, r := range s.Term.Leave {
			if g.Region(r) == nil {
				return fmt.Errorf("state %d leaves unknown region %d", s.ID, r)
			}
		}
	}
	seen := g.Reachable()
	for _, s := range g.States[StateStart:] {
		if !seen[s.ID] {
			return fmt.Errorf("state %d is unreachable", s.ID)
		}
	}
	return nil
}

// Reachable marks states reachable from StateStart.
func (g *Graph) Reachable() []bool {
	seen := make([]bool, len(g.States))
	stack := []int{StateStart}
	seen[StateStart] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range g.States[id].Successors() {
			if t >= 0 && t < len(seen) && !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}
	return seen
}

// YieldCount is the number of suspension points.
func (g *Graph) YieldCount() int {
	n := 0
	for _, s := range g.States {
		if s.Term.Kind == TransYield {
			n++
		}
	}
	return n
}

// DisposeStates lists states with active regions, in id order.
func (g *Graph) DisposeStates() []*State {
	var out []*State
	for _, s := range g.States {
		if len(s.Regions) > 0 {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b *State) int { return a.ID - b.ID })
	return out
}
