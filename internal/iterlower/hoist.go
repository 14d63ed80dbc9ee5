package iterlower

import (
	"fmt"
	"slices"

	"yieldc/internal/ast"
)

// DisposeState stands for the Dispose method in hoisting use sets: code in
// cleanup regions also runs there.
const DisposeState = -1

// Hoisted is a local promoted to a field of the enumerator class.
type Hoisted struct {
	Local     ast.LocalID
	Name      string
	Field     string
	Type      *ast.TypeRef
	DefState  int
	UseStates []int
}

// localUsage records, per local, the states declaring and touching it.
type localUsage struct {
	name string
	defs stateSet
	uses stateSet
}

// hoisting is the result of the analysis plus what the rewrite needs.
type hoisting struct {
	vars    []Hoisted
	fields  map[ast.LocalID]string
	renames map[ast.LocalID]string
}

// analyzeHoisting decides which locals must survive across suspension: a
// local is hoisted when some state other than one that declares it reads or
// writes it. Surviving state-local declarations that would collide by name
// inside one flattened state are renamed.
func analyzeHoisting(m *Method, g *Graph) (*hoisting, error) {
	usage := make(map[ast.LocalID]*localUsage)
	get := func(id ast.LocalID, name string) *localUsage {
		u := usage[id]
		if u == nil {
			u = &localUsage{defs: stateSet{}, uses: stateSet{}}
			usage[id] = u
		}
		if name != "" {
			u.name = name
		}
		return u
	}
	visitor := func(state int) ast.Visitor {
		return ast.Visitor{
			OnStmt: func(s *ast.Stmt) bool {
				switch d := s.Data.(type) {
				case *ast.LocalData:
					get(d.Local, d.Name).defs.add(state)
				case *ast.ForeachData:
					get(d.Local, d.Name).defs.add(state)
				case *ast.TryData:
					for _, c := range d.Catches {
						if c.Local != ast.NoLocalID {
							get(c.Local, c.Name).defs.add(state)
						}
					}
				}
				return true
			},
			OnExpr: func(e *ast.Expr) bool {
				if d, ok := e.Data.(*ast.NameData); ok && d.Ref.Kind == ast.RefLocal {
					get(d.Ref.Local, "").uses.add(state)
				}
				return true
			},
		}
	}
	regionCode := func(state int, r RegionID) {
		for _, s := range g.Regions[r].Finally {
			ast.Inspect(s, visitor(state))
		}
	}
	for _, st := range g.States {
		v := visitor(st.ID)
		for _, s := range st.Stmts {
			ast.Inspect(s, v)
		}
		ast.InspectExpr(st.Term.Value, v)
		for _, r := range st.Term.Leave {
			regionCode(st.ID, r)
		}
	}
	for i := range g.Regions {
		regionCode(DisposeState, RegionID(i))
	}

	ids := make([]ast.LocalID, 0, len(usage))
	for id := range usage {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	h := &hoisting{fields: make(map[ast.LocalID]string), renames: make(map[ast.LocalID]string)}
	fieldCount := make(map[string]int)
	for _, id := range ids {
		u := usage[id]
		if len(u.defs) == 0 {
			return nil, fmt.Errorf("local %d (%s) is used with no defining state", id, u.name)
		}
		if subtractSet(u.uses, u.defs) == nil {
			continue
		}
		li := m.Local(id)
		if li == nil {
			return nil, fmt.Errorf("local %d (%s) has no declaration info", id, u.name)
		}
		fieldCount[li.Name]++
		field := li.Name
		if n := fieldCount[li.Name]; n > 1 {
			field = fmt.Sprintf("%s$%d", li.Name, n)
		}
		typ := li.Type.Clone()
		if typ == nil {
			typ = ast.NamedType("object")
		}
		defs := u.defs.sorted()
		def := defs[0]
		if def == DisposeState && len(defs) > 1 {
			def = defs[1]
		}
		h.fields[id] = field
		h.vars = append(h.vars, Hoisted{
			Local:     id,
			Name:      li.Name,
			Field:     field,
			Type:      typ,
			DefState:  def,
			UseStates: unionSet(cloneSet(u.uses), u.defs).sorted(),
		})
	}

	// state-local declarations flattened into the same state must not clash
	seenIn := make(map[int]map[string]bool)
	localCount := make(map[string]int)
	for _, id := range ids {
		if _, hoisted := h.fields[id]; hoisted {
			continue
		}
		u := usage[id]
		clash := false
		for st := range u.defs {
			if seenIn[st] == nil {
				seenIn[st] = make(map[string]bool)
			}
			if seenIn[st][u.name] {
				clash = true
			}
			seenIn[st][u.name] = true
		}
		localCount[u.name]++
		if clash {
			h.renames[id] = fmt.Sprintf("%s$%d", u.name, localCount[u.name])
		}
	}
	return h, nil
}
