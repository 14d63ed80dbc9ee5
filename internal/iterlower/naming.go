package iterlower

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"yieldc/internal/ast"
)

// EnumeratorName is the deterministic class name for m's enumerator. `$`
// cannot appear in source identifiers, so the name never collides with a
// user type; overloads differ in their parameter suffixes.
func EnumeratorName(m *Method) string {
	var parts []string
	if m.Namespace != "" {
		parts = append(parts, strings.Split(m.Namespace, ".")...)
	}
	cls := m.Class.Name
	if n := len(m.Class.TypeParams); n > 0 {
		cls += "$" + strconv.Itoa(n)
	}
	meth := m.Decl.Name
	if n := len(m.Decl.TypeParams); n > 0 {
		meth += "$$" + strconv.Itoa(n)
	}
	parts = append(parts, cls, meth)
	for _, p := range m.Params {
		parts = append(parts, mangleType(p.Type))
	}
	return ClassPrefix + strings.Join(parts, "$")
}

// mangleType: List<int> -> List$1_int, int[] -> intArray, A.B -> A_B.
// The argument count keeps nested generic arguments unambiguous:
// Pair<Pair<int,int>,int> and Pair<int,Pair<int,int>> mangle differently.
func mangleType(t *ast.TypeRef) string {
	if t == nil {
		return "void"
	}
	var sb strings.Builder
	sb.WriteString(strings.ReplaceAll(t.Name, ".", "_"))
	if len(t.Args) > 0 {
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(len(t.Args)))
	}
	for _, a := range t.Args {
		sb.WriteByte('_')
		sb.WriteString(mangleType(a))
	}
	if t.Array {
		sb.WriteString("Array")
	}
	return sb.String()
}

// signature identifies a method among its overloads.
func signature(m *Method) string {
	var sb strings.Builder
	sb.WriteString(m.Namespace)
	sb.WriteByte(':')
	sb.WriteString(m.QualifiedName())
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Registry tracks generated class names so that lowering a method again
// replaces its class instead of adding a duplicate, and two different
// methods never share a name.
type Registry struct {
	mu     sync.Mutex
	origin map[string]string
}

func NewRegistry() *Registry {
	return &Registry{origin: make(map[string]string)}
}

// Claim binds name to the method identified by sig.
func (r *Registry) Claim(name, sig string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.origin[name]; ok && prev != sig {
		return fmt.Errorf("enumerator name %s already used by %s", name, prev)
	}
	r.origin[name] = sig
	return nil
}

// Install adds cls to u, replacing a previous class of the same name.
func (r *Registry) Install(u *ast.Unit, cls *ast.ClassDecl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	installClass(u, cls)
}

func installClass(u *ast.Unit, cls *ast.ClassDecl) {
	for i, c := range u.Types {
		if c.Name == cls.Name {
			u.Types[i] = cls
			return
		}
	}
	u.Types = append(u.Types, cls)
}
