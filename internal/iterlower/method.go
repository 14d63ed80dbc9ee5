package iterlower

import (
	"fmt"

	"fortio.org/safecast"

	"yieldc/internal/ast"
	"yieldc/internal/sema"
	"yieldc/internal/source"
)

// Method is an iterator method prepared for lowering. Its Body is a private
// copy; the declaration in the unit is left untouched until Install.
type Method struct {
	Decl      *ast.MethodDecl
	Class     *ast.ClassDecl
	Namespace string
	Params    []*ast.Param
	ElemType  *ast.TypeRef
	Static    bool
	// TypeParams are the enclosing class's type parameters followed by the method's.
	TypeParams []string
	Body       *ast.Stmt
	Span       source.Span

	locals []sema.LocalInfo
	temps  int
}

// NewMethod builds a Method from sema output.
func NewMethod(mi *sema.MethodInfo) *Method {
	return &Method{
		Decl:       mi.Method,
		Class:      mi.Class,
		Namespace:  mi.Namespace,
		Params:     mi.Params,
		ElemType:   mi.ElemType,
		Static:     mi.Static,
		TypeParams: append([]string(nil), mi.TypeParams...),
		Body:       ast.CloneStmt(mi.Method.Body),
		Span:       mi.Method.Span,
		locals:     append([]sema.LocalInfo(nil), mi.Locals...),
	}
}

// QualifiedName is Class.Method, used in logs and Origin.
func (m *Method) QualifiedName() string {
	return m.Class.Name + "." + m.Decl.Name
}

// Local returns the info for id, including compiler temporaries.
func (m *Method) Local(id ast.LocalID) *sema.LocalInfo {
	if id == ast.NoLocalID || int(id) > len(m.locals) {
		return nil
	}
	return &m.locals[id-1]
}

// newTemp allocates a numbered compiler temporary.
func (m *Method) newTemp(prefix string, typ *ast.TypeRef) (ast.LocalID, string) {
	m.temps++
	name := fmt.Sprintf("%s%d", prefix, m.temps)
	return m.newLocal(name, typ), name
}

// newLocal allocates a LocalID past every source local.
func (m *Method) newLocal(name string, typ *ast.TypeRef) ast.LocalID {
	value, err := safecast.Conv[uint32](len(m.locals) + 1)
	if err != nil {
		panic(fmt.Errorf("local index overflow: %w", err))
	}
	id := ast.LocalID(value)
	m.locals = append(m.locals, sema.LocalInfo{ID: id, Name: name, Type: typ})
	return id
}

// selfType is the enclosing class referenced with its own type parameters.
func (m *Method) selfType() *ast.TypeRef {
	return m.Class.SelfType()
}
