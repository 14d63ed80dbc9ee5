package sema

import "yieldc/internal/ast"

const (
	tyInt    = "int"
	tyBool   = "bool"
	tyString = "string"
	tyObject = "object"
)

// typeOf infers a static type for `var` declarations; anything the rules do
// not cover is object.
func (tc *typeChecker) typeOf(e *ast.Expr) *ast.TypeRef {
	if t := tc.inferType(e); t != nil {
		return t.Clone()
	}
	return ast.NamedType(tyObject)
}

func (tc *typeChecker) inferType(e *ast.Expr) *ast.TypeRef {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case *ast.IntData:
		return ast.NamedType(tyInt)
	case *ast.StringData:
		return ast.NamedType(tyString)
	case *ast.BoolData:
		return ast.NamedType(tyBool)
	case *ast.NameData:
		switch d.Ref.Kind {
		case ast.RefLocal:
			return tc.localType(d.Ref.Local)
		case ast.RefParam:
			return tc.params[d.Ref.Param].Type
		case ast.RefField:
			if f, _ := tc.findField(tc.class, d.Name); f != nil {
				return f.Type
			}
		}
		return nil
	case *ast.MemberData:
		return tc.memberType(tc.inferType(d.X), d.Name, d.X.Kind == ast.ExprThis)
	case *ast.IndexData:
		return elementOf(tc.inferType(d.X))
	case *ast.CallData:
		return tc.callType(d)
	case *ast.NewData:
		return d.Type
	case *ast.UnaryData:
		if d.Op == ast.OpNot {
			return ast.NamedType(tyBool)
		}
		return ast.NamedType(tyInt)
	case *ast.BinaryData:
		switch d.Op {
		case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr:
			return ast.NamedType(tyBool)
		case ast.OpAdd:
			if isNamed(tc.inferType(d.X), tyString) || isNamed(tc.inferType(d.Y), tyString) {
				return ast.NamedType(tyString)
			}
		}
		return ast.NamedType(tyInt)
	case *ast.AssignData:
		return tc.inferType(d.Value)
	case *ast.IncDecData:
		return ast.NamedType(tyInt)
	}
	if e.Kind == ast.ExprThis && tc.class != nil {
		return tc.class.SelfType()
	}
	return nil
}

func (tc *typeChecker) memberType(recv *ast.TypeRef, name string, onThis bool) *ast.TypeRef {
	if onThis && tc.class != nil {
		if f, _ := tc.findField(tc.class, name); f != nil {
			return f.Type
		}
	}
	if recv == nil {
		return nil
	}
	if c := tc.unit.Lookup(recv.Name); c != nil {
		if f, _ := tc.findField(c, name); f != nil {
			return f.Type
		}
		return nil
	}
	switch {
	case name == "Count":
		return ast.NamedType(tyInt)
	case name == "Current":
		return elementOf(recv)
	}
	return nil
}

func (tc *typeChecker) callType(d *ast.CallData) *ast.TypeRef {
	switch fn := d.Fn.Data.(type) {
	case *ast.NameData:
		if fn.Ref.Kind != ast.RefMethod || tc.class == nil {
			return nil
		}
		ms, _ := tc.findMethods(tc.class, fn.Name)
		return resultByArity(ms, len(d.Args))
	case *ast.MemberData:
		recv := tc.inferType(fn.X)
		if recv == nil {
			// статический вызов через имя класса
			if n, ok := fn.X.Data.(*ast.NameData); ok && n.Ref.Kind == ast.RefType {
				if c := tc.unit.Lookup(n.Name); c != nil {
					return resultByArity(c.MethodsNamed(fn.Name), len(d.Args))
				}
			}
			return nil
		}
		if c := tc.unit.Lookup(recv.Name); c != nil {
			ms, _ := tc.findMethods(c, fn.Name)
			return resultByArity(ms, len(d.Args))
		}
		switch fn.Name {
		case "GetEnumerator":
			if elem := elementOf(recv); elem != nil {
				return ast.NamedType("IEnumerator", elem)
			}
		case "MoveNext", "Contains":
			return ast.NamedType(tyBool)
		case "ToString":
			return ast.NamedType(tyString)
		}
	}
	return nil
}

func resultByArity(ms []*ast.MethodDecl, arity int) *ast.TypeRef {
	for _, m := range ms {
		if len(m.Params) == arity {
			return m.Result
		}
	}
	return nil
}

// elementOf is the element type of a collection, array or enumerable type.
func elementOf(t *ast.TypeRef) *ast.TypeRef {
	if t == nil {
		return ast.NamedType(tyObject)
	}
	if t.Array {
		return &ast.TypeRef{Name: t.Name, Args: t.Args}
	}
	if isNamed(t, tyString) {
		return ast.NamedType(tyString)
	}
	if len(t.Args) == 1 {
		return t.Args[0]
	}
	return ast.NamedType(tyObject)
}

func isNamed(t *ast.TypeRef, name string) bool {
	return t != nil && !t.Array && len(t.Args) == 0 && t.Name == name
}
