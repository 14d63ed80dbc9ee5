package ast

import "yieldc/internal/source"

// Unit is one compilation unit (one source file).
type Unit struct {
	File      source.FileID
	Path      string
	Namespace string
	Usings    []string
	Types     []*ClassDecl
}

// Lookup finds a class by name.
func (u *Unit) Lookup(name string) *ClassDecl {
	for _, c := range u.Types {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ClassDecl declares a class. Generated classes carry the identity of the
// method they were synthesized from in Origin.
type ClassDecl struct {
	Name       string
	TypeParams []string
	Base       *TypeRef
	Static     bool
	Fields     []*FieldDecl
	Ctors      []*CtorDecl
	Methods    []*MethodDecl
	Span       source.Span

	Generated bool
	Origin    string
}

// SelfType is the class referenced with its own type parameters.
func (c *ClassDecl) SelfType() *TypeRef {
	t := &TypeRef{Name: c.Name}
	for _, tp := range c.TypeParams {
		t.Args = append(t.Args, &TypeRef{Name: tp})
	}
	return t
}

func (c *ClassDecl) Field(name string) *FieldDecl {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// MethodsNamed returns every overload with the given name.
func (c *ClassDecl) MethodsNamed(name string) []*MethodDecl {
	var out []*MethodDecl
	for _, m := range c.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

type FieldDecl struct {
	Name   string
	Type   *TypeRef
	Static bool
	Init   *Expr
	Span   source.Span
}

// ParamMode distinguishes value parameters from alias (ref/out) ones.
type ParamMode uint8

const (
	ParamValue ParamMode = iota
	ParamRef
	ParamOut
)

func (m ParamMode) String() string {
	switch m {
	case ParamRef:
		return "ref"
	case ParamOut:
		return "out"
	default:
		return ""
	}
}

type Param struct {
	Name string
	Type *TypeRef
	Mode ParamMode
	Span source.Span
}

// MethodDecl declares a method. Result is nil for void methods.
type MethodDecl struct {
	Name       string
	TypeParams []string
	Params     []*Param
	Result     *TypeRef
	Static     bool
	Override   bool
	Body       *Stmt
	Span       source.Span
}

type CtorDecl struct {
	Params []*Param
	Body   *Stmt
	Span   source.Span
}
