package ast

import (
	"strings"

	"yieldc/internal/source"
)

// TypeRef is a syntactic type reference: Name[<Args...>][[]].
type TypeRef struct {
	Name  string
	Args  []*TypeRef
	Array bool
	Span  source.Span
}

// NamedType is a convenience constructor for generated code.
func NamedType(name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Name: name, Args: args}
}

func (t *TypeRef) String() string {
	if t == nil {
		return "void"
	}
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *TypeRef) write(sb *strings.Builder) {
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.write(sb)
		}
		sb.WriteByte('>')
	}
	if t.Array {
		sb.WriteString("[]")
	}
}

// Clone deep-copies the reference.
func (t *TypeRef) Clone() *TypeRef {
	if t == nil {
		return nil
	}
	out := &TypeRef{Name: t.Name, Array: t.Array, Span: t.Span}
	if len(t.Args) > 0 {
		out.Args = make([]*TypeRef, len(t.Args))
		for i, a := range t.Args {
			out.Args[i] = a.Clone()
		}
	}
	return out
}

// Equal compares two references structurally, ignoring spans.
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Name != o.Name || t.Array != o.Array || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Substitute replaces type-parameter names according to subst.
func (t *TypeRef) Substitute(subst map[string]*TypeRef) *TypeRef {
	if t == nil {
		return nil
	}
	if len(t.Args) == 0 {
		if r, ok := subst[t.Name]; ok {
			out := r.Clone()
			out.Array = out.Array || t.Array
			return out
		}
	}
	out := &TypeRef{Name: t.Name, Array: t.Array, Span: t.Span}
	for _, a := range t.Args {
		out.Args = append(out.Args, a.Substitute(subst))
	}
	return out
}
