package ast

import "yieldc/internal/source"

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprString
	ExprBool
	ExprNull
	// ExprName is an unqualified identifier; sema fills Ref.
	ExprName
	ExprThis
	ExprMember
	ExprIndex
	ExprCall
	ExprNew
	ExprUnary
	ExprBinary
	ExprAssign
	// ExprIncDec is postfix ++/--.
	ExprIncDec
)

func (k ExprKind) String() string {
	switch k {
	case ExprInt:
		return "Int"
	case ExprString:
		return "String"
	case ExprBool:
		return "Bool"
	case ExprNull:
		return "Null"
	case ExprName:
		return "Name"
	case ExprThis:
		return "This"
	case ExprMember:
		return "Member"
	case ExprIndex:
		return "Index"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprAssign:
		return "Assign"
	case ExprIncDec:
		return "IncDec"
	default:
		return "Unknown"
	}
}

type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

type ExprData interface {
	exprData()
}

type IntData struct {
	Value int64
}

type StringData struct {
	Value string
}

type BoolData struct {
	Value bool
}

// RefKind says what an ExprName resolved to.
type RefKind uint8

const (
	RefUnresolved RefKind = iota
	RefLocal
	RefParam
	RefField
	RefMethod
	RefType
)

// Ref is the binding recorded by sema on names.
type Ref struct {
	Kind   RefKind
	Local  LocalID
	Param  int
	Static bool
	// Owner is the class declaring a field or method reference.
	Owner string
}

type NameData struct {
	Name string
	Ref  Ref
}

type MemberData struct {
	X    *Expr
	Name string
}

type IndexData struct {
	X     *Expr
	Index *Expr
}

type CallData struct {
	Fn       *Expr
	TypeArgs []*TypeRef
	Args     []*Expr
}

type NewData struct {
	Type *TypeRef
	Args []*Expr
}

type UnaryData struct {
	Op Op
	X  *Expr
}

type BinaryData struct {
	Op Op
	X  *Expr
	Y  *Expr
}

// AssignData covers =, += and -=; Op is OpNone for plain assignment.
type AssignData struct {
	Op     Op
	Target *Expr
	Value  *Expr
}

type IncDecData struct {
	Target *Expr
	Dec    bool
}

func (*IntData) exprData()    {}
func (*StringData) exprData() {}
func (*BoolData) exprData()   {}
func (*NameData) exprData()   {}
func (*MemberData) exprData() {}
func (*IndexData) exprData()  {}
func (*CallData) exprData()   {}
func (*NewData) exprData()    {}
func (*UnaryData) exprData()  {}
func (*BinaryData) exprData() {}
func (*AssignData) exprData() {}
func (*IncDecData) exprData() {}
