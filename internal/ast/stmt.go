package ast

import "yieldc/internal/source"

// LocalID identifies one local declaration within a method; assigned by sema.
type LocalID uint32

const NoLocalID LocalID = 0

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	// StmtLocal declares a local (Type nil means `var`).
	StmtLocal
	StmtExpr
	StmtIf
	StmtWhile
	StmtDo
	StmtFor
	StmtForeach
	StmtBreak
	StmtContinue
	StmtReturn
	// StmtYieldReturn is a suspension point.
	StmtYieldReturn
	StmtYieldBreak
	StmtTry
	StmtThrow
	StmtSwitch
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "Block"
	case StmtLocal:
		return "Local"
	case StmtExpr:
		return "Expr"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtDo:
		return "Do"
	case StmtFor:
		return "For"
	case StmtForeach:
		return "Foreach"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtReturn:
		return "Return"
	case StmtYieldReturn:
		return "YieldReturn"
	case StmtYieldBreak:
		return "YieldBreak"
	case StmtTry:
		return "Try"
	case StmtThrow:
		return "Throw"
	case StmtSwitch:
		return "Switch"
	default:
		return "Unknown"
	}
}

// Stmt is a statement node; Data holds the kind-specific payload.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is implemented by every statement payload.
type StmtData interface {
	stmtData()
}

type BlockData struct {
	Stmts []*Stmt
}

type LocalData struct {
	Name  string
	Type  *TypeRef
	Init  *Expr
	Local LocalID
}

type ExprStmtData struct {
	X *Expr
}

type IfData struct {
	Cond *Expr
	Then *Stmt
	Else *Stmt
}

// WhileData is also used by generated dispatch loops, which carry a Label.
type WhileData struct {
	Label string
	Cond  *Expr
	Body  *Stmt
}

type DoData struct {
	Body *Stmt
	Cond *Expr
}

type ForData struct {
	Init []*Stmt
	Cond *Expr
	Post []*Expr
	Body *Stmt
}

type ForeachData struct {
	ElemType *TypeRef
	Name     string
	Local    LocalID
	Iterable *Expr
	Body     *Stmt
}

// BranchData serves break and continue; Label is empty for source code.
type BranchData struct {
	Label string
}

type ReturnData struct {
	Value *Expr
}

type YieldData struct {
	Value *Expr
}

type CatchClause struct {
	Type  *TypeRef
	Name  string
	Local LocalID
	Body  *Stmt
	Span  source.Span
}

type TryData struct {
	Body    *Stmt
	Catches []*CatchClause
	Finally *Stmt
}

type ThrowData struct {
	Value *Expr
}

// SwitchCase with no Values is the default case.
type SwitchCase struct {
	Values []*Expr
	Body   []*Stmt
}

type SwitchData struct {
	Tag   *Expr
	Cases []*SwitchCase
}

func (*BlockData) stmtData()    {}
func (*LocalData) stmtData()    {}
func (*ExprStmtData) stmtData() {}
func (*IfData) stmtData()       {}
func (*WhileData) stmtData()    {}
func (*DoData) stmtData()       {}
func (*ForData) stmtData()      {}
func (*ForeachData) stmtData()  {}
func (*BranchData) stmtData()   {}
func (*ReturnData) stmtData()   {}
func (*YieldData) stmtData()    {}
func (*TryData) stmtData()      {}
func (*ThrowData) stmtData()    {}
func (*SwitchData) stmtData()   {}
