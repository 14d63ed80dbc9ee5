package ast

// Constructors used by passes that synthesize code. Generated nodes carry
// zero spans unless the caller copies one in.

func Block(stmts ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtBlock, Data: &BlockData{Stmts: stmts}}
}

func DeclareLocal(name string, typ *TypeRef, init *Expr, id LocalID) *Stmt {
	return &Stmt{Kind: StmtLocal, Data: &LocalData{Name: name, Type: typ, Init: init, Local: id}}
}

func ExprStmt(x *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Span: x.Span, Data: &ExprStmtData{X: x}}
}

func If(cond *Expr, then, els *Stmt) *Stmt {
	return &Stmt{Kind: StmtIf, Data: &IfData{Cond: cond, Then: then, Else: els}}
}

func While(label string, cond *Expr, body *Stmt) *Stmt {
	return &Stmt{Kind: StmtWhile, Data: &WhileData{Label: label, Cond: cond, Body: body}}
}

func Break() *Stmt {
	return &Stmt{Kind: StmtBreak, Data: &BranchData{}}
}

func Continue(label string) *Stmt {
	return &Stmt{Kind: StmtContinue, Data: &BranchData{Label: label}}
}

func Return(x *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Data: &ReturnData{Value: x}}
}

func Throw(x *Expr) *Stmt {
	return &Stmt{Kind: StmtThrow, Data: &ThrowData{Value: x}}
}

func Try(body *Stmt, catches []*CatchClause, finally *Stmt) *Stmt {
	return &Stmt{Kind: StmtTry, Data: &TryData{Body: body, Catches: catches, Finally: finally}}
}

func Switch(tag *Expr, cases ...*SwitchCase) *Stmt {
	return &Stmt{Kind: StmtSwitch, Data: &SwitchData{Tag: tag, Cases: cases}}
}

func Int(v int64) *Expr {
	return &Expr{Kind: ExprInt, Data: &IntData{Value: v}}
}

func Str(v string) *Expr {
	return &Expr{Kind: ExprString, Data: &StringData{Value: v}}
}

func Bool(v bool) *Expr {
	return &Expr{Kind: ExprBool, Data: &BoolData{Value: v}}
}

func Null() *Expr {
	return &Expr{Kind: ExprNull}
}

func Name(n string) *Expr {
	return &Expr{Kind: ExprName, Data: &NameData{Name: n}}
}

// TypeName is a name already known to denote a type (static member access).
func TypeName(n string) *Expr {
	return &Expr{Kind: ExprName, Data: &NameData{Name: n, Ref: Ref{Kind: RefType}}}
}

func This() *Expr {
	return &Expr{Kind: ExprThis}
}

func Member(x *Expr, name string) *Expr {
	return &Expr{Kind: ExprMember, Span: x.Span, Data: &MemberData{X: x, Name: name}}
}

// ThisField is `this.name`.
func ThisField(name string) *Expr {
	return Member(This(), name)
}

func Call(fn *Expr, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Span: fn.Span, Data: &CallData{Fn: fn, Args: args}}
}

func New(t *TypeRef, args ...*Expr) *Expr {
	return &Expr{Kind: ExprNew, Data: &NewData{Type: t, Args: args}}
}

func Assign(target, value *Expr) *Expr {
	return &Expr{Kind: ExprAssign, Span: target.Span, Data: &AssignData{Target: target, Value: value}}
}

func Not(x *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Span: x.Span, Data: &UnaryData{Op: OpNot, X: x}}
}

func Binary(op Op, x, y *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Span: x.Span, Data: &BinaryData{Op: op, X: x, Y: y}}
}

// Stmts flattens a block into its statement list; other statements become a
// one-element list.
func Stmts(s *Stmt) []*Stmt {
	if s == nil {
		return nil
	}
	if s.Kind == StmtBlock {
		return s.Data.(*BlockData).Stmts
	}
	return []*Stmt{s}
}
