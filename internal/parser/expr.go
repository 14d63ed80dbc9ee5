package parser

import (
	"strconv"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/token"
)

// binaryOps maps operator tokens to ast operators; precedence lives on ast.Op.
var binaryOps = map[token.Kind]ast.Op{
	token.OrOr:    ast.OpOr,
	token.AndAnd:  ast.OpAnd,
	token.EqEq:    ast.OpEq,
	token.BangEq:  ast.OpNe,
	token.Lt:      ast.OpLt,
	token.LtEq:    ast.OpLe,
	token.Gt:      ast.OpGt,
	token.GtEq:    ast.OpGe,
	token.Plus:    ast.OpAdd,
	token.Minus:   ast.OpSub,
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.Percent: ast.OpMod,
}

func (p *Parser) parseExpr() (*ast.Expr, bool) {
	return p.parseAssign()
}

// parseAssign — правоассоциативное присваивание поверх бинарных выражений.
func (p *Parser) parseAssign() (*ast.Expr, bool) {
	lhs, ok := p.parseBinary(1)
	if !ok {
		return nil, false
	}
	var op ast.Op
	switch p.lx.Peek().Kind {
	case token.Assign:
		op = ast.OpNone
	case token.PlusAssign:
		op = ast.OpAdd
	case token.MinusAssign:
		op = ast.OpSub
	default:
		return lhs, true
	}
	p.advance()
	if !isAssignable(lhs) {
		p.errAt(diag.SynBadAssignTarget, lhs.Span, "left side of assignment must be a variable, field or indexer")
		return nil, false
	}
	rhs, ok := p.parseAssign()
	if !ok {
		return nil, false
	}
	return &ast.Expr{
		Kind: ast.ExprAssign,
		Span: lhs.Span.Cover(rhs.Span),
		Data: &ast.AssignData{Op: op, Target: lhs, Value: rhs},
	}, true
}

func isAssignable(x *ast.Expr) bool {
	switch x.Kind {
	case ast.ExprName, ast.ExprMember, ast.ExprIndex:
		return true
	default:
		return false
	}
}

// parseBinary — precedence climbing, все бинарные операторы левоассоциативны.
func (p *Parser) parseBinary(minPrec int) (*ast.Expr, bool) {
	lhs, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for {
		op, isBin := binaryOps[p.lx.Peek().Kind]
		if !isBin || op.Precedence() < minPrec {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(op.Precedence() + 1)
		if !ok {
			return nil, false
		}
		lhs = &ast.Expr{
			Kind: ast.ExprBinary,
			Span: lhs.Span.Cover(rhs.Span),
			Data: &ast.BinaryData{Op: op, X: lhs, Y: rhs},
		}
	}
}

func (p *Parser) parseUnary() (*ast.Expr, bool) {
	var op ast.Op
	switch p.lx.Peek().Kind {
	case token.Minus:
		op = ast.OpNeg
	case token.Bang:
		op = ast.OpNot
	default:
		return p.parsePostfix()
	}
	start := p.advance().Span
	x, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	return &ast.Expr{Kind: ast.ExprUnary, Span: start.Cover(x.Span), Data: &ast.UnaryData{Op: op, X: x}}, true
}

// parsePostfix — primary { .name | <T>(args) | (args) | [index] } [++|--]
func (p *Parser) parsePostfix() (*ast.Expr, bool) {
	x, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for {
		switch p.lx.Peek().Kind {
		case token.Dot:
			p.advance()
			nameTok, ok := p.parseIdent()
			if !ok {
				return nil, false
			}
			x = &ast.Expr{Kind: ast.ExprMember, Span: x.Span.Cover(nameTok.Span), Data: &ast.MemberData{X: x, Name: nameTok.Text}}
		case token.Lt:
			if x.Kind != ast.ExprName && x.Kind != ast.ExprMember {
				return x, true
			}
			targs := p.tryTypeArgsBeforeCall()
			if targs == nil {
				return x, true
			}
			call, ok := p.parseCall(x, targs)
			if !ok {
				return nil, false
			}
			x = call
		case token.LParen:
			call, ok := p.parseCall(x, nil)
			if !ok {
				return nil, false
			}
			x = call
		case token.LBracket:
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']'"); !ok {
				return nil, false
			}
			x = &ast.Expr{Kind: ast.ExprIndex, Span: p.spanFrom(x.Span), Data: &ast.IndexData{X: x, Index: idx}}
		case token.PlusPlus, token.MinusMinus:
			tok := p.advance()
			if !isAssignable(x) {
				p.errAt(diag.SynBadAssignTarget, x.Span, "operand of ++/-- must be a variable, field or indexer")
				return nil, false
			}
			return &ast.Expr{
				Kind: ast.ExprIncDec,
				Span: x.Span.Cover(tok.Span),
				Data: &ast.IncDecData{Target: x, Dec: tok.Kind == token.MinusMinus},
			}, true
		default:
			return x, true
		}
	}
}

func (p *Parser) parseCall(fn *ast.Expr, targs []*ast.TypeRef) (*ast.Expr, bool) {
	args, ok := p.parseArgs()
	if !ok {
		return nil, false
	}
	return &ast.Expr{Kind: ast.ExprCall, Span: p.spanFrom(fn.Span), Data: &ast.CallData{Fn: fn, TypeArgs: targs, Args: args}}, true
}

// parseArgs — ( expr, ... )
func (p *Parser) parseArgs() ([]*ast.Expr, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var args []*ast.Expr
	if !p.at(token.RParen) {
		list, ok := p.parseExprList(token.RParen)
		if !ok {
			return nil, false
		}
		args = list
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' to close argument list"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() (*ast.Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.errAt(diag.LexBadNumber, tok.Span, "integer literal out of range: "+tok.Text)
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprInt, Span: tok.Span, Data: &ast.IntData{Value: v}}, true
	case token.StringLit:
		p.advance()
		return &ast.Expr{Kind: ast.ExprString, Span: tok.Span, Data: &ast.StringData{Value: unquote(tok.Text)}}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Expr{Kind: ast.ExprBool, Span: tok.Span, Data: &ast.BoolData{Value: tok.Kind == token.KwTrue}}, true
	case token.KwNull:
		p.advance()
		return &ast.Expr{Kind: ast.ExprNull, Span: tok.Span}, true
	case token.KwThis:
		p.advance()
		return &ast.Expr{Kind: ast.ExprThis, Span: tok.Span}, true
	case token.Ident:
		p.advance()
		return &ast.Expr{Kind: ast.ExprName, Span: tok.Span, Data: &ast.NameData{Name: tok.Text}}, true
	case token.LParen:
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
			return nil, false
		}
		return x, true
	case token.KwNew:
		p.advance()
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		args, ok := p.parseArgs()
		if !ok {
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprNew, Span: p.spanFrom(tok.Span), Data: &ast.NewData{Type: t, Args: args}}, true
	default:
		p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
		return nil, false
	}
}

// unquote decodes a string literal token; lexer keeps quotes and escapes.
func unquote(text string) string {
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
