package parser

import (
	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/token"
)

// parseBlock — { stmt* }
func (p *Parser) parseBlock() (*ast.Stmt, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open block")
	if !ok {
		return nil, false
	}
	var stmts []*ast.Stmt
	for !p.atOr(token.RBrace, token.EOF) {
		s, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, s)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block"); !ok {
		return nil, false
	}
	return &ast.Stmt{Kind: ast.StmtBlock, Span: p.spanFrom(open.Span), Data: &ast.BlockData{Stmts: stmts}}, true
}

func (p *Parser) parseStmt() (*ast.Stmt, bool) {
	start := p.lx.Peek().Span
	switch p.lx.Peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		p.advance()
		return &ast.Stmt{Kind: ast.StmtBlock, Span: start, Data: &ast.BlockData{}}, true
	case token.KwVar:
		s, ok := p.parseLocalDecl()
		return p.finishSimple(s, ok)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDo()
	case token.KwFor:
		return p.parseFor()
	case token.KwForeach:
		return p.parseForeach()
	case token.KwBreak, token.KwContinue:
		tok := p.advance()
		kind := ast.StmtBreak
		if tok.Kind == token.KwContinue {
			kind = ast.StmtContinue
		}
		return p.finishSimple(&ast.Stmt{Kind: kind, Span: tok.Span, Data: &ast.BranchData{}}, true)
	case token.KwReturn:
		p.advance()
		rd := &ast.ReturnData{}
		if !p.at(token.Semicolon) {
			v, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			rd.Value = v
		}
		return p.finishSimple(&ast.Stmt{Kind: ast.StmtReturn, Span: p.spanFrom(start), Data: rd}, true)
	case token.KwYield:
		return p.parseYield()
	case token.KwTry:
		return p.parseTry()
	case token.KwThrow:
		p.advance()
		v, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return p.finishSimple(&ast.Stmt{Kind: ast.StmtThrow, Span: p.spanFrom(start), Data: &ast.ThrowData{Value: v}}, true)
	case token.KwSwitch:
		return p.parseSwitch()
	}
	if p.looksLikeDecl() {
		s, ok := p.parseLocalDecl()
		return p.finishSimple(s, ok)
	}
	x, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	return p.finishSimple(&ast.Stmt{Kind: ast.StmtExpr, Span: x.Span, Data: &ast.ExprStmtData{X: x}}, true)
}

// finishSimple eats the ';' that ends a simple statement.
func (p *Parser) finishSimple(s *ast.Stmt, ok bool) (*ast.Stmt, bool) {
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after statement"); !ok {
		return nil, false
	}
	s.Span = s.Span.Cover(p.lastSpan)
	return s, true
}

// parseLocalDecl — var name = expr | Type name [= expr]; without the ';'.
func (p *Parser) parseLocalDecl() (*ast.Stmt, bool) {
	start := p.lx.Peek().Span
	ld := &ast.LocalData{}
	if p.at(token.KwVar) {
		p.advance()
	} else {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		ld.Type = t
	}
	nameTok, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	ld.Name = nameTok.Text
	if p.at(token.Assign) {
		p.advance()
		if ld.Init, ok = p.parseExpr(); !ok {
			return nil, false
		}
	} else if ld.Type == nil {
		p.err(diag.SynUnexpectedToken, "implicitly typed local '"+ld.Name+"' must be initialised")
		return nil, false
	}
	return &ast.Stmt{Kind: ast.StmtLocal, Span: p.spanFrom(start), Data: ld}, true
}

func (p *Parser) parseParenExpr() (*ast.Expr, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	x, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
		return nil, false
	}
	return x, true
}

func (p *Parser) parseIf() (*ast.Stmt, bool) {
	start := p.advance().Span
	cond, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	then, ok := p.parseStmt()
	if !ok {
		return nil, false
	}
	d := &ast.IfData{Cond: cond, Then: then}
	if p.at(token.KwElse) {
		p.advance()
		if d.Else, ok = p.parseStmt(); !ok {
			return nil, false
		}
	}
	return &ast.Stmt{Kind: ast.StmtIf, Span: p.spanFrom(start), Data: d}, true
}

func (p *Parser) parseWhile() (*ast.Stmt, bool) {
	start := p.advance().Span
	cond, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	body, ok := p.parseStmt()
	if !ok {
		return nil, false
	}
	return &ast.Stmt{Kind: ast.StmtWhile, Span: p.spanFrom(start), Data: &ast.WhileData{Cond: cond, Body: body}}, true
}

func (p *Parser) parseDo() (*ast.Stmt, bool) {
	start := p.advance().Span
	body, ok := p.parseStmt()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); !ok {
		return nil, false
	}
	cond, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	return p.finishSimple(&ast.Stmt{Kind: ast.StmtDo, Span: start, Data: &ast.DoData{Body: body, Cond: cond}}, true)
}

// parseFor — for (init; cond; post) body
func (p *Parser) parseFor() (*ast.Stmt, bool) {
	start := p.advance().Span
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after for"); !ok {
		return nil, false
	}
	d := &ast.ForData{}
	if !p.at(token.Semicolon) {
		if p.at(token.KwVar) || p.looksLikeDecl() {
			s, ok := p.parseLocalDecl()
			if !ok {
				return nil, false
			}
			d.Init = append(d.Init, s)
		} else {
			exprs, ok := p.parseExprList(token.Semicolon)
			if !ok {
				return nil, false
			}
			for _, x := range exprs {
				d.Init = append(d.Init, &ast.Stmt{Kind: ast.StmtExpr, Span: x.Span, Data: &ast.ExprStmtData{X: x}})
			}
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after for initialiser"); !ok {
		return nil, false
	}
	if !p.at(token.Semicolon) {
		cond, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		d.Cond = cond
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after for condition"); !ok {
		return nil, false
	}
	if !p.at(token.RParen) {
		post, ok := p.parseExprList(token.RParen)
		if !ok {
			return nil, false
		}
		d.Post = post
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' to close for header"); !ok {
		return nil, false
	}
	body, ok := p.parseStmt()
	if !ok {
		return nil, false
	}
	d.Body = body
	return &ast.Stmt{Kind: ast.StmtFor, Span: p.spanFrom(start), Data: d}, true
}

// parseExprList — expr {, expr} up to (not including) end.
func (p *Parser) parseExprList(end token.Kind) ([]*ast.Expr, bool) {
	var out []*ast.Expr
	for {
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		out = append(out, x)
		if !p.at(token.Comma) || p.at(end) {
			break
		}
		p.advance()
	}
	return out, true
}

// parseForeach — foreach (Type|var name in expr) body
func (p *Parser) parseForeach() (*ast.Stmt, bool) {
	start := p.advance().Span
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after foreach"); !ok {
		return nil, false
	}
	d := &ast.ForeachData{}
	if p.at(token.KwVar) {
		p.advance()
	} else {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		d.ElemType = t
	}
	nameTok, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	d.Name = nameTok.Text
	if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' in foreach"); !ok {
		return nil, false
	}
	if d.Iterable, ok = p.parseExpr(); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' to close foreach header"); !ok {
		return nil, false
	}
	if d.Body, ok = p.parseStmt(); !ok {
		return nil, false
	}
	return &ast.Stmt{Kind: ast.StmtForeach, Span: p.spanFrom(start), Data: d}, true
}

// parseYield — yield return expr; | yield break;
func (p *Parser) parseYield() (*ast.Stmt, bool) {
	start := p.advance().Span
	switch {
	case p.at(token.KwReturn):
		p.advance()
		v, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return p.finishSimple(&ast.Stmt{Kind: ast.StmtYieldReturn, Span: p.spanFrom(start), Data: &ast.YieldData{Value: v}}, true)
	case p.at(token.KwBreak):
		p.advance()
		return p.finishSimple(&ast.Stmt{Kind: ast.StmtYieldBreak, Span: p.spanFrom(start), Data: &ast.YieldData{}}, true)
	default:
		p.err(diag.SynUnexpectedToken, "expected 'return' or 'break' after 'yield'")
		return nil, false
	}
}

// parseTry — try block {catch [(Type [name])] block} [finally block]
func (p *Parser) parseTry() (*ast.Stmt, bool) {
	start := p.advance().Span
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	d := &ast.TryData{Body: body}
	for p.at(token.KwCatch) {
		cstart := p.advance().Span
		cc := &ast.CatchClause{}
		if p.at(token.LParen) {
			p.advance()
			if cc.Type, ok = p.parseType(); !ok {
				return nil, false
			}
			if p.at(token.Ident) {
				cc.Name = p.advance().Text
			}
			if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' after catch declaration"); !ok {
				return nil, false
			}
		}
		if cc.Body, ok = p.parseBlock(); !ok {
			return nil, false
		}
		cc.Span = p.spanFrom(cstart)
		d.Catches = append(d.Catches, cc)
	}
	if p.at(token.KwFinally) {
		p.advance()
		if d.Finally, ok = p.parseBlock(); !ok {
			return nil, false
		}
	}
	if len(d.Catches) == 0 && d.Finally == nil {
		p.errAt(diag.SynTryWithoutHandler, start, "try statement requires a catch or finally clause")
		return nil, false
	}
	return &ast.Stmt{Kind: ast.StmtTry, Span: p.spanFrom(start), Data: d}, true
}

// parseSwitch — switch (expr) { case v: ... default: ... }
func (p *Parser) parseSwitch() (*ast.Stmt, bool) {
	start := p.advance().Span
	tag, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open switch body"); !ok {
		return nil, false
	}
	d := &ast.SwitchData{Tag: tag}
	for p.atOr(token.KwCase, token.KwDefault) {
		sc := &ast.SwitchCase{}
		isDefault := false
		// подряд идущие метки сливаются в один case
		for p.atOr(token.KwCase, token.KwDefault) {
			if p.at(token.KwDefault) {
				p.advance()
				isDefault = true
			} else {
				p.advance()
				v, ok := p.parseExpr()
				if !ok {
					return nil, false
				}
				sc.Values = append(sc.Values, v)
			}
			if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after case label"); !ok {
				return nil, false
			}
		}
		if isDefault {
			sc.Values = nil
		}
		for !p.atOr(token.KwCase, token.KwDefault, token.RBrace, token.EOF) {
			s, ok := p.parseStmt()
			if !ok {
				p.resyncStmt()
				continue
			}
			sc.Body = append(sc.Body, s)
		}
		d.Cases = append(d.Cases, sc)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close switch"); !ok {
		return nil, false
	}
	return &ast.Stmt{Kind: ast.StmtSwitch, Span: p.spanFrom(start), Data: d}, true
}
