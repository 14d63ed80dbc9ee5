package parser

import (
	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/source"
	"yieldc/internal/token"
)

// accessModifiers are accepted and ignored; only static and override carry meaning.
var accessModifiers = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
	"internal":  true,
	"override":  true,
	"virtual":   true,
	"sealed":    true,
}

type modifiers struct {
	static   bool
	override bool
	span     source.Span
	hasSpan  bool
}

func (p *Parser) atModifier() bool {
	t := p.lx.Peek()
	return t.Kind == token.Ident && accessModifiers[t.Text]
}

func (p *Parser) parseModifiers() modifiers {
	var m modifiers
	for p.at(token.KwStatic) || p.atModifier() {
		tok := p.advance()
		if !m.hasSpan {
			m.span, m.hasSpan = tok.Span, true
		} else {
			m.span = m.span.Cover(tok.Span)
		}
		switch {
		case tok.Kind == token.KwStatic:
			m.static = true
		case tok.Text == "override":
			m.override = true
		}
	}
	return m
}

// parseClass — [mods] class Name [<T,...>] [: Base] { members }
func (p *Parser) parseClass() (*ast.ClassDecl, bool) {
	mods := p.parseModifiers()
	start := p.lx.Peek().Span
	if mods.hasSpan {
		start = mods.span
	}
	if mods.override {
		p.errAt(diag.SynModifierNotAllowed, mods.span, "'override' is not allowed on a class")
	}
	if _, ok := p.expect(token.KwClass, diag.SynUnexpectedTopLevel, "expected 'class'"); !ok {
		return nil, false
	}
	nameTok, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	c := &ast.ClassDecl{Name: nameTok.Text, Static: mods.static}
	if p.at(token.Lt) {
		c.TypeParams, ok = p.parseTypeParams()
		if !ok {
			return nil, false
		}
	}
	if p.at(token.Colon) {
		p.advance()
		if c.Base, ok = p.parseType(); !ok {
			return nil, false
		}
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open class body"); !ok {
		return nil, false
	}
	prev := p.className
	p.className = c.Name
	defer func() { p.className = prev }()

	for !p.atOr(token.RBrace, token.EOF) {
		if !p.parseMember(c) {
			p.resyncMember()
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close class "+c.Name)
	c.Span = p.spanFrom(start)
	return c, true
}

// resyncMember skips a broken member declaration.
func (p *Parser) resyncMember() {
	for !p.atOr(token.EOF, token.RBrace) {
		switch p.lx.Peek().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace:
			p.skipBalanced()
			return
		}
		p.advance()
	}
}

// parseMember — field, method or constructor.
func (p *Parser) parseMember(c *ast.ClassDecl) bool {
	mods := p.parseModifiers()
	start := p.lx.Peek().Span
	if mods.hasSpan {
		start = mods.span
	}

	if p.isCtorStart() {
		if mods.static || mods.override {
			p.errAt(diag.SynModifierNotAllowed, mods.span, "modifier not allowed on a constructor")
		}
		p.advance()
		params, ok := p.parseParams()
		if !ok {
			return false
		}
		body, ok := p.parseBlock()
		if !ok {
			return false
		}
		c.Ctors = append(c.Ctors, &ast.CtorDecl{Params: params, Body: body, Span: p.spanFrom(start)})
		return true
	}

	var result *ast.TypeRef
	if p.at(token.KwVoid) {
		p.advance()
	} else {
		t, ok := p.parseType()
		if !ok {
			return false
		}
		result = t
	}
	nameTok, ok := p.parseIdent()
	if !ok {
		return false
	}

	if p.atOr(token.LParen, token.Lt) {
		m := &ast.MethodDecl{
			Name:     nameTok.Text,
			Result:   result,
			Static:   mods.static,
			Override: mods.override,
		}
		if p.at(token.Lt) {
			if m.TypeParams, ok = p.parseTypeParams(); !ok {
				return false
			}
		}
		if m.Params, ok = p.parseParams(); !ok {
			return false
		}
		if m.Body, ok = p.parseBlock(); !ok {
			return false
		}
		m.Span = p.spanFrom(start)
		c.Methods = append(c.Methods, m)
		return true
	}

	if result == nil {
		p.errAt(diag.SynExpectType, nameTok.Span, "field cannot have type void")
		return false
	}
	if mods.override {
		p.errAt(diag.SynModifierNotAllowed, mods.span, "'override' is not allowed on a field")
	}
	f := &ast.FieldDecl{Name: nameTok.Text, Type: result, Static: mods.static}
	if p.at(token.Assign) {
		p.advance()
		if f.Init, ok = p.parseExpr(); !ok {
			return false
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after field declaration"); !ok {
		return false
	}
	f.Span = p.spanFrom(start)
	c.Fields = append(c.Fields, f)
	return true
}

// isCtorStart reports `ClassName (` at the cursor.
func (p *Parser) isCtorStart() bool {
	if !p.atIdent(p.className) {
		return false
	}
	st := p.lx.Save()
	p.lx.Next()
	isCtor := p.at(token.LParen)
	p.lx.Restore(st)
	return isCtor
}

// parseTypeParams — <T, U>
func (p *Parser) parseTypeParams() ([]string, bool) {
	p.advance()
	var out []string
	for {
		tok, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		out = append(out, tok.Text)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.Gt, diag.SynUnexpectedToken, "expected '>' to close type parameters"); !ok {
		return nil, false
	}
	return out, true
}

// parseParams — ( [ref|out] Type name, ... )
func (p *Parser) parseParams() ([]*ast.Param, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to open parameter list"); !ok {
		return nil, false
	}
	var out []*ast.Param
	for !p.at(token.RParen) {
		start := p.lx.Peek().Span
		mode := ast.ParamValue
		switch {
		case p.at(token.KwRef):
			p.advance()
			mode = ast.ParamRef
		case p.at(token.KwOut):
			p.advance()
			mode = ast.ParamOut
		}
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		nameTok, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		out = append(out, &ast.Param{Name: nameTok.Text, Type: typ, Mode: mode, Span: p.spanFrom(start)})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' to close parameter list"); !ok {
		return nil, false
	}
	return out, true
}
