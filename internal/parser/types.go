package parser

import (
	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/token"
)

// parseType — Name{.Name} [<Type,...>] [[]]
func (p *Parser) parseType() (*ast.TypeRef, bool) {
	return p.scanType(true)
}

// scanType parses a type; with report=false it stays silent so callers can
// use it speculatively under lexer Save/Restore.
func (p *Parser) scanType(report bool) (*ast.TypeRef, bool) {
	if !p.at(token.Ident) {
		if report {
			p.err(diag.SynExpectType, "expected type, got \""+p.lx.Peek().Text+"\"")
		}
		return nil, false
	}
	first := p.advance()
	t := &ast.TypeRef{Name: first.Text}
	start := first.Span
	for p.at(token.Dot) {
		p.advance()
		if !p.at(token.Ident) {
			if report {
				p.err(diag.SynExpectIdentifier, "expected identifier after '.' in type name")
			}
			return nil, false
		}
		t.Name += "." + p.advance().Text
	}
	if p.at(token.Lt) {
		args, ok := p.scanTypeArgs(report)
		if !ok {
			return nil, false
		}
		t.Args = args
	}
	if p.at(token.LBracket) {
		st := p.lx.Save()
		last := p.lastSpan
		p.advance()
		if p.at(token.RBracket) {
			p.advance()
			t.Array = true
		} else {
			// индексирование, а не массив
			p.lx.Restore(st)
			p.lastSpan = last
		}
	}
	t.Span = p.spanFrom(start)
	return t, true
}

// scanTypeArgs — <Type, ...>
func (p *Parser) scanTypeArgs(report bool) ([]*ast.TypeRef, bool) {
	p.advance()
	var args []*ast.TypeRef
	for {
		a, ok := p.scanType(report)
		if !ok {
			return nil, false
		}
		args = append(args, a)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if !p.at(token.Gt) {
		if report {
			p.err(diag.SynUnexpectedToken, "expected '>' to close type arguments")
		}
		return nil, false
	}
	p.advance()
	return args, true
}

// tryTypeArgsBeforeCall speculatively parses `<T,...>` that must be followed
// by '('; on failure the lexer is rewound and nil is returned.
func (p *Parser) tryTypeArgsBeforeCall() []*ast.TypeRef {
	st := p.lx.Save()
	last := p.lastSpan
	args, ok := p.scanTypeArgs(false)
	if ok && p.at(token.LParen) {
		return args
	}
	p.lx.Restore(st)
	p.lastSpan = last
	return nil
}

// looksLikeDecl reports whether the cursor starts `Type name`.
func (p *Parser) looksLikeDecl() bool {
	if !p.at(token.Ident) {
		return false
	}
	st := p.lx.Save()
	last := p.lastSpan
	_, ok := p.scanType(false)
	ok = ok && p.at(token.Ident)
	p.lx.Restore(st)
	p.lastSpan = last
	return ok
}
