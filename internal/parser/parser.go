// Package parser turns .ys token streams into ast.Unit trees.
package parser

import (
	"slices"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/lexer"
	"yieldc/internal/source"
	"yieldc/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Unit   *ast.Unit
	Errors uint
}

// Parser — состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer // поток токенов (Peek/Next)
	fs       *source.FileSet
	file     source.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	// className is the class being parsed; needed to recognise constructors.
	className string
}

// ParseFile — входная точка для разбора одного файла.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, opts Options) Result {
	empty := lx.EmptySpan()
	p := Parser{
		lx:       lx,
		fs:       fs,
		file:     empty.File,
		opts:     opts,
		lastSpan: empty,
	}
	unit := &ast.Unit{File: p.file}
	if fs != nil {
		if f := fs.Get(p.file); f != nil {
			unit.Path = f.Path
		}
	}
	p.parseUnit(unit)
	return Result{Unit: unit, Errors: p.opts.CurrentErrors}
}

// Parse lexes and parses the file id of fs, reporting into r.
func Parse(fs *source.FileSet, id source.FileID, r diag.Reporter) *ast.Unit {
	lx := lexer.New(fs.Get(id), r)
	return ParseFile(fs, lx, Options{Reporter: r}).Unit
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// atIdent matches a contextual keyword spelled as an identifier.
func (p *Parser) atIdent(text string) bool {
	t := p.lx.Peek()
	return t.Kind == token.Ident && t.Text == text
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseUnit — верхний уровень: [namespace] {using} {class}.
func (p *Parser) parseUnit(u *ast.Unit) {
	for p.at(token.KwUsing) {
		p.parseUsing(u)
	}
	if p.at(token.KwNamespace) {
		p.advance()
		name, ok := p.parseQualifiedName()
		if ok {
			u.Namespace = name
		}
		if p.at(token.LBrace) {
			p.advance()
			p.parseTopLevel(u, token.RBrace)
			p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close namespace")
			return
		}
		p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after namespace name")
	}
	p.parseTopLevel(u, token.EOF)
}

func (p *Parser) parseTopLevel(u *ast.Unit, end token.Kind) {
	for !p.at(end) && !p.at(token.EOF) {
		switch {
		case p.at(token.KwUsing):
			p.parseUsing(u)
		case p.at(token.KwClass), p.at(token.KwStatic), p.atModifier():
			if c, ok := p.parseClass(); ok {
				u.Types = append(u.Types, c)
			} else {
				p.resyncTop()
			}
		default:
			p.err(diag.SynUnexpectedTopLevel, "unexpected top-level construct \""+p.lx.Peek().Text+"\"")
			p.advance()
			p.resyncTop()
		}
	}
}

func (p *Parser) parseUsing(u *ast.Unit) {
	p.advance()
	if name, ok := p.parseQualifiedName(); ok {
		u.Usings = append(u.Usings, name)
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after using directive")
}

// resyncTop — прокручиваем до начала следующего класса или EOF.
func (p *Parser) resyncTop() {
	for !p.atOr(token.EOF, token.KwClass, token.KwStatic) {
		p.advance()
	}
}

// parseIdent — ожидает Ident; на ошибке репорт SynExpectIdentifier.
func (p *Parser) parseIdent() (token.Token, bool) {
	if p.at(token.Ident) {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return token.Token{}, false
}

func (p *Parser) parseQualifiedName() (string, bool) {
	tok, ok := p.parseIdent()
	if !ok {
		return "", false
	}
	name := tok.Text
	for p.at(token.Dot) {
		p.advance()
		next, ok := p.parseIdent()
		if !ok {
			return name, false
		}
		name += "." + next.Text
	}
	return name, true
}
