package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"yieldc/internal/diag"
	"yieldc/internal/source"
	"yieldc/internal/token"
)

type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     *token.Token // 1 элементный буфер для токена
}

// New creates a lexer over file. reporter may be nil; errors are then dropped
// but lexing continues.
func New(file *source.File, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{
		file:     file,
		cursor:   NewCursor(file),
		reporter: reporter,
	}
}

// Next возвращает следующий значимый токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipTrivia()
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '_' || ch >= utf8.RuneSelf || isASCIILetter(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// EmptySpan is a zero-width span at the current offset.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// Save and Restore let the parser backtrack over speculative parses
// (generic argument lists look like comparisons).
type State struct {
	off  uint32
	look *token.Token
}

func (lx *Lexer) Save() State {
	return State{off: lx.cursor.Off, look: lx.look}
}

func (lx *Lexer) Restore(s State) {
	lx.cursor.Off = s.off
	lx.look = s.look
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	lx.reporter.Report(code, diag.SevError, sp, msg, nil)
}

// skipTrivia пропускает пробелы, переводы строк и комментарии.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.cursor.Bump()
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.cursor.Bump()
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.report(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < utf8.RuneSelf {
			if b != '_' && !isASCIILetter(b) && !isDec(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		lx.cursor.Off += uint32(size) //nolint:gosec // size is 1..4
	}
	sp := lx.cursor.SpanFrom(start)
	if sp.Empty() {
		// одиночный не-буквенный unicode символ
		_, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
		lx.cursor.Off += uint32(size) //nolint:gosec // size is 1..4
		sp = lx.cursor.SpanFrom(start)
		lx.report(diag.LexUnknownChar, sp, "unknown character "+string(lx.file.Content[sp.Start:sp.End]))
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	text := string(lx.file.Content[sp.Start:sp.End])
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: norm.NFC.String(text)}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
	kind := token.IntLit
	if b := lx.cursor.Peek(); b == '_' || isASCIILetter(b) {
		for isDec(lx.cursor.Peek()) || isASCIILetter(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
		lx.report(diag.LexBadNumber, lx.cursor.SpanFrom(start), "malformed number literal")
		kind = token.Invalid
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanString keeps the quotes and escapes in Text; the parser unquotes.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == '"' {
			break
		}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Bump()
	var kind token.Kind
	switch b {
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	case ':':
		kind = token.Colon
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '<':
		kind = lx.pick('=', token.LtEq, token.Lt)
	case '>':
		// '>=' only; '>>' is never produced so that nested generics close cleanly
		kind = lx.pick('=', token.GtEq, token.Gt)
	case '=':
		kind = lx.pick('=', token.EqEq, token.Assign)
	case '!':
		kind = lx.pick('=', token.BangEq, token.Bang)
	case '+':
		switch {
		case lx.cursor.Eat('+'):
			kind = token.PlusPlus
		case lx.cursor.Eat('='):
			kind = token.PlusAssign
		default:
			kind = token.Plus
		}
	case '-':
		switch {
		case lx.cursor.Eat('-'):
			kind = token.MinusMinus
		case lx.cursor.Eat('='):
			kind = token.MinusAssign
		default:
			kind = token.Minus
		}
	case '&':
		if lx.cursor.Eat('&') {
			kind = token.AndAnd
		}
	case '|':
		if lx.cursor.Eat('|') {
			kind = token.OrOr
		}
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if kind == token.Invalid {
		lx.report(diag.LexUnknownChar, sp, "unknown character "+text)
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}

func (lx *Lexer) pick(next byte, yes, no token.Kind) token.Kind {
	if lx.cursor.Eat(next) {
		return yes
	}
	return no
}

func isDec(b byte) bool {
	return b >= '0' && b <= '9'
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
