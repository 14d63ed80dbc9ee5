// Package token defines the lexical vocabulary of .ys source files.
package token

import "yieldc/internal/source"

// Token is a single significant lexeme. Text is the exact source slice,
// except for identifiers, which are NFC-normalised.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

func (t Token) Is(k Kind) bool {
	return t.Kind == k
}
