package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	StringLit

	KwNamespace
	KwUsing
	KwClass
	KwStatic
	KwVar
	KwVoid
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwForeach
	KwIn
	KwBreak
	KwContinue
	KwReturn
	KwYield
	KwTry
	KwCatch
	KwFinally
	KwThrow
	KwSwitch
	KwCase
	KwDefault
	KwNew
	KwThis
	KwTrue
	KwFalse
	KwNull
	KwRef
	KwOut

	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	Semicolon
	Comma
	Dot
	Colon
	Lt         // <
	Gt         // >
	LtEq       // <=
	GtEq       // >=
	EqEq       // ==
	BangEq     // !=
	Assign     // =
	PlusAssign // +=
	MinusAssign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	AndAnd
	OrOr
	PlusPlus
	MinusMinus
)

var kindNames = [...]string{
	Invalid:     "invalid",
	EOF:         "end of file",
	Ident:       "identifier",
	IntLit:      "integer literal",
	StringLit:   "string literal",
	KwNamespace: "namespace",
	KwUsing:     "using",
	KwClass:     "class",
	KwStatic:    "static",
	KwVar:       "var",
	KwVoid:      "void",
	KwIf:        "if",
	KwElse:      "else",
	KwWhile:     "while",
	KwDo:        "do",
	KwFor:       "for",
	KwForeach:   "foreach",
	KwIn:        "in",
	KwBreak:     "break",
	KwContinue:  "continue",
	KwReturn:    "return",
	KwYield:     "yield",
	KwTry:       "try",
	KwCatch:     "catch",
	KwFinally:   "finally",
	KwThrow:     "throw",
	KwSwitch:    "switch",
	KwCase:      "case",
	KwDefault:   "default",
	KwNew:       "new",
	KwThis:      "this",
	KwTrue:      "true",
	KwFalse:     "false",
	KwNull:      "null",
	KwRef:       "ref",
	KwOut:       "out",
	LBrace:      "{",
	RBrace:      "}",
	LParen:      "(",
	RParen:      ")",
	LBracket:    "[",
	RBracket:    "]",
	Semicolon:   ";",
	Comma:       ",",
	Dot:         ".",
	Colon:       ":",
	Lt:          "<",
	Gt:          ">",
	LtEq:        "<=",
	GtEq:        ">=",
	EqEq:        "==",
	BangEq:      "!=",
	Assign:      "=",
	PlusAssign:  "+=",
	MinusAssign: "-=",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Slash:       "/",
	Percent:     "%",
	Bang:        "!",
	AndAnd:      "&&",
	OrOr:        "||",
	PlusPlus:    "++",
	MinusMinus:  "--",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwNamespace && k <= KwOut
}
