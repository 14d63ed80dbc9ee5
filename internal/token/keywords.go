package token

var keywords = map[string]Kind{
	"namespace": KwNamespace,
	"using":     KwUsing,
	"class":     KwClass,
	"static":    KwStatic,
	"var":       KwVar,
	"void":      KwVoid,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"do":        KwDo,
	"for":       KwFor,
	"foreach":   KwForeach,
	"in":        KwIn,
	"break":     KwBreak,
	"continue":  KwContinue,
	"return":    KwReturn,
	"yield":     KwYield,
	"try":       KwTry,
	"catch":     KwCatch,
	"finally":   KwFinally,
	"throw":     KwThrow,
	"switch":    KwSwitch,
	"case":      KwCase,
	"default":   KwDefault,
	"new":       KwNew,
	"this":      KwThis,
	"true":      KwTrue,
	"false":     KwFalse,
	"null":      KwNull,
	"ref":       KwRef,
	"out":       KwOut,
}

// LookupKeyword returns the keyword kind for ident; keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
