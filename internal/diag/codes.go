package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Парсерные
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedBrace      Code = 2002
	SynExpectSemicolon    Code = 2003
	SynExpectIdentifier   Code = 2004
	SynExpectType         Code = 2005
	SynExpectExpression   Code = 2006
	SynUnexpectedTopLevel Code = 2007
	SynTryWithoutHandler  Code = 2008
	SynBadAssignTarget    Code = 2009
	SynModifierNotAllowed Code = 2010

	// Семантические
	SemaInfo                Code = 3000
	SemaUnresolvedSymbol    Code = 3001
	SemaDuplicateLocal      Code = 3002
	SemaDuplicateMember     Code = 3003
	SemaUnknownType         Code = 3004
	SemaYieldInVoidMethod   Code = 3005
	SemaBreakOutsideLoop    Code = 3006
	SemaThisInStaticContext Code = 3007

	// I/O
	IOLoadFileError Code = 4001

	// Iterator lowering
	IterInfo                 Code = 5000
	IterAliasParam           Code = 5001
	IterUnsupportedConstruct Code = 5002
	IterYieldInTryCatch      Code = 5003
	IterYieldInCatch         Code = 5004
	IterYieldInFinally       Code = 5005
	IterReturnInIterator     Code = 5006
	IterBadReturnType        Code = 5007
	IterInternal             Code = 5099
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Malformed number literal",

		SynInfo:               "Syntax information",
		SynUnexpectedToken:    "Unexpected token",
		SynUnclosedBrace:      "Unclosed brace",
		SynExpectSemicolon:    "Missing semicolon",
		SynExpectIdentifier:   "Expected identifier",
		SynExpectType:         "Expected type",
		SynExpectExpression:   "Expected expression",
		SynUnexpectedTopLevel: "Unexpected top-level declaration",
		SynTryWithoutHandler:  "Try statement without catch or finally",
		SynBadAssignTarget:    "Invalid assignment target",
		SynModifierNotAllowed: "Modifier not allowed here",

		SemaInfo:                "Semantic information",
		SemaUnresolvedSymbol:    "Unresolved symbol",
		SemaDuplicateLocal:      "Duplicate local variable",
		SemaDuplicateMember:     "Duplicate member",
		SemaUnknownType:         "Unknown type",
		SemaYieldInVoidMethod:   "Yield in method without enumerable return type",
		SemaBreakOutsideLoop:    "Break or continue outside loop",
		SemaThisInStaticContext: "'this' used in static context",

		IOLoadFileError: "Failed to load file",

		IterInfo:                 "Iterator lowering information",
		IterAliasParam:           "Iterator cannot capture ref/out parameter",
		IterUnsupportedConstruct: "Suspension point inside unsupported construct",
		IterYieldInTryCatch:      "Yield inside try block with catch clause",
		IterYieldInCatch:         "Yield inside catch clause",
		IterYieldInFinally:       "Yield inside finally clause",
		IterReturnInIterator:     "Return statement inside iterator",
		IterBadReturnType:        "Iterator return type is not enumerable",
		IterInternal:             "Internal iterator lowering error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("ITR%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
