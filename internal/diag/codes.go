package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Семантические
	SemaInfo               Code = 3000
	SemaError              Code = 3001
	SemaDuplicateSymbol    Code = 3002
	SemaUnresolvedSymbol   Code = 3003
	SemaUnresolvedOverload Code = 3004
	SemaTypeMismatch       Code = 3005
	SemaRecursiveType      Code = 3006
	SemaSelfInheritance    Code = 3007
	SemaInheritanceCycle   Code = 3008
	SemaFieldRedefinition  Code = 3009
	SemaMissingReturn      Code = 3010
	SemaUnexpectedReturn   Code = 3011
	SemaAmbiguousType      Code = 3012
	SemaEntrypointExpected Code = 3013
	SemaInvariantViolation Code = 3014 // internal consistency check of the symbol table failed

	// Ввод/вывод и формат входного AST
	IOLoadFileError  Code = 4001
	IOMalformedInput Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		SemaInfo:               "Semantic information",
		SemaError:              "Semantic error",
		SemaDuplicateSymbol:    "Symbol already defined",
		SemaUnresolvedSymbol:   "Unresolved symbol",
		SemaUnresolvedOverload: "No matching overload",
		SemaTypeMismatch:       "Type mismatch",
		SemaRecursiveType:      "Recursive type",
		SemaSelfInheritance:    "Self inheritance forbidden",
		SemaInheritanceCycle:   "Inheritance cycle",
		SemaFieldRedefinition:  "Field redefinition",
		SemaMissingReturn:      "Missing return statement",
		SemaUnexpectedReturn:   "Unexpected return statement",
		SemaAmbiguousType:      "Ambiguous type",
		SemaEntrypointExpected: "Main class constructor expected",
		SemaInvariantViolation: "Symbol table invariant violated",
		IOLoadFileError:        "I/O error",
		IOMalformedInput:       "Malformed AST document",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
