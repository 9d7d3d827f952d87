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
	LexBadEscape                Code = 1005

	// Grammar
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectSemicolon    Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectType         Code = 2004
	SynUnclosedDelimiter  Code = 2005
	SynUnexpectedTopLevel Code = 2006
	SynPackagePosition    Code = 2007
	SynUnknownAttribute   Code = 2010
	SynUnknownAttrArg     Code = 2011
	SynBadAttrShape       Code = 2012
	SynDuplicateKindTag   Code = 2013
	SynDuplicateAttrArg   Code = 2014
	SynAttrNotAllowed     Code = 2015
	SynBadStringLit       Code = 2016

	// Structural
	SemInfo                 Code = 3000
	SemMissingConstructor   Code = 3001
	SemConstructorParams    Code = 3002
	SemPatternParam         Code = 3003
	SemDuplicateVariant     Code = 3004
	SemCompositionCollision Code = 3005
	SemContextParam         Code = 3006
	SemUnknownType          Code = 3007
	SemUnknownInterface     Code = 3008
	SemQueryResponse        Code = 3009
	SemDuplicateDecl        Code = 3010
	SemBadReturnType        Code = 3011
	SemTypeArity            Code = 3012
	SemReplyRole            Code = 3013
	SemUnknownPlaceholder   Code = 3014
	SemDuplicateParam       Code = 3015
	SemOverrideKind         Code = 3016
	SemEntryGenerics        Code = 3017
	SemUnknownImport        Code = 3018
	SemUnknownGeneric       Code = 3019
	SemDuplicateField       Code = 3020
	SemKindNotAllowed       Code = 3021
	SemEntryPointsSkipped   Code = 3100
	SemQueryReturnMismatch  Code = 3101

	// Constraint
	ConInfo               Code = 4000
	ConUnusedConstraint   Code = 4001
	ConReplyFilterOverlap Code = 4002
	ConAmbiguousCustom    Code = 4003
	ConAliasCollision     Code = 4004
	ConUnknownBound       Code = 4005

	// IO
	IOLoadFileError Code = 5001
	IOWriteError    Code = 5002

	// Project
	PrjImportCycle      Code = 6001
	PrjMissingImport    Code = 6002
	PrjBrokenDependency Code = 6003
	PrjManifest         Code = 6004
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexBadEscape:                "Invalid escape sequence",

	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectSemicolon:    "Missing semicolon",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectType:         "Expected type",
	SynUnclosedDelimiter:  "Unclosed delimiter",
	SynUnexpectedTopLevel: "Unexpected item at top level",
	SynPackagePosition:    "Package clause must come first",
	SynUnknownAttribute:   "Unknown attribute",
	SynUnknownAttrArg:     "Unknown attribute argument",
	SynBadAttrShape:       "Malformed attribute",
	SynDuplicateKindTag:   "Duplicate message-kind tag",
	SynDuplicateAttrArg:   "Duplicate attribute argument",
	SynAttrNotAllowed:     "Attribute not allowed here",
	SynBadStringLit:       "Malformed string literal",

	SemInfo:                 "Semantic information",
	SemMissingConstructor:   "Missing constructor",
	SemConstructorParams:    "Constructor must take no parameters",
	SemPatternParam:         "Destructuring parameter in handler",
	SemDuplicateVariant:     "Duplicate variant name",
	SemCompositionCollision: "Colliding top-level variant",
	SemContextParam:         "Missing or mismatched context parameter",
	SemUnknownType:          "Unknown type",
	SemUnknownInterface:     "Unknown interface",
	SemQueryResponse:        "Missing query response type",
	SemDuplicateDecl:        "Duplicate declaration",
	SemBadReturnType:        "Invalid handler return type",
	SemTypeArity:            "Wrong number of type arguments",
	SemReplyRole:            "Invalid reply parameter role",
	SemUnknownPlaceholder:   "Unknown interface placeholder",
	SemDuplicateParam:       "Duplicate parameter name",
	SemOverrideKind:         "Invalid entry-point override",
	SemEntryGenerics:        "Invalid entry-point generics",
	SemUnknownImport:        "Unknown import",
	SemUnknownGeneric:       "Unknown generic parameter",
	SemDuplicateField:       "Duplicate field",
	SemKindNotAllowed:       "Message kind not allowed here",
	SemEntryPointsSkipped:   "Entry points not generated",
	SemQueryReturnMismatch:  "Query return type differs from declared response",

	ConInfo:               "Constraint information",
	ConUnusedConstraint:   "Constrained generic reaches no message",
	ConReplyFilterOverlap: "Overlapping reply filters",
	ConAmbiguousCustom:    "Ambiguous custom type",
	ConAliasCollision:     "Interface alias collision",
	ConUnknownBound:       "Unknown generic bound",

	IOLoadFileError: "Failed to load file",
	IOWriteError:    "Failed to write output",

	PrjImportCycle:      "Import cycle",
	PrjMissingImport:    "Imported file not found",
	PrjBrokenDependency: "Dependency has errors",
	PrjManifest:         "Invalid project manifest",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CON%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

// Category names the error class: lexical, grammar, structural, constraint, io or project.
func (c Code) Category() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return "lexical"
	case ic >= 2000 && ic < 3000:
		return "grammar"
	case ic >= 3000 && ic < 4000:
		return "structural"
	case ic >= 4000 && ic < 5000:
		return "constraint"
	case ic >= 5000 && ic < 6000:
		return "io"
	case ic >= 6000 && ic < 7000:
		return "project"
	}
	return "unknown"
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
