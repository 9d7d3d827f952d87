package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	KwPackage   // package
	KwImport    // import
	KwAs        // as
	KwExtern    // extern
	KwType      // type
	KwStruct    // struct
	KwInterface // interface
	KwContract  // contract
	KwFn        // fn
	KwWhere     // where
	KwTrue      // true
	KwFalse     // false

	// IntLit is a decimal integer literal.
	IntLit
	// StringLit is a double-quoted string literal.
	StringLit

	At        // @
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Lt        // <
	Gt        // >
	Comma     // ,
	Semicolon // ;
	Colon     // :
	Dot       // .
	Assign    // =
	Arrow     // ->
	Question  // ?
	Plus      // +
	Amp       // &
	Underscore
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Ident:       "Ident",
	KwPackage:   "KwPackage",
	KwImport:    "KwImport",
	KwAs:        "KwAs",
	KwExtern:    "KwExtern",
	KwType:      "KwType",
	KwStruct:    "KwStruct",
	KwInterface: "KwInterface",
	KwContract:  "KwContract",
	KwFn:        "KwFn",
	KwWhere:     "KwWhere",
	KwTrue:      "KwTrue",
	KwFalse:     "KwFalse",
	IntLit:      "IntLit",
	StringLit:   "StringLit",
	At:          "At",
	LParen:      "LParen",
	RParen:      "RParen",
	LBrace:      "LBrace",
	RBrace:      "RBrace",
	LBracket:    "LBracket",
	RBracket:    "RBracket",
	Lt:          "Lt",
	Gt:          "Gt",
	Comma:       "Comma",
	Semicolon:   "Semicolon",
	Colon:       "Colon",
	Dot:         "Dot",
	Assign:      "Assign",
	Arrow:       "Arrow",
	Question:    "Question",
	Plus:        "Plus",
	Amp:         "Amp",
	Underscore:  "Underscore",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

var kindSpellings = map[Kind]string{
	At: "@", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Lt: "<", Gt: ">", Comma: ",",
	Semicolon: ";", Colon: ":", Dot: ".", Assign: "=", Arrow: "->",
	Question: "?", Plus: "+", Amp: "&", Underscore: "_",
	EOF: "end of file", Ident: "identifier", IntLit: "integer", StringLit: "string",
}

// Spelling returns the source form of punctuation and keywords,
// or a descriptive noun for token classes. Used in "expected ..." messages.
func (k Kind) Spelling() string {
	if s, ok := kindSpellings[k]; ok {
		return s
	}
	for word, kw := range keywords {
		if kw == k {
			return word
		}
	}
	return k.String()
}
