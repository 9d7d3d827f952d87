package token

var keywords = map[string]Kind{
	"package":   KwPackage,
	"import":    KwImport,
	"as":        KwAs,
	"extern":    KwExtern,
	"type":      KwType,
	"struct":    KwStruct,
	"interface": KwInterface,
	"contract":  KwContract,
	"fn":        KwFn,
	"where":     KwWhere,
	"true":      KwTrue,
	"false":     KwFalse,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
