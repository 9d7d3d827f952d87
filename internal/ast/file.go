package ast

import "weave/internal/source"

// Ident is a name with its location.
type Ident struct {
	Name string
	Span source.Span
}

func (id *Ident) String() string {
	if id == nil {
		return ""
	}
	return id.Name
}

// File is the root of one parsed .wv file.
type File struct {
	Source  source.FileID
	Package *Ident
	Imports []*Import
	Decls   []Decl
	Span    source.Span
}

// Import is `import "path.wv" [as alias];`.
type Import struct {
	Path     string
	PathSpan source.Span
	Alias    *Ident
	Span     source.Span
}

// Name is the identifier the import is visible under: the alias if given,
// otherwise the file stem ("../cw1.wv" -> "cw1").
func (im *Import) Name() string {
	if im.Alias != nil {
		return im.Alias.Name
	}
	base := im.Path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// Decl is a top-level declaration.
type Decl interface {
	DeclName() *Ident
	DeclSpan() source.Span
	declNode()
}
