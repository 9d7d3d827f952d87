package driver

import (
	"fortio.org/safecast"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/parser"
	"weave/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	AST     *ast.File
	Bag     *diag.Bag
}

// Parse parses one file without resolving its imports.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}

	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	result := parser.ParseSource(fs, fileID, parser.Options{
		Reporter:  diag.BagReporter{Bag: bag},
		MaxErrors: maxErrors,
	})
	bag.Sort()

	return &ParseResult{
		FileSet: fs,
		File:    fs.Get(fileID),
		AST:     result.File,
		Bag:     bag,
	}, nil
}
