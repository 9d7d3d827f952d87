// Package sema lowers parsed declarations into the semantic model and runs
// every structural and constraint check before emission.
//
// Declarations are independent: an error inside one contract drops that
// contract's plan only, the rest of the file is still analysed.
package sema

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/source"
)

// AliasPolicy decides what happens when two composed interfaces share an alias.
type AliasPolicy uint8

const (
	// AliasReject reports ConAliasCollision.
	AliasReject AliasPolicy = iota
	// AliasPermit keeps both wrappers; decoding tries them in declaration order.
	AliasPermit
)

// ParseAliasPolicy parses the manifest / flag spelling.
func ParseAliasPolicy(s string) (AliasPolicy, error) {
	switch s {
	case "", "reject":
		return AliasReject, nil
	case "permit":
		return AliasPermit, nil
	}
	return AliasReject, fmt.Errorf("unknown alias collision policy %q (want reject or permit)", s)
}

func (p AliasPolicy) String() string {
	if p == AliasPermit {
		return "permit"
	}
	return "reject"
}

// Options configure a semantic pass over a file.
type Options struct {
	Reporter diag.Reporter
	// Imports maps import paths, as written in the file, to analysed files.
	Imports        map[string]*model.File
	AliasCollision AliasPolicy
}

// Result is the analysed file plus the names of declarations dropped
// because of errors.
type Result struct {
	File   *model.File
	Failed []string
}

// Analyze lowers and checks every declaration of f.
func Analyze(f *ast.File, path string, opts Options) Result {
	a := &analyzer{
		reporter: opts.Reporter,
		opts:     opts,
		ast:      f,
		out:      &model.File{Source: f.Source, Path: path},
		decls:    make(map[string]ast.Decl),
	}
	if f.Package != nil {
		a.out.Package = f.Package.Name
	}
	a.run()
	return Result{File: a.out, Failed: a.failed}
}

type analyzer struct {
	reporter diag.Reporter
	opts     Options
	ast      *ast.File
	out      *model.File
	decls    map[string]ast.Decl
	failed   []string
}

func (a *analyzer) run() {
	// 1. Collect top-level names.
	a.collect()
	// 2. Resolve imports against already analysed files.
	a.resolveImports()
	// 3. Data types first: unions and handlers refer to them.
	for _, d := range a.ast.Decls {
		if !a.owns(d) {
			continue
		}
		switch d := d.(type) {
		case *ast.ExternDecl:
			a.lowerExtern(d)
		case *ast.StructDecl:
			a.guard(d.Name.Name, func(r *declReporter) bool { return a.lowerStruct(r, d) })
		}
	}
	// 4. Interfaces, then contracts (which compose interfaces).
	for _, d := range a.ast.Decls {
		if d, ok := d.(*ast.InterfaceDecl); ok && a.owns(d) {
			a.guard(d.Name.Name, func(r *declReporter) bool { return a.analyzeInterface(r, d) })
		}
	}
	for _, d := range a.ast.Decls {
		if d, ok := d.(*ast.ContractDecl); ok && a.owns(d) {
			a.guard(d.Name.Name, func(r *declReporter) bool { return a.analyzeContract(r, d) })
		}
	}
}

// owns reports whether d is the declaration registered under its name.
func (a *analyzer) owns(d ast.Decl) bool {
	return a.decls[d.DeclName().Name] == d
}

// guard runs fn with a reporter that remembers whether an error was
// reported; a declaration with errors produces no artifacts.
func (a *analyzer) guard(name string, fn func(r *declReporter) bool) {
	r := &declReporter{next: a.reporter}
	if !fn(r) || r.errors > 0 {
		a.failed = append(a.failed, name)
	}
}

type declReporter struct {
	next   diag.Reporter
	errors int
}

func (r *declReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if sev == diag.SevError {
		r.errors++
	}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}

func (r *declReporter) failed() bool { return r.errors > 0 }

func (r *declReporter) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(r, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (a *analyzer) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(a.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (a *analyzer) collect() {
	for _, d := range a.ast.Decls {
		name := d.DeclName()
		if _, builtin := model.Builtins[name.Name]; builtin || isContainer(name.Name) {
			a.errorf(diag.SemDuplicateDecl, name.Span, "%s shadows a builtin type", name.Name)
			continue
		}
		if prev, ok := a.decls[name.Name]; ok {
			diag.ReportError(a.reporter, diag.SemDuplicateDecl, name.Span, fmt.Sprintf("%s is declared more than once", name.Name)).
				WithNote(prev.DeclSpan(), "previous declaration").
				Emit()
			a.failed = append(a.failed, name.Name)
			continue
		}
		a.decls[name.Name] = d
	}
}

func (a *analyzer) resolveImports() {
	for _, im := range a.ast.Imports {
		dep := a.opts.Imports[im.Path]
		if dep == nil {
			a.errorf(diag.SemUnknownImport, im.PathSpan, "import %q was not loaded", im.Path)
			continue
		}
		if prev := a.out.Import(im.Name()); prev != nil {
			a.errorf(diag.SemDuplicateDecl, im.Span, "import name %s is already used by %q", im.Name(), prev.Path)
			continue
		}
		a.out.Imports = append(a.out.Imports, &model.Import{
			Name:    im.Name(),
			Path:    im.Path,
			Package: dep.Package,
			File:    dep,
		})
	}
}

// qualifier returns the model package tag for a declaration living in dep.
func (a *analyzer) qualifier(dep *model.File) string {
	if dep.Package == a.out.Package {
		return ""
	}
	return dep.Package
}
