// Package emit renders an analysed IDL file as Go source: message schemas,
// dispatchers, handler interfaces, proxies and entry points.
package emit

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"weave/internal/model"
)

// DefaultRuntime is the import path of the generated-code runtime.
const DefaultRuntime = "weave/runtime/wasmrt"

// Header is the first line of every generated file.
const Header = "Code generated by weave. DO NOT EDIT."

// Options control Go emission.
type Options struct {
	// Module is the Go import path prefix; IDL package p lands in Module/p.
	Module string
	// Runtime overrides DefaultRuntime.
	Runtime string
	// Source is the IDL path recorded in the header.
	Source string
}

// Emitter renders one analysed file.
type Emitter struct {
	file *model.File
	opts Options
	out  *jen.File
	rt   string
}

// EmitFile renders f and returns formatted Go source.
func EmitFile(f *model.File, opts Options) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("emit: nil file")
	}
	if f.Package == "" {
		return nil, fmt.Errorf("emit %s: file has no package clause", f.Path)
	}
	e := &Emitter{file: f, opts: opts, rt: opts.Runtime}
	if e.rt == "" {
		e.rt = DefaultRuntime
	}
	e.out = jen.NewFilePathName(e.pkgPath(f.Package), f.Package)
	e.out.HeaderComment(Header)
	if opts.Source != "" {
		e.out.HeaderComment("source: " + opts.Source)
	}
	e.out.ImportName(e.rt, path.Base(e.rt))
	for _, im := range f.Imports {
		e.out.ImportName(e.pkgPath(im.Package), im.Package)
	}

	e.emitExterns()
	e.emitStructs()
	for _, ip := range f.Interfaces {
		e.emitInterface(ip)
	}
	for _, cp := range f.Contracts {
		e.emitContract(cp)
	}

	var buf bytes.Buffer
	if err := e.out.Render(&buf); err != nil {
		return nil, fmt.Errorf("emit %s: %w", f.Path, err)
	}
	return Format(OutputName(f), buf.Bytes())
}

// Format runs the goimports pass over generated source. Imports are
// already complete, so only grouping and layout change.
func Format(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	return out, nil
}

// OutputName is the path of the generated file relative to the output
// root: <package>/<file>.gen.go.
func OutputName(f *model.File) string {
	base := path.Base(strings.ReplaceAll(f.Path, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	return path.Join(f.Package, base+".gen.go")
}

func (e *Emitter) pkgPath(pkg string) string {
	if e.opts.Module == "" {
		return pkg
	}
	return e.opts.Module + "/" + pkg
}

func (e *Emitter) emitInterface(ip *model.InterfacePlan) {
	e.emitUnions(ip.Interface.Name, ip.Unions)
	e.emitHandlerInterface(ip)
	e.emitInterfaceDispatchers(ip)
	e.emitInterfaceProxy(ip)
}

func (e *Emitter) emitContract(cp *model.ContractPlan) {
	c := cp.Contract
	e.emitUnions(c.Name, cp.Unions)
	for _, k := range model.MsgKinds {
		if comp := cp.Composites[k]; wrapped(comp) {
			e.emitComposite(comp)
		}
	}
	e.emitHandlersInterface(cp)
	e.emitContractDispatchers(cp)
	e.emitReplies(cp)
	e.emitContractProxy(cp)
	e.emitEntryPoints(cp)
}

// comment forwards IDL doc lines.
func comment(g *jen.Group, lines []string) {
	for _, l := range lines {
		g.Comment(l)
	}
}
