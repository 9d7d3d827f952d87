package model

import "weave/internal/source"

// File is the analysed form of one IDL file.
type File struct {
	Source     source.FileID
	Path       string
	Package    string
	Imports    []*Import
	Structs    []*Struct
	Externs    []*Extern
	Interfaces []*InterfacePlan
	Contracts  []*ContractPlan
}

// Import is a resolved `import` clause.
type Import struct {
	Name    string // visible name
	Path    string // as written
	Package string // the imported file's package
	File    *File
}

// InterfacePlan is everything generated for one interface.
type InterfacePlan struct {
	Interface *Interface
	Unions    map[Kind]*Union
}

// ContractPlan is everything generated for one contract.
type ContractPlan struct {
	Contract   *Contract
	Unions     map[Kind]*Union
	Composites map[Kind]*Composite
	Replies    *ReplyTable
	Entry      *EntryPlan
}

// Interface finds an interface declared in the file.
func (f *File) Interface(name string) *InterfacePlan {
	for _, p := range f.Interfaces {
		if p.Interface.Name == name {
			return p
		}
	}
	return nil
}

// Contract finds a contract declared in the file.
func (f *File) Contract(name string) *ContractPlan {
	for _, p := range f.Contracts {
		if p.Contract.Name == name {
			return p
		}
	}
	return nil
}

// Struct finds a struct declared in the file.
func (f *File) Struct(name string) *Struct {
	for _, s := range f.Structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Extern finds an extern declared in the file.
func (f *File) Extern(name string) *Extern {
	for _, e := range f.Externs {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Import finds an import by visible name.
func (f *File) Import(name string) *Import {
	for _, im := range f.Imports {
		if im.Name == name {
			return im
		}
	}
	return nil
}
