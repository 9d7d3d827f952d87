package dag

import (
	"fmt"
	"slices"
	"strings"

	"weave/internal/diag"
	"weave/internal/project"
)

// Graph stores edges from a dependency to the files importing it, so a
// Kahn ordering emits dependencies first.
type Graph struct {
	Edges   [][]NodeID // Edges[dep] = []importer
	Indeg   []int      // число присутствующих зависимостей у файла
	Present []bool     // признак, что файл реально загружен (а не только импортируется)
}

type Node struct {
	Meta     project.FileMeta
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

type Slot struct {
	Meta     project.FileMeta
	Reporter diag.Reporter
	Present  bool
	Broken   bool
	InCycle  bool // выставляет ReportCycles
	FirstErr *diag.Diagnostic
}

func BuildGraph(idx Index, nodes []Node) (Graph, []Slot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]Slot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Path = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Path == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Path]
		if !ok || slots[int(id)].Present {
			// индекс строится на тех же метаданных; повтор пути игнорируем
			continue
		}
		slot := &slots[int(id)]
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[NodeID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			if dep.Resolved == "" {
				report(slot.Reporter, diag.PrjMissingImport, dep,
					fmt.Sprintf("%s imports %q, which was not found", slot.Meta.Path, dep.Path))
				continue
			}
			toID, ok := idx.NameToID[dep.Resolved]
			if !ok {
				continue
			}
			if NodeID(from) == toID {
				report(slot.Reporter, diag.PrjImportCycle, dep,
					fmt.Sprintf("%s imports itself", slot.Meta.Path))
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}
			if !g.Present[int(toID)] {
				report(slot.Reporter, diag.PrjMissingImport, dep,
					fmt.Sprintf("%s imports %q, which was not loaded", slot.Meta.Path, idx.IDToName[int(toID)]))
				continue
			}
			g.Edges[int(toID)] = append(g.Edges[int(toID)], NodeID(from))
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}

	return g, slots
}

func report(r diag.Reporter, code diag.Code, imp project.ImportMeta, msg string) {
	if r == nil {
		return
	}
	r.Report(code, diag.SevError, imp.Span, msg, nil, nil)
}

// ReportCycles pins an error on every file left in a cycle and marks its slot.
func ReportCycles(idx Index, slots []Slot, topo Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slots[int(id)].InCycle = true
		slot := slots[int(id)]
		if !slot.Present || slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("%s participates in an import cycle: %s", slot.Meta.Path, summary)
		slot.Reporter.Report(diag.PrjImportCycle, diag.SevError, slot.Meta.Span, msg, nil, nil)
	}
}

// ReportBrokenDeps reports imports of files that failed, once per import.
// Imports between files of a cycle are left to the cycle diagnostic.
func ReportBrokenDeps(idx Index, slots []Slot) {
	for i := range slots {
		slotFrom := &slots[i]
		if !slotFrom.Present || slotFrom.Reporter == nil || len(slotFrom.Meta.Imports) == 0 {
			continue
		}
		emitted := make(map[string]struct{}, len(slotFrom.Meta.Imports))
		for _, imp := range slotFrom.Meta.Imports {
			toID, ok := idx.NameToID[imp.Resolved]
			if !ok {
				continue
			}
			depSlot := slots[int(toID)]
			if !depSlot.Broken || (slotFrom.InCycle && depSlot.InCycle) {
				continue
			}
			key := imp.Resolved + "|" + imp.Span.String()
			if _, seen := emitted[key]; seen {
				continue
			}
			emitted[key] = struct{}{}

			notes := []diag.Note(nil)
			if depSlot.FirstErr != nil {
				notes = append(notes, diag.Note{
					Span: depSlot.FirstErr.Primary,
					Msg:  fmt.Sprintf("first error in dependency: %s", depSlot.FirstErr.Message),
				})
			}

			msg := fmt.Sprintf("imported file %q has errors", imp.Path)
			slotFrom.Reporter.Report(diag.PrjBrokenDependency, diag.SevError, imp.Span, msg, notes, nil)
		}
	}
}
