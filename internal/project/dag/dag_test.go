package dag

import (
	"slices"
	"testing"

	"weave/internal/diag"
	"weave/internal/project"
	"weave/internal/source"
)

func idsToNames(idx Index, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func batchesToNames(idx Index, batches [][]NodeID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idsToNames(idx, batch)
	}
	return out
}

func imp(path string) project.ImportMeta {
	return project.ImportMeta{Path: path, Resolved: path}
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []project.FileMeta{
		{
			Path:    "app/counter.wv",
			Imports: []project.ImportMeta{imp("lib/cw1.wv"), imp("lib/whitelist.wv")},
		},
		{Path: "lib/whitelist.wv"},
	}

	idx := BuildIndex(metas)

	wantNames := []string{"app/counter.wv", "lib/cw1.wv", "lib/whitelist.wv"}
	if !slices.Equal(idx.IDToName, wantNames) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, wantNames)
	}
	for i, want := range wantNames {
		if id, ok := idx.NameToID[want]; !ok || int(id) != i {
			t.Fatalf("idx.NameToID[%q] = %v, want %d", want, id, i)
		}
	}
}

func TestBuildGraphReportsMissingImports(t *testing.T) {
	appMeta := project.FileMeta{
		Path: "app.wv",
		Span: source.Span{File: 1, Start: 0, End: 10},
		Imports: []project.ImportMeta{
			{Path: "core", Resolved: "core.wv", Span: source.Span{File: 1, Start: 1, End: 4}},
			{Path: "util", Resolved: "util.wv", Span: source.Span{File: 1, Start: 5, End: 8}},
			{Path: "nowhere", Span: source.Span{File: 1, Start: 8, End: 9}},
		},
	}
	coreMeta := project.FileMeta{
		Path:    "core.wv",
		Span:    source.Span{File: 2, Start: 0, End: 8},
		Imports: []project.ImportMeta{{Path: "util", Resolved: "util.wv", Span: source.Span{File: 2, Start: 2, End: 5}}},
	}

	bagApp := diag.NewBag(10)
	bagCore := diag.NewBag(10)
	nodes := []Node{
		{Meta: appMeta, Reporter: &diag.BagReporter{Bag: bagApp}},
		{Meta: coreMeta, Reporter: &diag.BagReporter{Bag: bagCore}},
	}
	idx := BuildIndex([]project.FileMeta{appMeta, coreMeta})
	graph, _ := BuildGraph(idx, nodes)

	appID := idx.NameToID["app.wv"]
	coreID := idx.NameToID["core.wv"]
	utilID := idx.NameToID["util.wv"]

	if importers := graph.Edges[int(coreID)]; !slices.Equal(importers, []NodeID{appID}) {
		t.Fatalf("core importers = %v, want [%v]", importers, appID)
	}
	if graph.Indeg[int(appID)] != 1 || graph.Indeg[int(coreID)] != 0 {
		t.Fatalf("indegrees = %v", graph.Indeg)
	}
	if !graph.Present[int(appID)] || !graph.Present[int(coreID)] || graph.Present[int(utilID)] {
		t.Fatalf("unexpected Present flags: %v", graph.Present)
	}

	// util.wv not loaded, nowhere unresolved.
	if got := bagApp.Codes(); !slices.Equal(got, []diag.Code{diag.PrjMissingImport, diag.PrjMissingImport}) {
		t.Fatalf("app codes = %v", got)
	}
	if got := bagCore.Codes(); !slices.Equal(got, []diag.Code{diag.PrjMissingImport}) {
		t.Fatalf("core codes = %v", got)
	}
}

func TestBuildGraphSelfImport(t *testing.T) {
	meta := project.FileMeta{Path: "a.wv", Imports: []project.ImportMeta{imp("a.wv")}}
	bag := diag.NewBag(10)
	idx := BuildIndex([]project.FileMeta{meta})
	graph, _ := BuildGraph(idx, []Node{{Meta: meta, Reporter: diag.BagReporter{Bag: bag}}})
	if graph.Indeg[0] != 0 {
		t.Fatalf("self import must not add an edge")
	}
	if got := bag.Codes(); !slices.Equal(got, []diag.Code{diag.PrjImportCycle}) {
		t.Fatalf("codes = %v", got)
	}
}

func TestToposortKahnBatches(t *testing.T) {
	// counter imports cw1 and whitelist; whitelist imports cw1.
	metas := []project.FileMeta{
		{Path: "counter.wv", Imports: []project.ImportMeta{imp("cw1.wv"), imp("whitelist.wv")}},
		{Path: "cw1.wv"},
		{Path: "whitelist.wv", Imports: []project.ImportMeta{imp("cw1.wv")}},
		{Path: "alone.wv"},
	}
	nodes := make([]Node, len(metas))
	for i, m := range metas {
		nodes[i] = Node{Meta: m}
	}

	idx := BuildIndex(metas)
	graph, _ := BuildGraph(idx, nodes)
	topo := ToposortKahn(graph)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}

	wantOrder := []string{"alone.wv", "cw1.wv", "whitelist.wv", "counter.wv"}
	if got := idsToNames(idx, topo.Order); !slices.Equal(got, wantOrder) {
		t.Fatalf("order = %v, want %v", got, wantOrder)
	}
	want := [][]string{{"alone.wv", "cw1.wv"}, {"whitelist.wv"}, {"counter.wv"}}
	got := batchesToNames(idx, topo.Batches)
	if len(got) != len(want) {
		t.Fatalf("batches = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("batch[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 4}
	spanB := source.Span{File: 2, Start: 0, End: 4}
	metaA := project.FileMeta{Path: "a.wv", Span: spanA, Imports: []project.ImportMeta{{Path: "b", Resolved: "b.wv", Span: spanA}}}
	metaB := project.FileMeta{Path: "b.wv", Span: spanB, Imports: []project.ImportMeta{{Path: "a", Resolved: "a.wv", Span: spanB}}}

	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []Node{
		{Meta: metaA, Reporter: &diag.BagReporter{Bag: bagA}},
		{Meta: metaB, Reporter: &diag.BagReporter{Bag: bagB}},
	}

	idx := BuildIndex([]project.FileMeta{metaA, metaB})
	graph, slots := BuildGraph(idx, nodes)
	topo := ToposortKahn(graph)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected cycle with two files, got %+v", topo)
	}

	ReportCycles(idx, slots, *topo)

	if bagA.Len() != 1 || bagA.Items()[0].Code != diag.PrjImportCycle {
		t.Fatalf("a.wv diagnostics = %v", bagA.Items())
	}
	if bagB.Len() != 1 || bagB.Items()[0].Code != diag.PrjImportCycle {
		t.Fatalf("b.wv diagnostics = %v", bagB.Items())
	}
}

func TestReportBrokenDeps(t *testing.T) {
	first := diag.NewError(diag.SemUnknownType, source.Span{File: 2, Start: 3, End: 6}, "unknown type Foo")
	dep := project.FileMeta{Path: "cw1.wv"}
	user := project.FileMeta{Path: "counter.wv", Imports: []project.ImportMeta{
		{Path: "cw1.wv", Resolved: "cw1.wv", Span: source.Span{File: 1, Start: 0, End: 5}},
		{Path: "cw1.wv", Resolved: "cw1.wv", Span: source.Span{File: 1, Start: 0, End: 5}},
	}}
	bag := diag.NewBag(10)
	idx := BuildIndex([]project.FileMeta{dep, user})
	_, slots := BuildGraph(idx, []Node{
		{Meta: dep, Broken: true, FirstErr: &first},
		{Meta: user, Reporter: diag.BagReporter{Bag: bag}},
	})
	ReportBrokenDeps(idx, slots)
	if bag.Len() != 1 {
		t.Fatalf("expected one report per import site, got %v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.PrjBrokenDependency || len(d.Notes) != 1 || d.Notes[0].Span != first.Primary {
		t.Fatalf("broken dependency diagnostic = %+v", d)
	}
}

func TestReportBrokenDepsInsideCycle(t *testing.T) {
	first := diag.NewError(diag.SemUnknownType, source.Span{File: 3, Start: 0, End: 3}, "unknown type Foo")
	metaA := project.FileMeta{Path: "a.wv", Imports: []project.ImportMeta{imp("b.wv"), imp("d.wv")}}
	metaB := project.FileMeta{Path: "b.wv", Imports: []project.ImportMeta{imp("a.wv")}}
	metaD := project.FileMeta{Path: "d.wv"}
	bagA, bagB := diag.NewBag(10), diag.NewBag(10)

	idx := BuildIndex([]project.FileMeta{metaA, metaB, metaD})
	graph, slots := BuildGraph(idx, []Node{
		{Meta: metaA, Reporter: diag.BagReporter{Bag: bagA}},
		{Meta: metaB, Reporter: diag.BagReporter{Bag: bagB}},
		{Meta: metaD, Broken: true, FirstErr: &first},
	})
	topo := ToposortKahn(graph)
	ReportCycles(idx, slots, *topo)
	for _, id := range topo.Cycles {
		slots[int(id)].Broken = true
	}
	ReportBrokenDeps(idx, slots)

	if got := bagA.Codes(); !slices.Equal(got, []diag.Code{diag.PrjImportCycle, diag.PrjBrokenDependency}) {
		t.Fatalf("a.wv codes = %v", got)
	}
	if got := bagB.Codes(); !slices.Equal(got, []diag.Code{diag.PrjImportCycle}) {
		t.Fatalf("b.wv codes = %v", got)
	}
}
