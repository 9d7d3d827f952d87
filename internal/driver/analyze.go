package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/project"
	"weave/internal/project/dag"
	"weave/internal/sema"
	"weave/internal/source"
	"weave/internal/trace"
)

// Options configure Analyze.
type Options struct {
	// BaseDir is used for relative path display.
	BaseDir string
	// Roots are searched for imports after the importing file's directory.
	Roots          []string
	MaxDiagnostics int
	// Jobs bounds parallelism; 0 means GOMAXPROCS.
	Jobs           int
	AliasCollision sema.AliasPolicy
	Observer       PhaseObserver
	OnFile         FileObserver
}

// FileResult is everything known about one IDL file after analysis.
type FileResult struct {
	Path   string
	FileID source.FileID
	AST    *ast.File
	Model  *model.File
	Bag    *diag.Bag
	Meta   project.FileMeta
	// Broken is set when the file has errors or depends on a broken file.
	Broken bool
	// Skipped files never reached sema: parse errors, import cycles or
	// broken dependencies.
	Skipped bool
	// Failed lists declarations sema dropped because of errors.
	Failed []string
}

// Result is the outcome of analysing a set of files and their imports.
type Result struct {
	FileSet *source.FileSet
	// Files in load order: requested files first, discovered imports after.
	Files []*FileResult
	// Order lists analysed files, dependencies first.
	Order []*FileResult
	// Bag holds every diagnostic, sorted.
	Bag    *diag.Bag
	Cyclic bool

	opts   Options
	byPath map[string]*FileResult
}

// File looks a result up by its normalized path.
func (r *Result) File(path string) *FileResult {
	if r == nil {
		return nil
	}
	if n, err := project.NormalizePath(path); err == nil {
		path = n
	}
	return r.byPath[path]
}

// Analyze loads, parses and analyses paths together with every file they
// import, in dependency batches.
func Analyze(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "analyze")
	defer span.End("")

	obs := observers{phase: opts.Observer, file: opts.OnFile}
	res := &Result{
		FileSet: source.NewFileSetWithBase(opts.BaseDir),
		opts:    opts,
		byPath:  make(map[string]*FileResult, len(paths)),
	}
	roots := make([]string, 0, len(opts.Roots))
	for _, r := range opts.Roots {
		if n, err := project.NormalizePath(filepath.ToSlash(r)); err == nil {
			roots = append(roots, n)
		}
	}

	// Загрузка и парсинг волнами: импорты, найденные на диске, дочитываются.
	pending := paths
	for len(pending) > 0 {
		endLoad := obs.begin(PhaseLoad)
		batch, err := res.load(pending)
		endLoad()
		if err != nil {
			return nil, err
		}
		endParse := obs.begin(PhaseParse)
		if err := parseAll(ctx, res.FileSet, batch, opts, obs); err != nil {
			return nil, err
		}
		endParse()
		pending = res.resolveImports(batch, roots)
	}

	endGraph := obs.begin(PhaseGraph)
	idx, slots, topo := res.buildGraph()
	endGraph()

	endSema := obs.begin(PhaseSema)
	err := res.analyzeBatches(ctx, idx, slots, topo, obs)
	endSema()
	if err != nil {
		return nil, err
	}
	dag.ReportBrokenDeps(idx, slots)

	res.Bag = diag.NewBag(opts.MaxDiagnostics)
	for _, f := range res.Files {
		res.Bag.Merge(f.Bag)
	}
	res.Bag.Dedup()
	res.Bag.Sort()
	span.WithExtra("files", fmt.Sprint(len(res.Files)))
	return res, nil
}

func (r *Result) load(paths []string) ([]*FileResult, error) {
	batch := make([]*FileResult, 0, len(paths))
	for _, p := range paths {
		norm, err := project.NormalizePath(filepath.ToSlash(p))
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}
		if _, ok := r.byPath[norm]; ok {
			continue
		}
		id, err := r.FileSet.Load(filepath.FromSlash(norm))
		if err != nil {
			return nil, err
		}
		f := r.FileSet.Get(id)
		fr := &FileResult{
			Path:   norm,
			FileID: id,
			Bag:    diag.NewBag(r.opts.MaxDiagnostics),
			Meta: project.FileMeta{
				Path:        norm,
				Span:        source.Span{File: id},
				ContentHash: project.Digest(f.Hash),
			},
		}
		r.byPath[norm] = fr
		r.Files = append(r.Files, fr)
		batch = append(batch, fr)
	}
	return batch, nil
}

// resolveImports fills Meta.Imports for batch and returns files that exist
// on disk but were not loaded yet.
func (r *Result) resolveImports(batch []*FileResult, roots []string) []string {
	var next []string
	for _, fr := range batch {
		if fr.AST == nil {
			continue
		}
		if fr.AST.Package != nil {
			fr.Meta.Span = fr.AST.Package.Span
		}
		for _, im := range fr.AST.Imports {
			meta := project.ImportMeta{Path: im.Path, Span: im.PathSpan}
			for _, cand := range project.ImportCandidates(fr.Path, im.Path, roots) {
				if _, ok := r.byPath[cand]; ok || slices.Contains(next, cand) {
					meta.Resolved = cand
					break
				}
				if st, err := os.Stat(filepath.FromSlash(cand)); err == nil && !st.IsDir() {
					meta.Resolved = cand
					next = append(next, cand)
					break
				}
			}
			fr.Meta.Imports = append(fr.Meta.Imports, meta)
		}
	}
	return next
}

func (r *Result) buildGraph() (dag.Index, []dag.Slot, *dag.Topo) {
	metas := make([]project.FileMeta, len(r.Files))
	nodes := make([]dag.Node, len(r.Files))
	for i, fr := range r.Files {
		metas[i] = fr.Meta
		node := dag.Node{Meta: fr.Meta, Reporter: diag.BagReporter{Bag: fr.Bag}}
		if fr.Bag.HasErrors() {
			fr.Broken, fr.Skipped = true, true
			node.Broken = true
			node.FirstErr = firstError(fr.Bag)
		}
		nodes[i] = node
	}
	idx := dag.BuildIndex(metas)
	g, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)
	if topo.Cyclic {
		r.Cyclic = true
		dag.ReportCycles(idx, slots, *topo)
		for _, id := range topo.Cycles {
			if fr := r.byPath[idx.IDToName[int(id)]]; fr != nil {
				fr.Broken, fr.Skipped = true, true
				slots[int(id)].Broken = true
			}
		}
	}

	// Хеши в порядке топосортировки: зависимости уже посчитаны.
	for _, id := range topo.Order {
		fr := r.byPath[idx.IDToName[int(id)]]
		deps := make([]project.Digest, 0, len(fr.Meta.Imports))
		for _, im := range fr.Meta.Imports {
			if dep := r.byPath[im.Resolved]; dep != nil && im.Resolved != fr.Path {
				deps = append(deps, dep.Meta.Hash)
			}
		}
		fr.Meta.Hash = project.Combine(fr.Meta.ContentHash, deps...)
	}
	return idx, slots, topo
}

func firstError(bag *diag.Bag) *diag.Diagnostic {
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			return &d
		}
	}
	return nil
}
