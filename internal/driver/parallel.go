package driver

import (
	"context"
	"runtime"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/parser"
	"weave/internal/project/dag"
	"weave/internal/sema"
	"weave/internal/source"
	"weave/internal/trace"
)

func jobLimit(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(min(jobs, n), 1)
}

// parseAll parses batch in parallel; every file reports into its own bag.
func parseAll(ctx context.Context, fs *source.FileSet, batch []*FileResult, opts Options, obs observers) error {
	maxErrors, err := safecast.Conv[uint](max(opts.MaxDiagnostics, 0))
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(opts.Jobs, len(batch)))
	for _, fr := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := trace.Start(gctx, trace.ScopeFile, "parse:"+fr.Path)
			started := obs.fileStart(fr.Path, PhaseParse)
			pr := parser.ParseSource(fs, fr.FileID, parser.Options{
				Reporter:  diag.BagReporter{Bag: fr.Bag},
				MaxErrors: maxErrors,
			})
			fr.AST = pr.File
			obs.fileEnd(fr.Path, PhaseParse, started, pr.Errors > 0)
			span.End("")
			return nil
		})
	}
	return g.Wait()
}

// analyzeBatches runs sema wave by wave; files of one wave only import
// files of earlier waves.
func (r *Result) analyzeBatches(ctx context.Context, idx dag.Index, slots []dag.Slot, topo *dag.Topo, obs observers) error {
	for _, batch := range topo.Batches {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobLimit(r.opts.Jobs, len(batch)))
		for _, id := range batch {
			fr := r.byPath[idx.IDToName[int(id)]]
			if fr == nil {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r.analyzeOne(gctx, fr, obs)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, id := range batch {
			fr := r.byPath[idx.IDToName[int(id)]]
			if fr == nil {
				continue
			}
			if !fr.Skipped {
				r.Order = append(r.Order, fr)
			}
			slots[int(id)].Broken = fr.Broken
			if fr.Broken && slots[int(id)].FirstErr == nil {
				slots[int(id)].FirstErr = firstError(fr.Bag)
			}
		}
	}
	return nil
}

func (r *Result) analyzeOne(ctx context.Context, fr *FileResult, obs observers) {
	// Ошибки парсинга или графа импортов: sema дала бы только каскад.
	if fr.Skipped || fr.Bag.HasErrors() {
		fr.Broken, fr.Skipped = true, true
		return
	}
	imports := make(map[string]*model.File, len(fr.Meta.Imports))
	for _, im := range fr.Meta.Imports {
		dep := r.byPath[im.Resolved]
		if dep == nil {
			continue
		}
		if dep.Broken {
			fr.Broken, fr.Skipped = true, true
			return
		}
		imports[im.Path] = dep.Model
	}

	_, span := trace.Start(ctx, trace.ScopeFile, "sema:"+fr.Path)
	started := obs.fileStart(fr.Path, PhaseSema)
	res := sema.Analyze(fr.AST, fr.Path, sema.Options{
		Reporter:       diag.BagReporter{Bag: fr.Bag},
		Imports:        imports,
		AliasCollision: r.opts.AliasCollision,
	})
	fr.Model = res.File
	fr.Failed = res.Failed
	fr.Broken = fr.Bag.HasErrors()
	obs.fileEnd(fr.Path, PhaseSema, started, fr.Broken)
	span.End("")
}
