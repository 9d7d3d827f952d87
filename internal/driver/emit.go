package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"weave/internal/emit"
	"weave/internal/project"
	"weave/internal/trace"
	"weave/internal/version"
)

// EmitOptions configure Go generation.
type EmitOptions struct {
	Module  string
	Runtime string
	Jobs    int
	// Cache may be nil.
	Cache    *DiskCache
	Observer PhaseObserver
	OnFile   FileObserver
}

// Output is one generated Go file.
type Output struct {
	Source  string // IDL path
	Name    string // relative to the output root
	Content []byte
	Cached  bool
}

// CacheKey identifies the generated output of fr: its content and its
// dependencies' hashes, the tool version and everything that shapes the
// emitted code.
func (r *Result) CacheKey(fr *FileResult, opts EmitOptions) project.Digest {
	settings := project.HashStrings(version.Version, opts.Module, opts.Runtime, r.opts.AliasCollision.String())
	return project.Combine(fr.Meta.Hash, settings)
}

// Emit renders Go for every analysed file in dependency order. Declarations
// dropped by sema are simply missing from the output.
func Emit(ctx context.Context, r *Result, opts EmitOptions) ([]Output, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "emit")
	defer span.End("")
	obs := observers{phase: opts.Observer, file: opts.OnFile}
	end := obs.begin(PhaseEmit)
	defer end()

	files := make([]*FileResult, 0, len(r.Order))
	for _, fr := range r.Order {
		if fr.Model != nil && fr.Model.Package != "" {
			files = append(files, fr)
		}
	}
	outputs := make([]Output, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(opts.Jobs, len(files)))
	for i, fr := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, fspan := trace.Start(gctx, trace.ScopeFile, "emit:"+fr.Path)
			defer fspan.End("")
			started := obs.fileStart(fr.Path, PhaseEmit)
			out, err := r.emitOne(fr, opts)
			obs.fileEnd(fr.Path, PhaseEmit, started, err != nil)
			if err != nil {
				return err
			}
			if out.Cached {
				fspan.WithExtra("cache", "hit")
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (r *Result) emitOne(fr *FileResult, opts EmitOptions) (Output, error) {
	key := r.CacheKey(fr, opts)
	var payload DiskPayload
	// битый кеш не фатален: просто генерируем заново
	if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
		return Output{Source: fr.Path, Name: payload.Name, Content: payload.Content, Cached: true}, nil
	}

	src, err := emit.EmitFile(fr.Model, emit.Options{
		Module:  opts.Module,
		Runtime: opts.Runtime,
		Source:  fr.Path,
	})
	if err != nil {
		return Output{}, err
	}
	out := Output{Source: fr.Path, Name: emit.OutputName(fr.Model), Content: src}
	if err := opts.Cache.Put(key, &DiskPayload{Source: out.Source, Name: out.Name, Content: out.Content}); err != nil {
		return Output{}, fmt.Errorf("failed to write cache entry for %s: %w", fr.Path, err)
	}
	return out, nil
}

// WriteOutputs writes outputs under dir and returns the paths that changed.
// Files whose content is already up to date are not touched.
func WriteOutputs(dir string, outputs []Output) ([]string, error) {
	var written []string
	for _, out := range outputs {
		p := filepath.Join(dir, filepath.FromSlash(out.Name))
		if old, err := os.ReadFile(p); err == nil && bytes.Equal(old, out.Content) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, out.Content, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", p, err)
		}
		written = append(written, p)
	}
	slices.Sort(written)
	return written, nil
}
