// Package buildpipeline orchestrates `weave gen`: analysis, Go emission,
// schema export and writing, with progress events and timings.
package buildpipeline

import (
	"context"
	"fmt"
	"path"
	"time"

	"weave/internal/diag"
	"weave/internal/driver"
	"weave/internal/jsonschema"
	"weave/internal/observ"
	"weave/internal/project"
	"weave/internal/sema"
)

// GenerateRequest configures one generation run.
type GenerateRequest struct {
	Files          []string
	Roots          []string
	BaseDir        string
	MaxDiagnostics int
	Jobs           int
	AliasCollision sema.AliasPolicy

	Module  string
	Runtime string
	// EmitGo and EmitSchema select the outputs; OutDir and SchemaDir are
	// where they are written. An empty dir keeps outputs in memory.
	EmitGo       bool
	OutDir       string
	EmitSchema   bool
	SchemaDir    string
	SchemaFormat jsonschema.Format

	Cache    *driver.DiskCache
	Progress ProgressSink
	Metrics  *observ.Metrics
	Timer    *observ.Timer
}

// SchemaOutput is one rendered contract schema.
type SchemaOutput struct {
	Source   string
	Contract string
	Name     string // relative to the schema dir
	Content  []byte
}

// GenerateResult captures artefacts and stage timings.
type GenerateResult struct {
	Analysis *driver.Result
	Outputs  []driver.Output
	Schemas  []SchemaOutput
	Written  []string
	Timings  Timings
}

// Generate runs the pipeline. Diagnostics do not make it fail: files and
// declarations without errors are still generated, and the caller decides
// the exit status from Analysis.Bag.
func Generate(ctx context.Context, req *GenerateRequest) (GenerateResult, error) {
	var result GenerateResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing generate request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no %s files to generate from", project.Ext)
	}

	files := normalizeProgressFiles(req.Files, req.BaseDir)
	emitQueued(req.Progress, files)
	obs := &phaseObserver{req: req, result: &result}

	analysis, err := driver.Analyze(ctx, req.Files, driver.Options{
		BaseDir:        req.BaseDir,
		Roots:          req.Roots,
		MaxDiagnostics: req.MaxDiagnostics,
		Jobs:           req.Jobs,
		AliasCollision: req.AliasCollision,
		Observer:       obs.OnPhase,
		OnFile:         obs.OnFile,
	})
	if err != nil {
		emitStage(req.Progress, files, StageAnalyze, StatusError, err, 0)
		return result, err
	}
	result.Analysis = analysis
	for _, d := range analysis.Bag.Items() {
		req.Metrics.Diagnostic(d.Severity.String())
	}

	if req.EmitGo {
		outputs, err := driver.Emit(ctx, analysis, driver.EmitOptions{
			Module:   req.Module,
			Runtime:  req.Runtime,
			Jobs:     req.Jobs,
			Cache:    req.Cache,
			Observer: obs.OnPhase,
			OnFile:   obs.OnFile,
		})
		if err != nil {
			emitStage(req.Progress, files, StageEmit, StatusError, err, 0)
			return result, err
		}
		for _, o := range outputs {
			req.Metrics.CacheLookup(o.Cached)
		}
		result.Outputs = outputs
	}

	if req.EmitSchema {
		start := time.Now()
		schemas, err := renderSchemas(analysis, req.SchemaFormat)
		obs.record(StageSchema, time.Since(start))
		if err != nil {
			emitStage(req.Progress, files, StageSchema, StatusError, err, 0)
			return result, err
		}
		result.Schemas = schemas
	}

	start := time.Now()
	written, err := writeAll(req, &result)
	obs.record(StageWrite, time.Since(start))
	result.Written = written
	if err != nil {
		emitStage(req.Progress, files, StageWrite, StatusError, err, 0)
		return result, err
	}
	finish(req.Progress, analysis, req.BaseDir)
	return result, nil
}

func renderSchemas(analysis *driver.Result, format jsonschema.Format) ([]SchemaOutput, error) {
	var out []SchemaOutput
	for _, fr := range analysis.Order {
		if fr.Model == nil {
			continue
		}
		docs, err := jsonschema.GenerateAll(fr.Model)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", fr.Path, err)
		}
		for _, doc := range docs {
			data, err := jsonschema.Marshal(doc, format)
			if err != nil {
				return nil, fmt.Errorf("schema for %s: %w", fr.Path, err)
			}
			out = append(out, SchemaOutput{
				Source:   fr.Path,
				Contract: doc.ContractName,
				Name:     path.Join(fr.Model.Package, jsonschema.FileName(doc, format)),
				Content:  data,
			})
		}
	}
	return out, nil
}

func writeAll(req *GenerateRequest, result *GenerateResult) ([]string, error) {
	var written []string
	if req.EmitGo && req.OutDir != "" {
		w, err := driver.WriteOutputs(req.OutDir, result.Outputs)
		written = append(written, w...)
		req.Metrics.Written("go", len(w))
		if err != nil {
			return written, err
		}
	}
	if req.EmitSchema && req.SchemaDir != "" {
		schemas := make([]driver.Output, len(result.Schemas))
		for i, s := range result.Schemas {
			schemas[i] = driver.Output{Source: s.Source, Name: s.Name, Content: s.Content}
		}
		w, err := driver.WriteOutputs(req.SchemaDir, schemas)
		written = append(written, w...)
		req.Metrics.Written("schema", len(w))
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// finish marks every file done or failed according to its diagnostics.
func finish(sink ProgressSink, analysis *driver.Result, baseDir string) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: StageWrite, Status: StatusDone})
	for _, fr := range analysis.Files {
		status := StatusDone
		var err error
		if fr.Bag.HasErrors() {
			status = StatusError
			err = fmt.Errorf("%d error(s)", countErrors(fr.Bag))
		}
		sink.OnEvent(Event{File: displayPath(fr.Path, baseDir), Stage: StageWrite, Status: status, Err: err})
	}
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			n++
		}
	}
	return n
}

type phaseObserver struct {
	req    *GenerateRequest
	result *GenerateResult
}

func stageOf(phase string) Stage {
	switch phase {
	case driver.PhaseLoad, driver.PhaseParse:
		return StageParse
	case driver.PhaseGraph, driver.PhaseSema:
		return StageAnalyze
	default:
		return StageEmit
	}
}

// OnPhase accumulates driver phase durations into stage timings.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	if ev.Status != driver.PhaseEnd {
		return
	}
	if p.req.Timer != nil {
		p.req.Timer.Add(ev.Name, ev.Elapsed)
	}
	stage := stageOf(ev.Name)
	p.result.Timings.Set(stage, p.result.Timings.Duration(stage)+ev.Elapsed)
	p.req.Metrics.Stage(string(stage), ev.Elapsed)
}

// OnFile forwards per-file driver events to the progress sink. It runs on
// worker goroutines; sinks and metrics are safe for concurrent use.
func (p *phaseObserver) OnFile(ev driver.FileEvent) {
	stage := stageOf(ev.Phase)
	if ev.Status == driver.PhaseEnd {
		p.req.Metrics.File(string(stage), ev.Failed)
	}
	if p.req.Progress == nil {
		return
	}
	status := StatusWorking
	var err error
	if ev.Status == driver.PhaseEnd && ev.Failed {
		status = StatusError
		err = fmt.Errorf("%s failed", ev.Phase)
	}
	p.req.Progress.OnEvent(Event{
		File:    displayPath(ev.Path, p.req.BaseDir),
		Stage:   stage,
		Status:  status,
		Err:     err,
		Elapsed: ev.Elapsed,
	})
}

func (p *phaseObserver) record(stage Stage, d time.Duration) {
	if p.req.Timer != nil {
		p.req.Timer.Add(string(stage), d)
	}
	p.result.Timings.Set(stage, d)
	p.req.Metrics.Stage(string(stage), d)
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
