// Package trace records what the weave pipeline is doing: driver phases,
// per-file passes and per-declaration work.
//
// Tracers:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: phase shows driver and pass boundaries, detail adds
// files, debug adds single declarations and machine routing.
//
// The tracer travels through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "sema", 0)
//	defer span.End("")
package trace
