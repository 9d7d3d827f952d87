package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Phase names reported to observers.
const (
	PhaseLoad  = "load"
	PhaseParse = "parse"
	PhaseGraph = "imports_graph"
	PhaseSema  = "sema"
	PhaseEmit  = "emit"
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events. It is called from the goroutine
// running Analyze or Emit.
type PhaseObserver func(PhaseEvent)

// FileEvent reports one file entering or leaving a phase.
type FileEvent struct {
	Path    string
	Phase   string
	Status  PhaseStatus
	Failed  bool
	Elapsed time.Duration
}

// FileObserver receives per-file events from worker goroutines and must be
// safe for concurrent use.
type FileObserver func(FileEvent)

type observers struct {
	phase PhaseObserver
	file  FileObserver
}

// begin reports PhaseStart and returns the matching end reporter.
func (o observers) begin(name string) func() time.Duration {
	start := time.Now()
	if o.phase != nil {
		o.phase(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return func() time.Duration {
		elapsed := time.Since(start)
		if o.phase != nil {
			o.phase(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed})
		}
		return elapsed
	}
}

func (o observers) fileStart(path, phase string) time.Time {
	if o.file != nil {
		o.file(FileEvent{Path: path, Phase: phase, Status: PhaseStart})
	}
	return time.Now()
}

func (o observers) fileEnd(path, phase string, started time.Time, failed bool) {
	if o.file != nil {
		o.file(FileEvent{Path: path, Phase: phase, Status: PhaseEnd, Failed: failed, Elapsed: time.Since(started)})
	}
}
