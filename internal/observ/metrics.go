package observ

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the generation counters exported with --metrics-out. Every
// run gets its own registry; nothing is registered globally.
type Metrics struct {
	reg *prometheus.Registry

	files       *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	cache       *prometheus.CounterVec
	outputs     *prometheus.CounterVec
	stages      *prometheus.HistogramVec
}

// NewMetrics creates and registers the weave metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weave",
			Name:      "files_total",
			Help:      "IDL files processed, by stage and outcome.",
		}, []string{"stage", "outcome"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weave",
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported, by severity.",
		}, []string{"severity"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weave",
			Name:      "cache_lookups_total",
			Help:      "Generation cache lookups, by result.",
		}, []string{"result"}),
		outputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weave",
			Name:      "outputs_written_total",
			Help:      "Files written, by kind.",
		}, []string{"kind"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weave",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
	}
	m.reg.MustRegister(m.files, m.diagnostics, m.cache, m.outputs, m.stages)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// File counts one file finishing stage.
func (m *Metrics) File(stage string, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	m.files.WithLabelValues(stage, outcome).Inc()
}

// Diagnostic counts one diagnostic of the given severity label.
func (m *Metrics) Diagnostic(severity string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(severity).Inc()
}

// CacheLookup counts a generation cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// Written counts n written files of kind ("go", "schema").
func (m *Metrics) Written(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.outputs.WithLabelValues(kind).Add(float64(n))
}

// Stage records the duration of one stage.
func (m *Metrics) Stage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes the metrics in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
