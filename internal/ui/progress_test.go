package ui

import (
	"strings"
	"testing"

	"weave/internal/buildpipeline"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("weave gen", []string{"idl/cw1.wv", "idl/counter.wv"}, nil).(*progressModel)

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageAnalyze, Status: buildpipeline.StatusWorking})
	if m.stageLabel != "analyzing" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}

	m.applyEvent(buildpipeline.Event{File: "idl/cw1.wv", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{File: "idl/counter.wv", Stage: buildpipeline.StageAnalyze, Status: buildpipeline.StatusError})
	// ошибка не перетирается последующими событиями
	m.applyEvent(buildpipeline.Event{File: "idl/counter.wv", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{File: "idl/shared/whitelist.wv", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})

	want := []struct {
		path   string
		status string
	}{
		{"idl/cw1.wv", "emitting"},
		{"idl/counter.wv", "error"},
		{"idl/shared/whitelist.wv", "parsing"},
	}
	if len(m.items) != len(want) {
		t.Fatalf("items = %+v", m.items)
	}
	for i, w := range want {
		if m.items[i].path != w.path || m.items[i].status != w.status {
			t.Fatalf("item[%d] = %+v, want %s %s", i, m.items[i], w.path, w.status)
		}
	}

	got := m.percent()
	wantPct := (0.7 + 1.0 + 0.15) / 3
	if got < wantPct-1e-9 || got > wantPct+1e-9 {
		t.Fatalf("percent = %v, want %v", got, wantPct)
	}
}

func TestViewListsFiles(t *testing.T) {
	m := NewProgressModel("weave gen", []string{"idl/cw1.wv"}, nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{File: "idl/cw1.wv", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone})
	m.done = true
	view := m.View()
	if !strings.Contains(view, "done: weave gen") || !strings.Contains(view, "idl/cw1.wv") || !strings.Contains(view, "done") {
		t.Fatalf("view = %q", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"idl/cw1.wv", 20, "idl/cw1.wv"},
		{"idl/counter.wv", 10, "idl/..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
