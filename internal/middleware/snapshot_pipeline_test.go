package middleware

import (
	"context"
	"sync"
	"testing"

	"IndexPulse/internal/domain/models"
)

type countingProc struct {
	mu    sync.Mutex
	count int
}

func (p *countingProc) Process(_ context.Context, _ *models.Snapshot) *models.Classification {
	p.mu.Lock()
	p.count++
	p.mu.Unlock()
	return nil
}

func (p *countingProc) seen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

type noopMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newNoopMetrics() *noopMetrics { return &noopMetrics{errors: map[string]int{}} }

func (m *noopMetrics) RecordTick(string)             {}
func (m *noopMetrics) RecordEmission(string, string) {}
func (m *noopMetrics) RecordSuppression(string)      {}
func (m *noopMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *noopMetrics) RecordConviction(string, int)  {}
func (m *noopMetrics) RecordLatency(string, float64) {}

func validSnapshot(instrument string) *models.Snapshot {
	return &models.Snapshot{Instrument: instrument, Group: models.GroupIndex}
}

func TestPipelineForwardsValidSnapshot(t *testing.T) {
	proc, m := &countingProc{}, newNoopMetrics()
	p := NewSnapshotPipeline(proc, m)

	if err := p.Process(context.Background(), validSnapshot("NIFTY")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.seen() != 1 {
		t.Fatalf("forwarded = %d, want 1", proc.seen())
	}
}

func TestPipelineRejectsInvalidSnapshots(t *testing.T) {
	cases := []struct {
		name string
		snap *models.Snapshot
	}{
		{"nil", nil},
		{"no instrument", &models.Snapshot{Group: models.GroupIndex}},
		{"no group", &models.Snapshot{Instrument: "NIFTY"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc, m := &countingProc{}, newNoopMetrics()
			p := NewSnapshotPipeline(proc, m)
			if err := p.Process(context.Background(), tc.snap); err == nil {
				t.Fatalf("invalid snapshot accepted")
			}
			if proc.seen() != 0 {
				t.Fatalf("invalid snapshot forwarded")
			}
			if m.errors["pipeline_validate"] != 1 {
				t.Fatalf("errors = %v", m.errors)
			}
		})
	}
}

func TestPipelineThrottlesPerInstrument(t *testing.T) {
	proc, m := &countingProc{}, newNoopMetrics()
	p := NewSnapshotPipeline(proc, m, WithMaxRPS(2))

	// burst capacity is 2; the third tick in the same instant is dropped
	for i := 0; i < 3; i++ {
		if err := p.Process(context.Background(), validSnapshot("NIFTY")); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	if proc.seen() != 2 {
		t.Fatalf("forwarded = %d, want 2", proc.seen())
	}
	if m.errors["pipeline_throttle"] != 1 {
		t.Fatalf("errors = %v, want pipeline_throttle=1", m.errors)
	}

	// a different instrument has its own bucket
	if err := p.Process(context.Background(), validSnapshot("BANKNIFTY")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.seen() != 3 {
		t.Fatalf("forwarded = %d, want 3", proc.seen())
	}
}
