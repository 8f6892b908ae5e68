package middleware

import (
	"context"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/internal/service/ratelimit"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, s *models.Snapshot) *models.Classification
}

// SnapshotPipeline sits between the ingest transport and the classifier. It
// validates incoming snapshots and throttles per instrument so a runaway
// upstream publisher cannot flood the engine.
type SnapshotPipeline struct {
	proc    Proc
	metrics drepo.Metrics
	limiter *ratelimit.Limiter
	maxRPS  float64
}

type PipelineOption func(*SnapshotPipeline)

// WithMaxRPS sets the max snapshots per second per instrument.
func WithMaxRPS(n float64) PipelineOption {
	return func(p *SnapshotPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewSnapshotPipeline creates a new pipeline.
func NewSnapshotPipeline(proc Proc, metrics drepo.Metrics, opts ...PipelineOption) *SnapshotPipeline {
	p := &SnapshotPipeline{
		proc:    proc,
		metrics: metrics,
		limiter: ratelimit.New(),
		maxRPS:  20,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates, throttles, and forwards one snapshot.
func (p *SnapshotPipeline) Process(ctx context.Context, s *models.Snapshot) error {
	start := time.Now()
	if err := validateSnapshot(s); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.limiter.Allow(s.Instrument, p.maxRPS, p.maxRPS) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	p.proc.Process(ctx, s)
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateSnapshot(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot nil")
	}
	if s.Instrument == "" {
		return fmt.Errorf("instrument empty")
	}
	if s.Group == "" {
		return fmt.Errorf("group empty")
	}
	return nil
}
