package usecase

import (
	"context"
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/internal/services/catalog"
	"IndexPulse/internal/services/classify"
	"IndexPulse/pkg/logger"
	"IndexPulse/pkg/queue"
)

// EmissionMessageType routes signal transitions to the dispatcher job.
const EmissionMessageType = "signal_emission"

// Classifier runs the full per-tick classification path: thesis, confluence
// score, session/trend adjustment, labeling, and the emission decision. The
// path is synchronous and pure except for the gate state; emissions are
// handed to the queue and never block the next tick.
type Classifier struct {
	cat     *catalog.Store
	reg     classify.Registry
	gate    *EmissionGate
	cache   drepo.LatestCache
	qsvc    queue.QueueService
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewClassifier(
	cat *catalog.Store,
	reg classify.Registry,
	gate *EmissionGate,
	cache drepo.LatestCache,
	qsvc queue.QueueService,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Classifier {
	return &Classifier{cat: cat, reg: reg, gate: gate, cache: cache, qsvc: qsvc, metrics: metrics, log: log}
}

// Process classifies one snapshot. Non-INDEX instruments pass through with no
// classification and no emission; the returned classification is nil.
func (c *Classifier) Process(ctx context.Context, s *models.Snapshot) *models.Classification {
	if s == nil || s.Group != models.GroupIndex {
		return nil
	}

	start := time.Now()
	c.metrics.RecordTick(s.Instrument)

	thesis, dominant := classify.DeriveThesis(s)
	score := classify.Score(s, thesis, c.cat.Snapshot(), c.reg)
	conviction := classify.Adjust(score.Raw, s)
	playbook, signal := classify.Label(conviction, score.Choppy)
	if score.Choppy {
		// choppy supersedes whatever the state machine derived
		thesis = models.ThesisChoppy
	}

	cls := models.Classification{
		Instrument:     s.Instrument,
		Timestamp:      s.Timestamp,
		Thesis:         thesis,
		Dominant:       dominant,
		BullishDrivers: score.BullishDrivers,
		BearishDrivers: score.BearishDrivers,
		Conviction:     conviction,
		Choppy:         score.Choppy,
		Playbook:       playbook,
		Signal:         signal,
	}
	cls.Narrative = classify.Narrative(&cls)

	prev, emit := c.gate.Observe(s.Instrument, signal)

	c.cache.SetLatest(&cls)
	c.metrics.RecordConviction(s.Instrument, conviction)
	c.metrics.RecordLatency("classify", time.Since(start).Seconds())

	if !emit {
		switch {
		case prev == models.SignalInitializing:
			c.metrics.RecordSuppression("initializing")
		case prev != signal:
			c.metrics.RecordSuppression("cooldown")
		}
		return &cls
	}

	if err := c.qsvc.PublishMessage(ctx, EmissionMessageType, models.Emission{
		Classification: cls,
		PrevSignal:     prev,
	}); err != nil {
		c.metrics.RecordError("emission_enqueue")
		c.log.Warn("emission dropped", logger.String("instrument", s.Instrument), logger.Error(err))
		return &cls
	}

	c.metrics.RecordEmission(s.Instrument, string(signal))
	c.log.Info("signal transition",
		logger.String("instrument", s.Instrument),
		logger.String("from", string(prev)),
		logger.String("to", string(signal)),
		logger.Int("conviction", conviction),
		logger.String("playbook", playbook))
	return &cls
}
