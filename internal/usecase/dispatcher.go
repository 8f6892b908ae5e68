package usecase

import (
	"context"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/pkg/logger"
	"IndexPulse/pkg/queue"
)

// EmissionDispatcher consumes signal transitions off the queue and fans them
// out to the persistence and notification sinks. Sink failures are recorded
// and logged but never surfaced to the classification path.
type EmissionDispatcher struct {
	store    drepo.SignalStore
	notifier drepo.Notifier
	metrics  drepo.Metrics
	log      *logger.Logger
}

func NewEmissionDispatcher(store drepo.SignalStore, notifier drepo.Notifier, metrics drepo.Metrics, log *logger.Logger) *EmissionDispatcher {
	return &EmissionDispatcher{store: store, notifier: notifier, metrics: metrics, log: log}
}

func (d *EmissionDispatcher) Name() string { return "emission_dispatcher" }

func (d *EmissionDispatcher) Type() string { return EmissionMessageType }

func (d *EmissionDispatcher) Handle(ctx context.Context, payload interface{}) error {
	e, err := queue.ParsePayload[models.Emission](payload)
	if err != nil {
		d.metrics.RecordError("dispatch_payload")
		return err
	}

	if d.store != nil {
		if err := d.store.Insert(ctx, &e.Classification); err != nil {
			d.metrics.RecordError("dispatch_store")
			d.log.Error("signal persist failed",
				logger.String("instrument", e.Classification.Instrument), logger.Error(err))
		}
	}

	if d.notifier != nil {
		if err := d.notifier.Notify(ctx, *e); err != nil {
			d.metrics.RecordError("dispatch_notify")
			d.log.Error("signal notify failed",
				logger.String("instrument", e.Classification.Instrument), logger.Error(err))
		}
	}
	return nil
}

var _ queue.Job = (*EmissionDispatcher)(nil)
