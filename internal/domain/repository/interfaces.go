package repository

import (
	"context"
	"time"

	"IndexPulse/internal/domain/models"
)

// SnapshotStream is the upstream indicator pipeline delivering per-tick
// snapshots over a live connection.
type SnapshotStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Snapshot, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalStore durably logs emitted classifications.
type SignalStore interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, c *models.Classification) error
	Query(ctx context.Context, instrument string, from, to time.Time, limit int) ([]*models.Classification, error)
	Health(ctx context.Context) error
	Close() error
}

// Notifier delivers a signal transition to the outside world. The engine has
// no knowledge of formatting or delivery.
type Notifier interface {
	Notify(ctx context.Context, e models.Emission) error
	Close() error
}

// LatestCache serves the most recent classification per instrument.
type LatestCache interface {
	SetLatest(c *models.Classification)
	Latest(instrument string) (*models.Classification, bool)
}

// Metrics records engine observability counters.
type Metrics interface {
	RecordTick(instrument string)
	RecordEmission(instrument, signal string)
	RecordSuppression(kind string)
	RecordError(kind string)
	RecordConviction(instrument string, score int)
	RecordLatency(op string, seconds float64)
}
