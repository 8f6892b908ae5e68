package usecase

import (
	"context"

	drepo "IndexPulse/internal/domain/repository"
	mid "IndexPulse/internal/middleware"

	"IndexPulse/internal/domain/models"
)

// SnapshotCollector pulls snapshots from the websocket stream and pushes them
// through the ingest pipeline into the classifier.
type SnapshotCollector struct {
	stream  drepo.SnapshotStream
	metrics drepo.Metrics
	pipe    *mid.SnapshotPipeline
}

func NewSnapshotCollector(stream drepo.SnapshotStream, metrics drepo.Metrics, pipe *mid.SnapshotPipeline) *SnapshotCollector {
	return &SnapshotCollector{stream: stream, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the stream is connected.
func (c *SnapshotCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *SnapshotCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	go c.consume(ctx)
	return nil
}

// consume drains one Read session at a time. The stream closes both channels
// when its read loop dies, so any error or closure means the session is over
// and fresh channels must be acquired after reconnecting.
func (c *SnapshotCollector) consume(ctx context.Context) {
	snapCh, errCh := c.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if ok && err == nil {
				continue
			}
			if ok {
				c.metrics.RecordError("stream")
			}
			if snapCh, errCh = c.reacquire(ctx); snapCh == nil {
				return
			}
		case s, ok := <-snapCh:
			if !ok {
				if snapCh, errCh = c.reacquire(ctx); snapCh == nil {
					return
				}
				continue
			}
			if s == nil {
				continue
			}
			_ = c.pipe.Process(ctx, s)
		}
	}
}

// reacquire reconnects until the stream comes back and returns fresh Read
// channels, or nil channels once the context ends. Reconnect paces retries
// with the stream's reconnect delay.
func (c *SnapshotCollector) reacquire(ctx context.Context) (<-chan *models.Snapshot, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream_reconnect")
			continue
		}
		return c.stream.Read(ctx)
	}
}

// Shutdown closes the stream.
func (c *SnapshotCollector) Shutdown(ctx context.Context) error {
	return c.stream.Close()
}
