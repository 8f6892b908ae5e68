package usecase

import (
	"context"
	"encoding/json"
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	mid "IndexPulse/internal/middleware"
	pkgkafka "IndexPulse/pkg/kafka"
)

// KafkaSnapshotsHandler consumes indicator snapshots from Kafka and feeds
// them through the ingest pipeline. A garbled frame is counted and skipped;
// it must never stall the tick stream.
type KafkaSnapshotsHandler struct {
	topic   string
	pipe    *mid.SnapshotPipeline
	metrics drepo.Metrics
}

func NewKafkaSnapshotsHandler(topic string, pipe *mid.SnapshotPipeline, metrics drepo.Metrics) *KafkaSnapshotsHandler {
	return &KafkaSnapshotsHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaSnapshotsHandler) Topic() string { return h.topic }

func (h *KafkaSnapshotsHandler) Handle(ctx context.Context, b []byte) error {
	var s models.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return nil
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(s.Timestamp).Seconds())

	return h.pipe.Process(ctx, &s)
}

var _ pkgkafka.MessageHandler = (*KafkaSnapshotsHandler)(nil)
