package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrQueueFull is returned when the bounded queue rejects a message.
// Publishing is best-effort: callers decide whether a drop matters.
var ErrQueueFull = errors.New("queue full")

// QueueService publishes messages for asynchronous processing.
type QueueService interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// QueueConfig contains the configuration for the queue.
type QueueConfig struct {
	Workers   int           // number of workers
	QueueSize int           // bounded capacity; full queue drops the newest message
	DrainWait time.Duration // max wait for in-flight jobs on Stop
}

// Message represents a message in the queue.
type Message struct {
	Type      string
	Payload   interface{}
	Timestamp time.Time
}

// ParsePayload converts a message payload into the expected concrete type.
func ParsePayload[T any](payload interface{}) (*T, error) {
	var result T

	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return &result, nil
	case []byte:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}
}
