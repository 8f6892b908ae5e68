package repository

import (
	"context"
	"fmt"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	pkghttp "IndexPulse/pkg/http"
	pkgkafka "IndexPulse/pkg/kafka"
)

// KafkaNotifier publishes emitted transitions to the signals topic, keyed by
// instrument so downstream consumers see transitions in order.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaNotifier(producer *pkgkafka.Producer, topic string) domrepo.Notifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, e models.Emission) error {
	return n.producer.Publish(ctx, n.topic, []byte(e.Classification.Instrument), e)
}

func (n *KafkaNotifier) Close() error {
	if n.producer != nil {
		return n.producer.Close()
	}
	return nil
}

// WebhookNotifier POSTs emitted transitions to a configured HTTP endpoint.
type WebhookNotifier struct {
	client *pkghttp.Client
	url    string
}

func NewWebhookNotifier(client *pkghttp.Client, url string) domrepo.Notifier {
	return &WebhookNotifier{client: client, url: url}
}

func (n *WebhookNotifier) Notify(ctx context.Context, e models.Emission) error {
	err := n.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    n.url,
		Body:   e,
	}, nil)
	if err != nil {
		return fmt.Errorf("webhook notify: %w", err)
	}
	return nil
}

func (n *WebhookNotifier) Close() error { return nil }

// NoopNotifier discards emissions. Used when no delivery channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, e models.Emission) error { return nil }
func (NoopNotifier) Close() error                                        { return nil }
