package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"IndexPulse/internal/domain/repository"
	"IndexPulse/internal/handler/api"
	mid "IndexPulse/internal/middleware"
	internalrepo "IndexPulse/internal/repository"
	"IndexPulse/internal/service/stream"
	"IndexPulse/internal/services/catalog"
	"IndexPulse/internal/services/classify"
	"IndexPulse/internal/usecase"
	"IndexPulse/pkg/cache"
	pkgch "IndexPulse/pkg/clickhouse"
	"IndexPulse/pkg/config"
	xhttp "IndexPulse/pkg/http"
	pkgkafka "IndexPulse/pkg/kafka"
	"IndexPulse/pkg/logger"
	"IndexPulse/pkg/metrics"
	"IndexPulse/pkg/queue"
	"IndexPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideSignalStore creates the ClickHouse signal log.
func ProvideSignalStore(ch *pkgch.Client, cfg *config.Config, log *logger.Logger) repository.SignalStore {
	return internalrepo.NewClickHouseSignalStore(ch, cfg.ClickHouse.Database+".signal_log", log)
}

// ProvideNotifier creates the outbound notification sink per configuration.
func ProvideNotifier(cfg *config.Config) (repository.Notifier, error) {
	switch cfg.Notifier.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaNotifier(producer, cfg.Kafka.SignalsTopic), nil
	case "webhook":
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Notifier.Timeout))
		return internalrepo.NewWebhookNotifier(client, cfg.Notifier.WebhookURL), nil
	default:
		return internalrepo.NoopNotifier{}, nil
	}
}

// ProvideRemoteCache creates the Redis cache when enabled, nil otherwise.
func ProvideRemoteCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideLatestCache creates the per-instrument latest classification cache
// on a layered store: in-process TTL map, optionally backed by Redis.
func ProvideLatestCache(remote *cache.RedisCache, cfg *config.Config) repository.LatestCache {
	layered := cache.NewLayeredCache(remote)
	return internalrepo.NewLatestCache(layered, cfg.Engine.LatestTTL)
}

// ProvideRegistry creates the predicate registry.
func ProvideRegistry() classify.Registry {
	return classify.NewRegistry()
}

// ProvideCatalogStore creates and installs the driver catalog.
func ProvideCatalogStore(reg classify.Registry, cfg *config.Config, log *logger.Logger) (*catalog.Store, error) {
	store := catalog.NewStore(reg, log)
	if cfg.Engine.DriversFile != "" {
		if err := store.LoadFile(cfg.Engine.DriversFile); err != nil {
			return nil, fmt.Errorf("load drivers: %w", err)
		}
		return store, nil
	}
	if err := store.Replace(catalog.Default()); err != nil {
		return nil, fmt.Errorf("default drivers: %w", err)
	}
	return store, nil
}

// ProvideQueue creates the in-process emission queue.
func ProvideQueue(cfg *config.Config) *queue.Memory {
	return queue.NewMemory(queue.QueueConfig{
		Workers:   cfg.Engine.QueueWorkers,
		QueueSize: cfg.Engine.QueueSize,
		DrainWait: cfg.Engine.DrainWait,
	})
}

// ProvideEmissionGate creates the per-instrument emission gate.
func ProvideEmissionGate(cfg *config.Config) *usecase.EmissionGate {
	return usecase.NewEmissionGate(cfg.Engine.Cooldown)
}

// ProvideClassifier creates the classification use case.
func ProvideClassifier(
	cat *catalog.Store,
	reg classify.Registry,
	gate *usecase.EmissionGate,
	latest repository.LatestCache,
	qsvc *queue.Memory,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Classifier {
	return usecase.NewClassifier(cat, reg, gate, latest, qsvc, m, log)
}

// ProvideDispatcher creates the emission dispatcher job.
func ProvideDispatcher(store repository.SignalStore, notifier repository.Notifier, m repository.Metrics, log *logger.Logger) *usecase.EmissionDispatcher {
	return usecase.NewEmissionDispatcher(store, notifier, m, log)
}

// ProvidePipeline builds the ingest pipeline in front of the classifier.
func ProvidePipeline(classifier *usecase.Classifier, m repository.Metrics, cfg *config.Config) *mid.SnapshotPipeline {
	return mid.NewSnapshotPipeline(classifier, m, mid.WithMaxRPS(cfg.Engine.MaxRPS))
}

// ProvideKafkaConsumer creates the snapshot consumer for kafka ingest, nil
// for other ingest types.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Ingest.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaSnapshotsHandler registers the handler for the snapshots topic.
func ProvideKafkaSnapshotsHandler(pipe *mid.SnapshotPipeline, m repository.Metrics, cfg *config.Config) *usecase.KafkaSnapshotsHandler {
	return usecase.NewKafkaSnapshotsHandler(cfg.Kafka.SnapshotsTopic, pipe, m)
}

// ProvideSnapshotStream creates the WebSocket stream client.
func ProvideSnapshotStream(cfg *config.Config, log *logger.Logger) repository.SnapshotStream {
	return stream.New(
		cfg.Stream.URL,
		cfg.Stream.Token,
		cfg.Stream.Instruments,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		log,
	)
}

// ProvideSnapshotCollector creates the websocket ingest collector.
func ProvideSnapshotCollector(s repository.SnapshotStream, m repository.Metrics, pipe *mid.SnapshotPipeline) *usecase.SnapshotCollector {
	return usecase.NewSnapshotCollector(s, m, pipe)
}

// ProvideHTTPHandler creates the API handler. Ingest liveness for the health
// endpoint follows the configured ingest transport.
func ProvideHTTPHandler(
	log *logger.Logger,
	latest repository.LatestCache,
	store repository.SignalStore,
	cat *catalog.Store,
	collector *usecase.SnapshotCollector,
	consumer *pkgkafka.Consumer,
	cfg *config.Config,
) xhttp.Handler {
	ingestUp := func() bool { return true }
	switch {
	case cfg.Ingest.Type == "websocket":
		ingestUp = collector.IsConnected
	case consumer != nil:
		ingestUp = consumer.Running
	}
	return api.NewSignalsEchoHandler(log, latest, store, cat, ingestUp)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.SnapshotCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSnapshotsHandler,
	qsvc *queue.Memory,
	dispatcher *usecase.EmissionDispatcher,
	chClient *pkgch.Client,
	store repository.SignalStore,
	notifier repository.Notifier,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, collector, consumer, kh, qsvc, dispatcher, chClient, store, notifier, handler)
}
