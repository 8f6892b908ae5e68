package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/internal/usecase"
	pkgch "IndexPulse/pkg/clickhouse"
	"IndexPulse/pkg/config"
	xhttp "IndexPulse/pkg/http"
	pkgkafka "IndexPulse/pkg/kafka"
	applogger "IndexPulse/pkg/logger"
	"IndexPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  *usecase.SnapshotCollector
	consumer   *pkgkafka.Consumer
	kh         *usecase.KafkaSnapshotsHandler
	qsvc       *queue.Memory
	dispatcher *usecase.EmissionDispatcher
	chClient   *pkgch.Client
	store      drepo.SignalStore
	notifier   drepo.Notifier
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.SnapshotCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSnapshotsHandler,
	qsvc *queue.Memory,
	dispatcher *usecase.EmissionDispatcher,
	chClient *pkgch.Client,
	store drepo.SignalStore,
	notifier drepo.Notifier,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		collector:  collector,
		consumer:   consumer,
		kh:         kh,
		qsvc:       qsvc,
		dispatcher: dispatcher,
		chClient:   chClient,
		store:      store,
		notifier:   notifier,
		handler:    handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := a.store.Init(initCtx); err != nil {
		initCancel()
		a.log.Error("signal store init error", applogger.Error(err))
		return err
	}
	initCancel()

	// Emission workers before ingest so the first transition has a sink.
	a.qsvc.RegisterJob(a.dispatcher)
	a.qsvc.Start(ctx)

	switch a.cfg.Ingest.Type {
	case "kafka":
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka ingest started", applogger.String("topic", a.kh.Topic()))
	default:
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("collector error", applogger.Error(err))
			}
		}()
		a.log.Info("websocket ingest started", applogger.Strings("instruments", a.cfg.Stream.Instruments))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops ingest first, drains the emission queue, then closes sinks.
func (a *App) shutdown(ctx context.Context) error {
	if a.cfg.Ingest.Type == "kafka" {
		if a.consumer != nil {
			stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
			if err := a.consumer.Stop(stopCtx); err != nil {
				a.log.Warn("kafka consumer stop error", applogger.Error(err))
			}
			cancel()
		}
	} else if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}

	if err := a.qsvc.Stop(ctx); err != nil {
		a.log.Warn("queue drain error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.notifier.Close(); err != nil {
		a.log.Warn("notifier close error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
