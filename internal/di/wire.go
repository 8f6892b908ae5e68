//go:build wireinject
// +build wireinject

package di

import (
	"IndexPulse/pkg/config"
	"IndexPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRemoteCache,

		// Repositories
		ProvideSignalStore,
		ProvideNotifier,
		ProvideLatestCache,
		ProvideSnapshotStream,

		// Engine
		ProvideRegistry,
		ProvideCatalogStore,
		ProvideQueue,
		ProvideEmissionGate,
		ProvideClassifier,
		ProvideDispatcher,
		ProvidePipeline,

		// Ingest
		ProvideKafkaConsumer,
		ProvideKafkaSnapshotsHandler,
		ProvideSnapshotCollector,

		// API and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
