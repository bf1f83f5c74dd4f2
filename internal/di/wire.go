//go:build wireinject
// +build wireinject

package di

import (
	"aiwealth/pkg/config"
	"aiwealth/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Logging and metrics
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,

		// Domain services
		ProvideBrain,
		ProvideReportFetcher,
		ProvideProfileFetcher,

		// Repositories (with business logic)
		ProvideSettingsStore,
		ProvideRunLogStore,
		ProvideRunPublisher,
		ProvideReportStream,

		// Use cases
		ProvideReportProcessor,
		ProvideReportCollector,
		ProvideKafkaRunsHandler,
		ProvideReplayQueue,
		ProvideConsoleUseCase,
		ProvideConsoleHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
