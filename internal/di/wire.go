//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Forecast engine
		ProvideCalendar,
		ProvidePipeline,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideBytesCache,
		ProvideHub,

		// Repositories
		ProvideHistoryStore,
		ProvidePriceSource,
		ProvideSinks,

		// Use cases
		ProvideForecastUseCase,
		ProvideBatchUseCase,

		// Transports
		ProvideForecastHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
