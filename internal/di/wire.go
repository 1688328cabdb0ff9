//go:build wireinject
// +build wireinject

package di

import (
	"TradeGate/pkg/config"
	"TradeGate/pkg/server"

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

		// Repositories
		ProvideCandleStorage,
		ProvideCandlePublisher,
		ProvideBinanceStream,
		ProvideBinanceClient,
		ProvideFeatureStore,
		ProvideBehaviorStore,
		ProvideUserStore,
		ProvideTradeStore,
		ProvideDecisionArchive,
		ProvideLogDigestStore,
		ProvideArchivePublisher,
		ProvideArchiveConsumer,

		// Engine services
		ProvideRegimeClassifier,
		ProvideRegimeAggregator,
		ProvideRiskSizer,
		ProvideFitScorer,
		ProvideSessionClassifier,
		ProvideBehaviorGuard,
		ProvideAuthManager,

		// Use cases
		ProvideEvaluator,
		ProvideGateUseCase,
		ProvideCandlesUseCase,
		ProvideTradesUseCase,
		ProvideReportsUseCase,
		ProvideAuthUseCase,
		ProvideCandleProcessor,
		ProvideCandleCollector,
		ProvideKafkaCandlesHandler,

		// HTTP handlers
		ProvideGateHandler,
		ProvideTradesHandler,
		ProvideAuthHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
