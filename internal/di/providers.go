package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradeGate/internal/domain/repository"
	"TradeGate/internal/handler/api"
	mid "TradeGate/internal/middleware"
	internalrepo "TradeGate/internal/repository"
	"TradeGate/internal/service/binance"
	icache "TradeGate/internal/service/cache"
	"TradeGate/internal/services/auth"
	"TradeGate/internal/services/behavior"
	"TradeGate/internal/services/regime"
	"TradeGate/internal/services/risk"
	"TradeGate/internal/services/session"
	"TradeGate/internal/usecase"
	pkgcache "TradeGate/pkg/cache"
	pkgch "TradeGate/pkg/clickhouse"
	"TradeGate/pkg/config"
	pkgkafka "TradeGate/pkg/kafka"
	applogger "TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/queue"
	"TradeGate/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	candleTable := "(bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)"
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.candles_1m %s", db, candleTable),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.candles_5m %s", db, candleTable),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.candles_15m %s", db, candleTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.decisions (
            id String, user_id String, symbol String, strategy String, ts DateTime,
            decision String, quality_score Float64, risk_pct Float64, position_size_usd Float64,
            market_regime String, volatility_state String, session String,
            reasons String, suggested_actions String
        ) ENGINE=MergeTree ORDER BY (user_id, ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.paper_trades (
            id String, user_id String, symbol String, strategy String, mode String, status String,
            opened_at DateTime, closed_at DateTime, entry_price Float64, exit_price Float64,
            qty Float64, risk_pct Float64, stop_distance_pct Float64, pnl Float64, rr Float64,
            rule_violation UInt8, notes String, updated_at DateTime
        ) ENGINE=ReplacingMergeTree(updated_at) ORDER BY (user_id, id)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.error_digests (
            level String, message String, caller String, fields String,
            count UInt64, first_seen DateTime, last_seen DateTime
        ) ENGINE=MergeTree ORDER BY (last_seen, caller)`, db),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
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

// ProvideRedisCache creates the shared Redis cache client.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr %q: %w", cfg.Redis.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port %q: %w", portStr, err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("tradegate"),
	)
}

// ProvideCacheService exposes the Redis cache as the generic cache service.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service { return rc }

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStorage creates ClickHouse candle storage.
func ProvideCandleStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseCandleStorage(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideCandlePublisher creates Kafka candle publisher.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaCandlePublisher(producer, cfg.Kafka.Topic)
}

// ProvideBinanceStream creates the Binance kline WebSocket stream.
func ProvideBinanceStream(cfg *config.Config) repository.MarketStream {
	return binance.NewStream(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
}

// ProvideBinanceClient creates the Binance REST client. The gate reads live
// candles from it so decisions track the market even before ingest catches up.
func ProvideBinanceClient(cfg *config.Config) *binance.Client {
	return binance.NewClient(cfg.Binance.RestURL, 10*time.Second)
}

// ProvideFeatureStore exposes ClickHouse candle history for query endpoints.
func ProvideFeatureStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) *internalrepo.CHFeatureStore {
	store := internalrepo.NewCHFeatureStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideBehaviorStore creates the Redis-backed behavior counters store.
func ProvideBehaviorStore(c pkgcache.Service) repository.BehaviorStore {
	return internalrepo.NewRedisBehaviorStore(c)
}

// ProvideUserStore creates the account store. Accounts are read-heavy and
// change rarely, so a memory layer fronts Redis.
func ProvideUserStore(rc *pkgcache.RedisCache) repository.UserStore {
	return internalrepo.NewRedisUserStore(pkgcache.NewLayeredCache(rc))
}

// ProvideTradeStore creates the ClickHouse paper-trade journal.
func ProvideTradeStore(chClient *pkgch.Client, cfg *config.Config) repository.TradeStore {
	return internalrepo.NewCHTradeStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideDecisionArchive creates the ClickHouse decision archive.
func ProvideDecisionArchive(chClient *pkgch.Client, cfg *config.Config) repository.DecisionArchive {
	return internalrepo.NewCHDecisionArchive(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideLogDigestStore creates the ClickHouse sink for error-log digests.
func ProvideLogDigestStore(chClient *pkgch.Client, cfg *config.Config) repository.LogDigestStore {
	return internalrepo.NewCHLogDigestStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideArchivePublisher creates the Redis queue publisher for decisions
// and log digests.
func ProvideArchivePublisher(l *applogger.Logger, rc *pkgcache.RedisCache) queue.QueueService {
	return queue.NewRedisPublisher(l, rc.Client(), queue.WithKeyPrefix("tradegate:queue"))
}

// ProvideArchiveConsumer creates the Redis queue consumer running the
// decision-archive and error-digest jobs.
func ProvideArchiveConsumer(l *applogger.Logger, rc *pkgcache.RedisCache, archive repository.DecisionArchive, digests repository.LogDigestStore) *queue.RedisQueue {
	jobs := []queue.Job{
		usecase.NewDecisionArchiveJob(archive),
		usecase.NewErrorDigestJob(digests),
	}
	return queue.NewRedisConsumer(l, &queue.QueueConfig{
		Workers:    2,
		QueueSize:  1024,
		RetryLimit: 5,
		RetryDelay: 5 * time.Second,
	}, rc.Client(), jobs, queue.WithKeyPrefix("tradegate:queue"))
}

// ProvideRegimeClassifier builds the per-timeframe classifier from config.
func ProvideRegimeClassifier(cfg *config.Config) *regime.Classifier {
	return regime.NewClassifier(regime.Config{
		TrendSlopeThreshold: cfg.Engine.TrendSlopeThreshold,
		HighVolPercentile:   cfg.Engine.HighVolPercentile,
		Window:              cfg.Engine.Window,
		SlopeScale:          cfg.Engine.SlopeScale,
	})
}

// ProvideRegimeAggregator builds the multi-timeframe consensus aggregator.
func ProvideRegimeAggregator(cfg *config.Config) *regime.Aggregator {
	return regime.NewAggregator(regime.Config{
		TrendSlopeThreshold: cfg.Engine.TrendSlopeThreshold,
		HighVolPercentile:   cfg.Engine.HighVolPercentile,
		Window:              cfg.Engine.Window,
		SlopeScale:          cfg.Engine.SlopeScale,
	})
}

// ProvideRiskSizer builds the position sizer from config.
func ProvideRiskSizer(cfg *config.Config) *risk.Sizer {
	return risk.NewSizer(risk.Config{
		MaxRiskPerTradePct: cfg.Engine.MaxRiskPerTradePct,
		HighVolRiskCapPct:  cfg.Engine.HighVolRiskCapPct,
		MinStopDistancePct: cfg.Engine.MinStopDistancePct,
	})
}

// ProvideFitScorer builds the strategy fit scorer.
func ProvideFitScorer() *risk.FitScorer { return risk.NewFitScorer() }

// ProvideSessionClassifier builds the session classifier.
func ProvideSessionClassifier() *session.Classifier { return session.NewClassifier() }

// ProvideBehaviorGuard builds the behavior guardrails from config.
func ProvideBehaviorGuard(store repository.BehaviorStore, cfg *config.Config) *behavior.Guard {
	return behavior.NewGuard(store, behavior.Config{
		MaxTradesPerDay: cfg.Engine.MaxTradesPerDay,
		CooldownMinutes: cfg.Engine.CooldownMinutes,
	})
}

// ProvideAuthManager builds the JWT manager from config.
func ProvideAuthManager(cfg *config.Config) *auth.Manager {
	return auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
}

// ProvideEvaluator assembles the decision pipeline.
func ProvideEvaluator(
	classifier *regime.Classifier,
	aggregator *regime.Aggregator,
	sizer *risk.Sizer,
	fit *risk.FitScorer,
	sessions *session.Classifier,
	guard *behavior.Guard,
) *usecase.Evaluator {
	return usecase.NewEvaluator(classifier, aggregator, sizer, fit, sessions, guard)
}

// ProvideGateUseCase wires the gate over live Binance candles.
func ProvideGateUseCase(
	client *binance.Client,
	eval *usecase.Evaluator,
	classifier *regime.Classifier,
	sessions *session.Classifier,
	metrics repository.Metrics,
	archiveQ queue.QueueService,
	l *applogger.Logger,
) *usecase.GateUseCase {
	gate := usecase.NewGateUseCase(client, eval, classifier, sessions, metrics, archiveQ)
	gate.SetLogger(l)
	return gate
}

// ProvideCandlesUseCase wires candle history queries over ClickHouse.
func ProvideCandlesUseCase(store *internalrepo.CHFeatureStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideTradesUseCase wires the paper-trade journal.
func ProvideTradesUseCase(store repository.TradeStore, guard *behavior.Guard) *usecase.TradesUseCase {
	return usecase.NewTradesUseCase(store, guard)
}

// ProvideReportsUseCase wires behavior reports.
func ProvideReportsUseCase(store repository.BehaviorStore) *usecase.ReportsUseCase {
	return usecase.NewReportsUseCase(store)
}

// ProvideAuthUseCase wires registration and login.
func ProvideAuthUseCase(users repository.UserStore, tokens *auth.Manager) *usecase.AuthUseCase {
	return usecase.NewAuthUseCase(users, tokens)
}

// ProvideCandleProcessor creates the ingest processor.
func ProvideCandleProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideCandleCollector creates the stream collector with the realtime
// pipeline between WebSocket and the backend.
func ProvideCandleCollector(
	stream repository.MarketStream,
	processor *usecase.CandleProcessor,
	metrics repository.Metrics,
) *usecase.CandleCollector {
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewCandleCollector(stream, processor, metrics, pipe)
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideGateHandler creates the gate HTTP handler.
func ProvideGateHandler(l *applogger.Logger, gate *usecase.GateUseCase, candles *usecase.CandlesUseCase, cfg *config.Config) *api.GateHandler {
	h := api.NewGateHandler(l, gate, candles)
	if cfg.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		// in-process fallback so regime responses stay cached
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideTradesHandler creates the trades HTTP handler.
func ProvideTradesHandler(l *applogger.Logger, trades *usecase.TradesUseCase, reports *usecase.ReportsUseCase) *api.TradesHandler {
	return api.NewTradesHandler(l, trades, reports)
}

// ProvideAuthHandler creates the auth HTTP handler.
func ProvideAuthHandler(l *applogger.Logger, authUC *usecase.AuthUseCase) *api.AuthHandler {
	return api.NewAuthHandler(l, authUC)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	rc *pkgcache.RedisCache,
	archiveConsumer *queue.RedisQueue,
	qs queue.QueueService,
	tokens *auth.Manager,
	gateHandler *api.GateHandler,
	tradesHandler *api.TradesHandler,
	authHandler *api.AuthHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	// Repeated errors collapse into digests archived via the ops queue.
	l.EnableErrorDigest(applogger.DigestConfig{
		MsgType:   usecase.ErrorDigestJobType,
		Publisher: qs,
	})
	app := server.New(cfg, l, collector, consumer, kh, chClient, rc, archiveConsumer)
	app.SetHandlers(tokens, gateHandler, tradesHandler, authHandler)
	if collector != nil {
		app.CandleProc = collector.Processor()
	}
	return app
}
