package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"aiwealth/internal/brain"
	"aiwealth/internal/domain/repository"
	domsvc "aiwealth/internal/domain/service"
	"aiwealth/internal/handler/api"
	mid "aiwealth/internal/middleware"
	internalrepo "aiwealth/internal/repository"
	icache "aiwealth/internal/service/cache"
	"aiwealth/internal/service/settings"
	"aiwealth/internal/service/signalgen"
	"aiwealth/internal/services/aiwbackend"
	"aiwealth/internal/usecase"
	pkgcache "aiwealth/pkg/cache"
	pkgch "aiwealth/pkg/clickhouse"
	"aiwealth/pkg/config"
	pkgkafka "aiwealth/pkg/kafka"
	applogger "aiwealth/pkg/logger"
	"aiwealth/pkg/metrics"
	pkgqueue "aiwealth/pkg/queue"
	"aiwealth/pkg/server"
)

// ProvideLogger creates the shared application logger with the recent-errors
// buffer the console serves.
func ProvideLogger() (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		return nil, err
	}
	l.AddCollector(&applogger.CollectionConfig{Retention: time.Hour, MaxUnique: 200})
	return l, nil
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS aiw",
		`CREATE TABLE IF NOT EXISTS aiw.run_log (
			run_date String, env String, mode String,
			row_count UInt32, safe_count UInt32, watch_count UInt32, block_count UInt32,
			manual_count UInt32, total_capital Float64, estimated_loss Float64,
			brain_version String, policy_version String, settings_used String,
			warnings Array(String), errors Array(String), created_at DateTime
		) ENGINE=MergeTree ORDER BY (run_date, env, created_at)`,
		`CREATE TABLE IF NOT EXISTS aiw.enriched_rows (
			run_date String, env String, symbol String, profile String,
			risk_bucket String, safety_class String, suggestion String,
			expected_return_pct Nullable(Float64), downside_pct Nullable(Float64),
			rr_ratio Nullable(Float64), capital_required Nullable(Float64),
			short_reason String
		) ENGINE=MergeTree ORDER BY (run_date, env, symbol)`,
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

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBrain creates the core evaluation engine.
func ProvideBrain(cfg *config.Config) domsvc.Enricher {
	if cfg.Brain.Workers > 1 {
		return brain.New(brain.WithWorkers(cfg.Brain.Workers))
	}
	return brain.New()
}

// ProvideRedisCache creates the Redis cache backing settings and responses.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		host, portStr = cfg.Redis.Addr, "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideCacheService layers an in-process cache over Redis.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service {
	return pkgcache.NewLayeredCache(rc)
}

// ProvideSettingsStore creates the settings payload store.
func ProvideSettingsStore(cache pkgcache.Service) repository.SettingsStore {
	return settings.NewStore(cache)
}

// ProvideRunLogStore creates ClickHouse run-log storage.
func ProvideRunLogStore(chClient *pkgch.Client, cfg *config.Config) repository.RunLogStore {
	runTable := cfg.ClickHouse.RunTable
	if runTable == "" {
		runTable = "aiw.run_log"
	}
	rowsTable := cfg.ClickHouse.RowsTable
	if rowsTable == "" {
		rowsTable = "aiw.enriched_rows"
	}
	return internalrepo.NewClickHouseRunLog(chClient.DB(), runTable, rowsTable)
}

// ProvideRunPublisher creates the Kafka publisher for evaluated runs.
func ProvideRunPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideReportStream creates the signal-generation WebSocket stream.
func ProvideReportStream(cfg *config.Config) repository.ReportStream {
	return signalgen.New(
		cfg.SignalGen.APIKey,
		cfg.SignalGen.WebSocketURL,
		cfg.SignalGen.Envs,
		cfg.SignalGen.ReconnectDelay,
		cfg.SignalGen.PingInterval,
	)
}

// ProvideReportFetcher creates the backend REST client.
func ProvideReportFetcher(cfg *config.Config) domsvc.ReportFetcher {
	return aiwbackend.NewHTTPReportFetcher(cfg)
}

// ProvideProfileFetcher creates the backend profile lookup client.
func ProvideProfileFetcher(cfg *config.Config) domsvc.ProfileFetcher {
	return aiwbackend.NewHTTPProfileFetcher(cfg)
}

// ProvideReportProcessor creates the report processor use case.
func ProvideReportProcessor(
	brainSvc domsvc.Enricher,
	settingsStore repository.SettingsStore,
	pub repository.Publisher,
	store repository.RunLogStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ReportProcessor {
	return usecase.NewReportProcessor(
		brainSvc,
		settingsStore,
		pub,
		store,
		metrics,
		cfg.Backend.Type,
	)
}

// ProvideReportCollector creates the report collector use case.
func ProvideReportCollector(
	stream repository.ReportStream,
	processor *usecase.ReportProcessor,
	metrics repository.Metrics,
) *usecase.ReportCollector {
	// Build middleware pipeline between WebSocket and the processor
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(5),
		mid.WithBufferSize(256),
	)
	return usecase.NewReportCollector(stream, processor, metrics, pipe)
}

// ProvideKafkaRunsHandler registers the handler for the runs topic.
func ProvideKafkaRunsHandler(store repository.RunLogStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaRunsHandler {
	return usecase.NewKafkaRunsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideReplayQueue creates the Redis-backed replay queue with its job.
func ProvideReplayQueue(
	lgr *applogger.Logger,
	cfg *config.Config,
	rc *pkgcache.RedisCache,
	backend domsvc.ReportFetcher,
	processor *usecase.ReportProcessor,
) *pkgqueue.RedisQueue {
	qcfg := &pkgqueue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	job := usecase.NewReplayJob(backend, processor)
	return pkgqueue.NewRedisConsumer(lgr, qcfg, rc.Client(), []pkgqueue.Job{job})
}

// ProvideConsoleUseCase creates the console use case.
func ProvideConsoleUseCase(
	brainSvc domsvc.Enricher,
	backend domsvc.ReportFetcher,
	profileFetcher domsvc.ProfileFetcher,
	settingsStore repository.SettingsStore,
	runlog repository.RunLogStore,
	queue *pkgqueue.RedisQueue,
) *usecase.ConsoleUseCase {
	return usecase.NewConsoleUseCase(brainSvc, backend, profileFetcher, settingsStore, runlog, queue)
}

// ProvideConsoleHandler creates the Echo console handler. With Redis
// available the /cached endpoints share their response cache across replicas.
func ProvideConsoleHandler(lgr *applogger.Logger, uc *usecase.ConsoleUseCase, runlog repository.RunLogStore, rc *pkgcache.RedisCache) *api.ConsoleEchoHandler {
	h := api.NewConsoleEchoHandler(lgr, uc, runlog)
	if rc != nil {
		h.SetBytesCache(icache.NewRedisBytesCache(rc.Client()))
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	lgr *applogger.Logger,
	cfg *config.Config,
	collector *usecase.ReportCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRunsHandler,
	chClient *pkgch.Client,
	queue *pkgqueue.RedisQueue,
	handler *api.ConsoleEchoHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.LoggingHook{L: lgr, SlowThreshold: time.Second})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, queue)
	app.SetHTTPHandler(handler)
	// attach report processor to app for closing resources via collector
	if collector != nil {
		app.ReportProc = collector.Processor()
	}
	return app
}
