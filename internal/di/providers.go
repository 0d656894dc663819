package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinCast/internal/domain/repository"
	"FinCast/internal/handler/api"
	"FinCast/internal/handler/ws"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/scheduler"
	"FinCast/internal/service/cache"
	apimetrics "FinCast/internal/service/metrics"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/service/yahoo"
	"FinCast/internal/services/forecast"
	"FinCast/internal/usecase"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/server"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// ForecastSinks lists every destination a completed forecast is published to.
type ForecastSinks []repository.ForecastSink

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

var (
	recorderOnce sync.Once
	recorder     *metrics.Recorder
)

// ProvideMetrics returns the process-wide Prometheus recorder and registers API collectors.
func ProvideMetrics() repository.Metrics {
	recorderOnce.Do(func() {
		apimetrics.Register()
		recorder = metrics.New()
	})
	return recorder
}

// ProvideCalendar builds the business-day calendar with configured holidays.
func ProvideCalendar(cfg *config.Config) (*forecast.Calendar, error) {
	return forecast.NewCalendar(cfg.Calendar.Holidays)
}

// ProvidePipeline creates the indicator-and-forecast pipeline.
func ProvidePipeline(cal *forecast.Calendar) *forecast.Pipeline {
	return forecast.NewPipeline(cal)
}

// ProvideClickHouseClient connects and prepares the schema. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, pkgch.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready", applogger.String("database", cfg.ClickHouse.Database))
	return client, nil
}

// ProvideHistoryStore returns the ClickHouse close store, or nil without ClickHouse.
func ProvideHistoryStore(ch *pkgch.Client, l *applogger.Logger) repository.HistoryStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHHistoryStore(ch, l)
}

// ProvideBytesCache returns Redis when enabled and reachable, otherwise an in-process TTL cache.
func ProvideBytesCache(cfg *config.Config, l *applogger.Logger) cache.BytesCache {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache()
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unreachable, using in-process cache", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
		_ = rc.Close()
		return cache.NewTTLCache()
	}
	return rc
}

// ProvidePriceSource composes the configured provider, the store fallback and the cache.
func ProvidePriceSource(
	cfg *config.Config,
	store repository.HistoryStore,
	c cache.BytesCache,
	l *applogger.Logger,
) repository.PriceSource {
	var src repository.PriceSource
	switch {
	case cfg.Source.Provider == "clickhouse" && store != nil:
		src = store
	default:
		src = yahoo.New(nil, l)
		if store != nil && cfg.Source.FallbackToStore {
			src = internalrepo.NewFallbackPriceSource(src, store, l)
		}
	}
	return internalrepo.NewCachedPriceSource(src, c, cfg.Cache.TTL, l)
}

// ProvideKafkaProducer creates a Kafka producer. Returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
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

// ProvideHub creates the live forecast hub. Returns nil when websockets are disabled.
func ProvideHub(cfg *config.Config, l *applogger.Logger) *ws.Hub {
	if !cfg.WebSocket.Enabled {
		return nil
	}
	return ws.NewHub(l,
		ws.WithPath(cfg.WebSocket.Path),
		ws.WithTimings(cfg.WebSocket.PingInterval, cfg.WebSocket.WriteTimeout),
	)
}

// ProvideSinks collects the enabled forecast destinations.
func ProvideSinks(cfg *config.Config, ch *pkgch.Client, producer *pkgkafka.Producer, hub *ws.Hub) ForecastSinks {
	var sinks ForecastSinks
	if ch != nil {
		sinks = append(sinks, internalrepo.NewCHForecastArchive(ch))
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.ResultTopic))
	}
	if hub != nil {
		sinks = append(sinks, hub)
	}
	return sinks
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	cfg *config.Config,
	src repository.PriceSource,
	pipeline *forecast.Pipeline,
	m repository.Metrics,
	sinks ForecastSinks,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(src, pipeline, cfg.Engine, m, l,
		usecase.WithSinks(sinks...),
		usecase.WithLookbackDays(cfg.Source.LookbackDays),
		usecase.WithTimeout(cfg.Source.Timeout),
	)
}

// ProvideBatchUseCase creates the multi-symbol use case.
func ProvideBatchUseCase(uc *usecase.ForecastUseCase) *usecase.BatchUseCase {
	return usecase.NewBatchUseCase(uc, 4)
}

// ProvideForecastHandler creates the HTTP handler.
func ProvideForecastHandler(l *applogger.Logger, uc *usecase.ForecastUseCase, batch *usecase.BatchUseCase) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l, uc, batch)
}

// ProvideHTTPServer builds the Echo server with every enabled handler and middleware.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.ForecastEchoHandler, hub *ws.Hub) *xhttp.Server {
	handlers := []xhttp.Handler{h}
	if hub != nil {
		handlers = append(handlers, hub)
	}
	var mw []echo.MiddlewareFunc
	if cfg.Server.RequestTimeout > 0 {
		mw = append(mw, echomw.ContextTimeout(cfg.Server.RequestTimeout))
	}
	if cfg.RateLimit.Enabled {
		mw = append(mw, ratelimit.Middleware(ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)))
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithMiddleware(mw...),
	)
}

// ProvideKafkaConsumer creates the forecast request consumer. Returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, uc *usecase.ForecastUseCase) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
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
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewLoggingHook(l))
	consumer.RegisterHandler(usecase.NewKafkaForecastHandler(cfg.Kafka.RequestTopic, uc))
	return consumer, nil
}

// ProvideScheduler registers the watchlist refresh. Returns nil when the scheduler is disabled.
func ProvideScheduler(cfg *config.Config, l *applogger.Logger, batch *usecase.BatchUseCase) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	refresh := usecase.NewWatchlistRefresh(batch, cfg.Scheduler.Watchlist, cfg.Scheduler.Timeout, l)
	s := scheduler.New(l)
	if err := s.Register("watchlist_refresh", cfg.Scheduler.Spec, func(ctx context.Context) { refresh.Run(ctx) }); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideApp assembles the application from its runnable components and closers.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	sched *scheduler.Scheduler,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	hub *ws.Hub,
	c cache.BytesCache,
) *server.App {
	app := server.New(l, cfg.Server.ShutdownTimeout)
	app.AddComponent("http", httpServer)
	if consumer != nil {
		app.AddComponent("kafka_consumer", consumer)
	}
	if sched != nil {
		app.AddComponent("scheduler", sched)
	}
	if hub != nil {
		app.AddCloser("websocket_hub", func() error { hub.Close(); return nil })
	}
	if producer != nil {
		app.AddCloser("kafka_producer", producer.Close)
	}
	if ch != nil {
		app.AddCloser("clickhouse", ch.Close)
	}
	if rc, ok := c.(*cache.RedisCache); ok {
		app.AddCloser("redis", rc.Close)
	}
	return app
}
