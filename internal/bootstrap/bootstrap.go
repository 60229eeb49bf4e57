// Package bootstrap wires the service together in phases: configuration,
// logging, storage, Redis, the discovery engine, and finally the crawl
// worker. Each phase fails fast with a wrapped error.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/classifier"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/config"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/database"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/discovery"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/engine"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/events"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/geo"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/metrics"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/repository"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/worker"
)

// redisPingTimeout bounds the Redis connectivity check at startup.
const redisPingTimeout = 5 * time.Second

// App holds the assembled service.
type App struct {
	Config *config.Config
	Log    logger.Logger
	Engine *engine.Engine

	db      *database.DB
	redis   *redis.Client
	worker  *worker.Worker
	metrics *http.Server
}

// New builds the application from a config file path.
func New(configPath string) (*App, error) {
	cfg, err := config.Load(config.GetConfigPath(configPath))
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if cfg.Debug {
		logCfg.Development = true
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
			return nil, fmt.Errorf("ping redis: %w", pingErr)
		}
		log.Info("Redis connection established", logger.String("address", cfg.Redis.Address))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	app := &App{Config: cfg, Log: log, db: db, redis: redisClient}
	app.assemble(m)

	if cfg.Metrics.Enabled {
		app.metrics = metricsServer(cfg.Metrics.Address, registry)
	}
	return app, nil
}

// assemble wires repositories, classifier, geo chain, ledger, engine, and
// worker from the already-open connections.
func (a *App) assemble(m *metrics.Metrics) {
	cfg, log := a.Config, a.Log

	catalogRepo := repository.NewCatalogRepository(a.db.DB(), log)
	candidateRepo := repository.NewCandidateRepository(a.db.DB(), log)
	fingerprintRepo := repository.NewFingerprintRepository(a.db.DB(), log)

	cls := classifier.New(nil, log)
	hydrator := classifier.NewHydrator(catalogRepo, cfg.Catalog.SeedFile, cfg.Catalog.MinEntries, log)
	hydrator.Hydrate(context.Background(), cls)

	if count, err := catalogRepo.CountEffective(context.Background()); err != nil {
		log.Warn("catalog effectiveness count failed", logger.Error(err))
	} else {
		m.CatalogEffective.Set(float64(count))
	}

	breakers := circuitbreaker.NewRegistry(
		circuitbreaker.Config{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			RecoveryTimeout:  cfg.Breaker.RecoveryTimeout,
		},
		func(resource string, _, to circuitbreaker.State) {
			m.BreakerTransitions.WithLabelValues(resource, to.String()).Inc()
			log.Warn("circuit breaker state change",
				logger.String("resource", resource),
				logger.String("state", to.String()),
			)
		},
	)

	var cache *geo.Cache
	var publisher *events.Publisher
	if a.redis != nil {
		cache = geo.NewCache(a.redis, cfg.Geo.Tier0CacheTTL, cfg.Geo.DefaultCacheTTL, log)
		publisher = events.NewPublisher(a.redis, cfg.Worker.SeedQueue, cfg.Worker.TelemetryChannel, log)
	}

	chain := geo.NewChain(&cfg.Geo, breakers, m, cls.Overrides())
	resolver := geo.NewResolver(chain, cache, m, log)

	ledger := discovery.NewLedger(
		a.db.DB(), catalogRepo, candidateRepo, publisher,
		cfg.Ledger.PromotionThreshold, m, log,
	)

	a.Engine = engine.New(resolver, cls, hydrator, ledger, catalogRepo, fingerprintRepo, log)

	if a.redis != nil {
		a.worker = worker.New(a.redis, a.Engine, publisher, cfg.Worker.CrawlQueue, cfg.Worker.Count, log)
	}
}

func metricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run starts the metrics endpoint and the crawl worker, blocking until ctx
// is cancelled. Without Redis there is no queue to drain, so Run just
// waits for shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.metrics != nil {
		go func() {
			a.Log.Info("metrics endpoint listening", logger.String("address", a.metrics.Addr))
			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Log.Error("metrics server failed", logger.Error(err))
			}
		}()
	}

	if a.worker == nil {
		a.Log.Warn("redis disabled, no crawl queue to consume")
		<-ctx.Done()
		return nil
	}
	return a.worker.Run(ctx)
}

// Close releases all connections.
func (a *App) Close() {
	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("metrics server shutdown", logger.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("redis close", logger.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Log.Warn("database close", logger.Error(err))
		}
	}
	_ = a.Log.Sync()
}
