// Package config loads service configuration from a YAML file with
// environment variable overrides and .env support.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
)

const (
	defaultDatabasePort     = 5432
	defaultMaxOpenConns     = 25
	defaultMaxIdleConns     = 5
	defaultConnMaxLifetime  = 5 * time.Minute
	defaultRedisAddress     = "localhost:6379"
	defaultPromotionMin     = 1
	defaultMinCatalogSize   = 10
	defaultStrategyTimeout  = 5 * time.Second
	defaultTier0CacheTTL    = 24 * time.Hour
	defaultDefaultCacheTTL  = 7 * 24 * time.Hour
	defaultWorkerCount      = 4
	defaultCrawlQueue       = "discovery:crawl_events"
	defaultSeedQueue        = "discovery:seed_urls"
	defaultTelemetryChannel = "discovery:telemetry"
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 30 * time.Second
	defaultMetricsAddress   = ":9091"
)

// Config is the root configuration for the source-discovery engine.
type Config struct {
	Debug    bool            `env:"APP_DEBUG" yaml:"debug"`
	Logging  logger.Config   `yaml:"logging"`
	Database DatabaseConfig  `yaml:"database"`
	Redis    RedisConfig     `yaml:"redis"`
	Geo      GeoConfig       `yaml:"geo"`
	Catalog  CatalogConfig   `yaml:"catalog"`
	Ledger   LedgerConfig    `yaml:"ledger"`
	Breaker  BreakerConfig   `yaml:"breaker"`
	Worker   WorkerConfig    `yaml:"worker"`
	Metrics  MetricsConfig   `yaml:"metrics"`
}

// MetricsConfig holds the Prometheus scrape endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" yaml:"enabled"`
	Address string `env:"METRICS_ADDRESS" yaml:"address"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection configuration for the geo cache,
// the crawl-event queue, and telemetry publishing.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
}

// GeoConfig holds geo-resolution engine configuration.
type GeoConfig struct {
	// StrategyTimeout bounds each remote strategy call.
	StrategyTimeout time.Duration `yaml:"strategy_timeout"`
	// RDAPEndpoint is the base URL for registry (RDAP) lookups.
	RDAPEndpoint string `env:"GEO_RDAP_ENDPOINT" yaml:"rdap_endpoint"`
	// IPAPIEndpoint is the base URL for IP-geolocation lookups.
	IPAPIEndpoint string `env:"GEO_IPAPI_ENDPOINT" yaml:"ipapi_endpoint"`
	// DirectoryEndpoint is the optional third-party media directory.
	// Empty disables the directory strategy.
	DirectoryEndpoint string `env:"GEO_DIRECTORY_ENDPOINT" yaml:"directory_endpoint"`
	// Tier0CacheTTL is the cache TTL for Tier-0 domains.
	Tier0CacheTTL time.Duration `yaml:"tier0_cache_ttl"`
	// DefaultCacheTTL is the cache TTL for everything else.
	DefaultCacheTTL time.Duration `yaml:"default_cache_ttl"`
}

// CatalogConfig holds classifier hydration configuration.
type CatalogConfig struct {
	// SeedFile is the YAML seed catalog used when the store is unavailable.
	SeedFile string `env:"CATALOG_SEED_FILE" yaml:"seed_file"`
	// MinEntries is the minimum hydrated catalog size before falling
	// through to the next hydration source.
	MinEntries int `yaml:"min_entries"`
}

// LedgerConfig holds discovery and promotion configuration.
type LedgerConfig struct {
	// PromotionThreshold is the citation count at which a candidate is
	// promoted into the catalog.
	PromotionThreshold int `yaml:"promotion_threshold"`
}

// BreakerConfig holds circuit breaker defaults for protected resources.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
}

// WorkerConfig holds crawl-event consumer configuration.
type WorkerConfig struct {
	// Count is the number of concurrent annotation workers.
	Count int `env:"WORKER_COUNT" yaml:"count"`
	// CrawlQueue is the Redis list the crawl worker pushes events onto.
	CrawlQueue string `yaml:"crawl_queue"`
	// SeedQueue is the Redis list discovered seed URLs are pushed onto.
	SeedQueue string `yaml:"seed_queue"`
	// TelemetryChannel is the Redis pub/sub channel for telemetry events.
	TelemetryChannel string `yaml:"telemetry_channel"`
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}
	return nil
}

// Load reads the config file, applies defaults and env overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg, err := loadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	setDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Geo.StrategyTimeout == 0 {
		cfg.Geo.StrategyTimeout = defaultStrategyTimeout
	}
	if cfg.Geo.RDAPEndpoint == "" {
		cfg.Geo.RDAPEndpoint = "https://rdap.org"
	}
	if cfg.Geo.IPAPIEndpoint == "" {
		cfg.Geo.IPAPIEndpoint = "http://ip-api.com/json"
	}
	if cfg.Geo.Tier0CacheTTL == 0 {
		cfg.Geo.Tier0CacheTTL = defaultTier0CacheTTL
	}
	if cfg.Geo.DefaultCacheTTL == 0 {
		cfg.Geo.DefaultCacheTTL = defaultDefaultCacheTTL
	}
	if cfg.Catalog.MinEntries == 0 {
		cfg.Catalog.MinEntries = defaultMinCatalogSize
	}
	if cfg.Ledger.PromotionThreshold == 0 {
		cfg.Ledger.PromotionThreshold = defaultPromotionMin
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = defaultFailureThreshold
	}
	if cfg.Breaker.RecoveryTimeout == 0 {
		cfg.Breaker.RecoveryTimeout = defaultRecoveryTimeout
	}
	if cfg.Worker.Count == 0 {
		cfg.Worker.Count = defaultWorkerCount
	}
	if cfg.Worker.CrawlQueue == "" {
		cfg.Worker.CrawlQueue = defaultCrawlQueue
	}
	if cfg.Worker.SeedQueue == "" {
		cfg.Worker.SeedQueue = defaultSeedQueue
	}
	if cfg.Worker.TelemetryChannel == "" {
		cfg.Worker.TelemetryChannel = defaultTelemetryChannel
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = defaultMetricsAddress
	}
}
