package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kosarica/offer-service/internal/database"
	"github.com/kosarica/offer-service/internal/http/ratelimit"
	"github.com/kosarica/offer-service/internal/ranking"
	"github.com/kosarica/offer-service/internal/routing"
	"github.com/kosarica/offer-service/internal/telemetry"
)

// Routing providers.
const (
	ProviderRoutes   = "routes"
	ProviderGeodesic = "geodesic"
)

// Catalog sources.
const (
	SourcePostgres = "postgres"
	SourceXLSX     = "xlsx"
	SourceCSV      = "csv"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Catalog   CatalogConfig    `mapstructure:"catalog"`
	Routing   RoutingConfig    `mapstructure:"routing"`
	Geocoding GeocodingConfig  `mapstructure:"geocoding"`
	Locale    LocaleConfig     `mapstructure:"locale"`
	Ranking   ranking.Config   `mapstructure:"ranking"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Auth      AuthConfig       `mapstructure:"auth"`
	Session   SessionConfig    `mapstructure:"session"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// Pool converts the section to pool settings.
func (d DatabaseConfig) Pool() database.PoolConfig {
	return database.PoolConfig{
		URL:         d.URL,
		MaxConns:    d.MaxConnections,
		MinConns:    d.MinConnections,
		MaxLifetime: d.MaxConnLifetime,
		MaxIdleTime: d.MaxConnIdleTime,
	}
}

// CatalogConfig selects where product, inventory and review rows come from.
type CatalogConfig struct {
	Source      string `mapstructure:"source"` // postgres | xlsx | csv
	XLSXPath    string `mapstructure:"xlsx_path"`
	CSVDir      string `mapstructure:"csv_dir"`
	CSVEncoding string `mapstructure:"csv_encoding"` // empty detects utf-8 or windows-1250
}

// RoutingConfig configures travel resolution.
type RoutingConfig struct {
	Provider  string                       `mapstructure:"provider"` // routes | geodesic
	BaseURL   string                       `mapstructure:"base_url"`
	APIKey    string                       `mapstructure:"api_key"`
	Timeout   time.Duration                `mapstructure:"timeout"`
	RateLimit ratelimit.Config             `mapstructure:"rate_limit"`
	Cache     routing.CacheConfig          `mapstructure:"cache"`
	Breaker   routing.CircuitBreakerConfig `mapstructure:"breaker"`
}

// GeocodingConfig configures the geocoding upstream.
type GeocodingConfig struct {
	BaseURL   string           `mapstructure:"base_url"`
	APIKey    string           `mapstructure:"api_key"`
	Timeout   time.Duration    `mapstructure:"timeout"`
	RateLimit ratelimit.Config `mapstructure:"rate_limit"`
}

// LocaleConfig configures the IP country lookup.
type LocaleConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	BaseURL   string           `mapstructure:"base_url"`
	Timeout   time.Duration    `mapstructure:"timeout"`
	RateLimit ratelimit.Config `mapstructure:"rate_limit"`
}

// RateLimitConfig holds inbound API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AuthConfig holds internal API authentication configuration
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SessionConfig holds shopper session configuration
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxSessions     int           `mapstructure:"max_sessions"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// ErrInvalidConfig is returned when a configuration value is unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables.
// Binaries call Validate once they know which sections they use.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("OFFER_SERVICE")
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Ranking.Validate(); err != nil {
		return fmt.Errorf("%w: ranking.%w", ErrInvalidConfig, err)
	}
	switch c.Routing.Provider {
	case ProviderRoutes, ProviderGeodesic:
	default:
		return fmt.Errorf("%w: routing.provider %q", ErrInvalidConfig, c.Routing.Provider)
	}
	// A failed resolution falls back to the unknown distance; it is never retried.
	if c.Routing.RateLimit.MaxRetries != 0 {
		return fmt.Errorf("%w: routing.rate_limit.max_retries must be 0", ErrInvalidConfig)
	}
	if c.Routing.Cache.CallTimeout <= 0 {
		return fmt.Errorf("%w: routing.cache.call_timeout must be positive", ErrInvalidConfig)
	}
	switch c.Catalog.Source {
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("%w: database.url is required for the postgres catalog", ErrInvalidConfig)
		}
	case SourceXLSX:
		if c.Catalog.XLSXPath == "" {
			return fmt.Errorf("%w: catalog.xlsx_path is required for the xlsx catalog", ErrInvalidConfig)
		}
	case SourceCSV:
		if c.Catalog.CSVDir == "" {
			return fmt.Errorf("%w: catalog.csv_dir is required for the csv catalog", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: catalog.source %q", ErrInvalidConfig, c.Catalog.Source)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("%w: session.ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

// loadEnvFile loads the first .env file found.
func loadEnvFile() error {
	for _, path := range []string{".env", "./config/.env"} {
		if _, err := os.Stat(path); err == nil {
			return godotenv.Load(path)
		}
	}
	return errors.New("no .env file found")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Database
	_ = v.BindEnv("database.url", "DATABASE_URL")

	// Server
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.host", "HOST")

	// Logging
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	// Upstreams
	_ = v.BindEnv("routing.api_key", "ROUTES_API_KEY")
	_ = v.BindEnv("geocoding.api_key", "GEOCODING_API_KEY")

	// Auth
	_ = v.BindEnv("auth.api_key", "INTERNAL_API_KEY")

	// Telemetry
	_ = v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("telemetry.service_name", "OTEL_SERVICE_NAME")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Catalog defaults
	v.SetDefault("catalog.source", SourcePostgres)
	v.SetDefault("catalog.xlsx_path", "")
	v.SetDefault("catalog.csv_dir", "")
	v.SetDefault("catalog.csv_encoding", "")

	// Routing defaults
	routeLimits := ratelimit.DefaultConfig()
	cache := routing.DefaultCacheConfig()
	breaker := routing.DefaultCircuitBreakerConfig()
	v.SetDefault("routing.provider", ProviderRoutes)
	v.SetDefault("routing.base_url", routing.DefaultRoutesURL)
	v.SetDefault("routing.api_key", "")
	v.SetDefault("routing.timeout", 5*time.Second)
	v.SetDefault("routing.rate_limit.requests_per_second", routeLimits.RequestsPerSecond)
	v.SetDefault("routing.rate_limit.burst", routeLimits.Burst)
	v.SetDefault("routing.rate_limit.max_retries", routeLimits.MaxRetries)
	v.SetDefault("routing.rate_limit.initial_backoff", routeLimits.InitialBackoff)
	v.SetDefault("routing.rate_limit.max_backoff", routeLimits.MaxBackoff)
	v.SetDefault("routing.cache.ttl", cache.TTL)
	v.SetDefault("routing.cache.max_entries", cache.MaxEntries)
	v.SetDefault("routing.cache.call_timeout", cache.CallTimeout)
	v.SetDefault("routing.cache.cleanup_interval", cache.CleanupInterval)
	v.SetDefault("routing.breaker.max_failures", breaker.MaxFailures)
	v.SetDefault("routing.breaker.reset_timeout", breaker.ResetTimeout)
	v.SetDefault("routing.breaker.half_open_max_calls", breaker.HalfOpenMaxCalls)

	// Geocoding defaults
	v.SetDefault("geocoding.base_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("geocoding.api_key", "")
	v.SetDefault("geocoding.timeout", 5*time.Second)
	v.SetDefault("geocoding.rate_limit.requests_per_second", 10)
	v.SetDefault("geocoding.rate_limit.burst", 10)
	v.SetDefault("geocoding.rate_limit.max_retries", 1)
	v.SetDefault("geocoding.rate_limit.initial_backoff", 200*time.Millisecond)
	v.SetDefault("geocoding.rate_limit.max_backoff", 2*time.Second)

	// Locale defaults
	v.SetDefault("locale.enabled", true)
	v.SetDefault("locale.base_url", "http://ip-api.com/json")
	v.SetDefault("locale.timeout", 2*time.Second)
	// The free lookup tier allows 45 requests per minute.
	v.SetDefault("locale.rate_limit.requests_per_second", 0.75)
	v.SetDefault("locale.rate_limit.burst", 5)
	v.SetDefault("locale.rate_limit.max_retries", 0)

	// Ranking defaults
	rk := ranking.Defaults()
	v.SetDefault("ranking.max_concurrent_resolutions_per_product", rk.MaxConcurrentResolutionsPerProduct)
	v.SetDefault("ranking.max_concurrent_resolutions", rk.MaxConcurrentResolutions)
	v.SetDefault("ranking.max_concurrent_products", rk.MaxConcurrentProducts)
	v.SetDefault("ranking.resolve_timeout", rk.ResolveTimeout)
	v.SetDefault("ranking.min_max_reasonable_distance", rk.MinMaxReasonableDistance)
	v.SetDefault("ranking.default_max_reasonable_distance", rk.DefaultMaxReasonableDistance)

	// Inbound rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	// Auth defaults
	v.SetDefault("auth.api_key", "")

	// Session defaults
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", time.Minute)
	v.SetDefault("session.max_sessions", 10000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "offer-service")
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
