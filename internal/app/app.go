// Package app assembles the catalog source and upstream clients from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kosarica/offer-service/config"
	"github.com/kosarica/offer-service/internal/catalog"
	"github.com/kosarica/offer-service/internal/database"
	"github.com/kosarica/offer-service/internal/geocoding"
	httpclient "github.com/kosarica/offer-service/internal/http"
	"github.com/kosarica/offer-service/internal/locale"
	"github.com/kosarica/offer-service/internal/ranking"
	"github.com/kosarica/offer-service/internal/routing"
)

// Upstreams holds the outbound clients of the service.
type Upstreams struct {
	// Resolver is the full chain: cache, breaker, then the configured provider.
	Resolver ranking.Resolver
	Breaker  *routing.CircuitBreaker
	Cache    *routing.CachingResolver
	Geocoder *geocoding.Client
	// Locale is nil when the lookup is disabled.
	Locale *locale.Client
}

// NewUpstreams builds the resolver chain and the geo clients.
func NewUpstreams(cfg *config.Config) *Upstreams {
	geoHTTP := httpclient.NewClient(cfg.Geocoding.RateLimit, httpclient.WithTimeout(cfg.Geocoding.Timeout))
	geocoder := geocoding.NewClient(geoHTTP, cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey)

	var provider ranking.Resolver
	switch cfg.Routing.Provider {
	case config.ProviderGeodesic:
		provider = routing.NewGeodesicResolver(geocoder)
	default:
		routeHTTP := httpclient.NewClient(cfg.Routing.RateLimit, httpclient.WithTimeout(cfg.Routing.Timeout))
		provider = routing.NewRoutesClient(routeHTTP, cfg.Routing.BaseURL, cfg.Routing.APIKey)
	}

	breakerCfg := cfg.Routing.Breaker
	breaker := routing.NewCircuitBreaker(cfg.Routing.Provider, &breakerCfg)
	cache := routing.NewCachingResolver(routing.NewBreakerResolver(provider, breaker), cfg.Routing.Cache)

	u := &Upstreams{
		Resolver: cache,
		Breaker:  breaker,
		Cache:    cache,
		Geocoder: geocoder,
	}
	if cfg.Locale.Enabled {
		u.Locale = locale.NewClient(httpclient.NewClient(cfg.Locale.RateLimit, httpclient.WithTimeout(cfg.Locale.Timeout)), cfg.Locale.BaseURL)
	}

	log.Info().
		Str("provider", cfg.Routing.Provider).
		Bool("locale", cfg.Locale.Enabled).
		Dur("cache_ttl", cfg.Routing.Cache.TTL).
		Msg("Upstreams configured")
	return u
}

// Close stops background work of the resolver cache.
func (u *Upstreams) Close() {
	if u.Cache != nil {
		u.Cache.Close()
	}
}

// OpenSource opens the configured catalog source. For postgres it connects
// the shared pool and makes sure the catalog tables exist.
func OpenSource(ctx context.Context, cfg *config.Config) (ranking.CatalogSource, error) {
	switch cfg.Catalog.Source {
	case config.SourceXLSX:
		return catalog.NewXLSXSource(cfg.Catalog.XLSXPath), nil
	case config.SourceCSV:
		return catalog.NewCSVSource(cfg.Catalog.CSVDir, cfg.Catalog.CSVEncoding), nil
	case config.SourcePostgres:
		if err := database.Connect(ctx, cfg.Database.Pool()); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		source := catalog.NewPostgresSource(database.Pool())
		if err := source.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return source, nil
	default:
		return nil, fmt.Errorf("%w: catalog.source %q", config.ErrInvalidConfig, cfg.Catalog.Source)
	}
}
