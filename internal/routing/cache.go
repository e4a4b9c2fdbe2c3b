package routing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
)

// CacheConfig configures the route cache.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:             15 * time.Minute,
		MaxEntries:      50_000,
		CallTimeout:     5 * time.Second,
		CleanupInterval: time.Minute,
	}
}

type cacheEntry struct {
	route     ranking.Route
	expiresAt time.Time
}

// CachingResolver memoizes successful resolutions for TTL and collapses
// concurrent lookups of the same (origin, destination, mode) into one upstream
// call. Failures are never cached.
type CachingResolver struct {
	next   ranking.Resolver
	config CacheConfig
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry

	now    func() time.Time
	logger zerolog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewCachingResolver wraps next with a TTL cache and starts the cleanup loop.
// Call Close to stop it.
func NewCachingResolver(next ranking.Resolver, config CacheConfig) *CachingResolver {
	c := &CachingResolver{
		next:    next,
		config:  config,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		logger:  log.With().Str("component", "route_cache").Logger(),
		stop:    make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop()
	}
	return c
}

// Resolve implements ranking.Resolver.
func (c *CachingResolver) Resolve(ctx context.Context, origin geo.Coordinate, destination string, mode ranking.TravelMode) (ranking.Route, error) {
	key := cacheKey(origin, destination, mode)

	if route, ok := c.get(key); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return route, nil
	}

	// The shared call must outlive any single caller, so it runs on a detached
	// context bounded by CallTimeout.
	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.CallTimeout)
		defer cancel()

		route, err := c.next.Resolve(callCtx, origin, destination, mode)
		if err != nil {
			return ranking.Route{}, err
		}
		c.put(key, route)
		return route, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			cacheLookups.WithLabelValues("shared").Inc()
		} else {
			cacheLookups.WithLabelValues("miss").Inc()
		}
		return res.Val.(ranking.Route), res.Err
	case <-ctx.Done():
		return ranking.Route{}, ctx.Err()
	}
}

// Len returns the number of cached routes, expired ones included until the next cleanup.
func (c *CachingResolver) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every cached route.
func (c *CachingResolver) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	cacheEntries.Set(0)
}

// Close stops the cleanup loop.
func (c *CachingResolver) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	c.wg.Wait()
}

func (c *CachingResolver) get(key string) (ranking.Route, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return ranking.Route{}, false
	}
	return entry.route, true
}

func (c *CachingResolver) put(key string, route ranking.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxEntries > 0 && len(c.entries) >= c.config.MaxEntries {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{route: route, expiresAt: c.now().Add(c.config.TTL)}
	cacheEntries.Set(float64(len(c.entries)))
}

// evictLocked drops expired entries, or an arbitrary one if none expired.
func (c *CachingResolver) evictLocked() {
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		return
	}
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func (c *CachingResolver) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := c.now()
			removed := 0
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
					removed++
				}
			}
			cacheEntries.Set(float64(len(c.entries)))
			c.mu.Unlock()

			if removed > 0 {
				c.logger.Debug().Int("removed", removed).Msg("Expired routes removed")
			}
		}
	}
}

func cacheKey(origin geo.Coordinate, destination string, mode ranking.TravelMode) string {
	return origin.String() + "|" + strings.ToLower(strings.TrimSpace(destination)) + "|" + string(mode)
}
