package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/offer-service/internal/geocoding"
	"github.com/kosarica/offer-service/internal/ranking"
	"github.com/kosarica/offer-service/internal/routing"
	"github.com/kosarica/offer-service/internal/session"
)

// Ranker runs one ranking pass.
type Ranker interface {
	Rank(ctx context.Context, shopper ranking.ShopperContext, q ranking.Query) (*ranking.Result, error)
}

// Geocoder turns an address into a location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, error)
}

// UnitLocator picks the distance unit for a client IP.
type UnitLocator interface {
	UnitFor(ctx context.Context, ip string) ranking.DistanceUnit
}

// Global service instances (initialized by the application)
var (
	rankingService Ranker
	sessionManager *session.Manager
	geocoder       Geocoder
	unitLocator    UnitLocator
	routeBreaker   *routing.CircuitBreaker
)

// InitRanking wires the ranking service and the session manager.
// This should be called during application startup
func InitRanking(ranker Ranker, sessions *session.Manager) {
	rankingService = ranker
	sessionManager = sessions
}

// InitGeo wires the geocoding client, the locale lookup and the routing breaker.
// Any of them may be nil.
func InitGeo(g Geocoder, locator UnitLocator, breaker *routing.CircuitBreaker) {
	geocoder = g
	unitLocator = locator
	routeBreaker = breaker
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var invalid ranking.ErrInvalidRequest
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "field": invalid.Field})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, session.ErrTooManySessions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Ranking did not finish in time"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// unitFor returns the requested unit, or the client's regional unit when unset.
func unitFor(c *gin.Context, requested string) ranking.DistanceUnit {
	if requested != "" {
		return ranking.DistanceUnit(requested)
	}
	if unitLocator == nil {
		return ranking.UnitKilometers
	}
	return unitLocator.UnitFor(c.Request.Context(), c.ClientIP())
}

// RegisterRoutes mounts the public API on group.
func RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/offers/rank", RankOffers)
	group.GET("/geocode", Geocode)

	sessions := group.Group("/sessions")
	{
		sessions.POST("", CreateSession)
		sessions.GET("/:id", GetSession)
		sessions.DELETE("/:id", DeleteSession)
		sessions.PUT("/:id/location", SetSessionLocation)
		sessions.PUT("/:id/constraint", SetSessionConstraint)
		sessions.POST("/:id/refresh", RefreshSession)
		sessions.GET("/:id/results", GetSessionResults)
	}
}
