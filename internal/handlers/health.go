package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/offer-service/internal/database"
	"github.com/kosarica/offer-service/internal/routing"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Routing  string `json:"routing"`
	Sessions int    `json:"sessions"`
}

// HealthCheck handles the health check endpoint
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Routing: "not configured",
	}

	if routeBreaker != nil {
		state := routeBreaker.State()
		response.Routing = state.String()
		// Travel falls back to unresolved while the breaker is open; ranking still works.
		if state == routing.CircuitOpen {
			response.Status = "degraded"
		}
	}
	if sessionManager != nil {
		response.Sessions = sessionManager.Len()
	}

	// Check database connection
	if database.Pool() != nil {
		err := database.Status(c.Request.Context())
		if err != nil {
			response.Status = "unavailable"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
