package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/offer-service/internal/ranking"
)

func sessionsReady(c *gin.Context) bool {
	if sessionManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sessions not initialized"})
		return false
	}
	return true
}

// CreateSession starts a shopper session
// @Summary Create session
// @Description Creates a shopper session. The distance unit is derived from the client's country when not supplied
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Initial shopper context"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Too many sessions"
// @Router /api/v1/sessions [post]
func CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !sessionsReady(c) {
		return
	}

	view, err := sessionManager.Create(ranking.ShopperContext{
		Location:   req.Location.coordinate(),
		Unit:       unitFor(c, req.Unit),
		Constraint: req.Constraint.travel(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(view))
}

// GetSession returns a shopper session
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/v1/sessions/{id} [get]
func GetSession(c *gin.Context) {
	if !sessionsReady(c) {
		return
	}
	view, err := sessionManager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(view))
}

// SetSessionLocation replaces the shopper location and starts a new pass
// @Summary Set session location
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SetLocationRequest true "New location, null to clear"
// @Success 202 {object} SessionResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/v1/sessions/{id}/location [put]
func SetSessionLocation(c *gin.Context) {
	var req SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !sessionsReady(c) {
		return
	}

	view, err := sessionManager.SetLocation(c.Param("id"), req.Location.coordinate())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, sessionResponse(view))
}

// SetSessionConstraint replaces the travel constraint and starts a new pass
// @Summary Set session travel constraint
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body Constraint true "Travel constraint"
// @Success 202 {object} SessionResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/v1/sessions/{id}/constraint [put]
func SetSessionConstraint(c *gin.Context) {
	var req Constraint
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !sessionsReady(c) {
		return
	}

	view, err := sessionManager.SetConstraint(c.Param("id"), req.travel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, sessionResponse(view))
}

// RefreshSession stores a new query and starts a new pass
// @Summary Refresh session results
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body QueryOptions false "Search and ordering options"
// @Success 202 {object} SessionResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/v1/sessions/{id}/refresh [post]
func RefreshSession(c *gin.Context) {
	var req QueryOptions
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if !sessionsReady(c) {
		return
	}

	view, err := sessionManager.Refresh(c.Param("id"), req.query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, sessionResponse(view))
}

// GetSessionResults returns the latest results of a session
// @Summary Get session results
// @Description Returns the latest published pass. While a newer pass runs, loading is true and the previous products are kept
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ResultResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/v1/sessions/{id}/results [get]
func GetSessionResults(c *gin.Context) {
	if !sessionsReady(c) {
		return
	}
	id := c.Param("id")

	view, err := sessionManager.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := sessionManager.Results(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(&result, view.Shopper.Unit))
}

// DeleteSession ends a session
// @Summary Delete session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/v1/sessions/{id} [delete]
func DeleteSession(c *gin.Context) {
	if !sessionsReady(c) {
		return
	}
	if err := sessionManager.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
