package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/offer-service/internal/ranking"
)

// RankOffers runs a single ranking pass for the supplied shopper context
// @Summary Rank offers
// @Description Aggregates offers per product, resolves travel from the shopper location, scores, filters and sorts them
// @Tags offers
// @Accept json
// @Produce json
// @Param request body RankRequest true "Shopper context and query"
// @Success 200 {object} ResultResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Ranking not initialized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/offers/rank [post]
func RankOffers(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if rankingService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ranking not initialized"})
		return
	}

	shopper := ranking.ShopperContext{
		Location:   req.Location.coordinate(),
		Unit:       unitFor(c, req.Unit),
		Constraint: req.Constraint.travel(),
	}
	if err := shopper.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := rankingService.Rank(c.Request.Context(), shopper, req.query())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResultResponse(result, shopper.Unit))
}
