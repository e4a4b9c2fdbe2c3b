package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/offer-service/internal/geocoding"
)

// Geocode resolves a street address to a location
// @Summary Geocode address
// @Description Resolves a postal address to WGS 84 coordinates for the store locator
// @Tags geo
// @Produce json
// @Param address query string true "Street address"
// @Success 200 {object} GeocodeResponse
// @Failure 400 {object} map[string]string "Missing address"
// @Failure 404 {object} map[string]string "Address not found"
// @Failure 502 {object} map[string]string "Upstream failure"
// @Failure 503 {object} map[string]string "Geocoding not configured"
// @Router /api/v1/geocode [get]
func Geocode(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	if geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding not configured"})
		return
	}

	result, err := geocoder.Geocode(c.Request.Context(), address)
	switch {
	case errors.Is(err, geocoding.ErrNoResult):
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	case err != nil:
		log.Warn().Err(err).Str("address", address).Msg("Geocoding failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding failed"})
		return
	}

	c.JSON(http.StatusOK, GeocodeResponse{
		Address:          address,
		FormattedAddress: result.FormattedAddress,
		Location:         Location{Latitude: result.Location.Latitude, Longitude: result.Location.Longitude},
	})
}
