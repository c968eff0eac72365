package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ricoshapp/stylehub/internal/geocode"
	"github.com/ricoshapp/stylehub/internal/models"
)

// GeocodeHandler exposes the geocoder gateway for address autocompletion and
// coordinate lookups from the client.
type GeocodeHandler struct {
	geocoder geocode.IGeocoder
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder geocode.IGeocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Forward handles GET /v1/geocode?q=<address>.
func (h *GeocodeHandler) Forward(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter 'q'"})
		return
	}

	record, err := h.geocoder.Forward(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Reverse handles GET /v1/geocode/reverse?lat=<lat>&lng=<lng>.
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters 'lat' and 'lng' must be numbers"})
		return
	}

	record, err := h.geocoder.Reverse(c.Request.Context(), models.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *GeocodeHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No match for that location"})
	case errors.Is(err, geocode.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding service is unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Geocoding failed"})
	}
}
