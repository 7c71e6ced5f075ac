package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/airline-booking/internal/service/flights"
)

// LocationHandler serves the autocomplete endpoints backing the search
// forms: combined, cities-only and airports-only.
type LocationHandler struct {
	service flights.FlightUseCase
}

func NewLocationHandler(service flights.FlightUseCase) *LocationHandler {
	return &LocationHandler{service: service}
}

func (h *LocationHandler) Register(router *gin.RouterGroup) {
	router.GET("/locations/search", h.searchLocations)
	router.GET("/cities/search", h.searchCities)
	router.GET("/airports/search", h.searchAirports)
}

func (h *LocationHandler) searchLocations(c *gin.Context) {
	results, err := h.service.SearchLocations(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *LocationHandler) searchCities(c *gin.Context) {
	results, err := h.service.SearchCities(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *LocationHandler) searchAirports(c *gin.Context) {
	results, err := h.service.SearchAirports(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
