package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/airline-booking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.list)
	router.GET("/flights/:fnum", h.get)
	router.GET("/flight-instances", h.search)
	router.GET("/flight-instances/popular", h.popular)
	router.GET("/flight-instances/:id", h.getInstance)
	router.GET("/flight-instances/:id/price", h.price)
}

func (h *FlightHandler) list(c *gin.Context) {
	result, err := h.service.ListFlights(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetFlight(c.Request.Context(), c.Param("fnum"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) search(c *gin.Context) {
	input := flights.SearchInput{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	input.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	input.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))

	// Malformed dates are ignored, matching the original search behavior.
	if raw := c.Query("start_date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			input.StartDate = &d
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			input.EndDate = &d
		}
	}

	result, err := h.service.SearchInstances(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":      newInstanceResponses(result.Results),
		"page":         result.Page,
		"page_size":    result.PageSize,
		"total":        result.Total,
		"total_pages":  result.TotalPages,
		"has_next":     result.HasNext,
		"has_previous": result.HasPrevious,
		"is_random":    result.IsRandom,
	})
}

func (h *FlightHandler) popular(c *gin.Context) {
	popular, err := h.service.PopularDestination(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":                     []instanceResponse{newInstanceResponse(popular.Instance)},
		"popular_destination":         popular.City,
		"flight_count_to_destination": popular.FlightCount,
	})
}

func (h *FlightHandler) getInstance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "code": "validation_error"})
		return
	}
	instance, err := h.service.GetInstance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInstanceResponse(instance))
}

func (h *FlightHandler) price(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "code": "validation_error"})
		return
	}

	quote, err := h.service.Price(c.Request.Context(), id, c.DefaultQuery("class", "Economy"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flight_instance": quote.FlightInstanceID,
		"class":           quote.Class,
		"price":           quote.Price.StringFixed(2),
	})
}
