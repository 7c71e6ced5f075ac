package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/airline-booking/internal/service/tickets"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type payTicketRequest struct {
	Method string `json:"method"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/tickets", h.create)
	router.GET("/tickets", h.list)
	router.GET("/tickets/:number", h.get)
	router.POST("/tickets/:number/pay", h.pay)
	router.POST("/tickets/:number/checkin", h.checkin)
	router.POST("/tickets/:number/board", h.board)
	router.POST("/tickets/:number/cancel", h.cancel)
}

func (h *TicketHandler) create(c *gin.Context) {
	var input tickets.CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "validation_error"})
		return
	}

	ticket, err := h.service.Create(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTicketResponse(ticket))
}

func (h *TicketHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": newTicketResponses(result)})
}

func (h *TicketHandler) get(c *gin.Context) {
	ticket, err := h.service.Get(c.Request.Context(), identityFrom(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTicketResponse(ticket))
}

func (h *TicketHandler) pay(c *gin.Context) {
	var req payTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "validation_error"})
		return
	}

	ticket, err := h.service.Pay(c.Request.Context(), identityFrom(c), c.Param("number"), req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTicketResponse(ticket))
}

func (h *TicketHandler) checkin(c *gin.Context) {
	ticket, err := h.service.CheckIn(c.Request.Context(), identityFrom(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTicketResponse(ticket))
}

func (h *TicketHandler) board(c *gin.Context) {
	ticket, err := h.service.Board(c.Request.Context(), identityFrom(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTicketResponse(ticket))
}

func (h *TicketHandler) cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), identityFrom(c), c.Param("number")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
