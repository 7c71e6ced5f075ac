package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/pkg/apperrors"
	"github.com/Domenick1991/airline-booking/pkg/logger"
)

// respondError maps the error taxonomy to HTTP statuses. Everything in the
// taxonomy is user-visible 4xx; unknown errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperrors.ErrTicketNotFound),
		errors.Is(err, apperrors.ErrFlightNotFound),
		errors.Is(err, apperrors.ErrFlightInstanceNotFound),
		errors.Is(err, apperrors.ErrPassengerNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, apperrors.ErrPaymentInProgress):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrAlreadyPaid),
		errors.Is(err, apperrors.ErrAlreadyCheckedIn),
		errors.Is(err, apperrors.ErrNotCheckedIn),
		errors.Is(err, apperrors.ErrCannotCancelAfterCheckIn),
		errors.Is(err, apperrors.ErrInsufficientPoints),
		errors.Is(err, apperrors.ErrNoLoyaltyAccount),
		errors.Is(err, apperrors.ErrInvalidPaymentMethod),
		errors.Is(err, apperrors.ErrInvalidFlightClass),
		errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		logger.WithComponent("api").Error("unexpected error", zap.Error(err))
	}

	c.JSON(status, gin.H{"error": message, "code": apperrors.Code(err)})
}

// ticketResponse decorates the canonical ticket with the derived
// check-in view the original wire format exposed.
type ticketResponse struct {
	*domain.Ticket
	CheckinStatus string `json:"checkin_status"`
}

func newTicketResponse(t *domain.Ticket) ticketResponse {
	return ticketResponse{Ticket: t, CheckinStatus: t.CheckinStatus()}
}

func newTicketResponses(tickets []domain.Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, newTicketResponse(&tickets[i]))
	}
	return out
}

// instanceResponse carries the per-class computed prices alongside the
// instance, recomputed on every request.
type instanceResponse struct {
	*domain.FlightInstance
	EconomyPrice  string `json:"economy_price"`
	BusinessPrice string `json:"business_price"`
	FirstPrice    string `json:"first_price"`
}

func newInstanceResponse(fi *domain.FlightInstance) instanceResponse {
	return instanceResponse{
		FlightInstance: fi,
		EconomyPrice:   fi.CalculatePrice(domain.ClassEconomy).StringFixed(2),
		BusinessPrice:  fi.CalculatePrice(domain.ClassBusiness).StringFixed(2),
		FirstPrice:     fi.CalculatePrice(domain.ClassFirst).StringFixed(2),
	}
}

func newInstanceResponses(instances []domain.FlightInstance) []instanceResponse {
	out := make([]instanceResponse, 0, len(instances))
	for i := range instances {
		out = append(out, newInstanceResponse(&instances[i]))
	}
	return out
}
