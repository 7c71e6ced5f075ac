package apperrors

import "errors"

var (
	ErrTicketNotFound           = errors.New("ticket not found")
	ErrFlightNotFound           = errors.New("flight not found")
	ErrFlightInstanceNotFound   = errors.New("flight instance not found")
	ErrPassengerNotFound        = errors.New("passenger not found")
	ErrAlreadyPaid              = errors.New("ticket already paid")
	ErrAlreadyCheckedIn         = errors.New("ticket already checked in")
	ErrNotCheckedIn             = errors.New("ticket not checked in")
	ErrCannotCancelAfterCheckIn = errors.New("cannot cancel after check-in")
	ErrInsufficientPoints       = errors.New("insufficient loyalty points")
	ErrNoLoyaltyAccount         = errors.New("passenger has no loyalty account")
	ErrInvalidPaymentMethod     = errors.New("invalid payment method")
	ErrInvalidFlightClass       = errors.New("invalid flight class")
	ErrUnauthorized             = errors.New("ticket not owned by caller")
	ErrInvalidInput             = errors.New("invalid input")
	ErrPaymentInProgress        = errors.New("payment already in progress")
)

// Code returns the machine-readable code surfaced in error responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		return "ticket_not_found"
	case errors.Is(err, ErrFlightNotFound):
		return "flight_not_found"
	case errors.Is(err, ErrFlightInstanceNotFound):
		return "flight_instance_not_found"
	case errors.Is(err, ErrPassengerNotFound):
		return "passenger_not_found"
	case errors.Is(err, ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, ErrNotCheckedIn):
		return "not_checked_in"
	case errors.Is(err, ErrCannotCancelAfterCheckIn):
		return "cannot_cancel_after_checkin"
	case errors.Is(err, ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, ErrNoLoyaltyAccount):
		return "no_loyalty_account"
	case errors.Is(err, ErrInvalidPaymentMethod):
		return "invalid_payment_method"
	case errors.Is(err, ErrInvalidFlightClass):
		return "invalid_flight_class"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidInput):
		return "validation_error"
	case errors.Is(err, ErrPaymentInProgress):
		return "payment_in_progress"
	default:
		return "internal_error"
	}
}
