package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Domenick1991/airline-booking/pkg/apperrors"
)

// TicketStatus is the single canonical lifecycle representation. Boolean
// views (paid, checked in) are derived from it and the payment record,
// never stored separately.
type TicketStatus string

const (
	TicketStatusUnpaid    TicketStatus = "UNPAID"
	TicketStatusPaid      TicketStatus = "PAID"
	TicketStatusCheckedIn TicketStatus = "CHECKED_IN"
	TicketStatusBoarded   TicketStatus = "BOARDED"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodPoints PaymentMethod = "points"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentMethodCash, nil
	case "points":
		return PaymentMethodPoints, nil
	default:
		return "", apperrors.ErrInvalidPaymentMethod
	}
}

// Payment is owned one-to-one by its ticket and created empty (unpaid)
// at ticket-creation time. Total == BasePrice + Tax at creation.
type Payment struct {
	ID         int64           `json:"payment_number"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	PaidCash   decimal.Decimal `json:"paid_cash"`
	PaidPoints int64           `json:"paid_points"`
}

// Paid reports whether any cash or points have been recorded.
func (p *Payment) Paid() bool {
	return p.PaidCash.IsPositive() || p.PaidPoints > 0
}

// Ticket references exactly one flight instance, class, passenger and
// payment, plus the booking user.
type Ticket struct {
	TicketNumber     string       `json:"ticket_number"`
	PNR              string       `json:"pnr_number"`
	Status           TicketStatus `json:"status"`
	SeatNumber       string       `json:"seat_number"`
	ExtraBaggage     int          `json:"extra_baggage"`
	Timestamp        time.Time    `json:"ticketing_timestamp"`
	FlightInstanceID int64        `json:"flight_instance"`
	Class            FlightClass  `json:"class_type"`
	PassengerID      int64        `json:"passenger"`
	UserID           int64        `json:"user_id"`
	Payment          *Payment     `json:"payment"`

	FlightInstance *FlightInstance `json:"flight_instance_details,omitempty"`
}

// NewPNR derives a 6-character booking reference.
func NewPNR() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:6]
}

// CheckinStatus is the derived view matching the public wire vocabulary.
func (t *Ticket) CheckinStatus() string {
	switch t.Status {
	case TicketStatusCheckedIn:
		return "checked_in"
	case TicketStatusBoarded:
		return "boarded"
	default:
		return "not_checked_in"
	}
}

func (t *Ticket) checkedIn() bool {
	return t.Status == TicketStatusCheckedIn || t.Status == TicketStatusBoarded
}

// Pay is the single authority for the unpaid -> paid transition. For the
// points method the frequent-traveler capability is debited by the whole
// payment total; the caller persists ticket, payment and capability in one
// transaction.
func (t *Ticket) Pay(method PaymentMethod, ft *FrequentTraveler) error {
	if t.Payment.Paid() {
		return apperrors.ErrAlreadyPaid
	}
	if t.checkedIn() {
		return apperrors.ErrAlreadyCheckedIn
	}

	switch method {
	case PaymentMethodCash:
		t.Payment.PaidCash = t.Payment.Total
		t.Payment.PaidPoints = 0
	case PaymentMethodPoints:
		if ft == nil {
			return apperrors.ErrNoLoyaltyAccount
		}
		needed := t.Payment.Total.IntPart()
		if ft.Points < needed {
			return apperrors.ErrInsufficientPoints
		}
		ft.Points -= needed
		t.Payment.PaidPoints = needed
		t.Payment.PaidCash = decimal.Zero
	default:
		return apperrors.ErrInvalidPaymentMethod
	}

	t.Status = TicketStatusPaid
	return nil
}

// CheckIn is the single authority for the check-in transition.
func (t *Ticket) CheckIn() error {
	if t.checkedIn() {
		return apperrors.ErrAlreadyCheckedIn
	}
	t.Status = TicketStatusCheckedIn
	return nil
}

// Board moves a checked-in ticket to boarded.
func (t *Ticket) Board() error {
	if t.Status != TicketStatusCheckedIn {
		return apperrors.ErrNotCheckedIn
	}
	t.Status = TicketStatusBoarded
	return nil
}

// EnsureCancelable guards the cancel transition; cancellation deletes the
// ticket and, by ownership, its payment.
func (t *Ticket) EnsureCancelable() error {
	if t.checkedIn() {
		return apperrors.ErrCannotCancelAfterCheckIn
	}
	return nil
}
