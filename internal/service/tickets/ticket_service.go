package tickets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/internal/kafka"
	"github.com/Domenick1991/airline-booking/internal/repository"
	"github.com/Domenick1991/airline-booking/pkg/apperrors"
	"github.com/Domenick1991/airline-booking/pkg/logger"
)

// Identity is the authentication context supplied by the HTTP layer.
// Staff callers bypass ownership checks.
type Identity struct {
	UserID int64
	Staff  bool
}

type CreateTicketInput struct {
	FlightInstanceID int64  `json:"flight_instance"`
	Class            string `json:"class_type"`
	PassengerID      int64  `json:"passenger"`
	SeatNumber       string `json:"seat_number"`
	ExtraBaggage     int    `json:"extra_baggage"`
}

type TicketUseCase interface {
	Create(ctx context.Context, id Identity, input CreateTicketInput) (*domain.Ticket, error)
	List(ctx context.Context, id Identity) ([]domain.Ticket, error)
	Get(ctx context.Context, id Identity, ticketNumber string) (*domain.Ticket, error)
	Pay(ctx context.Context, id Identity, ticketNumber, method string) (*domain.Ticket, error)
	CheckIn(ctx context.Context, id Identity, ticketNumber string) (*domain.Ticket, error)
	Board(ctx context.Context, id Identity, ticketNumber string) (*domain.Ticket, error)
	Cancel(ctx context.Context, id Identity, ticketNumber string) error
	ExpireUnpaidTickets(ctx context.Context) ([]domain.Ticket, error)
}

type Cache interface {
	AcquirePayLock(ctx context.Context, ticketNumber string, ttl time.Duration) (bool, error)
	ReleasePayLock(ctx context.Context, ticketNumber string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type TicketService struct {
	tickets            repository.TicketRepository
	flights            repository.FlightRepository
	passengers         repository.PassengerRepository
	cache              Cache
	producer           Producer
	ticketTopic        string
	notificationsTopic string
	payLockTTL         time.Duration
	unpaidTTL          time.Duration
	log                *zap.Logger
}

type TicketServiceOption func(*TicketService)

func WithNotificationsTopic(topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.notificationsTopic = topic
	}
}

func NewTicketService(
	tickets repository.TicketRepository,
	flights repository.FlightRepository,
	passengers repository.PassengerRepository,
	cache Cache,
	producer Producer,
	ticketTopic string,
	payLockTTL, unpaidTTL time.Duration,
	opts ...TicketServiceOption,
) *TicketService {
	service := &TicketService{
		tickets:     tickets,
		flights:     flights,
		passengers:  passengers,
		cache:       cache,
		producer:    producer,
		ticketTopic: ticketTopic,
		payLockTTL:  payLockTTL,
		unpaidTTL:   unpaidTTL,
		log:         logger.WithComponent("tickets"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// taxRate matches the 8% applied by the original booking flow.
var taxRate = decimal.RequireFromString("0.08")

func (s *TicketService) Create(ctx context.Context, id Identity, input CreateTicketInput) (*domain.Ticket, error) {
	if input.SeatNumber == "" || input.PassengerID == 0 {
		return nil, apperrors.ErrInvalidInput
	}
	class, err := domain.ParseFlightClass(input.Class)
	if err != nil {
		return nil, err
	}

	instance, err := s.flights.GetInstance(ctx, input.FlightInstanceID)
	if err != nil {
		return nil, err
	}
	passenger, err := s.passengers.GetByID(ctx, input.PassengerID)
	if err != nil {
		return nil, err
	}

	base := instance.CalculatePrice(class)
	tax := base.Mul(taxRate).Round(2)

	ticket := &domain.Ticket{
		TicketNumber:     uuid.NewString(),
		PNR:              domain.NewPNR(),
		Status:           domain.TicketStatusUnpaid,
		SeatNumber:       input.SeatNumber,
		ExtraBaggage:     input.ExtraBaggage,
		FlightInstanceID: instance.ID,
		Class:            class,
		PassengerID:      passenger.ID,
		UserID:           id.UserID,
		Payment: &domain.Payment{
			BasePrice:  base,
			Tax:        tax,
			Total:      base.Add(tax),
			PaidCash:   decimal.Zero,
			PaidPoints: 0,
		},
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, "ticket_created", ticket, passenger.Email)
	return ticket, nil
}

func (s *TicketService) List(ctx context.Context, id Identity) ([]domain.Ticket, error) {
	if id.Staff {
		return s.tickets.ListAll(ctx)
	}
	return s.tickets.ListByUser(ctx, id.UserID)
}

func (s *TicketService) Get(ctx context.Context, id Identity, ticketNumber string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ticket, id); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) Pay(ctx context.Context, id Identity, ticketNumber, method string) (*domain.Ticket, error) {
	paymentMethod, err := domain.ParsePaymentMethod(method)
	if err != nil {
		return nil, err
	}

	current, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(current, id); err != nil {
		return nil, err
	}

	if s.cache != nil {
		ok, err := s.cache.AcquirePayLock(ctx, ticketNumber, s.payLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.ErrPaymentInProgress
		}
		defer func() {
			_ = s.cache.ReleasePayLock(ctx, ticketNumber)
		}()
	}

	updated, err := s.tickets.Pay(ctx, ticketNumber, paymentMethod)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "ticket_paid", updated, s.passengerEmail(ctx, updated))
	return updated, nil
}

func (s *TicketService) CheckIn(ctx context.Context, id Identity, ticketNumber string) (*domain.Ticket, error) {
	current, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(current, id); err != nil {
		return nil, err
	}

	updated, err := s.tickets.CheckIn(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "ticket_checked_in", updated, s.passengerEmail(ctx, updated))
	return updated, nil
}

func (s *TicketService) Board(ctx context.Context, id Identity, ticketNumber string) (*domain.Ticket, error) {
	current, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(current, id); err != nil {
		return nil, err
	}

	updated, err := s.tickets.Board(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "ticket_boarded", updated, s.passengerEmail(ctx, updated))
	return updated, nil
}

func (s *TicketService) Cancel(ctx context.Context, id Identity, ticketNumber string) error {
	current, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return err
	}
	if err := s.authorize(current, id); err != nil {
		return err
	}

	email := s.passengerEmail(ctx, current)
	if err := s.tickets.Delete(ctx, ticketNumber); err != nil {
		return err
	}

	s.publish(ctx, "ticket_cancelled", current, email)
	return nil
}

// ExpireUnpaidTickets sweeps unpaid tickets older than the configured TTL,
// emitting a cancellation event for each.
func (s *TicketService) ExpireUnpaidTickets(ctx context.Context) ([]domain.Ticket, error) {
	cutoff := time.Now().Add(-s.unpaidTTL)
	stale, err := s.tickets.DeleteUnpaidBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range stale {
		s.publish(ctx, "ticket_cancelled", &stale[i], s.passengerEmail(ctx, &stale[i]))
	}
	return stale, nil
}

func (s *TicketService) authorize(t *domain.Ticket, id Identity) error {
	if id.Staff || t.UserID == id.UserID {
		return nil
	}
	return apperrors.ErrUnauthorized
}

func (s *TicketService) passengerEmail(ctx context.Context, t *domain.Ticket) string {
	p, err := s.passengers.GetByID(ctx, t.PassengerID)
	if err != nil {
		return ""
	}
	return p.Email
}

func (s *TicketService) publish(ctx context.Context, eventType string, t *domain.Ticket, email string) {
	if s.producer == nil || s.ticketTopic == "" {
		return
	}
	event := kafka.TicketEvent{
		Type:           eventType,
		TicketNumber:   t.TicketNumber,
		PNR:            t.PNR,
		FlightInstance: t.FlightInstanceID,
		UserID:         t.UserID,
		Email:          email,
		Status:         string(t.Status),
		Total:          t.Payment.Total.StringFixed(2),
		OccurredAt:     time.Now(),
	}
	if err := s.producer.Publish(ctx, s.ticketTopic, t.TicketNumber, event); err != nil {
		s.log.Warn("publish ticket event failed", zap.String("type", eventType), zap.String("ticket", t.TicketNumber), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, t.TicketNumber, event); err != nil {
			s.log.Warn("publish notification failed", zap.String("type", eventType), zap.String("ticket", t.TicketNumber), zap.Error(err))
		}
	}
}

var _ TicketUseCase = (*TicketService)(nil)
