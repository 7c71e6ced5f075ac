package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/internal/repository"
	"github.com/Domenick1991/airline-booking/pkg/apperrors"
)

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Pay(ctx context.Context, ticketNumber string, method domain.PaymentMethod) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketNumber, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CheckIn(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Board(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Delete(ctx context.Context, ticketNumber string) error {
	args := m.Called(ctx, ticketNumber)
	return args.Error(0)
}

func (m *MockTicketRepository) DeleteUnpaidBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetFlight(ctx context.Context, fnum string) (*domain.Flight, error) {
	args := m.Called(ctx, fnum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetInstance(ctx context.Context, id int64) (*domain.FlightInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightInstance), args.Error(1)
}

func (m *MockFlightRepository) SearchInstances(ctx context.Context, params repository.InstanceSearchParams) ([]domain.FlightInstance, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.FlightInstance), args.Get(1).(int64), args.Error(2)
}

func (m *MockFlightRepository) RandomInstances(ctx context.Context, limit int) ([]domain.FlightInstance, int64, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.FlightInstance), args.Get(1).(int64), args.Error(2)
}

func (m *MockFlightRepository) PopularDestination(ctx context.Context) (*domain.PopularDestination, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PopularDestination), args.Error(1)
}

type MockPassengerRepository struct {
	mock.Mock
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquirePayLock(ctx context.Context, ticketNumber string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, ticketNumber, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleasePayLock(ctx context.Context, ticketNumber string) error {
	args := m.Called(ctx, ticketNumber)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newService(ticketRepo *MockTicketRepository, flightRepo *MockFlightRepository, passengerRepo *MockPassengerRepository, cache *MockCache, producer *MockProducer) *TicketService {
	return NewTicketService(ticketRepo, flightRepo, passengerRepo, cache, producer,
		"ticket-events", 30*time.Second, 24*time.Hour)
}

func testInstance(daysOut int) *domain.FlightInstance {
	return &domain.FlightInstance{
		ID:                  9,
		Fnum:                "SU100",
		Date:                time.Now().AddDate(0, 0, daysOut),
		PriceBaseMultiplier: decimal.NewFromInt(1),
		Flight:              &domain.Flight{Fnum: "SU100", Duration: 4 * time.Hour},
	}
}

func testTicket(owner int64) *domain.Ticket {
	return &domain.Ticket{
		TicketNumber:     "tkt-1",
		PNR:              "AB12CD",
		Status:           domain.TicketStatusUnpaid,
		SeatNumber:       "12A",
		FlightInstanceID: 9,
		Class:            domain.ClassEconomy,
		PassengerID:      7,
		UserID:           owner,
		Payment: &domain.Payment{
			ID:        1,
			BasePrice: decimal.RequireFromString("400.00"),
			Tax:       decimal.RequireFromString("32.00"),
			Total:     decimal.RequireFromString("432.00"),
			PaidCash:  decimal.Zero,
		},
	}
}

func TestTicketService_Create(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	flightRepo := &MockFlightRepository{}
	passengerRepo := &MockPassengerRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newService(ticketRepo, flightRepo, passengerRepo, cache, producer)

	ctx := context.Background()
	flightRepo.On("GetInstance", ctx, int64(9)).Return(testInstance(45), nil).Once()
	passengerRepo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, Email: "p@example.com"}, nil).Once()
	ticketRepo.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Return(nil).Once()
	producer.On("Publish", ctx, "ticket-events", mock.Anything, mock.Anything).Return(nil).Once()

	ticket, err := service.Create(ctx, Identity{UserID: 42}, CreateTicketInput{
		FlightInstanceID: 9,
		Class:            "Economy",
		PassengerID:      7,
		SeatNumber:       "12A",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.TicketStatusUnpaid, ticket.Status)
	assert.Len(t, ticket.PNR, 6)
	assert.EqualValues(t, 42, ticket.UserID)
	// 4h flight, 45 days out: 400 base, 8% tax, total = base + tax
	assert.Equal(t, "400.00", ticket.Payment.BasePrice.StringFixed(2))
	assert.Equal(t, "32.00", ticket.Payment.Tax.StringFixed(2))
	assert.Equal(t, "432.00", ticket.Payment.Total.StringFixed(2))
	assert.False(t, ticket.Payment.Paid())

	ticketRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestTicketService_Create_InvalidClass(t *testing.T) {
	service := newService(&MockTicketRepository{}, &MockFlightRepository{}, &MockPassengerRepository{}, &MockCache{}, &MockProducer{})

	_, err := service.Create(context.Background(), Identity{UserID: 42}, CreateTicketInput{
		FlightInstanceID: 9,
		Class:            "Premium",
		PassengerID:      7,
		SeatNumber:       "12A",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFlightClass)
}

func TestTicketService_Pay_Cash(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	passengerRepo := &MockPassengerRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newService(ticketRepo, &MockFlightRepository{}, passengerRepo, cache, producer)

	ctx := context.Background()
	paid := testTicket(42)
	paid.Status = domain.TicketStatusPaid
	paid.Payment.PaidCash = paid.Payment.Total

	ticketRepo.On("GetByNumber", ctx, "tkt-1").Return(testTicket(42), nil).Once()
	cache.On("AcquirePayLock", ctx, "tkt-1", 30*time.Second).Return(true, nil).Once()
	cache.On("ReleasePayLock", ctx, "tkt-1").Return(nil).Once()
	ticketRepo.On("Pay", ctx, "tkt-1", domain.PaymentMethodCash).Return(paid, nil).Once()
	passengerRepo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, Email: "p@example.com"}, nil)
	producer.On("Publish", ctx, "ticket-events", "tkt-1", mock.Anything).Return(nil).Once()

	updated, err := service.Pay(ctx, Identity{UserID: 42}, "tkt-1", "cash")

	assert.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPaid, updated.Status)
	ticketRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestTicketService_Pay_NotOwner(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	service := newService(ticketRepo, &MockFlightRepository{}, &MockPassengerRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	ticketRepo.On("GetByNumber", ctx, "tkt-1").Return(testTicket(42), nil).Once()

	_, err := service.Pay(ctx, Identity{UserID: 99}, "tkt-1", "cash")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	ticketRepo.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketService_Pay_StaffBypassesOwnership(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	passengerRepo := &MockPassengerRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newService(ticketRepo, &MockFlightRepository{}, passengerRepo, cache, producer)

	ctx := context.Background()
	paid := testTicket(42)
	paid.Status = domain.TicketStatusPaid

	ticketRepo.On("GetByNumber", ctx, "tkt-1").Return(testTicket(42), nil).Once()
	cache.On("AcquirePayLock", ctx, "tkt-1", 30*time.Second).Return(true, nil).Once()
	cache.On("ReleasePayLock", ctx, "tkt-1").Return(nil).Once()
	ticketRepo.On("Pay", ctx, "tkt-1", domain.PaymentMethodCash).Return(paid, nil).Once()
	passengerRepo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, Email: "p@example.com"}, nil)
	producer.On("Publish", ctx, "ticket-events", "tkt-1", mock.Anything).Return(nil).Once()

	_, err := service.Pay(ctx, Identity{UserID: 99, Staff: true}, "tkt-1", "cash")
	assert.NoError(t, err)
}

func TestTicketService_Pay_LockContention(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	cache := &MockCache{}
	service := newService(ticketRepo, &MockFlightRepository{}, &MockPassengerRepository{}, cache, &MockProducer{})

	ctx := context.Background()
	ticketRepo.On("GetByNumber", ctx, "tkt-1").Return(testTicket(42), nil).Once()
	cache.On("AcquirePayLock", ctx, "tkt-1", 30*time.Second).Return(false, nil).Once()

	_, err := service.Pay(ctx, Identity{UserID: 42}, "tkt-1", "cash")

	assert.ErrorIs(t, err, apperrors.ErrPaymentInProgress)
	ticketRepo.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketService_Pay_InvalidMethod(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	service := newService(ticketRepo, &MockFlightRepository{}, &MockPassengerRepository{}, &MockCache{}, &MockProducer{})

	_, err := service.Pay(context.Background(), Identity{UserID: 42}, "tkt-1", "goats")

	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentMethod)
	ticketRepo.AssertNotCalled(t, "GetByNumber", mock.Anything, mock.Anything)
}

func TestTicketService_Cancel(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	passengerRepo := &MockPassengerRepository{}
	producer := &MockProducer{}
	service := newService(ticketRepo, &MockFlightRepository{}, passengerRepo, &MockCache{}, producer)

	ctx := context.Background()
	ticketRepo.On("GetByNumber", ctx, "tkt-1").Return(testTicket(42), nil).Once()
	passengerRepo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, Email: "p@example.com"}, nil)
	ticketRepo.On("Delete", ctx, "tkt-1").Return(nil).Once()
	producer.On("Publish", ctx, "ticket-events", "tkt-1", mock.Anything).Return(nil).Once()

	err := service.Cancel(ctx, Identity{UserID: 42}, "tkt-1")

	assert.NoError(t, err)
	ticketRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestTicketService_Cancel_AfterCheckIn(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	passengerRepo := &MockPassengerRepository{}
	service := newService(ticketRepo, &MockFlightRepository{}, passengerRepo, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	checkedIn := testTicket(42)
	checkedIn.Status = domain.TicketStatusCheckedIn

	ticketRepo.On("GetByNumber", ctx, "tkt-1").Return(checkedIn, nil).Once()
	passengerRepo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, Email: "p@example.com"}, nil)
	ticketRepo.On("Delete", ctx, "tkt-1").Return(apperrors.ErrCannotCancelAfterCheckIn).Once()

	err := service.Cancel(ctx, Identity{UserID: 42}, "tkt-1")
	assert.ErrorIs(t, err, apperrors.ErrCannotCancelAfterCheckIn)
}

func TestTicketService_List(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	service := newService(ticketRepo, &MockFlightRepository{}, &MockPassengerRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	own := []domain.Ticket{*testTicket(42)}
	all := []domain.Ticket{*testTicket(42), *testTicket(99)}

	ticketRepo.On("ListByUser", ctx, int64(42)).Return(own, nil).Once()
	ticketRepo.On("ListAll", ctx).Return(all, nil).Once()

	mine, err := service.List(ctx, Identity{UserID: 42})
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	everyone, err := service.List(ctx, Identity{UserID: 1, Staff: true})
	assert.NoError(t, err)
	assert.Len(t, everyone, 2)
}

func TestTicketService_ExpireUnpaidTickets(t *testing.T) {
	ticketRepo := &MockTicketRepository{}
	passengerRepo := &MockPassengerRepository{}
	producer := &MockProducer{}
	service := newService(ticketRepo, &MockFlightRepository{}, passengerRepo, &MockCache{}, producer)

	ctx := context.Background()
	stale := []domain.Ticket{*testTicket(42), *testTicket(43)}

	ticketRepo.On("DeleteUnpaidBefore", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	passengerRepo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, Email: "p@example.com"}, nil)
	producer.On("Publish", ctx, "ticket-events", mock.Anything, mock.Anything).Return(nil).Times(2)

	removed, err := service.ExpireUnpaidTickets(ctx)

	assert.NoError(t, err)
	assert.Len(t, removed, 2)
	producer.AssertExpectations(t)
}
