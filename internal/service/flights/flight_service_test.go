package flights

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

type MockAirportRepository struct {
	mock.Mock
}

func (m *MockAirportRepository) SearchCities(ctx context.Context, term string, limit int) ([]domain.City, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]domain.City), args.Error(1)
}

func (m *MockAirportRepository) SearchAirports(ctx context.Context, term string, limit int) ([]domain.Airport, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetLocations(ctx context.Context, term string) ([]domain.Location, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Location), args.Error(1)
}

func (m *MockCache) SetLocations(ctx context.Context, term string, locations []domain.Location) error {
	args := m.Called(ctx, term, locations)
	return args.Error(0)
}

func TestFlightService_ListFlights_CacheHit(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(flightRepo, &MockAirportRepository{}, cache)

	ctx := context.Background()
	cached := []domain.Flight{{Fnum: "SU100"}}
	cache.On("GetFlights", ctx).Return(cached, nil).Once()

	flights, err := service.ListFlights(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, flights)
	flightRepo.AssertNotCalled(t, "ListFlights", mock.Anything)
}

func TestFlightService_ListFlights_CacheMiss(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(flightRepo, &MockAirportRepository{}, cache)

	ctx := context.Background()
	stored := []domain.Flight{{Fnum: "SU100"}, {Fnum: "SU200"}}
	cache.On("GetFlights", ctx).Return(nil, nil).Once()
	flightRepo.On("ListFlights", ctx).Return(stored, nil).Once()
	cache.On("SetFlights", ctx, stored).Return(nil).Once()

	flights, err := service.ListFlights(ctx)

	assert.NoError(t, err)
	assert.Len(t, flights, 2)
	cache.AssertExpectations(t)
}

func TestFlightService_SearchInstances_Pagination(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockAirportRepository{}, nil)

	ctx := context.Background()
	flightRepo.On("SearchInstances", ctx, mock.MatchedBy(func(p repository.InstanceSearchParams) bool {
		return p.Origin == "SVO" && p.Page == 2 && p.PageSize == 10
	})).Return([]domain.FlightInstance{{ID: 1}}, int64(25), nil).Once()

	result, err := service.SearchInstances(ctx, SearchInput{Origin: "SVO", Page: 2})

	assert.NoError(t, err)
	assert.EqualValues(t, 25, result.Total)
	assert.EqualValues(t, 3, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrevious)
	assert.False(t, result.IsRandom)
}

func TestFlightService_SearchInstances_EmptyParamsReturnsRandom(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockAirportRepository{}, nil)

	ctx := context.Background()
	flightRepo.On("RandomInstances", ctx, defaultPageSize).
		Return([]domain.FlightInstance{{ID: 1}, {ID: 2}}, int64(40), nil).Once()

	result, err := service.SearchInstances(ctx, SearchInput{})

	assert.NoError(t, err)
	assert.True(t, result.IsRandom)
	assert.Len(t, result.Results, 2)
	flightRepo.AssertNotCalled(t, "SearchInstances", mock.Anything, mock.Anything)
}

func TestFlightService_SearchInstances_ClampsPageSize(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockAirportRepository{}, nil)

	ctx := context.Background()
	flightRepo.On("SearchInstances", ctx, mock.MatchedBy(func(p repository.InstanceSearchParams) bool {
		return p.PageSize == maxPageSize && p.Page == 1
	})).Return([]domain.FlightInstance{}, int64(0), nil).Once()

	_, err := service.SearchInstances(ctx, SearchInput{Origin: "SVO", PageSize: 500})
	assert.NoError(t, err)
	flightRepo.AssertExpectations(t)
}

func TestFlightService_Price(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockAirportRepository{}, nil)

	ctx := context.Background()
	instance := &domain.FlightInstance{
		ID:                  9,
		Date:                time.Now().AddDate(0, 0, 45),
		PriceBaseMultiplier: decimal.NewFromInt(1),
		Flight:              &domain.Flight{Fnum: "SU100", Duration: 4 * time.Hour},
	}
	flightRepo.On("GetInstance", ctx, int64(9)).Return(instance, nil).Twice()

	quote, err := service.Price(ctx, 9, "Economy")
	assert.NoError(t, err)
	assert.Equal(t, "400.00", quote.Price.StringFixed(2))

	business, err := service.Price(ctx, 9, "Business")
	assert.NoError(t, err)
	assert.Equal(t, "1000.00", business.Price.StringFixed(2))
}

func TestFlightService_Price_InvalidClass(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, &MockAirportRepository{}, nil)

	_, err := service.Price(context.Background(), 9, "Premium")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFlightClass)
}

func TestFlightService_SearchLocations_MergesCitiesAndAirports(t *testing.T) {
	airportRepo := &MockAirportRepository{}
	cache := &MockCache{}
	service := NewFlightService(&MockFlightRepository{}, airportRepo, cache)

	ctx := context.Background()
	cache.On("GetLocations", ctx, "mos").Return(nil, nil).Once()
	airportRepo.On("SearchCities", ctx, "mos", combinedSearchLimit).Return([]domain.City{
		{ID: 3, Name: "Moscow", CountryName: "Russia", CountryCode: "RU"},
	}, nil).Once()
	airportRepo.On("SearchAirports", ctx, "mos", combinedSearchLimit).Return([]domain.Airport{
		{IATACode: "SVO", Name: "Sheremetyevo", CityName: "Moscow", CountryName: "Russia", CountryCode: "RU"},
	}, nil).Once()
	cache.On("SetLocations", ctx, "mos", mock.Anything).Return(nil).Once()

	locations, err := service.SearchLocations(ctx, "  mos ")

	assert.NoError(t, err)
	assert.Len(t, locations, 2)
	assert.Equal(t, "city", locations[0].Type)
	assert.Equal(t, "3", locations[0].ID)
	assert.Equal(t, "Moscow, Russia", locations[0].DisplayName)
	assert.Equal(t, "airport", locations[1].Type)
	assert.Equal(t, "Sheremetyevo (SVO)", locations[1].DisplayName)
	cache.AssertExpectations(t)
}

func TestFlightService_SearchLocations_EmptyTerm(t *testing.T) {
	airportRepo := &MockAirportRepository{}
	service := NewFlightService(&MockFlightRepository{}, airportRepo, nil)

	locations, err := service.SearchLocations(context.Background(), "   ")

	assert.NoError(t, err)
	assert.Empty(t, locations)
	airportRepo.AssertNotCalled(t, "SearchCities", mock.Anything, mock.Anything, mock.Anything)
}
