package flights

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/internal/repository"
)

type SearchInput struct {
	Origin      string
	Destination string
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

type SearchResult struct {
	Results     []domain.FlightInstance `json:"results"`
	Page        int                     `json:"page"`
	PageSize    int                     `json:"page_size"`
	Total       int64                   `json:"total"`
	TotalPages  int64                   `json:"total_pages"`
	HasNext     bool                    `json:"has_next"`
	HasPrevious bool                    `json:"has_previous"`
	IsRandom    bool                    `json:"is_random"`
}

type PriceQuote struct {
	FlightInstanceID int64              `json:"flight_instance"`
	Class            domain.FlightClass `json:"class"`
	Price            decimal.Decimal    `json:"price"`
}

type FlightUseCase interface {
	ListFlights(ctx context.Context) ([]domain.Flight, error)
	GetFlight(ctx context.Context, fnum string) (*domain.Flight, error)
	GetInstance(ctx context.Context, id int64) (*domain.FlightInstance, error)
	SearchInstances(ctx context.Context, input SearchInput) (*SearchResult, error)
	PopularDestination(ctx context.Context) (*domain.PopularDestination, error)
	Price(ctx context.Context, instanceID int64, class string) (*PriceQuote, error)
	SearchLocations(ctx context.Context, term string) ([]domain.Location, error)
	SearchCities(ctx context.Context, term string) ([]domain.City, error)
	SearchAirports(ctx context.Context, term string) ([]domain.Airport, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetLocations(ctx context.Context, term string) ([]domain.Location, error)
	SetLocations(ctx context.Context, term string, locations []domain.Location) error
}

type FlightService struct {
	flights  repository.FlightRepository
	airports repository.AirportRepository
	cache    Cache
}

func NewFlightService(flights repository.FlightRepository, airports repository.AirportRepository, cache Cache) *FlightService {
	return &FlightService{flights: flights, airports: airports, cache: cache}
}

func (s *FlightService) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.ListFlights(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetFlight(ctx context.Context, fnum string) (*domain.Flight, error) {
	return s.flights.GetFlight(ctx, fnum)
}

func (s *FlightService) GetInstance(ctx context.Context, id int64) (*domain.FlightInstance, error) {
	return s.flights.GetInstance(ctx, id)
}

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

func (s *FlightService) SearchInstances(ctx context.Context, input SearchInput) (*SearchResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	params := repository.InstanceSearchParams{
		Origin:      strings.TrimSpace(input.Origin),
		Destination: strings.TrimSpace(input.Destination),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Page:        page,
		PageSize:    size,
	}

	// No criteria means discovery: a random page instead of an ordered one.
	if params.Empty() {
		instances, total, err := s.flights.RandomInstances(ctx, size)
		if err != nil {
			return nil, err
		}
		return &SearchResult{Results: instances, Page: page, PageSize: size, Total: total, IsRandom: true}, nil
	}

	instances, total, err := s.flights.SearchInstances(ctx, params)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(size)
	if total%int64(size) != 0 {
		totalPages++
	}

	return &SearchResult{
		Results:     instances,
		Page:        page,
		PageSize:    size,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     int64(page) < totalPages,
		HasPrevious: page > 1,
	}, nil
}

func (s *FlightService) PopularDestination(ctx context.Context) (*domain.PopularDestination, error) {
	return s.flights.PopularDestination(ctx)
}

// Price computes a fresh quote; results are never cached because the
// days-until-departure term changes daily.
func (s *FlightService) Price(ctx context.Context, instanceID int64, class string) (*PriceQuote, error) {
	flightClass, err := domain.ParseFlightClass(class)
	if err != nil {
		return nil, err
	}

	instance, err := s.flights.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	return &PriceQuote{
		FlightInstanceID: instance.ID,
		Class:            flightClass,
		Price:            instance.CalculatePrice(flightClass),
	}, nil
}

const (
	combinedSearchLimit = 5
	singleSearchLimit   = 10
)

// SearchLocations merges city and airport matches for autocomplete.
func (s *FlightService) SearchLocations(ctx context.Context, term string) ([]domain.Location, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Location{}, nil
	}

	if s.cache != nil {
		if cached, err := s.cache.GetLocations(ctx, term); err == nil && cached != nil {
			return cached, nil
		}
	}

	cities, err := s.airports.SearchCities(ctx, term, combinedSearchLimit)
	if err != nil {
		return nil, err
	}
	airports, err := s.airports.SearchAirports(ctx, term, combinedSearchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Location, 0, len(cities)+len(airports))
	for _, c := range cities {
		results = append(results, domain.Location{
			Type:        "city",
			ID:          strconv.FormatInt(c.ID, 10),
			Name:        c.Name,
			DisplayName: c.Name + ", " + c.CountryName,
			Country:     c.CountryName,
			CountryCode: c.CountryCode,
		})
	}
	for _, a := range airports {
		results = append(results, domain.Location{
			Type:        "airport",
			ID:          a.IATACode,
			Name:        a.Name,
			DisplayName: a.Name + " (" + a.IATACode + ")",
			IATACode:    a.IATACode,
			City:        a.CityName,
			Country:     a.CountryName,
			CountryCode: a.CountryCode,
		})
	}

	if s.cache != nil {
		_ = s.cache.SetLocations(ctx, term, results)
	}
	return results, nil
}

func (s *FlightService) SearchCities(ctx context.Context, term string) ([]domain.City, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.City{}, nil
	}
	return s.airports.SearchCities(ctx, term, singleSearchLimit)
}

func (s *FlightService) SearchAirports(ctx context.Context, term string) ([]domain.Airport, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Airport{}, nil
	}
	return s.airports.SearchAirports(ctx, term, singleSearchLimit)
}

var _ FlightUseCase = (*FlightService)(nil)
