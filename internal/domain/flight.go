package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/airline-booking/pkg/apperrors"
)

// FlightClass is the cabin class of a ticket. Each class carries fixed
// baggage allowances and a price multiplier applied on top of the
// instance fare.
type FlightClass string

const (
	ClassEconomy  FlightClass = "Economy"
	ClassBusiness FlightClass = "Business"
	ClassFirst    FlightClass = "First"
)

func ParseFlightClass(s string) (FlightClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "economy":
		return ClassEconomy, nil
	case "business":
		return ClassBusiness, nil
	case "first":
		return ClassFirst, nil
	default:
		return "", apperrors.ErrInvalidFlightClass
	}
}

func (c FlightClass) Multiplier() decimal.Decimal {
	switch c {
	case ClassBusiness:
		return decimal.RequireFromString("2.5")
	case ClassFirst:
		return decimal.RequireFromString("4.0")
	default:
		return decimal.NewFromInt(1)
	}
}

// Baggage allowance in kg.
func (c FlightClass) Baggage() int {
	switch c {
	case ClassBusiness:
		return 32
	case ClassFirst:
		return 40
	default:
		return 20
	}
}

// CarryOn allowance in kg.
func (c FlightClass) CarryOn() int {
	switch c {
	case ClassBusiness:
		return 12
	case ClassFirst:
		return 15
	default:
		return 8
	}
}

// Flight is a recurring route identified by its flight number. Duration is
// fixed for the route and not tied to any calendar date.
type Flight struct {
	Fnum            string        `json:"fnum"`
	Duration        time.Duration `json:"-"`
	DurationSeconds int64         `json:"duration_seconds"`
	Origin          string        `json:"origin"`
	Destination     string        `json:"destination"`
	OriginName      string        `json:"origin_name,omitempty"`
	DestinationName string        `json:"destination_name,omitempty"`
	OriginCity      string        `json:"origin_city,omitempty"`
	DestinationCity string        `json:"destination_city,omitempty"`
}

// FlightInstance is a Flight occurring on a specific calendar date.
// Unique per (flight, date). Owns the pricing computation.
type FlightInstance struct {
	ID                  int64           `json:"id"`
	Fnum                string          `json:"flight"`
	Date                time.Time       `json:"date"`
	GateNumber          string          `json:"gate_number"`
	PriceBaseMultiplier decimal.Decimal `json:"price_base_multiplier"`
	AircraftID          int64           `json:"aircraft"`
	Flight              *Flight         `json:"flight_details,omitempty"`
	Aircraft            *Aircraft       `json:"aircraft_details,omitempty"`
}

// PopularDestination is the discovery answer: the city most flights
// arrive in, with one instance flying there.
type PopularDestination struct {
	City        string          `json:"popular_destination"`
	FlightCount int64           `json:"flight_count_to_destination"`
	Instance    *FlightInstance `json:"instance"`
}

const (
	ratePerHour     = 100
	surgeWindowDays = 30
)

// CalculatePriceAt computes the ticket price for the given cabin class as
// of the supplied date. Pure in instance state and the date; callers must
// recompute per request since the days-remaining term changes daily.
//
// base = flight_hours * 100; within the 30-day window a surge factor of
// ((30 - days)/30) - 1 is added on the same base, clamped at zero so the
// fare never drops below standard. The clamp also pins the documented
// day-zero behavior where the factor is algebraically zero.
func (fi *FlightInstance) CalculatePriceAt(class FlightClass, today time.Time) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(fi.Flight.Duration / time.Second))
	base := seconds.Div(decimal.NewFromInt(3600)).Mul(decimal.NewFromInt(ratePerHour))

	days := daysUntil(fi.Date, today)
	price := base
	if days <= surgeWindowDays {
		window := decimal.NewFromInt(surgeWindowDays)
		surge := window.Sub(decimal.NewFromInt(days)).Div(window).Sub(decimal.NewFromInt(1))
		if surge.IsNegative() {
			surge = decimal.Zero
		}
		price = base.Add(surge.Mul(base))
	}

	return price.Mul(fi.PriceBaseMultiplier).Mul(class.Multiplier()).Round(2)
}

// CalculatePrice prices against the current wall-clock date.
func (fi *FlightInstance) CalculatePrice(class FlightClass) decimal.Decimal {
	return fi.CalculatePriceAt(class, time.Now())
}

// daysUntil counts whole calendar days between today and the departure
// date, treating any non-positive remainder as 0.
func daysUntil(date, today time.Time) int64 {
	d := truncateToDay(date)
	t := truncateToDay(today)
	days := int64(d.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
