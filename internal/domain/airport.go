package domain

import "github.com/shopspring/decimal"

type Country struct {
	Code     string `json:"country_code"`
	Name     string `json:"country_name"`
	AreaCode string `json:"country_area_code"`
}

type City struct {
	ID          int64  `json:"city_id"`
	Name        string `json:"city_name"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
}

type Airport struct {
	IATACode    string          `json:"iata_code"`
	Name        string          `json:"name"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	CityID      int64           `json:"city_id"`
	CityName    string          `json:"city_name"`
	CountryName string          `json:"country_name"`
	CountryCode string          `json:"country_code"`
}

type Aircraft struct {
	ID            int64  `json:"aircraft_id"`
	Register      string `json:"register"`
	Model         string `json:"model"`
	SeatsBusiness int    `json:"seats_business"`
	SeatsEconomy  int    `json:"seats_economy"`
}

// Location is a combined autocomplete result covering both cities and airports.
type Location struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IATACode    string `json:"iata_code,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}
