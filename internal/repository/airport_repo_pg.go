package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airline-booking/internal/domain"
)

type AirportRepository interface {
	SearchCities(ctx context.Context, term string, limit int) ([]domain.City, error)
	SearchAirports(ctx context.Context, term string, limit int) ([]domain.Airport, error)
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) SearchCities(ctx context.Context, term string, limit int) ([]domain.City, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.city_id, c.city_name, co.country_code, co.country_name
		FROM cities c
		JOIN countries co ON co.country_code = c.country_code
		WHERE c.city_name ILIKE '%' || $1 || '%'
		ORDER BY c.city_name
		LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]domain.City, 0)
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.CountryCode, &c.CountryName); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *PGAirportRepository) SearchAirports(ctx context.Context, term string, limit int) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.iata_code, a.name, a.service_fee, c.city_id, c.city_name, co.country_name, co.country_code
		FROM airports a
		JOIN cities c ON c.city_id = a.city_id
		JOIN countries co ON co.country_code = c.country_code
		WHERE a.name ILIKE '%' || $1 || '%' OR a.iata_code ILIKE '%' || $1 || '%'
		ORDER BY a.name
		LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.IATACode, &a.Name, &a.ServiceFee, &a.CityID, &a.CityName, &a.CountryName, &a.CountryCode); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

var _ AirportRepository = (*PGAirportRepository)(nil)
