package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/pkg/apperrors"
)

type InstanceSearchParams struct {
	Origin      string
	Destination string
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

func (p InstanceSearchParams) Empty() bool {
	return p.Origin == "" && p.Destination == "" && p.StartDate == nil && p.EndDate == nil
}

type FlightRepository interface {
	ListFlights(ctx context.Context) ([]domain.Flight, error)
	GetFlight(ctx context.Context, fnum string) (*domain.Flight, error)
	GetInstance(ctx context.Context, id int64) (*domain.FlightInstance, error)
	SearchInstances(ctx context.Context, params InstanceSearchParams) ([]domain.FlightInstance, int64, error)
	RandomInstances(ctx context.Context, limit int) ([]domain.FlightInstance, int64, error)
	PopularDestination(ctx context.Context) (*domain.PopularDestination, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `f.fnum, f.duration_seconds, f.origin, f.destination,
	oa.name, da.name, oc.city_name, dc.city_name`

const flightJoins = `
	FROM flights f
	JOIN airports oa ON oa.iata_code = f.origin
	JOIN airports da ON da.iata_code = f.destination
	JOIN cities oc ON oc.city_id = oa.city_id
	JOIN cities dc ON dc.city_id = da.city_id`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.Fnum, &f.DurationSeconds, &f.Origin, &f.Destination,
		&f.OriginName, &f.DestinationName, &f.OriginCity, &f.DestinationCity); err != nil {
		return nil, err
	}
	f.Duration = time.Duration(f.DurationSeconds) * time.Second
	return &f, nil
}

func (r *PGFlightRepository) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+flightJoins+` ORDER BY f.fnum`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetFlight(ctx context.Context, fnum string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+flightJoins+` WHERE f.fnum=$1`, fnum))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrFlightNotFound
	}
	return f, err
}

const instanceColumns = `fi.id, fi.fnum, fi.date, fi.gate_number, fi.price_base_multiplier, fi.aircraft_id,
	f.duration_seconds, f.origin, f.destination, oa.name, da.name, oc.city_name, dc.city_name,
	ac.register, ac.model, ac.seats_business, ac.seats_economy`

const instanceJoins = `
	FROM flight_instances fi
	JOIN flights f ON f.fnum = fi.fnum
	JOIN airports oa ON oa.iata_code = f.origin
	JOIN airports da ON da.iata_code = f.destination
	JOIN cities oc ON oc.city_id = oa.city_id
	JOIN cities dc ON dc.city_id = da.city_id
	JOIN aircraft ac ON ac.aircraft_id = fi.aircraft_id`

func scanInstance(row pgx.Row) (*domain.FlightInstance, error) {
	var (
		fi domain.FlightInstance
		f  domain.Flight
		ac domain.Aircraft
	)
	if err := row.Scan(&fi.ID, &fi.Fnum, &fi.Date, &fi.GateNumber, &fi.PriceBaseMultiplier, &fi.AircraftID,
		&f.DurationSeconds, &f.Origin, &f.Destination, &f.OriginName, &f.DestinationName, &f.OriginCity, &f.DestinationCity,
		&ac.Register, &ac.Model, &ac.SeatsBusiness, &ac.SeatsEconomy); err != nil {
		return nil, err
	}
	f.Fnum = fi.Fnum
	f.Duration = time.Duration(f.DurationSeconds) * time.Second
	ac.ID = fi.AircraftID
	fi.Flight = &f
	fi.Aircraft = &ac
	return &fi, nil
}

func (r *PGFlightRepository) GetInstance(ctx context.Context, id int64) (*domain.FlightInstance, error) {
	fi, err := scanInstance(r.db.QueryRow(ctx, `SELECT `+instanceColumns+instanceJoins+` WHERE fi.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrFlightInstanceNotFound
	}
	return fi, err
}

func (r *PGFlightRepository) SearchInstances(ctx context.Context, params InstanceSearchParams) ([]domain.FlightInstance, int64, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Origin != "" {
		p := arg(params.Origin)
		where = append(where, fmt.Sprintf(
			`(oc.city_name ILIKE '%%' || %[1]s || '%%' OR oa.name ILIKE '%%' || %[1]s || '%%' OR oa.iata_code ILIKE '%%' || %[1]s || '%%')`, p))
	}
	if params.Destination != "" {
		p := arg(params.Destination)
		where = append(where, fmt.Sprintf(
			`(dc.city_name ILIKE '%%' || %[1]s || '%%' OR da.name ILIKE '%%' || %[1]s || '%%' OR da.iata_code ILIKE '%%' || %[1]s || '%%')`, p))
	}
	if params.StartDate != nil {
		where = append(where, fmt.Sprintf("fi.date >= %s", arg(*params.StartDate)))
	}
	if params.EndDate != nil {
		where = append(where, fmt.Sprintf("fi.date <= %s", arg(*params.EndDate)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*)`+instanceJoins+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.PageSize
	query := `SELECT ` + instanceColumns + instanceJoins + clause +
		fmt.Sprintf(" ORDER BY fi.date, fi.fnum LIMIT %s OFFSET %s", arg(params.PageSize), arg(offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	instances := make([]domain.FlightInstance, 0)
	for rows.Next() {
		fi, err := scanInstance(rows)
		if err != nil {
			return nil, 0, err
		}
		instances = append(instances, *fi)
	}
	return instances, total, rows.Err()
}

// RandomInstances returns a discovery page using database-level
// randomization, mirroring the empty-criteria search behavior.
func (r *PGFlightRepository) RandomInstances(ctx context.Context, limit int) ([]domain.FlightInstance, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM flight_instances`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+instanceColumns+instanceJoins+` ORDER BY random() LIMIT $1`, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	instances := make([]domain.FlightInstance, 0)
	for rows.Next() {
		fi, err := scanInstance(rows)
		if err != nil {
			return nil, 0, err
		}
		instances = append(instances, *fi)
	}
	return instances, total, rows.Err()
}

// PopularDestination finds the city most flights arrive in and picks one
// random instance flying there.
func (r *PGFlightRepository) PopularDestination(ctx context.Context) (*domain.PopularDestination, error) {
	var (
		cityID   int64
		cityName string
		count    int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT dc.city_id, dc.city_name, count(*) AS flight_count
		FROM flights f
		JOIN airports da ON da.iata_code = f.destination
		JOIN cities dc ON dc.city_id = da.city_id
		GROUP BY dc.city_id, dc.city_name
		ORDER BY flight_count DESC
		LIMIT 1`).Scan(&cityID, &cityName, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}

	fi, err := scanInstance(r.db.QueryRow(ctx,
		`SELECT `+instanceColumns+instanceJoins+` WHERE dc.city_id=$1 ORDER BY random() LIMIT 1`, cityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrFlightInstanceNotFound
	}
	if err != nil {
		return nil, err
	}

	return &domain.PopularDestination{City: cityName, FlightCount: count, Instance: fi}, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
