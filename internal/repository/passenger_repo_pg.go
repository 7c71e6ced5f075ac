package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/pkg/apperrors"
)

type PassengerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	Create(ctx context.Context, p *domain.Passenger) error
}

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

// GetByID loads the passenger together with the optional frequent-traveler
// capability row.
func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `
		SELECT p.passenger_id, p.id_type, p.id_number, p.id_document, p.first_name, p.last_name,
		       p.area_code, p.phone_number, p.email, p.birthdate, p.citizenship,
		       ft.fqtv_id, ft.points
		FROM passengers p
		LEFT JOIN frequent_travelers ft ON ft.passenger_id = p.passenger_id
		WHERE p.passenger_id=$1`, id)

	var (
		p      domain.Passenger
		fqtvID *string
		points *int64
	)
	if err := row.Scan(&p.ID, &p.IDType, &p.IDNumber, &p.IDDocument, &p.FirstName, &p.LastName,
		&p.AreaCode, &p.PhoneNumber, &p.Email, &p.Birthdate, &p.Citizenship, &fqtvID, &points); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPassengerNotFound
		}
		return nil, err
	}
	if fqtvID != nil {
		p.FrequentTraveler = &domain.FrequentTraveler{PassengerID: p.ID, FQTVID: *fqtvID, Points: *points}
	}
	return &p, nil
}

func (r *PGPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO passengers (id_type, id_number, id_document, first_name, last_name, area_code, phone_number, email, birthdate, citizenship)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING passenger_id`,
		p.IDType, p.IDNumber, p.IDDocument, p.FirstName, p.LastName,
		p.AreaCode, p.PhoneNumber, p.Email, p.Birthdate, p.Citizenship).Scan(&p.ID)
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
