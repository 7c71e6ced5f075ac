package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airline-booking/internal/domain"
	"github.com/Domenick1991/airline-booking/pkg/apperrors"
)

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	Pay(ctx context.Context, ticketNumber string, method domain.PaymentMethod) (*domain.Ticket, error)
	CheckIn(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	Board(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	Delete(ctx context.Context, ticketNumber string) error
	DeleteUnpaidBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `t.ticket_number, t.pnr_number, t.status, t.seat_number, t.extra_baggage,
	t.ticketing_timestamp, t.flight_instance_id, t.class_type, t.passenger_id, t.user_id,
	p.payment_number, p.base_price, p.tax, p.total, p.paid_cash, p.paid_points`

const ticketJoin = ` FROM tickets t JOIN payments p ON p.payment_number = t.payment_id`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t   domain.Ticket
		pay domain.Payment
	)
	if err := row.Scan(&t.TicketNumber, &t.PNR, &t.Status, &t.SeatNumber, &t.ExtraBaggage,
		&t.Timestamp, &t.FlightInstanceID, &t.Class, &t.PassengerID, &t.UserID,
		&pay.ID, &pay.BasePrice, &pay.Tax, &pay.Total, &pay.PaidCash, &pay.PaidPoints); err != nil {
		return nil, err
	}
	t.Payment = &pay
	return &t, nil
}

// Create inserts the ticket together with its empty unpaid payment in one
// transaction; the payment is owned by the ticket from birth.
func (r *PGTicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
		INSERT INTO payments (base_price, tax, total, paid_cash, paid_points)
		VALUES ($1, $2, $3, 0, 0)
		RETURNING payment_number`,
		t.Payment.BasePrice, t.Payment.Tax, t.Payment.Total).Scan(&t.Payment.ID); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO tickets (ticket_number, pnr_number, status, seat_number, extra_baggage, flight_instance_id, class_type, passenger_id, payment_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ticketing_timestamp`,
		t.TicketNumber, t.PNR, t.Status, t.SeatNumber, t.ExtraBaggage,
		t.FlightInstanceID, t.Class, t.PassengerID, t.Payment.ID, t.UserID).Scan(&t.Timestamp); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGTicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+ticketJoin+` WHERE t.ticket_number=$1`, ticketNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrTicketNotFound
	}
	return t, err
}

func (r *PGTicketRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+ticketJoin+` WHERE t.user_id=$1 ORDER BY t.ticketing_timestamp DESC`, userID)
}

func (r *PGTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+ticketJoin+` ORDER BY t.ticketing_timestamp DESC`)
}

func (r *PGTicketRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// lockTicket loads the ticket and payment with the ticket row locked for
// the remainder of the transaction, so concurrent transitions on the same
// ticket serialize instead of racing.
func lockTicket(ctx context.Context, tx pgx.Tx, ticketNumber string) (*domain.Ticket, error) {
	t, err := scanTicket(tx.QueryRow(ctx, `SELECT `+ticketColumns+ticketJoin+` WHERE t.ticket_number=$1 FOR UPDATE OF t`, ticketNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrTicketNotFound
	}
	return t, err
}

// Pay executes the pay transition atomically: the payment update and, for
// the points method, the loyalty debit commit together or not at all.
func (r *PGTicketRepository) Pay(ctx context.Context, ticketNumber string, method domain.PaymentMethod) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTicket(ctx, tx, ticketNumber)
	if err != nil {
		return nil, err
	}

	var ft *domain.FrequentTraveler
	if method == domain.PaymentMethodPoints {
		var loyalty domain.FrequentTraveler
		err := tx.QueryRow(ctx, `SELECT passenger_id, fqtv_id, points FROM frequent_travelers WHERE passenger_id=$1 FOR UPDATE`, t.PassengerID).
			Scan(&loyalty.PassengerID, &loyalty.FQTVID, &loyalty.Points)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// leave ft nil, the transition reports ErrNoLoyaltyAccount
		case err != nil:
			return nil, err
		default:
			ft = &loyalty
		}
	}

	if err := t.Pay(method, ft); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE payments SET paid_cash=$1, paid_points=$2 WHERE payment_number=$3`,
		t.Payment.PaidCash, t.Payment.PaidPoints, t.Payment.ID); err != nil {
		return nil, err
	}
	if ft != nil {
		if _, err := tx.Exec(ctx, `UPDATE frequent_travelers SET points=$1 WHERE passenger_id=$2`,
			ft.Points, ft.PassengerID); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE tickets SET status=$1 WHERE ticket_number=$2`, t.Status, t.TicketNumber); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PGTicketRepository) CheckIn(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return r.transition(ctx, ticketNumber, (*domain.Ticket).CheckIn)
}

func (r *PGTicketRepository) Board(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return r.transition(ctx, ticketNumber, (*domain.Ticket).Board)
}

func (r *PGTicketRepository) transition(ctx context.Context, ticketNumber string, apply func(*domain.Ticket) error) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTicket(ctx, tx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := apply(t); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE tickets SET status=$1 WHERE ticket_number=$2`, t.Status, t.TicketNumber); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete cancels a ticket, removing it and its owned payment together.
func (r *PGTicketRepository) Delete(ctx context.Context, ticketNumber string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t, err := lockTicket(ctx, tx, ticketNumber)
	if err != nil {
		return err
	}
	if err := t.EnsureCancelable(); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tickets WHERE ticket_number=$1`, t.TicketNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE payment_number=$1`, t.Payment.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteUnpaidBefore removes stale unpaid tickets issued before the cutoff
// and returns them so the caller can emit cancellation events.
func (r *PGTicketRepository) DeleteUnpaidBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT `+ticketColumns+ticketJoin+`
		WHERE t.status=$1 AND t.ticketing_timestamp < $2 FOR UPDATE OF t`,
		domain.TicketStatusUnpaid, cutoff)
	if err != nil {
		return nil, err
	}

	stale := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		stale = append(stale, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range stale {
		if _, err := tx.Exec(ctx, `DELETE FROM tickets WHERE ticket_number=$1`, t.TicketNumber); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE payment_number=$1`, t.Payment.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stale, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
