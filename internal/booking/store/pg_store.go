package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	bookingerrors "github.com/vinkj/autoshop/internal/booking/errors"
)

type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of BookingStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const bookingColumns = `id, service_id, total_price, booking_date, booking_time::text,
       full_name, phone_number, vehicle_model, number_plate, additional_notes,
       status, created_at, updated_at`

const findBookingSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = $1`

func (p *PgStore) FindByID(ctx context.Context, id int64) (*Booking, error) {
	booking, err := scanBooking(p.db.QueryRow(ctx, findBookingSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookingerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return booking, nil
}

const findBookingsSQL = `
SELECT ` + bookingColumns + `
FROM bookings
ORDER BY booking_date DESC, booking_time DESC
OFFSET $1 LIMIT $2`

func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Booking, error) {
	rows, err := p.db.Query(ctx, findBookingsSQL, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

const insertBookingSQL = `
INSERT INTO bookings (service_id, total_price, booking_date, booking_time,
                      full_name, phone_number, vehicle_model, number_plate, additional_notes, status)
VALUES ($1, $2, $3, $4::time, $5, $6, $7, $8, $9, $10)
RETURNING ` + bookingColumns

func (p *PgStore) Create(ctx context.Context, params CreateBookingParams) (*Booking, error) {
	booking, err := scanBooking(p.db.QueryRow(ctx, insertBookingSQL,
		params.ServiceID, params.TotalPrice, params.BookingDate, params.BookingTime,
		params.FullName, params.PhoneNumber, params.VehicleModel, params.NumberPlate,
		params.AdditionalNotes, StatusPending))
	if err != nil {
		return nil, bookingerrors.ErrCreateBooking
	}
	return booking, nil
}

const cancelBookingSQL = `
UPDATE bookings
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + bookingColumns

func (p *PgStore) Cancel(ctx context.Context, id int64) (*Booking, error) {
	booking, err := scanBooking(p.db.QueryRow(ctx, cancelBookingSQL, id, StatusCancelled, StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing row from one no longer pending.
			var status string
			if serr := p.db.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&status); serr == nil {
				if status == StatusCompleted {
					return nil, bookingerrors.ErrBookingCompleted
				}
				return nil, bookingerrors.ErrBookingAlreadyCancelled
			}
			return nil, bookingerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return booking, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.ServiceID, &b.TotalPrice, &b.BookingDate, &b.BookingTime,
		&b.FullName, &b.PhoneNumber, &b.VehicleModel, &b.NumberPlate, &b.AdditionalNotes,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
