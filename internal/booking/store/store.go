// Package store provides an interface for booking storage operations.
package store

import (
	"context"
	"time"
)

// Booking represents a service booking row. BookingDate is the calendar
// day of the appointment, BookingTime its time of day as "HH:MM:SS".
type Booking struct {
	ID              int64
	ServiceID       int64
	TotalPrice      int64
	BookingDate     time.Time
	BookingTime     string
	FullName        string
	PhoneNumber     string
	VehicleModel    string
	NumberPlate     string
	AdditionalNotes string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateBookingParams carries the fields of a new booking. TotalPrice is
// taken from the service row, never from the caller.
type CreateBookingParams struct {
	ServiceID       int64
	TotalPrice      int64
	BookingDate     time.Time
	BookingTime     string
	FullName        string
	PhoneNumber     string
	VehicleModel    string
	NumberPlate     string
	AdditionalNotes string
}

// Booking status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// BookingStore is an interface for booking storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type BookingStore interface {
	// FindByID retrieves a single booking by its unique identifier.
	// Returns ErrBookingNotFound if no booking exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindAll returns bookings with pagination support.
	// Returns an empty slice if no bookings exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Booking, error)

	// Create inserts a new booking.
	Create(ctx context.Context, params CreateBookingParams) (*Booking, error)

	// Cancel marks a pending booking as cancelled.
	// Returns ErrBookingNotFound, ErrBookingAlreadyCancelled or ErrBookingCompleted.
	Cancel(ctx context.Context, id int64) (*Booking, error)
}
