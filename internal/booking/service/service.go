// Package service provides the implementation of booking-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "github.com/vinkj/autoshop/internal/booking/errors"
	"github.com/vinkj/autoshop/internal/booking/store"
	catalogerrors "github.com/vinkj/autoshop/internal/catalog/errors"
	catalogstore "github.com/vinkj/autoshop/internal/catalog/store"
)

// Bookings can be cancelled up to this long before the appointment.
const cancellationCutoff = 2 * time.Hour

// BookingService defines the methods for managing service bookings.
type BookingService interface {
	// FindByID retrieves a single booking by its unique identifier.
	// Returns ErrBookingNotFound if no booking exists with the given ID.
	FindByID(ctx context.Context, id int64) (*BookingDto, error)

	// FindAll returns bookings with pagination support.
	FindAll(ctx context.Context, offset, limit int32) (*[]BookingDto, error)

	// Create books a service slot, pricing the booking from the service row.
	// Returns ErrServiceNotFound or ErrInvalidBookingSlot.
	Create(ctx context.Context, booking BookingCreateDto) (*BookingDto, error)

	// Cancel cancels a booking if the appointment is still far enough away.
	// Returns ErrBookingNotFound, ErrBookingAlreadyCancelled, ErrBookingCompleted
	// or ErrCancellationTooLate.
	Cancel(ctx context.Context, id int64) (*BookingDto, error)
}

// Service implements BookingService.
type Service struct {
	bookingStore store.BookingStore
	catalogStore catalogstore.CatalogStore
	now          func() time.Time
}

// NewService creates a new instance of BookingService with the provided stores.
func NewService(bookingStore store.BookingStore, catalogStore catalogstore.CatalogStore) *Service {
	return &Service{
		bookingStore: bookingStore,
		catalogStore: catalogStore,
		now:          time.Now,
	}
}

// BookingDto represents the data transfer object for a booking.
type BookingDto struct {
	ID              int64  `json:"id"`
	ServiceID       int64  `json:"service_id"`
	TotalPrice      int64  `json:"total_price"`
	BookingDate     string `json:"booking_date"`
	BookingTime     string `json:"booking_time"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	VehicleModel    string `json:"vehicle_model"`
	NumberPlate     string `json:"number_plate"`
	AdditionalNotes string `json:"additional_notes"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// BookingCreateDto represents the data transfer object for creating a new booking.
// BookingDate is "2006-01-02", BookingTime "15:04" or "15:04:05".
type BookingCreateDto struct {
	ServiceID       int64  `json:"service_id" validate:"required"`
	BookingDate     string `json:"booking_date" validate:"required"`
	BookingTime     string `json:"booking_time" validate:"required"`
	FullName        string `json:"full_name" validate:"required,max=100"`
	PhoneNumber     string `json:"phone_number" validate:"required,max=15"`
	VehicleModel    string `json:"vehicle_model" validate:"max=100"`
	NumberPlate     string `json:"number_plate" validate:"max=20"`
	AdditionalNotes string `json:"additional_notes" validate:"max=500"`
}

// FindByID retrieves a booking by its ID and returns it as a BookingDto.
func (s *Service) FindByID(ctx context.Context, id int64) (*BookingDto, error) {
	booking, err := s.bookingStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(booking), nil
}

// FindAll retrieves a list of bookings and returns them as BookingDtos.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) (*[]BookingDto, error) {
	bookings, err := s.bookingStore.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	bookingDtos := make([]BookingDto, len(bookings))
	for i, b := range bookings {
		bookingDtos[i] = *toDto(&b)
	}
	return &bookingDtos, nil
}

// Create books a slot for a service. The price is always taken from the
// service row, never from the request.
func (s *Service) Create(ctx context.Context, booking BookingCreateDto) (*BookingDto, error) {
	svc, err := s.catalogStore.FindServiceByID(ctx, booking.ServiceID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, bookingerrors.ErrServiceNotFound
		}
		return nil, err
	}

	date, clock, err := parseSlot(booking.BookingDate, booking.BookingTime)
	if err != nil {
		return nil, err
	}
	if appointmentAt(date, clock).Before(s.now()) {
		return nil, fmt.Errorf("slot is in the past: %w", bookingerrors.ErrInvalidBookingSlot)
	}

	created, err := s.bookingStore.Create(ctx, store.CreateBookingParams{
		ServiceID:       booking.ServiceID,
		TotalPrice:      svc.Price,
		BookingDate:     date,
		BookingTime:     clock,
		FullName:        booking.FullName,
		PhoneNumber:     booking.PhoneNumber,
		VehicleModel:    booking.VehicleModel,
		NumberPlate:     booking.NumberPlate,
		AdditionalNotes: booking.AdditionalNotes,
	})
	if err != nil {
		return nil, err
	}
	return toDto(created), nil
}

// Cancel cancels a booking. Cancellation closes two hours before the
// appointment.
func (s *Service) Cancel(ctx context.Context, id int64) (*BookingDto, error) {
	booking, err := s.bookingStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == store.StatusCancelled {
		return nil, bookingerrors.ErrBookingAlreadyCancelled
	}
	if booking.Status == store.StatusCompleted {
		return nil, bookingerrors.ErrBookingCompleted
	}
	if s.now().After(appointmentAt(booking.BookingDate, booking.BookingTime).Add(-cancellationCutoff)) {
		return nil, bookingerrors.ErrCancellationTooLate
	}

	cancelled, err := s.bookingStore.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(cancelled), nil
}

// parseSlot validates the requested date and time of day, normalizing
// the time to "15:04:05".
func parseSlot(dateStr, timeStr string) (time.Time, string, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("date %q: %w", dateStr, bookingerrors.ErrInvalidBookingSlot)
	}
	clock, err := time.Parse("15:04:05", timeStr)
	if err != nil {
		clock, err = time.Parse("15:04", timeStr)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("time %q: %w", timeStr, bookingerrors.ErrInvalidBookingSlot)
		}
	}
	return date, clock.Format("15:04:05"), nil
}

// appointmentAt combines a booking's date and time of day.
func appointmentAt(date time.Time, clock string) time.Time {
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

// toDto converts a store.Booking to a BookingDto.
func toDto(b *store.Booking) *BookingDto {
	if b == nil {
		return nil
	}
	return &BookingDto{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		TotalPrice:      b.TotalPrice,
		BookingDate:     b.BookingDate.Format("2006-01-02"),
		BookingTime:     b.BookingTime,
		FullName:        b.FullName,
		PhoneNumber:     b.PhoneNumber,
		VehicleModel:    b.VehicleModel,
		NumberPlate:     b.NumberPlate,
		AdditionalNotes: b.AdditionalNotes,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}
