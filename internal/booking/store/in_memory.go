package store

import (
	"context"
	"sync"
	"time"

	bookingerrors "github.com/vinkj/autoshop/internal/booking/errors"
)

// InMemoryStore is an in-memory implementation of the BookingStore interface.
// It is safe for concurrent use and intended for testing.
type InMemoryStore struct {
	mu       sync.RWMutex
	bookings []Booking
	nextID   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, bookingerrors.ErrBookingNotFound
}

func (s *InMemoryStore) FindAll(_ context.Context, offset, limit int32) ([]Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= int32(len(s.bookings)) {
		return []Booking{}, nil
	}
	end := offset + limit
	if end > int32(len(s.bookings)) {
		end = int32(len(s.bookings))
	}
	out := make([]Booking, end-offset)
	copy(out, s.bookings[offset:end])
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, params CreateBookingParams) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	b := Booking{
		ID:              s.nextID,
		ServiceID:       params.ServiceID,
		TotalPrice:      params.TotalPrice,
		BookingDate:     params.BookingDate,
		BookingTime:     params.BookingTime,
		FullName:        params.FullName,
		PhoneNumber:     params.PhoneNumber,
		VehicleModel:    params.VehicleModel,
		NumberPlate:     params.NumberPlate,
		AdditionalNotes: params.AdditionalNotes,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.nextID++
	s.bookings = append(s.bookings, b)
	return &b, nil
}

// Complete marks a booking as completed.
func (s *InMemoryStore) Complete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = StatusCompleted
			s.bookings[i].UpdatedAt = time.Now()
			return
		}
	}
}

func (s *InMemoryStore) Cancel(_ context.Context, id int64) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID != id {
			continue
		}
		if s.bookings[i].Status == StatusCancelled {
			return nil, bookingerrors.ErrBookingAlreadyCancelled
		}
		if s.bookings[i].Status == StatusCompleted {
			return nil, bookingerrors.ErrBookingCompleted
		}
		s.bookings[i].Status = StatusCancelled
		s.bookings[i].UpdatedAt = time.Now()
		b := s.bookings[i]
		return &b, nil
	}
	return nil, bookingerrors.ErrBookingNotFound
}
