// Package errors defines domain-specific errors for the booking domain.
package errors

import "errors"

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrServiceNotFound         = errors.New("service not found")
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")
	ErrBookingCompleted        = errors.New("booking already completed")
	ErrCancellationTooLate     = errors.New("booking can no longer be cancelled")
	ErrInvalidBookingSlot      = errors.New("invalid booking date or time")
	ErrCreateBooking           = errors.New("failed to create booking")
)
