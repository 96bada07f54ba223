// Package store provides an interface for payment storage operations.
package store

import (
	"context"
	"time"
)

// Payment represents one STK push attempt against an order.
// TransactionID is Daraja's CheckoutRequestID.
type Payment struct {
	ID            int64
	OrderID       int64
	PhoneNumber   string
	Amount        int64
	Status        string
	TransactionID string
	ReceiptNumber string
	CreatedAt     time.Time
}

// CreatePaymentParams carries the fields of a new pending payment.
type CreatePaymentParams struct {
	OrderID       int64
	PhoneNumber   string
	Amount        int64
	TransactionID string
}

// Payment status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// PaymentStore is an interface for payment storage operations.
type PaymentStore interface {
	// Create inserts a new payment in pending state.
	Create(ctx context.Context, params CreatePaymentParams) (*Payment, error)

	// FindByTransactionID retrieves a payment by its Daraja CheckoutRequestID.
	// Returns ErrPaymentNotFound if no payment matches.
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// UpdateStatus sets the status and receipt number of a payment identified
	// by its transaction ID. Returns ErrPaymentNotFound if no payment matches.
	UpdateStatus(ctx context.Context, transactionID, status, receiptNumber string) (*Payment, error)
}
