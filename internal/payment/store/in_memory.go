package store

import (
	"context"
	"sync"
	"time"

	paymenterrors "github.com/vinkj/autoshop/internal/payment/errors"
)

// InMemoryStore is an in-memory implementation of the PaymentStore interface.
// It is safe for concurrent use and intended for testing.
type InMemoryStore struct {
	mu       sync.RWMutex
	payments []Payment
	nextID   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Create(_ context.Context, params CreatePaymentParams) (*Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Payment{
		ID:            s.nextID,
		OrderID:       params.OrderID,
		PhoneNumber:   params.PhoneNumber,
		Amount:        params.Amount,
		Status:        StatusPending,
		TransactionID: params.TransactionID,
		CreatedAt:     time.Now(),
	}
	s.nextID++
	s.payments = append(s.payments, p)
	return &p, nil
}

func (s *InMemoryStore) FindByTransactionID(_ context.Context, transactionID string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].TransactionID == transactionID {
			p := s.payments[i]
			return &p, nil
		}
	}
	return nil, paymenterrors.ErrPaymentNotFound
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, transactionID, status, receiptNumber string) (*Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].TransactionID == transactionID {
			s.payments[i].Status = status
			s.payments[i].ReceiptNumber = receiptNumber
			p := s.payments[i]
			return &p, nil
		}
	}
	return nil, paymenterrors.ErrPaymentNotFound
}
