package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	paymenterrors "github.com/vinkj/autoshop/internal/payment/errors"
)

type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of PaymentStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const paymentColumns = `id, order_id, phone_number, amount, status, transaction_id, receipt_number, created_at`

const insertPaymentSQL = `
INSERT INTO payments (order_id, phone_number, amount, status, transaction_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + paymentColumns

func (p *PgStore) Create(ctx context.Context, params CreatePaymentParams) (*Payment, error) {
	payment, err := scanPayment(p.db.QueryRow(ctx, insertPaymentSQL,
		params.OrderID, params.PhoneNumber, params.Amount, StatusPending, params.TransactionID))
	if err != nil {
		return nil, paymenterrors.ErrCreatePayment
	}
	return payment, nil
}

const findPaymentByTxSQL = `
SELECT ` + paymentColumns + `
FROM payments
WHERE transaction_id = $1
ORDER BY id DESC
LIMIT 1`

func (p *PgStore) FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	payment, err := scanPayment(p.db.QueryRow(ctx, findPaymentByTxSQL, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, paymenterrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return payment, nil
}

const updatePaymentStatusSQL = `
UPDATE payments
SET status = $2, receipt_number = $3
WHERE transaction_id = $1
RETURNING ` + paymentColumns

func (p *PgStore) UpdateStatus(ctx context.Context, transactionID, status, receiptNumber string) (*Payment, error) {
	payment, err := scanPayment(p.db.QueryRow(ctx, updatePaymentStatusSQL, transactionID, status, receiptNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, paymenterrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return payment, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var pay Payment
	err := row.Scan(&pay.ID, &pay.OrderID, &pay.PhoneNumber, &pay.Amount,
		&pay.Status, &pay.TransactionID, &pay.ReceiptNumber, &pay.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &pay, nil
}
