// Package service provides the implementation of payment-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	orderrrors "github.com/vinkj/autoshop/internal/order/errors"
	orderstore "github.com/vinkj/autoshop/internal/order/store"
	paymenterrors "github.com/vinkj/autoshop/internal/payment/errors"
	"github.com/vinkj/autoshop/internal/payment/mpesa"
	"github.com/vinkj/autoshop/internal/payment/store"
)

// StkPusher initiates an M-Pesa STK push. Implemented by mpesa.Client.
type StkPusher interface {
	StkPush(ctx context.Context, phoneNumber string, amount int64, accountRef, transactionDesc string) (*mpesa.StkPushResponse, error)
}

// PaymentService defines the methods for initiating and settling payments.
type PaymentService interface {
	// InitiateMpesa pushes an STK prompt for the full price of an order and
	// records a pending payment. Returns ErrOrderNotFound or ErrStkPushFailed.
	InitiateMpesa(ctx context.Context, orderID int64, phoneNumber string) (*PaymentDto, error)

	// HandleCallback settles a pending payment from Daraja's asynchronous
	// result. Returns ErrPaymentNotFound if the callback matches no payment.
	HandleCallback(ctx context.Context, callback CallbackDto) error
}

// Service implements PaymentService.
type Service struct {
	paymentStore store.PaymentStore
	orderStore   orderstore.OrderStore
	pusher       StkPusher
	logger       *slog.Logger
}

// NewService creates a new instance of PaymentService.
func NewService(paymentStore store.PaymentStore, orderStore orderstore.OrderStore, pusher StkPusher, logger *slog.Logger) *Service {
	return &Service{
		paymentStore: paymentStore,
		orderStore:   orderStore,
		pusher:       pusher,
		logger:       logger.With("component", "payment_service"),
	}
}

// PaymentDto represents the data transfer object for an initiated payment.
type PaymentDto struct {
	PaymentID       int64  `json:"payment_id"`
	OrderID         int64  `json:"order_id"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
	TransactionID   string `json:"transaction_id"`
	CustomerMessage string `json:"customer_message"`
}

// InitiateMpesaDto is the request body for initiating an M-Pesa payment.
type InitiateMpesaDto struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=15"`
}

// CallbackDto mirrors Daraja's STK push result envelope.
type CallbackDto struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []CallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// CallbackItem is one metadata entry of a successful callback. Values are
// numbers or strings depending on the entry.
type CallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// InitiateMpesa pushes an STK prompt for the order's total price. The amount
// always comes from the order row, never from the caller.
func (s *Service) InitiateMpesa(ctx context.Context, orderID int64, phoneNumber string) (*PaymentDto, error) {
	order, _, err := s.orderStore.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrrors.ErrOrderNotFound) {
			return nil, paymenterrors.ErrOrderNotFound
		}
		return nil, err
	}

	accountRef := fmt.Sprintf("ORDER%d", order.ID)
	resp, err := s.pusher.StkPush(ctx, phoneNumber, order.TotalPrice, accountRef, "Auto shop order")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymenterrors.ErrStkPushFailed, err)
	}
	if resp.ResponseCode != "0" {
		s.logger.WarnContext(ctx, "Daraja declined STK push",
			"orderID", order.ID, "code", resp.ResponseCode, "description", resp.ResponseDescription)
		return nil, fmt.Errorf("%w: %s", paymenterrors.ErrStkPushFailed, resp.ResponseDescription)
	}

	payment, err := s.paymentStore.Create(ctx, store.CreatePaymentParams{
		OrderID:       order.ID,
		PhoneNumber:   phoneNumber,
		Amount:        order.TotalPrice,
		TransactionID: resp.CheckoutRequestID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Payment initiated",
		"paymentID", payment.ID, "orderID", order.ID, "transactionID", payment.TransactionID)
	return &PaymentDto{
		PaymentID:       payment.ID,
		OrderID:         payment.OrderID,
		Amount:          payment.Amount,
		Status:          payment.Status,
		TransactionID:   payment.TransactionID,
		CustomerMessage: resp.CustomerMessage,
	}, nil
}

// HandleCallback settles the payment named by the callback's
// CheckoutRequestID. A ResultCode of zero completes it, anything else
// fails it.
func (s *Service) HandleCallback(ctx context.Context, callback CallbackDto) error {
	cb := callback.Body.StkCallback
	status := store.StatusCompleted
	receipt := ""
	if cb.ResultCode != 0 {
		status = store.StatusFailed
		s.logger.WarnContext(ctx, "STK push failed",
			"transactionID", cb.CheckoutRequestID, "code", cb.ResultCode, "description", cb.ResultDesc)
	} else {
		for _, item := range cb.CallbackMetadata.Item {
			if item.Name == "MpesaReceiptNumber" {
				receipt, _ = item.Value.(string)
				break
			}
		}
	}

	payment, err := s.paymentStore.UpdateStatus(ctx, cb.CheckoutRequestID, status, receipt)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Payment settled",
		"paymentID", payment.ID, "status", payment.Status, "receipt", payment.ReceiptNumber)
	return nil
}
