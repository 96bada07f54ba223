package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderstore "github.com/vinkj/autoshop/internal/order/store"
	paymenterrors "github.com/vinkj/autoshop/internal/payment/errors"
	"github.com/vinkj/autoshop/internal/payment/mpesa"
	"github.com/vinkj/autoshop/internal/payment/store"
)

// mockPusher is a mock implementation of the StkPusher interface
type mockPusher struct {
	response *mpesa.StkPushResponse
	error    error

	calls     int
	lastPhone string
	lastRef   string
	lastAmt   int64
}

func (m *mockPusher) StkPush(_ context.Context, phoneNumber string, amount int64, accountRef, _ string) (*mpesa.StkPushResponse, error) {
	m.calls++
	m.lastPhone = phoneNumber
	m.lastAmt = amount
	m.lastRef = accountRef
	if m.error != nil {
		return nil, m.error
	}
	return m.response, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// seededOrderStore returns an order store holding one paid-for order.
func seededOrderStore(t *testing.T) (*orderstore.InMemoryStore, *orderstore.Order) {
	t.Helper()
	s := orderstore.NewInMemoryStore()
	s.AddProduct(5, 1500, 10)
	order, _, err := s.CreateOrder(context.Background(), orderstore.CreateOrderParams{
		FullName:      "Jane Wanjiru",
		PhoneNumber:   "254700000000",
		Estate:        "Kilimani",
		StreetAddress: "Argwings Kodhek Rd 12",
		PaymentMethod: "M-Pesa",
	}, []orderstore.ItemSpec{{ProductID: 5, Quantity: 2}})
	require.NoError(t, err)
	return s, order
}

func acceptedPush() *mpesa.StkPushResponse {
	return &mpesa.StkPushResponse{
		MerchantRequestID:   "29115-34620561-1",
		CheckoutRequestID:   "ws_CO_010920261005123456",
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}
}

func Test_PaymentService_InitiateMpesa(t *testing.T) {
	t.Run("Success - pending payment recorded", func(t *testing.T) {
		// given
		orderStore, order := seededOrderStore(t)
		paymentStore := store.NewInMemoryStore()
		pusher := &mockPusher{response: acceptedPush()}
		service := NewService(paymentStore, orderStore, pusher, testLogger())
		// when
		dto, err := service.InitiateMpesa(context.Background(), order.ID, "254700000000")
		// then
		require.NoError(t, err)
		assert.Equal(t, order.ID, dto.OrderID)
		assert.Equal(t, order.TotalPrice, dto.Amount)
		assert.Equal(t, store.StatusPending, dto.Status)
		assert.Equal(t, "ws_CO_010920261005123456", dto.TransactionID)
		assert.Equal(t, "Success. Request accepted for processing", dto.CustomerMessage)
		// the push carried the order's price, not the caller's
		assert.Equal(t, 1, pusher.calls)
		assert.Equal(t, order.TotalPrice, pusher.lastAmt)
		assert.Equal(t, "254700000000", pusher.lastPhone)
		assert.Contains(t, pusher.lastRef, "ORDER")
		// the pending payment is retrievable by its transaction ID
		payment, err := paymentStore.FindByTransactionID(context.Background(), dto.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, store.StatusPending, payment.Status)
	})

	t.Run("Error - order not found", func(t *testing.T) {
		// given
		orderStore, _ := seededOrderStore(t)
		pusher := &mockPusher{response: acceptedPush()}
		service := NewService(store.NewInMemoryStore(), orderStore, pusher, testLogger())
		// when
		dto, err := service.InitiateMpesa(context.Background(), 99, "254700000000")
		// then
		assert.ErrorIs(t, err, paymenterrors.ErrOrderNotFound)
		assert.Nil(t, dto)
		assert.Zero(t, pusher.calls)
	})

	t.Run("Error - push request fails", func(t *testing.T) {
		// given
		orderStore, order := seededOrderStore(t)
		paymentStore := store.NewInMemoryStore()
		pusher := &mockPusher{error: errors.New("daraja unreachable")}
		service := NewService(paymentStore, orderStore, pusher, testLogger())
		// when
		dto, err := service.InitiateMpesa(context.Background(), order.ID, "254700000000")
		// then
		assert.ErrorIs(t, err, paymenterrors.ErrStkPushFailed)
		assert.Nil(t, dto)
	})

	t.Run("Error - Daraja declines the push", func(t *testing.T) {
		// given
		orderStore, order := seededOrderStore(t)
		paymentStore := store.NewInMemoryStore()
		declined := acceptedPush()
		declined.ResponseCode = "1"
		declined.ResponseDescription = "Invalid PhoneNumber"
		pusher := &mockPusher{response: declined}
		service := NewService(paymentStore, orderStore, pusher, testLogger())
		// when
		dto, err := service.InitiateMpesa(context.Background(), order.ID, "123")
		// then: no payment row is recorded for a declined push
		assert.ErrorIs(t, err, paymenterrors.ErrStkPushFailed)
		assert.Nil(t, dto)
		_, err = paymentStore.FindByTransactionID(context.Background(), declined.CheckoutRequestID)
		assert.ErrorIs(t, err, paymenterrors.ErrPaymentNotFound)
	})
}

func callbackFor(transactionID string, resultCode int, items []CallbackItem) CallbackDto {
	var cb CallbackDto
	cb.Body.StkCallback.MerchantRequestID = "29115-34620561-1"
	cb.Body.StkCallback.CheckoutRequestID = transactionID
	cb.Body.StkCallback.ResultCode = resultCode
	cb.Body.StkCallback.CallbackMetadata.Item = items
	return cb
}

func Test_PaymentService_HandleCallback(t *testing.T) {
	initiate := func(t *testing.T) (*Service, *store.InMemoryStore, string) {
		t.Helper()
		orderStore, order := seededOrderStore(t)
		paymentStore := store.NewInMemoryStore()
		service := NewService(paymentStore, orderStore, &mockPusher{response: acceptedPush()}, testLogger())
		dto, err := service.InitiateMpesa(context.Background(), order.ID, "254700000000")
		require.NoError(t, err)
		return service, paymentStore, dto.TransactionID
	}

	t.Run("Success - payment completed with receipt", func(t *testing.T) {
		// given
		service, paymentStore, transactionID := initiate(t)
		callback := callbackFor(transactionID, 0, []CallbackItem{
			{Name: "Amount", Value: float64(3000)},
			{Name: "MpesaReceiptNumber", Value: "TIA0000001"},
			{Name: "PhoneNumber", Value: float64(254700000000)},
		})
		// when
		err := service.HandleCallback(context.Background(), callback)
		// then
		require.NoError(t, err)
		payment, err := paymentStore.FindByTransactionID(context.Background(), transactionID)
		require.NoError(t, err)
		assert.Equal(t, store.StatusCompleted, payment.Status)
		assert.Equal(t, "TIA0000001", payment.ReceiptNumber)
	})

	t.Run("Success - payment failed on non-zero result", func(t *testing.T) {
		// given: result code 1032 is the user cancelling the prompt
		service, paymentStore, transactionID := initiate(t)
		callback := callbackFor(transactionID, 1032, nil)
		// when
		err := service.HandleCallback(context.Background(), callback)
		// then
		require.NoError(t, err)
		payment, err := paymentStore.FindByTransactionID(context.Background(), transactionID)
		require.NoError(t, err)
		assert.Equal(t, store.StatusFailed, payment.Status)
		assert.Empty(t, payment.ReceiptNumber)
	})

	t.Run("Error - unknown transaction", func(t *testing.T) {
		// given
		service, _, _ := initiate(t)
		callback := callbackFor("ws_CO_unknown", 0, nil)
		// when
		err := service.HandleCallback(context.Background(), callback)
		// then
		assert.ErrorIs(t, err, paymenterrors.ErrPaymentNotFound)
	})
}
