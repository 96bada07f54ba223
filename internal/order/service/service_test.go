package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinkj/autoshop/internal/messaging"
	"github.com/vinkj/autoshop/internal/messaging/events"
	ordererrors "github.com/vinkj/autoshop/internal/order/errors"
	"github.com/vinkj/autoshop/internal/order/store"
)

// mockOrderStore is a mock implementation of the OrderStore interface
type mockOrderStore struct {
	orders      []store.Order
	order       *store.Order
	items       []store.OrderItem
	error       error
	cancelOrder *store.Order
	cancelError error

	createParams *store.CreateOrderParams
	createItems  []store.ItemSpec
}

func (m *mockOrderStore) FindByID(_ context.Context, _ int64) (*store.Order, []store.OrderItem, error) {
	if m.error != nil {
		return nil, nil, m.error
	}
	return m.order, m.items, nil
}

func (m *mockOrderStore) FindAll(_ context.Context, _, _ int32) ([]store.Order, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.orders, nil
}

func (m *mockOrderStore) CreateOrder(_ context.Context, params store.CreateOrderParams, items []store.ItemSpec) (*store.Order, []store.OrderItem, error) {
	m.createParams = &params
	m.createItems = items
	if m.error != nil {
		return nil, nil, m.error
	}
	return m.order, m.items, nil
}

func (m *mockOrderStore) CancelOrder(_ context.Context, _ int64) (*store.Order, error) {
	if m.cancelError != nil {
		return nil, m.cancelError
	}
	return m.cancelOrder, nil
}

// mockPublisher records published events and optionally fails.
type mockPublisher struct {
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	if m.error != nil {
		return m.error
	}
	m.events = append(m.events, event)
	return nil
}

func Test_OrderService_FindByID(t *testing.T) {
	createdAt := time.Now()
	testCases := []struct {
		name        string
		mockStore   *mockOrderStore
		orderID     int64
		expected    *OrderDto
		expectError error
	}{
		{
			name: "Success - order found",
			mockStore: &mockOrderStore{
				order: &store.Order{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PhoneNumber: "254700000000", Estate: "Kilimani", StreetAddress: "Argwings Kodhek Rd 12", PaymentMethod: "Delivery", Status: store.StatusPending, CreatedAt: createdAt},
				items: []store.OrderItem{{ID: 10, OrderID: 1, ProductID: 5, Quantity: 2, UnitPrice: 1500, Price: 3000}},
			},
			orderID: 1,
			expected: &OrderDto{
				ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PhoneNumber: "254700000000", Estate: "Kilimani", StreetAddress: "Argwings Kodhek Rd 12", PaymentMethod: "Delivery", Status: store.StatusPending, CreatedAt: createdAt.Format(time.RFC3339),
				Items: []OrderItemDto{{ID: 10, OrderID: 1, ProductID: 5, Quantity: 2, UnitPrice: 1500, Price: 3000}},
			},
		},
		{
			name:        "Error - order not found",
			mockStore:   &mockOrderStore{error: ordererrors.ErrOrderNotFound},
			orderID:     99,
			expectError: ordererrors.ErrOrderNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, &mockPublisher{})
			// when
			found, err := service.FindByID(context.Background(), tc.orderID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_OrderService_FindAll(t *testing.T) {
	createdAt := time.Now()
	testCases := []struct {
		name         string
		mockStore    *mockOrderStore
		expectedList []OrderDto
		expectError  error
	}{
		{
			name: "Success - orders found",
			mockStore: &mockOrderStore{
				orders: []store.Order{{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PaymentMethod: "Delivery", Status: store.StatusPending, CreatedAt: createdAt}},
			},
			expectedList: []OrderDto{{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PaymentMethod: "Delivery", Status: store.StatusPending, CreatedAt: createdAt.Format(time.RFC3339)}},
		},
		{
			name:         "Success - no orders",
			mockStore:    &mockOrderStore{orders: []store.Order{}},
			expectedList: []OrderDto{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockOrderStore{error: ordererrors.ErrTransactionBegin},
			expectError: ordererrors.ErrTransactionBegin,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, &mockPublisher{})
			// when
			found, err := service.FindAll(context.Background(), 0, 10)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedList, *found)
		})
	}
}

func Test_OrderService_Create(t *testing.T) {
	createdAt := time.Now()
	validDto := OrderCreateDto{
		FullName:      "Jane Wanjiru",
		PhoneNumber:   "254700000000",
		Estate:        "Kilimani",
		StreetAddress: "Argwings Kodhek Rd 12",
		PaymentMethod: "M-Pesa",
		Items:         []OrderItemCreateDto{{ProductID: 5, Quantity: 2}},
	}
	createdOrder := &store.Order{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PhoneNumber: "254700000000", Estate: "Kilimani", StreetAddress: "Argwings Kodhek Rd 12", PaymentMethod: "M-Pesa", Status: store.StatusPending, CreatedAt: createdAt}

	testCases := []struct {
		name        string
		mockStore   *mockOrderStore
		order       OrderCreateDto
		expected    *OrderDto
		expectError error
	}{
		{
			name: "Success - order created",
			mockStore: &mockOrderStore{
				order: createdOrder,
				items: []store.OrderItem{{ID: 10, OrderID: 1, ProductID: 5, Quantity: 2, UnitPrice: 1500, Price: 3000}},
			},
			order: validDto,
			expected: &OrderDto{
				ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PhoneNumber: "254700000000", Estate: "Kilimani", StreetAddress: "Argwings Kodhek Rd 12", PaymentMethod: "M-Pesa", Status: store.StatusPending, CreatedAt: createdAt.Format(time.RFC3339),
				Items: []OrderItemDto{{ID: 10, OrderID: 1, ProductID: 5, Quantity: 2, UnitPrice: 1500, Price: 3000}},
			},
		},
		{
			name:        "Error - insufficient stock",
			mockStore:   &mockOrderStore{error: ordererrors.ErrInsufficientStock},
			order:       validDto,
			expectError: ordererrors.ErrInsufficientStock,
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockOrderStore{error: ordererrors.ErrProductNotFound},
			order:       validDto,
			expectError: ordererrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			service := NewService(tc.mockStore, publisher)
			// when
			created, err := service.Create(context.Background(), tc.order)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, created)
			// the store received the specs the dto described
			require.NotNil(t, tc.mockStore.createParams)
			assert.Equal(t, tc.order.PaymentMethod, tc.mockStore.createParams.PaymentMethod)
			assert.Equal(t, []store.ItemSpec{{ProductID: 5, Quantity: 2}}, tc.mockStore.createItems)
			// an OrderCreatedEvent went out
			require.Len(t, publisher.events, 1)
			event, ok := publisher.events[0].(events.OrderCreatedEvent)
			require.True(t, ok)
			assert.Equal(t, createdOrder.ID, event.OrderID)
			assert.Equal(t, createdOrder.TotalPrice, event.TotalPrice)
		})
	}
}

func Test_OrderService_Create_PublishFailureNotSurfaced(t *testing.T) {
	// given
	mockStore := &mockOrderStore{
		order: &store.Order{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", Status: store.StatusPending, CreatedAt: time.Now()},
	}
	publisher := &mockPublisher{error: errors.New("nats unavailable")}
	service := NewService(mockStore, publisher)
	// when
	created, err := service.Create(context.Background(), OrderCreateDto{
		FullName: "Jane Wanjiru", PhoneNumber: "254700000000", Estate: "Kilimani",
		StreetAddress: "Argwings Kodhek Rd 12", PaymentMethod: "Delivery",
		Items: []OrderItemCreateDto{{ProductID: 5, Quantity: 2}},
	})
	// then: the order stands even though the event was lost
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func Test_OrderService_Cancel(t *testing.T) {
	createdAt := time.Now()
	testCases := []struct {
		name        string
		mockStore   *mockOrderStore
		expected    *OrderDto
		expectError error
	}{
		{
			name: "Success - order cancelled",
			mockStore: &mockOrderStore{
				cancelOrder: &store.Order{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PaymentMethod: "Delivery", Status: store.StatusCancelled, CreatedAt: createdAt},
			},
			expected: &OrderDto{ID: 1, TotalPrice: 3000, FullName: "Jane Wanjiru", PaymentMethod: "Delivery", Status: store.StatusCancelled, CreatedAt: createdAt.Format(time.RFC3339)},
		},
		{
			name:        "Error - order not found",
			mockStore:   &mockOrderStore{cancelError: ordererrors.ErrOrderNotFound},
			expectError: ordererrors.ErrOrderNotFound,
		},
		{
			name:        "Error - already cancelled",
			mockStore:   &mockOrderStore{cancelError: ordererrors.ErrOrderAlreadyCancelled},
			expectError: ordererrors.ErrOrderAlreadyCancelled,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, &mockPublisher{})
			// when
			cancelled, err := service.Cancel(context.Background(), 1)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, cancelled)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cancelled)
		})
	}
}
