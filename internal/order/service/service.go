// Package service provides the implementation of order-related business logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vinkj/autoshop/internal/messaging"
	"github.com/vinkj/autoshop/internal/messaging/events"
	"github.com/vinkj/autoshop/internal/order/store"
)

// OrderService defines the methods for managing orders.
// It abstracts the underlying business logic and data access.
type OrderService interface {
	// FindByID retrieves a single order by its unique identifier.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id int64) (*OrderDto, error)

	// FindAll returns orders with pagination support.
	// Returns an empty slice if no orders exist.
	FindAll(ctx context.Context, offset, limit int32) (*[]OrderDto, error)

	// Create adds a new order to the system, pricing it from the product
	// rows and reserving stock. Returns ErrProductNotFound or
	// ErrInsufficientStock if any requested line cannot be fulfilled.
	Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error)

	// Cancel marks an order as cancelled and restores its stock.
	// Returns ErrOrderNotFound or ErrOrderAlreadyCancelled.
	Cancel(ctx context.Context, id int64) (*OrderDto, error)
}

// Service implements OrderService and provides methods to manage orders.
type Service struct {
	orderStore store.OrderStore
	publisher  messaging.Publisher
}

// NewService creates a new instance of OrderService with the provided orderStore.
func NewService(orderStore store.OrderStore, publisher messaging.Publisher) *Service {
	return &Service{
		orderStore: orderStore,
		publisher:  publisher,
	}
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID            int64          `json:"id"`
	TotalPrice    int64          `json:"total_price"`
	FullName      string         `json:"full_name"`
	PhoneNumber   string         `json:"phone_number"`
	Estate        string         `json:"estate"`
	StreetAddress string         `json:"street_address"`
	PaymentMethod string         `json:"payment_method"`
	Status        string         `json:"status"`
	CreatedAt     string         `json:"created_at"`
	Items         []OrderItemDto `json:"items,omitempty"`
}

type OrderItemDto struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Price     int64 `json:"price"`
}

// OrderCreateDto represents the data transfer object for creating a new order.
type OrderCreateDto struct {
	FullName      string               `json:"full_name" validate:"required,max=100"`
	PhoneNumber   string               `json:"phone_number" validate:"required,max=15"`
	Estate        string               `json:"estate" validate:"required,max=100"`
	StreetAddress string               `json:"street_address" validate:"required,max=255"`
	PaymentMethod string               `json:"payment_method" validate:"required,oneof=M-Pesa Delivery"`
	Items         []OrderItemCreateDto `json:"items" validate:"required,gt=0,dive"`
}

// OrderItemCreateDto represents the data transfer object for creating a new order item.
type OrderItemCreateDto struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int32 `json:"quantity" validate:"required,min=1"`
}

// FindByID retrieves an order by its ID and returns it as a OrderDto.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*OrderDto, error) {
	order, items, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(order, items), nil
}

// FindAll retrieves a list of orders and returns them as OrderDtos.
// Returns an empty slice if no orders exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) (*[]OrderDto, error) {
	orders, err := s.orderStore.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	orderDtos := make([]OrderDto, len(orders))
	for i, o := range orders {
		orderDtos[i] = *toDto(&o, nil)
	}
	return &orderDtos, nil
}

// Create creates a new order and returns it as a OrderDto.
// Stock checks and pricing happen inside the store transaction, so a
// concurrent order on the same product cannot oversell it.
func (s *Service) Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error) {
	params := store.CreateOrderParams{
		FullName:      order.FullName,
		PhoneNumber:   order.PhoneNumber,
		Estate:        order.Estate,
		StreetAddress: order.StreetAddress,
		PaymentMethod: order.PaymentMethod,
	}
	specs := make([]store.ItemSpec, 0, len(order.Items))
	for _, item := range order.Items {
		specs = append(specs, store.ItemSpec{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	created, items, err := s.orderStore.CreateOrder(ctx, params, specs)
	if err != nil {
		return nil, err
	}

	event := events.OrderCreatedEvent{
		OrderID:     created.ID,
		FullName:    created.FullName,
		PhoneNumber: created.PhoneNumber,
		TotalPrice:  created.TotalPrice,
		CreatedAt:   created.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "error", err)
	}

	return toDto(created, items), nil
}

// Cancel marks an order as cancelled, restoring the stock of every line.
func (s *Service) Cancel(ctx context.Context, id int64) (*OrderDto, error) {
	cancelled, err := s.orderStore.CancelOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(cancelled, nil), nil
}

// toDto converts a store.Order to a OrderDto.
func toDto(order *store.Order, items []store.OrderItem) *OrderDto {
	if order == nil {
		return nil
	}

	var itemsDto []OrderItemDto
	if items != nil {
		itemsDto = make([]OrderItemDto, 0, len(items))
		for _, item := range items {
			itemsDto = append(itemsDto, OrderItemDto{
				ID:        item.ID,
				OrderID:   item.OrderID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Price:     item.Price,
			})
		}
	}

	return &OrderDto{
		ID:            order.ID,
		TotalPrice:    order.TotalPrice,
		FullName:      order.FullName,
		PhoneNumber:   order.PhoneNumber,
		Estate:        order.Estate,
		StreetAddress: order.StreetAddress,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		Items:         itemsDto,
	}
}
