// Package store provides an interface for order storage operations.
package store

import (
	"context"
	"time"
)

// Order represents an order row.
type Order struct {
	ID            int64
	TotalPrice    int64
	FullName      string
	PhoneNumber   string
	Estate        string
	StreetAddress string
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem represents one line of an order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	UnitPrice int64
	Price     int64
}

// ItemSpec is one requested (product, quantity) pair of a new order.
type ItemSpec struct {
	ProductID int64
	Quantity  int32
}

// CreateOrderParams carries the customer fields of a new order.
type CreateOrderParams struct {
	FullName      string
	PhoneNumber   string
	Estate        string
	StreetAddress string
	PaymentMethod string
}

// Order status values.
const (
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// OrderStore is an interface for order storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type OrderStore interface {
	// FindByID retrieves a single order with its items by its unique identifier.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Order, []OrderItem, error)

	// FindAll returns orders with pagination support.
	// Returns an empty slice if no orders exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Order, error)

	// CreateOrder atomically checks stock for every requested item, prices
	// the order from the product rows, decrements stock and inserts the
	// order with its items. Returns ErrProductNotFound or
	// ErrInsufficientStock without mutating anything.
	CreateOrder(ctx context.Context, params CreateOrderParams, items []ItemSpec) (*Order, []OrderItem, error)

	// CancelOrder marks the order cancelled and restores the reserved stock.
	// Returns ErrOrderNotFound or ErrOrderAlreadyCancelled.
	CancelOrder(ctx context.Context, id int64) (*Order, error)
}
