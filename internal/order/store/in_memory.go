package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	ordererrors "github.com/vinkj/autoshop/internal/order/errors"
)

type stockedProduct struct {
	price int64
	stock int32
}

// InMemoryStore is an in-memory implementation of the OrderStore interface.
// It is safe for concurrent use and intended for testing.
type InMemoryStore struct {
	mu       sync.RWMutex
	orders   []Order
	items    map[int64][]OrderItem
	products map[int64]*stockedProduct
	nextID   int64
	nextItem int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		items:    make(map[int64][]OrderItem),
		products: make(map[int64]*stockedProduct),
		nextID:   1,
		nextItem: 1,
	}
}

// AddProduct seeds a product row the store prices and stocks orders against.
func (s *InMemoryStore) AddProduct(id int64, price int64, stock int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &stockedProduct{price: price, stock: stock}
}

// ProductStock reports the remaining stock of a seeded product.
func (s *InMemoryStore) ProductStock(id int64) int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[id]; ok {
		return p.stock
	}
	return 0
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*Order, []OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			o := s.orders[i]
			items := make([]OrderItem, len(s.items[id]))
			copy(items, s.items[id])
			return &o, items, nil
		}
	}
	return nil, nil, ordererrors.ErrOrderNotFound
}

func (s *InMemoryStore) FindAll(_ context.Context, offset, limit int32) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first, matching the database ordering.
	reversed := make([]Order, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		reversed = append(reversed, s.orders[i])
	}

	if offset >= int32(len(reversed)) {
		return []Order{}, nil
	}
	end := offset + limit
	if end > int32(len(reversed)) {
		end = int32(len(reversed))
	}
	return reversed[offset:end], nil
}

func (s *InMemoryStore) CreateOrder(_ context.Context, params CreateOrderParams, specs []ItemSpec) (*Order, []OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totalPrice int64
	priced := make([]OrderItem, 0, len(specs))
	for _, spec := range specs {
		p, ok := s.products[spec.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("product %d: %w", spec.ProductID, ordererrors.ErrProductNotFound)
		}
		if p.stock < spec.Quantity {
			return nil, nil, fmt.Errorf("product %d. Available: %d, Requested: %d: %w",
				spec.ProductID, p.stock, spec.Quantity, ordererrors.ErrInsufficientStock)
		}
		linePrice := p.price * int64(spec.Quantity)
		priced = append(priced, OrderItem{
			ProductID: spec.ProductID,
			Quantity:  spec.Quantity,
			UnitPrice: p.price,
			Price:     linePrice,
		})
		totalPrice += linePrice
	}

	now := time.Now()
	order := Order{
		ID:            s.nextID,
		TotalPrice:    totalPrice,
		FullName:      params.FullName,
		PhoneNumber:   params.PhoneNumber,
		Estate:        params.Estate,
		StreetAddress: params.StreetAddress,
		PaymentMethod: params.PaymentMethod,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextID++

	for i := range priced {
		priced[i].ID = s.nextItem
		s.nextItem++
		priced[i].OrderID = order.ID
		s.products[priced[i].ProductID].stock -= priced[i].Quantity
	}

	s.orders = append(s.orders, order)
	stored := make([]OrderItem, len(priced))
	copy(stored, priced)
	s.items[order.ID] = stored

	return &order, priced, nil
}

func (s *InMemoryStore) CancelOrder(_ context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if s.orders[i].Status == StatusCancelled {
			return nil, ordererrors.ErrOrderAlreadyCancelled
		}
		for _, item := range s.items[id] {
			if p, ok := s.products[item.ProductID]; ok {
				p.stock += item.Quantity
			}
		}
		s.orders[i].Status = StatusCancelled
		s.orders[i].UpdatedAt = time.Now()
		o := s.orders[i]
		return &o, nil
	}
	return nil, ordererrors.ErrOrderNotFound
}
