// Package cart implements the client-held cart state container.
//
// The cart is an ordered sequence of line items keyed by product ID.
// Every mutation persists the full sequence through the injected Store and
// notifies the registered change listener before the operation returns, so
// any projection of the cart is always a function of its current state.
package cart

import (
	"log/slog"
	"sync"

	"github.com/vinkj/autoshop/internal/shopfront/cart/store"
)

// Outcome reports the effect of a mutating cart operation.
// Stock violations are reported, not raised, so callers can decide
// whether to surface feedback.
type Outcome int

const (
	// Added means a new line item was inserted.
	Added Outcome = iota
	// Updated means an existing line item's quantity changed.
	Updated
	// StockExceeded means the operation would push a quantity past the
	// item's stock ceiling and was rejected without mutating anything.
	StockExceeded
	// NoChange means the operation was a no-op (absent ID, or a quantity
	// adjustment outside the valid range).
	NoChange
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case StockExceeded:
		return "stock exceeded"
	default:
		return "no change"
	}
}

// Cart holds the line items for one shopping session.
//
// Invariant: for every line item, 1 <= Quantity <= Stock. Insertion order is
// preserved and IDs are unique; adding an existing ID adjusts its quantity
// in place rather than appending.
type Cart struct {
	mu       sync.Mutex
	store    store.Store
	items    []store.Item
	onChange func(items []store.Item)
	logger   *slog.Logger
}

// New creates a Cart initialized from the persisted state in s.
func New(s store.Store, logger *slog.Logger) (*Cart, error) {
	items, err := s.Load()
	if err != nil {
		return nil, err
	}
	return &Cart{
		store:  s,
		items:  items,
		logger: logger.With("component", "cart"),
	}, nil
}

// OnChange registers fn to be called with a snapshot of the items after
// every successful mutation. Only one listener is held; the render layer
// re-projects the full cart on each call.
func (c *Cart) OnChange(fn func(items []store.Item)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Add increases the quantity of an existing line item by delta, or inserts
// a new line item with quantity min(delta, stock ceiling). An increase past
// the stock ceiling is rejected with StockExceeded and mutates nothing.
func (c *Cart) Add(item store.Item, delta int32) Outcome {
	if delta <= 0 {
		return NoChange
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != item.ID {
			continue
		}
		if c.items[i].Quantity+delta > c.items[i].Stock {
			return StockExceeded
		}
		c.items[i].Quantity += delta
		c.persist()
		return Updated
	}

	if item.Stock <= 0 {
		return StockExceeded
	}
	item.Quantity = min(delta, item.Stock)
	c.items = append(c.items, item)
	c.persist()
	return Added
}

// Remove deletes the line item with the given ID. Removing an absent ID is
// a no-op, not an error.
func (c *Cart) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist()
			return
		}
	}
}

// AdjustQuantity applies quantity+delta to the line item with the given ID,
// only when the result stays within [1, stock ceiling]. Anything else is a
// silent no-op: a guard against malformed input, not an error path.
func (c *Cart) AdjustQuantity(id int64, delta int32) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		newQty := c.items[i].Quantity + delta
		if newQty < 1 {
			return NoChange
		}
		if newQty > c.items[i].Stock {
			return StockExceeded
		}
		c.items[i].Quantity = newQty
		c.persist()
		return Updated
	}
	return NoChange
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []store.Item{}
	c.persist()
}

// Total returns the sum of unit price times quantity over all line items.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, item := range c.items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// Count returns the sum of quantities over all line items.
func (c *Cart) Count() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int32
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items returns a snapshot copy of the line items in insertion order.
func (c *Cart) Items() []store.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// persist writes the full sequence through the store and notifies the
// change listener. Called with c.mu held, so a mutation, its persistence
// and its re-render complete before the next operation starts.
// A failed save keeps the in-memory state authoritative for this session.
func (c *Cart) persist() {
	if err := c.store.Save(c.items); err != nil {
		c.logger.Warn("Failed to persist cart", "error", err)
	}
	if c.onChange != nil {
		c.onChange(c.snapshot())
	}
}

func (c *Cart) snapshot() []store.Item {
	out := make([]store.Item, len(c.items))
	copy(out, c.items)
	return out
}
