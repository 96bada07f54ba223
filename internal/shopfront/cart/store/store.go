// Package store provides persistence for the local shopping cart.
package store

// Item is one product entry in the cart, carried with the stock ceiling
// that was current when the product was added.
type Item struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Stock     int32  `json:"stock"`
	Quantity  int32  `json:"quantity"`
}

// Store is an interface for cart persistence operations.
// It abstracts the underlying storage, allowing for different implementations (e.g., file, in-memory).
type Store interface {
	// Load deserializes the persisted cart.
	// Returns an empty slice if nothing was persisted or the stored document is corrupt.
	Load() ([]Item, error)

	// Save serializes and persists the full cart, overwriting any prior value.
	Save(items []Item) error
}
