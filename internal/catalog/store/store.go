// Package store provides an interface for catalog storage operations.
package store

import (
	"context"
	"time"
)

// Service represents a bookable service row.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       int64 // Price in whole shillings
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product represents a purchasable product row.
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         int64 // Price in whole shillings
	Image         string
	IsAvailable   bool
	StockQuantity int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GalleryImage represents one gallery entry.
type GalleryImage struct {
	ID       int64
	Image    string
	Title    string
	Category string
}

// CatalogStore is an interface for catalog storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type CatalogStore interface {
	// FindServices returns all services.
	// Returns an empty slice if no services exist.
	FindServices(ctx context.Context) ([]Service, error)

	// FindServiceByID retrieves a single service by its unique identifier.
	// Returns ErrServiceNotFound if no service exists with the given ID.
	FindServiceByID(ctx context.Context, id int64) (*Service, error)

	// FindProducts returns all products.
	// Returns an empty slice if no products exist.
	FindProducts(ctx context.Context) ([]Product, error)

	// FindProductByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id int64) (*Product, error)

	// FindGallery returns all gallery images.
	// Returns an empty slice if no images exist.
	FindGallery(ctx context.Context) ([]GalleryImage, error)
}
