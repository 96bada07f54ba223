// Package service provides the implementation of catalog-related business logic.
package service

import (
	"context"

	"github.com/vinkj/autoshop/internal/catalog/store"
)

// CatalogService defines the methods for reading the catalog.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindServices returns all bookable services.
	// Returns an empty slice if no services exist.
	FindServices(ctx context.Context) ([]ServiceDto, error)

	// FindServiceByID retrieves a single service by its unique identifier.
	// Returns ErrServiceNotFound if no service exists with the given ID.
	FindServiceByID(ctx context.Context, id int64) (*ServiceDto, error)

	// FindProducts returns all products.
	// Returns an empty slice if no products exist.
	FindProducts(ctx context.Context) ([]ProductDto, error)

	// FindProductByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindGallery returns all gallery images.
	FindGallery(ctx context.Context) ([]GalleryImageDto, error)
}

// Service implements CatalogService and provides methods to read the catalog.
type Service struct {
	catalogStore store.CatalogStore
}

// NewService creates a new instance of CatalogService with the provided store.
func NewService(catalogStore store.CatalogStore) *Service {
	return &Service{catalogStore: catalogStore}
}

// ServiceDto represents the data transfer object for a bookable service.
type ServiceDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	IsAvailable   bool   `json:"is_available"`
	StockQuantity int32  `json:"stock_quantity"`
}

// GalleryImageDto represents the data transfer object for a gallery image.
type GalleryImageDto struct {
	Image    string `json:"image"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

func (s *Service) FindServices(ctx context.Context) ([]ServiceDto, error) {
	services, err := s.catalogStore.FindServices(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ServiceDto, len(services))
	for i, svc := range services {
		dtos[i] = toServiceDto(&svc)
	}
	return dtos, nil
}

func (s *Service) FindServiceByID(ctx context.Context, id int64) (*ServiceDto, error) {
	svc, err := s.catalogStore.FindServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toServiceDto(svc)
	return &dto, nil
}

func (s *Service) FindProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.catalogStore.FindProducts(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = toProductDto(&p)
	}
	return dtos, nil
}

func (s *Service) FindProductByID(ctx context.Context, id int64) (*ProductDto, error) {
	p, err := s.catalogStore.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProductDto(p)
	return &dto, nil
}

func (s *Service) FindGallery(ctx context.Context) ([]GalleryImageDto, error) {
	images, err := s.catalogStore.FindGallery(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]GalleryImageDto, len(images))
	for i, g := range images {
		dtos[i] = GalleryImageDto{Image: g.Image, Title: g.Title, Category: g.Category}
	}
	return dtos, nil
}

// toServiceDto converts a store.Service to a ServiceDto.
func toServiceDto(svc *store.Service) ServiceDto {
	return ServiceDto{
		ID:          svc.ID,
		Name:        svc.Name,
		Price:       svc.Price,
		Description: svc.Description,
		Image:       svc.Image,
	}
}

// toProductDto converts a store.Product to a ProductDto.
func toProductDto(p *store.Product) ProductDto {
	return ProductDto{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Description:   p.Description,
		Image:         p.Image,
		IsAvailable:   p.IsAvailable,
		StockQuantity: p.StockQuantity,
	}
}
