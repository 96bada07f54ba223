package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	caterrors "github.com/vinkj/autoshop/internal/catalog/errors"
)

// PgStore implements CatalogStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of CatalogStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const findServicesSQL = `
SELECT id, name, description, price, image, created_at, updated_at
FROM services
ORDER BY id`

func (p *PgStore) FindServices(ctx context.Context) ([]Service, error) {
	rows, err := p.db.Query(ctx, findServicesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer rows.Close()

	services := make([]Service, 0)
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Image, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

const findServiceByIDSQL = `
SELECT id, name, description, price, image, created_at, updated_at
FROM services
WHERE id = $1`

func (p *PgStore) FindServiceByID(ctx context.Context, id int64) (*Service, error) {
	var s Service
	err := p.db.QueryRow(ctx, findServiceByIDSQL, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Image, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, caterrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return &s, nil
}

const findProductsSQL = `
SELECT id, name, description, price, image, is_available, stock_quantity, created_at, updated_at
FROM products
ORDER BY id`

func (p *PgStore) FindProducts(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, findProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var pr Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Price, &pr.Image,
			&pr.IsAvailable, &pr.StockQuantity, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, pr)
	}
	return products, rows.Err()
}

const findProductByIDSQL = `
SELECT id, name, description, price, image, is_available, stock_quantity, created_at, updated_at
FROM products
WHERE id = $1`

func (p *PgStore) FindProductByID(ctx context.Context, id int64) (*Product, error) {
	var pr Product
	err := p.db.QueryRow(ctx, findProductByIDSQL, id).
		Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Price, &pr.Image,
			&pr.IsAvailable, &pr.StockQuantity, &pr.CreatedAt, &pr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, caterrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &pr, nil
}

const findGallerySQL = `
SELECT id, image, title, category
FROM gallery_images
ORDER BY id`

func (p *PgStore) FindGallery(ctx context.Context) ([]GalleryImage, error) {
	rows, err := p.db.Query(ctx, findGallerySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to find gallery images: %w", err)
	}
	defer rows.Close()

	images := make([]GalleryImage, 0)
	for rows.Next() {
		var g GalleryImage
		if err := rows.Scan(&g.ID, &g.Image, &g.Title, &g.Category); err != nil {
			return nil, fmt.Errorf("failed to scan gallery row: %w", err)
		}
		images = append(images, g)
	}
	return images, rows.Err()
}
