package store

import (
	"context"
	"sync"

	caterrors "github.com/vinkj/autoshop/internal/catalog/errors"
)

// inMemory implements CatalogStore using in-memory maps.
type inMemory struct {
	mu       sync.RWMutex
	services map[int64]Service
	products map[int64]Product
	gallery  []GalleryImage
	order    []int64 // product insertion order
	svcOrder []int64
}

// NewInMemoryStore creates a new instance of CatalogStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		inMemory: inMemory{
			services: make(map[int64]Service),
			products: make(map[int64]Product),
		},
	}
}

// InMemoryStore is the test/dev implementation of CatalogStore with seeding helpers.
type InMemoryStore struct {
	inMemory
}

// AddService seeds a service row.
func (s *InMemoryStore) AddService(svc Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[svc.ID]; !ok {
		s.svcOrder = append(s.svcOrder, svc.ID)
	}
	s.services[svc.ID] = svc
}

// AddProduct seeds a product row.
func (s *InMemoryStore) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
}

// AddGalleryImage seeds a gallery row.
func (s *InMemoryStore) AddGalleryImage(g GalleryImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gallery = append(s.gallery, g)
}

func (s *InMemoryStore) FindServices(_ context.Context) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Service, 0, len(s.services))
	for _, id := range s.svcOrder {
		list = append(list, s.services[id])
	}
	return list, nil
}

func (s *InMemoryStore) FindServiceByID(_ context.Context, id int64) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, caterrors.ErrServiceNotFound
	}
	return &svc, nil
}

func (s *InMemoryStore) FindProducts(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, id := range s.order {
		list = append(list, s.products[id])
	}
	return list, nil
}

func (s *InMemoryStore) FindProductByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, caterrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) FindGallery(_ context.Context) ([]GalleryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]GalleryImage, len(s.gallery))
	copy(list, s.gallery)
	return list, nil
}
