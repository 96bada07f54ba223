package store

// inMemory implements Store without touching the filesystem.
// Used by tests and by ephemeral runs that should not persist a cart.
type inMemory struct {
	items []Item
}

// NewInMemoryStore creates a new instance of Store
func NewInMemoryStore() Store {
	return &inMemory{items: []Item{}}
}

func (s *inMemory) Load() ([]Item, error) {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *inMemory) Save(items []Item) error {
	s.items = make([]Item, len(items))
	copy(s.items, items)
	return nil
}
