package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// fileStore persists the cart as a single JSON document at a fixed path.
type fileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a Store backed by a JSON file at path.
func NewFileStore(path string, logger *slog.Logger) Store {
	return &fileStore{
		path:   path,
		logger: logger.With("component", "cart_store"),
	}
}

// Load reads the persisted cart. An absent or unparseable file is treated
// as an empty cart, never as an error for the caller.
func (s *fileStore) Load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Item{}, nil
		}
		s.logger.Warn("Failed to read cart file, starting with empty cart", "path", s.path, "error", err)
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Cart file is corrupt, starting with empty cart", "path", s.path, "error", err)
		return []Item{}, nil
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Save rewrites the whole document on every mutation.
func (s *fileStore) Save(items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	return nil
}
