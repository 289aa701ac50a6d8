package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory [Store] for tests and for running without a
// database. Safe for concurrent use.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]PriceItem
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, items: make(map[int64]PriceItem)}
}

// Create implements Store.
func (s *MemStore) Create(_ context.Context, item *PriceItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	item.ID = s.nextID
	s.nextID++
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = *item
	return nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, id int64) (*PriceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

// Update implements Store.
func (s *MemStore) Update(_ context.Context, item *PriceItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	item.CreatedAt = old.CreatedAt
	item.UpdatedAt = time.Now()
	s.items[item.ID] = *item
	return nil
}

// Deactivate implements Store.
func (s *MemStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	item.IsActive = false
	item.UpdatedAt = time.Now()
	s.items[id] = item
	return nil
}

// ListActive implements Store.
func (s *MemStore) ListActive(_ context.Context, companyID int64) ([]PriceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []PriceItem
	for _, item := range s.items {
		if item.CompanyID == companyID && item.IsActive {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
