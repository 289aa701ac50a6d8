package estimate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory [Store] for tests and for running without a
// database. Safe for concurrent use.
type MemStore struct {
	mu        sync.RWMutex
	estimates map[uuid.UUID]Estimate
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{estimates: make(map[uuid.UUID]Estimate)}
}

// Create implements Store.
func (s *MemStore) Create(_ context.Context, e *Estimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.estimates[e.ID] = *e
	return nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, id uuid.UUID) (*Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.estimates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// ListByCompany implements Store.
func (s *MemStore) ListByCompany(_ context.Context, companyID int64) ([]Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Estimate
	for _, e := range s.estimates {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateStatus implements Store.
func (s *MemStore) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.estimates[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	s.estimates[id] = e
	return nil
}
