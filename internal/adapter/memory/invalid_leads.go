// Package memory holds process-local adapters.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Compile-time check: InvalidLeadStore implements domain.InvalidLeadStore.
var _ domain.InvalidLeadStore = (*InvalidLeadStore)(nil)

// InvalidLeadStore keeps the known invalid leads in process memory.
type InvalidLeadStore struct {
	mu    sync.RWMutex
	items map[string]domain.InvalidLead
}

// NewInvalidLeadStore creates an empty store.
func NewInvalidLeadStore() *InvalidLeadStore {
	return &InvalidLeadStore{items: make(map[string]domain.InvalidLead)}
}

func (s *InvalidLeadStore) Replace(_ context.Context, items []domain.InvalidLead) error {
	next := make(map[string]domain.InvalidLead, len(items))
	for _, it := range items {
		next[it.Lead.ID] = it
	}

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
	return nil
}

// List returns the stored leads ordered by lead ID.
func (s *InvalidLeadStore) List(_ context.Context) ([]domain.InvalidLead, error) {
	s.mu.RLock()
	out := make([]domain.InvalidLead, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Lead.ID < out[j].Lead.ID })
	return out, nil
}

func (s *InvalidLeadStore) Remove(_ context.Context, leadIDs ...string) error {
	s.mu.Lock()
	for _, id := range leadIDs {
		delete(s.items, id)
	}
	s.mu.Unlock()
	return nil
}
