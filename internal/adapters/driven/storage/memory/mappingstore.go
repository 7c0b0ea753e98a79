package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure MappingStore implements the interface.
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore is an in-memory implementation of driven.MappingStore.
type MappingStore struct {
	mu       sync.RWMutex
	mappings map[string]domain.StoredMapping
}

// NewMappingStore creates an empty mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{mappings: make(map[string]domain.StoredMapping)}
}

// Save stores or replaces a mapping. Rows are copied.
func (s *MappingStore) Save(_ context.Context, m domain.StoredMapping) error {
	if m.Name == "" {
		return fmt.Errorf("%w: mapping name is required", domain.ErrInvalidInput)
	}
	m.Rows = append([]domain.MappingRow(nil), m.Rows...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.Name] = m
	return nil
}

// Get retrieves a mapping by name.
func (s *MappingStore) Get(_ context.Context, name string) (*domain.StoredMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m.Rows = append([]domain.MappingRow(nil), m.Rows...)
	return &m, nil
}

// List returns all mappings ordered by name, without rows.
func (s *MappingStore) List(_ context.Context) ([]domain.StoredMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]domain.StoredMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		m.Rows = nil
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete removes a mapping.
func (s *MappingStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mappings[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.mappings, name)
	return nil
}
