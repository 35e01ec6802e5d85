package memory

import (
	"context"
	"sync"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Ensure FolderBindingStore implements the interface.
var _ driven.FolderBindingStore = (*FolderBindingStore)(nil)

// FolderBindingStore is an in-memory implementation of driven.FolderBindingStore.
type FolderBindingStore struct {
	mu       sync.RWMutex
	bindings map[string]domain.FolderBinding
}

// NewFolderBindingStore creates a new in-memory folder binding store.
func NewFolderBindingStore() *FolderBindingStore {
	return &FolderBindingStore{
		bindings: make(map[string]domain.FolderBinding),
	}
}

// Get retrieves the binding for a customer.
func (s *FolderBindingStore) Get(_ context.Context, customerID string) (*domain.FolderBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	binding, ok := s.bindings[customerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &binding, nil
}

// Save stores or updates a binding.
func (s *FolderBindingStore) Save(_ context.Context, binding *domain.FolderBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[binding.CustomerID] = *binding
	return nil
}
