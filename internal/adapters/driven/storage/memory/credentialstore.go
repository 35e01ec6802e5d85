package memory

import (
	"context"
	"sync"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
type CredentialStore struct {
	mu   sync.RWMutex
	cred *domain.OAuthCredential
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Get returns the stored credential.
func (s *CredentialStore) Get(_ context.Context) (*domain.OAuthCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return nil, domain.ErrNotFound
	}
	cred := *s.cred
	return &cred, nil
}

// Replace stores cred as the single active credential with version 1.
func (s *CredentialStore) Replace(_ context.Context, cred *domain.OAuthCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *cred
	stored.Version = 1
	s.cred = &stored
	cred.Version = 1
	return nil
}

// Update persists changed token fields guarded by the version check.
func (s *CredentialStore) Update(_ context.Context, cred *domain.OAuthCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.Version != cred.Version {
		return domain.ErrCredentialConflict
	}
	stored := *cred
	stored.Version++
	s.cred = &stored
	return nil
}

// Delete removes the stored credential.
func (s *CredentialStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}
