package memory

import (
	"context"
	"sync"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Ensure OfferStore implements the interface.
var _ driven.OfferStore = (*OfferStore)(nil)

// OfferStore is an in-memory implementation of driven.OfferStore. The
// worker registers offers here as they arrive in the spool directory.
type OfferStore struct {
	mu     sync.RWMutex
	offers map[string]domain.Offer
}

// NewOfferStore creates a new in-memory offer store.
func NewOfferStore() *OfferStore {
	return &OfferStore{
		offers: make(map[string]domain.Offer),
	}
}

// Get returns the offer by id.
func (s *OfferStore) Get(_ context.Context, id string) (*domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	offer, ok := s.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &offer, nil
}

// Save stores or updates an offer.
func (s *OfferStore) Save(_ context.Context, offer *domain.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[offer.ID] = *offer
	return nil
}
