package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Ensure GeneratedDocumentStore implements the interface.
var _ driven.GeneratedDocumentStore = (*GeneratedDocumentStore)(nil)

// GeneratedDocumentStore is an in-memory implementation of
// driven.GeneratedDocumentStore.
type GeneratedDocumentStore struct {
	mu   sync.RWMutex
	docs map[domain.DocumentKey]domain.GeneratedDocument
}

// NewGeneratedDocumentStore creates a new in-memory document store.
func NewGeneratedDocumentStore() *GeneratedDocumentStore {
	return &GeneratedDocumentStore{
		docs: make(map[domain.DocumentKey]domain.GeneratedDocument),
	}
}

// Upsert creates the record or updates the existing record for the same
// key, preserving the original id and CreatedAt.
func (s *GeneratedDocumentStore) Upsert(_ context.Context, doc *domain.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prior, ok := s.docs[doc.Key]; ok {
		doc.ID = prior.ID
		doc.CreatedAt = prior.CreatedAt
	}
	s.docs[doc.Key] = *doc
	return nil
}

// GetByKey returns the current record for a key.
func (s *GeneratedDocumentStore) GetByKey(_ context.Context, key domain.DocumentKey) (*domain.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListBySubject returns all records for a subject, newest first.
func (s *GeneratedDocumentStore) ListBySubject(_ context.Context, subject domain.SubjectRef) ([]domain.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.GeneratedDocument
	for key, doc := range s.docs {
		if key.Subject == subject {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	return docs, nil
}
