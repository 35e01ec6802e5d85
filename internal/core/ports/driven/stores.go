package driven

import (
	"context"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// FolderBindingStore persists customer-to-remote-folder associations.
// A binding is created at most once per customer and never deleted by
// the generation core.
type FolderBindingStore interface {
	// Get returns the binding for a customer or domain.ErrNotFound.
	Get(ctx context.Context, customerID string) (*domain.FolderBinding, error)

	// Save stores a binding. Saving an existing customer id overwrites
	// the folder id.
	Save(ctx context.Context, binding *domain.FolderBinding) error
}

// GeneratedDocumentStore persists generation outcomes. At most one
// current record exists per document key; Upsert replaces the record
// for an existing key in place.
type GeneratedDocumentStore interface {
	// Upsert creates the record or updates the existing record for the
	// same key, preserving the original row id and CreatedAt.
	Upsert(ctx context.Context, doc *domain.GeneratedDocument) error

	// GetByKey returns the current record for a key or domain.ErrNotFound.
	GetByKey(ctx context.Context, key domain.DocumentKey) (*domain.GeneratedDocument, error)

	// ListBySubject returns all records for a subject.
	ListBySubject(ctx context.Context, subject domain.SubjectRef) ([]domain.GeneratedDocument, error)
}

// OfferStore loads offers by id. The full offer CRUD lives outside this
// subsystem; the generation core only ever reads.
type OfferStore interface {
	// Get returns the offer or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Offer, error)
}
