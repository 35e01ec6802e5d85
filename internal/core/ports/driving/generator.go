package driving

import (
	"context"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// Generator turns an offer and a template kind into a persisted,
// dual-located generated document.
type Generator interface {
	// Generate runs the full generation sequence for one template kind.
	// Returns (nil, nil) when no template id is configured for the kind;
	// configuration gaps are tolerated, not fatal. Any failure before
	// the final record write aborts the call without partial database
	// state; remote side effects already performed are not rolled back.
	Generate(ctx context.Context, offer *domain.Offer, kind domain.TemplateKind) (*domain.GeneratedDocument, error)
}

// DocumentQueries exposes read access to generation outcomes.
type DocumentQueries interface {
	// ListBySubject returns all generated document records for a subject.
	ListBySubject(ctx context.Context, subject domain.SubjectRef) ([]domain.GeneratedDocument, error)
}
