package driven

import "github.com/atelier-labs/docmill/internal/core/domain"

// TemplateSource resolves template kinds to provider template ids and
// supplies the remote root folder. Implementations may reload their
// backing configuration at runtime; lookups always reflect the latest
// loaded state.
type TemplateSource interface {
	// TemplateID returns the provider template id for a kind, or false
	// when the kind is not configured. Unconfigured kinds are skipped
	// by the orchestrator, never fatal.
	TemplateID(kind domain.TemplateKind) (string, bool)

	// LeadTime returns the configured lead-time range for a kind, or
	// false when none is configured. Used when an offer does not carry
	// its own range.
	LeadTime(kind domain.TemplateKind) (domain.LeadTime, bool)

	// RootFolderID returns the remote folder all customer folders live
	// under.
	RootFolderID() string
}
