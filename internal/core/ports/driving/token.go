package driving

import (
	"context"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// TokenService owns the single system-wide OAuth credential.
type TokenService interface {
	// EnsureValid returns a credential with sufficient remaining
	// lifetime, refreshing it first when needed. Returns
	// domain.ErrAuthRequired when no credential or refresh token is
	// available, or when the refresh is rejected.
	EnsureValid(ctx context.Context) (*domain.OAuthCredential, error)

	// HandleCallback exchanges an authorisation code for a new
	// credential, replacing any prior one.
	HandleCallback(ctx context.Context, code string) error

	// Status returns the stored credential without refreshing, or
	// domain.ErrNotFound.
	Status(ctx context.Context) (*domain.OAuthCredential, error)
}
