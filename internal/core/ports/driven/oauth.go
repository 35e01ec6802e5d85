package driven

import (
	"context"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// OAuthClient talks to the provider's OAuth token endpoint.
type OAuthClient interface {
	// Exchange trades an authorisation code for a fresh credential.
	Exchange(ctx context.Context, code string) (*domain.OAuthCredential, error)

	// Refresh obtains a new access token using a refresh token. The
	// returned credential may carry an empty RefreshToken when the
	// provider does not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredential, error)
}
