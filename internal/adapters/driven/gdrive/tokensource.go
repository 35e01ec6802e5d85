package gdrive

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/atelier-labs/docmill/internal/core/ports/driving"
)

// lifecycleTokenSource adapts the token lifecycle service to
// oauth2.TokenSource so the generated Google API clients pull a valid
// access token on every request. Refresh-ahead and persistence happen
// inside the lifecycle service.
type lifecycleTokenSource struct {
	ctx    context.Context
	tokens driving.TokenService
}

var _ oauth2.TokenSource = (*lifecycleTokenSource)(nil)

// NewTokenSource returns an oauth2.TokenSource backed by the token
// lifecycle service. The context bounds all token operations triggered
// by API calls.
func NewTokenSource(ctx context.Context, tokens driving.TokenService) oauth2.TokenSource {
	return &lifecycleTokenSource{ctx: ctx, tokens: tokens}
}

func (s *lifecycleTokenSource) Token() (*oauth2.Token, error) {
	cred, err := s.tokens.EnsureValid(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
		Expiry:      cred.ExpiresAt,
	}, nil
}
