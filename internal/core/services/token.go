package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
	"github.com/atelier-labs/docmill/internal/core/ports/driving"
	"github.com/atelier-labs/docmill/internal/logger"
)

// Ensure TokenLifecycle implements the interface.
var _ driving.TokenService = (*TokenLifecycle)(nil)

// TokenLifecycle owns the single system-wide OAuth credential and keeps
// it valid: tokens are refreshed ahead of expiry when their remaining
// lifetime drops below domain.RefreshBuffer.
//
// Refreshes are serialised with an in-process mutex; across processes
// the credential store's version check rejects lost updates.
type TokenLifecycle struct {
	store driven.CredentialStore
	oauth driven.OAuthClient

	mu sync.Mutex
	// now is injectable for tests.
	now func() time.Time
}

// NewTokenLifecycle creates the token lifecycle service.
func NewTokenLifecycle(store driven.CredentialStore, oauth driven.OAuthClient) *TokenLifecycle {
	return &TokenLifecycle{
		store: store,
		oauth: oauth,
		now:   time.Now,
	}
}

// EnsureValid returns a credential with sufficient remaining lifetime,
// refreshing and persisting it first when needed.
//
// Refresh failures surface as domain.ErrAuthRequired and are not
// retried here: authorisation failures are not transient.
func (s *TokenLifecycle) EnsureValid(ctx context.Context) (*domain.OAuthCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no credential stored", domain.ErrAuthRequired)
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if !cred.NeedsRefresh(s.now()) {
		return cred, nil
	}

	if !cred.HasRefreshToken() {
		return nil, fmt.Errorf("%w: credential expired and no refresh token available", domain.ErrAuthRequired)
	}

	logger.Debug("Refreshing access token (expires %s)", cred.ExpiresAt.Format(time.RFC3339))

	fresh, err := s.oauth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh rejected: %v", domain.ErrAuthRequired, err)
	}

	cred.AccessToken = fresh.AccessToken
	cred.ExpiresAt = fresh.ExpiresAt
	if fresh.RefreshToken != "" {
		cred.RefreshToken = fresh.RefreshToken
	}
	cred.UpdatedAt = s.now()

	if err := s.store.Update(ctx, cred); err != nil {
		return nil, fmt.Errorf("save refreshed credential: %w", err)
	}
	cred.Version++

	return cred, nil
}

// HandleCallback exchanges an authorisation code for a new credential
// and stores it as the single active one, invalidating any prior
// credential.
func (s *TokenLifecycle) HandleCallback(ctx context.Context, code string) error {
	if code == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorisation code: %w", err)
	}

	now := s.now()
	cred.CreatedAt = now
	cred.UpdatedAt = now

	if err := s.store.Replace(ctx, cred); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	logger.Info("Stored new credential (expires %s)", cred.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Status returns the stored credential without refreshing it.
func (s *TokenLifecycle) Status(ctx context.Context) (*domain.OAuthCredential, error) {
	return s.store.Get(ctx)
}
