package driven

import (
	"context"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// CredentialStore persists the single system-wide OAuth credential.
//
// The store holds at most one credential. Replace enforces this by
// deleting any prior credential before storing the new one. Update uses
// the credential's Version for an explicit compare-and-update: callers
// pass the credential as loaded and the store rejects the write with
// domain.ErrCredentialConflict when the stored version has moved on.
// The token lifecycle service additionally serialises refreshes with an
// in-process lock; multi-process deployments rely on the version check.
type CredentialStore interface {
	// Get returns the stored credential or domain.ErrNotFound.
	Get(ctx context.Context) (*domain.OAuthCredential, error)

	// Replace deletes any existing credential and stores cred as the
	// single active one.
	Replace(ctx context.Context, cred *domain.OAuthCredential) error

	// Update persists changed token fields. Returns
	// domain.ErrCredentialConflict when cred.Version no longer matches
	// the stored row. On success the stored version is incremented.
	Update(ctx context.Context, cred *domain.OAuthCredential) error

	// Delete removes the stored credential. A no-op when none exists.
	Delete(ctx context.Context) error
}
