package domain

import "time"

// RefreshBuffer is the remaining lifetime below which an access token is
// refreshed ahead of expiry.
const RefreshBuffer = 5 * time.Minute

// OAuthCredential stores the single system-wide OAuth credential used for
// all remote document provider calls. Exactly one credential exists at a
// time; completing a new authorisation replaces any prior one.
//
// The credential is mutated only by the token lifecycle service.
type OAuthCredential struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	// Empty when the provider did not grant offline access.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time `json:"expires_at"`
	// Scopes are the OAuth scopes granted to this credential.
	Scopes []string `json:"scopes,omitempty"`

	// Version increments on every stored update and backs the
	// compare-and-update contract of the credential store.
	Version int64 `json:"version"`

	// CreatedAt is when the credential was first stored.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the credential was last refreshed.
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsRefresh returns true if the remaining lifetime at the given instant
// is below RefreshBuffer.
func (c *OAuthCredential) NeedsRefresh(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return c.ExpiresAt.Sub(now) < RefreshBuffer
}

// HasRefreshToken returns true if a refresh token is available.
func (c *OAuthCredential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}
