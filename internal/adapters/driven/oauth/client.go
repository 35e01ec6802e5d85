// Package oauth implements the OAuth token endpoint client for the
// remote document provider.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// requestTimeout bounds a single token endpoint request.
const requestTimeout = 30 * time.Second

// Ensure Client implements the interface.
var _ driven.OAuthClient = (*Client)(nil)

// Client exchanges and refreshes tokens against the provider's token
// endpoint.
type Client struct {
	cfg  domain.OAuthConfig
	http *http.Client
	// now is injectable for tests.
	now func() time.Time
}

// NewClient creates a token endpoint client.
func NewClient(cfg domain.OAuthConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
		now:  time.Now,
	}
}

// AuthCodeURL builds the browser URL that starts the authorisation
// flow. The state value is echoed back on the callback.
func (c *Client) AuthCodeURL(state string) string {
	oc := oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  c.cfg.RedirectURI,
		Scopes:       c.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.cfg.AuthURL,
			TokenURL: c.cfg.TokenURL,
		},
	}
	// Offline access is required to receive a refresh token.
	return oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorisation code for a fresh credential.
func (c *Client) Exchange(ctx context.Context, code string) (*domain.OAuthCredential, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", c.cfg.RedirectURI)

	return c.request(ctx, data)
}

// Refresh obtains a new access token using a refresh token. The
// returned credential carries an empty RefreshToken when the provider
// does not rotate it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredential, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("refresh_token", refreshToken)

	return c.request(ctx, data)
}

// tokenResponse holds the token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// request posts the form to the token endpoint and maps the response to
// a credential.
func (c *Client) request(ctx context.Context, data url.Values) (*domain.OAuthCredential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token error: %s - %s", errResp.Error, errResp.Description)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access token")
	}

	cred := &domain.OAuthCredential{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		cred.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	if tr.Scope != "" {
		cred.Scopes = strings.Fields(tr.Scope)
	}
	return cred, nil
}
