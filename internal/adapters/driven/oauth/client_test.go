package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

func testConfig(tokenURL string) domain.OAuthConfig {
	return domain.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8090/callback",
		AuthURL:      "https://auth.example.com/authorize",
		TokenURL:     tokenURL,
		Scopes:       []string{"documents", "drive.file"},
	}
}

func TestExchange(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"grant_type":   r.PostFormValue("grant_type"),
			"client_id":    r.PostFormValue("client_id"),
			"code":         r.PostFormValue("code"),
			"redirect_uri": r.PostFormValue("redirect_uri"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "access-1",
			"refresh_token": "refresh-1",
			"token_type": "Bearer",
			"expires_in": 3600,
			"scope": "documents drive.file"
		}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	client := NewClient(testConfig(srv.URL))
	client.now = func() time.Time { return now }

	cred, err := client.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
	assert.Equal(t, now.Add(time.Hour), cred.ExpiresAt)
	assert.Equal(t, []string{"documents", "drive.file"}, cred.Scopes)

	assert.Equal(t, "authorization_code", gotForm["grant_type"])
	assert.Equal(t, "client-id", gotForm["client_id"])
	assert.Equal(t, "auth-code", gotForm["code"])
	assert.Equal(t, "http://localhost:8090/callback", gotForm["redirect_uri"])
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
		assert.Equal(t, "refresh-1", r.PostFormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "access-2", "token_type": "Bearer", "expires_in": 1800}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	cred, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)

	assert.Equal(t, "access-2", cred.AccessToken)
	assert.Empty(t, cred.RefreshToken, "provider did not rotate the refresh token")
	assert.False(t, cred.ExpiresAt.IsZero())
}

func TestRefresh_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant", "error_description": "Token has been revoked"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.Refresh(context.Background(), "revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Contains(t, err.Error(), "revoked")
}

func TestRequest_NonJSONErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRequest_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type": "Bearer"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

func TestAuthCodeURL(t *testing.T) {
	client := NewClient(testConfig("https://auth.example.com/token"))

	u := client.AuthCodeURL("state-123")
	assert.Contains(t, u, "https://auth.example.com/authorize")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "client_id=client-id")
}
