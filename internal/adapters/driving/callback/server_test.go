//nolint:noctx // Test file uses http.Get for convenience
package callback

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer starts a server on a random port and registers cleanup.
func startServer(t *testing.T, state string) *Server {
	t.Helper()
	server := NewServer(0, state)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func TestServer_ReceivesCode(t *testing.T) {
	server := startServer(t, "state-abc")

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/callback?code=code-xyz&state=state-abc", server.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := server.WaitForCode(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "code-xyz", code)
}

func TestServer_StateMismatch(t *testing.T) {
	server := startServer(t, "expected-state")

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/callback?code=code&state=wrong", server.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestServer_RepeatedErrorsDoNotBlockHandlers(t *testing.T) {
	server := startServer(t, "expected-state")

	// Each errored redirect must complete even once the error buffer
	// is full.
	for i := 0; i < 3; i++ {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/callback?code=code&state=wrong-%d", server.Port(), i))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// The first error is the one reported.
	_, err := server.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestServer_MissingCode(t *testing.T) {
	server := startServer(t, "state")

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/callback?state=state", server.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorisation code")
}

func TestServer_ProviderError(t *testing.T) {
	server := startServer(t, "state")

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/callback?error=access_denied&error_description=%s",
		server.Port(), url.QueryEscape("User denied access")))
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
	assert.Contains(t, err.Error(), "User denied access")
}

func TestServer_WaitForCodeTimeout(t *testing.T) {
	server := NewServer(0, "state")

	_, err := server.WaitForCode(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestServer_RandomPortAndRedirectURI(t *testing.T) {
	server := startServer(t, "state")

	assert.NotZero(t, server.Port())
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/callback", server.Port()), server.RedirectURI())
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer(0, "state")
	assert.NoError(t, server.Stop())
}

func TestServer_UnknownPath(t *testing.T) {
	server := startServer(t, "state")

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/other", server.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
