package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atelier-labs/docmill/internal/adapters/driving/callback"
	"github.com/atelier-labs/docmill/internal/core/domain"
)

// AuthURLProvider builds the browser URL that starts the
// authorisation flow.
type AuthURLProvider interface {
	AuthCodeURL(state string) string
}

// callbackTimeout bounds how long 'auth connect' waits for the
// browser redirect.
const callbackTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage access to the document provider",
	Long: `Configure OAuth credentials and authorise docmill.

docmill uses a single system-wide credential for all document provider
calls. Run 'auth setup' once to store the OAuth application settings,
then 'auth connect' to complete the browser authorisation.

Examples:
  # Configure client credentials and template ids
  docmill auth setup

  # Authorise via the browser
  docmill auth connect

  # Authorise without a local browser
  docmill auth connect --manual

  # Show the stored credential
  docmill auth status`,
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure OAuth application and template settings",
	RunE:  runAuthSetup,
}

var authConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Authorise docmill with the document provider",
	RunE:  runAuthConnect,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential",
	RunE:  runAuthStatus,
}

var authConnectManual bool

func init() {
	authConnectCmd.Flags().BoolVar(
		&authConnectManual, "manual", false, "Paste the authorisation code instead of using a local callback server")

	authCmd.AddCommand(authSetupCmd)
	authCmd.AddCommand(authConnectCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

//nolint:errcheck // CLI interactive flow
func runAuthSetup(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings := settingsStore.Settings()
	reader := bufio.NewReader(os.Stdin)

	cmd.Println("OAuth Application Configuration")
	cmd.Println("-------------------------------")
	cmd.Println("Create an OAuth client with your document provider and")
	cmd.Println("enter the credentials below.")
	cmd.Println()

	clientID, err := promptDefault(cmd, reader, "Client ID", settings.OAuth.ClientID)
	if err != nil {
		return err
	}
	if clientID == "" {
		return errors.New("client ID is required")
	}
	settings.OAuth.ClientID = clientID

	if settings.OAuth.ClientSecret != "" {
		cmd.Print("Client Secret [keep current]: ")
	} else {
		cmd.Print("Client Secret: ")
	}
	secret, err := readSecret(cmd)
	if err != nil {
		return fmt.Errorf("reading client secret: %w", err)
	}
	if secret != "" {
		settings.OAuth.ClientSecret = secret
	}
	if settings.OAuth.ClientSecret == "" {
		return errors.New("client secret is required")
	}

	cmd.Println()
	cmd.Println("Document Settings")
	cmd.Println("-----------------")

	rootFolder, err := promptDefault(cmd, reader, "Root folder id", settings.RootFolderID)
	if err != nil {
		return err
	}
	settings.RootFolderID = rootFolder

	for _, kind := range domain.AllTemplateKinds {
		label := fmt.Sprintf("Template id for %q (empty to skip)", kind)
		id, err := promptDefault(cmd, reader, label, settings.Templates[kind])
		if err != nil {
			return err
		}
		if id == "" {
			delete(settings.Templates, kind)
			continue
		}
		settings.Templates[kind] = id
	}

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("\nConfiguration saved to %s\n", settingsStore.Path())
	cmd.Println("Next: docmill auth connect")
	return nil
}

func runAuthConnect(cmd *cobra.Command, _ []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}
	if authURLProvider == nil {
		return errors.New("oauth client not configured")
	}
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings := settingsStore.Settings()
	if settings.OAuth.ClientID == "" || settings.OAuth.ClientSecret == "" {
		return errors.New("no OAuth credentials configured, run 'docmill auth setup' first")
	}

	ctx := context.Background()
	state := uuid.New().String()
	authURL := authURLProvider.AuthCodeURL(state)

	var code string
	var err error
	if authConnectManual {
		code, err = connectManually(cmd, authURL)
	} else {
		code, err = connectViaCallback(cmd, authURL, settings.OAuth.RedirectURI, state)
	}
	if err != nil {
		return err
	}

	if err := tokenService.HandleCallback(ctx, code); err != nil {
		return fmt.Errorf("completing authorisation: %w", err)
	}

	cmd.Println("Authorisation complete. docmill can now access the document provider.")
	return nil
}

// connectViaCallback runs the local callback server and opens the
// browser at the authorisation URL.
func connectViaCallback(cmd *cobra.Command, authURL, redirectURI, state string) (string, error) {
	port, err := callbackPort(redirectURI)
	if err != nil {
		return "", err
	}

	server := callback.NewServer(port, state)
	if err := server.Start(); err != nil {
		return "", fmt.Errorf("starting callback server: %w", err)
	}
	defer func() { _ = server.Stop() }()

	cmd.Println("Opening browser for authorisation...")
	if err := callback.OpenBrowser(authURL); err != nil {
		cmd.Println("Could not open a browser. Visit this URL manually:")
		cmd.Println()
		cmd.Println("  " + authURL)
		cmd.Println()
	}

	cmd.Printf("Waiting for authorisation callback on %s ...\n", server.RedirectURI())
	return server.WaitForCode(callbackTimeout)
}

// connectManually prints the authorisation URL and reads the pasted
// code from stdin.
func connectManually(cmd *cobra.Command, authURL string) (string, error) {
	cmd.Println("Visit this URL to authorise docmill:")
	cmd.Println()
	cmd.Println("  " + authURL)
	cmd.Println()
	cmd.Print("Paste the authorisation code: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading authorisation code: %w", err)
	}
	code := strings.TrimSpace(input)
	if code == "" {
		return "", errors.New("no authorisation code entered")
	}
	return code, nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}

	cred, err := tokenService.Status(context.Background())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Println("Not connected.")
			cmd.Println("Run 'docmill auth connect' to authorise.")
			return nil
		}
		return fmt.Errorf("reading credential: %w", err)
	}

	cmd.Println("Connected to the document provider.")
	if cred.ExpiresAt.IsZero() {
		cmd.Println("  Access token: non-expiring")
	} else {
		cmd.Printf("  Access token expires: %s\n", cred.ExpiresAt.Format(time.RFC3339))
		if cred.NeedsRefresh(time.Now()) {
			cmd.Println("  Refresh: due on next use")
		}
	}
	if cred.HasRefreshToken() {
		cmd.Println("  Refresh token: stored")
	} else {
		cmd.Println("  Refresh token: missing, reconnect before the access token expires")
	}
	if len(cred.Scopes) > 0 {
		cmd.Printf("  Scopes: %s\n", strings.Join(cred.Scopes, ", "))
	}
	cmd.Printf("  Last updated: %s\n", cred.UpdatedAt.Format(time.RFC3339))
	return nil
}

// promptDefault asks for a value, keeping the current one on empty
// input.
//
//nolint:errcheck // CLI interactive flow
func promptDefault(cmd *cobra.Command, reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}
	return input, nil
}

// readSecret reads a value without echoing it. Falls back to plain
// reads when stdin is not a terminal, e.g. in scripts.
func readSecret(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// callbackPort extracts the port from the configured redirect URI.
func callbackPort(redirectURI string) (int, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return 0, fmt.Errorf("parsing redirect URI: %w", err)
	}
	port := parsed.Port()
	if port == "" {
		return 0, fmt.Errorf("redirect URI %s carries no port", redirectURI)
	}
	var n int
	if _, err := fmt.Sscanf(port, "%d", &n); err != nil {
		return 0, fmt.Errorf("parsing redirect URI port: %w", err)
	}
	return n, nil
}
