package domain

import "time"

// Default retry policy values.
const (
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 30 * time.Second
)

// RetryPolicy bounds job retries: a fixed delay between a fixed number
// of attempts.
type RetryPolicy struct {
	// Attempts is the maximum number of attempts including the first.
	Attempts int `json:"attempts"`
	// Backoff is the fixed delay between attempts.
	Backoff time.Duration `json:"backoff"`
}

// DefaultRetryPolicy returns the standard policy: 3 attempts, 30s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultRetryAttempts, Backoff: DefaultRetryBackoff}
}

// OAuthConfig holds the OAuth application settings for the remote
// document provider.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// Settings is the read-only runtime configuration loaded from the
// config file.
type Settings struct {
	// DataDir is the base directory for local state. Defaults to
	// ~/.docmill.
	DataDir string
	// BackupDir is where exported artifacts are backed up locally.
	// Defaults to <DataDir>/backups.
	BackupDir string
	// SpoolDir is watched for dropped subject files by the worker.
	// Defaults to <DataDir>/spool.
	SpoolDir string

	// RootFolderID is the remote folder all customer folders live under.
	RootFolderID string

	// Templates maps each template kind to its provider template id.
	// Kinds without an entry are skipped during generation.
	Templates map[TemplateKind]string

	// OAuth is the OAuth application configuration.
	OAuth OAuthConfig

	// LeadTimes holds the per-kind lead time constants used when an
	// offer does not carry its own range.
	LeadTimes map[TemplateKind]LeadTime

	// Retry is the job retry policy.
	Retry RetryPolicy
}

// TemplateID returns the configured provider template id for a kind.
func (s *Settings) TemplateID(kind TemplateKind) (string, bool) {
	id, ok := s.Templates[kind]
	return id, ok && id != ""
}
