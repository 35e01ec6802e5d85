package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Default OAuth endpoints for the Google document provider.
const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultRedirectURI = "http://localhost:8090/callback"
)

// defaultScopes grant document editing and per-file Drive access.
var defaultScopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
}

// rawSettings is the on-disk TOML schema. It stays separate from
// domain.Settings so the file format can use flat scalar types.
type rawSettings struct {
	BackupDir    string `toml:"backup_dir,omitempty"`
	SpoolDir     string `toml:"spool_dir,omitempty"`
	RootFolderID string `toml:"root_folder_id,omitempty"`

	Templates map[string]string `toml:"templates,omitempty"`

	OAuth struct {
		ClientID     string   `toml:"client_id,omitempty"`
		ClientSecret string   `toml:"client_secret,omitempty"`
		RedirectURI  string   `toml:"redirect_uri,omitempty"`
		AuthURL      string   `toml:"auth_url,omitempty"`
		TokenURL     string   `toml:"token_url,omitempty"`
		Scopes       []string `toml:"scopes,omitempty"`
	} `toml:"oauth"`

	LeadTimes map[string]struct {
		MinWeeks int `toml:"min_weeks"`
		MaxWeeks int `toml:"max_weeks"`
	} `toml:"lead_times,omitempty"`

	Retry struct {
		Attempts       int `toml:"attempts,omitempty"`
		BackoffSeconds int `toml:"backoff_seconds,omitempty"`
	} `toml:"retry"`
}

// Ensure SettingsStore implements the interface.
var _ driven.TemplateSource = (*SettingsStore)(nil)

// SettingsStore loads and persists the runtime configuration from a
// TOML file in the data directory.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings *domain.Settings
}

// NewSettingsStore creates a settings store below dataDir. If dataDir
// is empty, defaults to ~/.docmill. A missing config file yields
// defaults, not an error.
func NewSettingsStore(dataDir string) (*SettingsStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docmill")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &SettingsStore{
		filePath: filepath.Join(dataDir, "config.toml"),
		settings: defaultSettings(dataDir),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Load reads the configuration file. A missing file keeps the defaults.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var raw rawSettings
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	s.settings = mergeSettings(filepath.Dir(s.filePath), &raw)
	return nil
}

// Settings returns a copy of the current settings.
func (s *SettingsStore) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.settings
}

// Save persists the given settings and makes them current.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := rawSettings{
		BackupDir:    settings.BackupDir,
		SpoolDir:     settings.SpoolDir,
		RootFolderID: settings.RootFolderID,
	}
	if len(settings.Templates) > 0 {
		raw.Templates = make(map[string]string, len(settings.Templates))
		for kind, id := range settings.Templates {
			raw.Templates[string(kind)] = id
		}
	}
	raw.OAuth.ClientID = settings.OAuth.ClientID
	raw.OAuth.ClientSecret = settings.OAuth.ClientSecret
	raw.OAuth.RedirectURI = settings.OAuth.RedirectURI
	raw.OAuth.AuthURL = settings.OAuth.AuthURL
	raw.OAuth.TokenURL = settings.OAuth.TokenURL
	raw.OAuth.Scopes = settings.OAuth.Scopes
	if len(settings.LeadTimes) > 0 {
		raw.LeadTimes = make(map[string]struct {
			MinWeeks int `toml:"min_weeks"`
			MaxWeeks int `toml:"max_weeks"`
		}, len(settings.LeadTimes))
		for kind, lt := range settings.LeadTimes {
			raw.LeadTimes[string(kind)] = struct {
				MinWeeks int `toml:"min_weeks"`
				MaxWeeks int `toml:"max_weeks"`
			}{MinWeeks: lt.MinWeeks, MaxWeeks: lt.MaxWeeks}
		}
	}
	raw.Retry.Attempts = settings.Retry.Attempts
	raw.Retry.BackoffSeconds = int(settings.Retry.Backoff / time.Second)

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Client secret inside, so restrict permissions.
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	copied := settings
	s.settings = &copied
	return nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// TemplateID returns the configured provider template id for a kind.
func (s *SettingsStore) TemplateID(kind domain.TemplateKind) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.TemplateID(kind)
}

// LeadTime returns the configured lead-time range for a kind.
func (s *SettingsStore) LeadTime(kind domain.TemplateKind) (domain.LeadTime, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lt, ok := s.settings.LeadTimes[kind]
	return lt, ok && !lt.IsZero()
}

// RootFolderID returns the remote folder all customer folders live under.
func (s *SettingsStore) RootFolderID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.RootFolderID
}

// defaultSettings builds the settings used when no config file exists.
func defaultSettings(dataDir string) *domain.Settings {
	return &domain.Settings{
		DataDir:   dataDir,
		BackupDir: filepath.Join(dataDir, "backups"),
		SpoolDir:  filepath.Join(dataDir, "spool"),
		Templates: make(map[domain.TemplateKind]string),
		OAuth: domain.OAuthConfig{
			RedirectURI: defaultRedirectURI,
			AuthURL:     defaultAuthURL,
			TokenURL:    defaultTokenURL,
			Scopes:      defaultScopes,
		},
		LeadTimes: make(map[domain.TemplateKind]domain.LeadTime),
		Retry:     domain.DefaultRetryPolicy(),
	}
}

// mergeSettings overlays the raw file content onto the defaults.
func mergeSettings(dataDir string, raw *rawSettings) *domain.Settings {
	settings := defaultSettings(dataDir)

	if raw.BackupDir != "" {
		settings.BackupDir = raw.BackupDir
	}
	if raw.SpoolDir != "" {
		settings.SpoolDir = raw.SpoolDir
	}
	settings.RootFolderID = raw.RootFolderID

	for kind, id := range raw.Templates {
		settings.Templates[domain.TemplateKind(kind)] = id
	}

	settings.OAuth.ClientID = raw.OAuth.ClientID
	settings.OAuth.ClientSecret = raw.OAuth.ClientSecret
	if raw.OAuth.RedirectURI != "" {
		settings.OAuth.RedirectURI = raw.OAuth.RedirectURI
	}
	if raw.OAuth.AuthURL != "" {
		settings.OAuth.AuthURL = raw.OAuth.AuthURL
	}
	if raw.OAuth.TokenURL != "" {
		settings.OAuth.TokenURL = raw.OAuth.TokenURL
	}
	if len(raw.OAuth.Scopes) > 0 {
		settings.OAuth.Scopes = raw.OAuth.Scopes
	}

	for kind, lt := range raw.LeadTimes {
		settings.LeadTimes[domain.TemplateKind(kind)] = domain.LeadTime{
			MinWeeks: lt.MinWeeks,
			MaxWeeks: lt.MaxWeeks,
		}
	}

	if raw.Retry.Attempts > 0 {
		settings.Retry.Attempts = raw.Retry.Attempts
	}
	if raw.Retry.BackoffSeconds > 0 {
		settings.Retry.Backoff = time.Duration(raw.Retry.BackoffSeconds) * time.Second
	}

	return settings
}
