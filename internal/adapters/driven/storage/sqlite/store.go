package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/atelier-labs/docmill/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docmill/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docmill", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docmill.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CredentialStore returns a CredentialStore interface backed by this store.
func (s *Store) CredentialStore() driven.CredentialStore {
	return &credentialStore{store: s}
}

// FolderBindingStore returns a FolderBindingStore interface backed by this store.
func (s *Store) FolderBindingStore() driven.FolderBindingStore {
	return &folderBindingStore{store: s}
}

// GeneratedDocumentStore returns a GeneratedDocumentStore interface backed by this store.
func (s *Store) GeneratedDocumentStore() driven.GeneratedDocumentStore {
	return &generatedDocumentStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Credential Store ====================

// credentialRowID pins the single credential row.
const credentialRowID = 1

// credentialStore implements driven.CredentialStore.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

// Get returns the stored credential.
func (s *credentialStore) Get(ctx context.Context) (*domain.OAuthCredential, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, expires_at, scopes, version, created_at, updated_at
		FROM credentials WHERE id = ?
	`, credentialRowID)

	var cred domain.OAuthCredential
	var refreshToken, scopesJSON sql.NullString
	var expiresAt sql.NullTime
	if err := row.Scan(&cred.AccessToken, &refreshToken, &expiresAt, &scopesJSON,
		&cred.Version, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}

	cred.RefreshToken = refreshToken.String
	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}
	if scopesJSON.Valid && scopesJSON.String != "" {
		if err := json.Unmarshal([]byte(scopesJSON.String), &cred.Scopes); err != nil {
			return nil, fmt.Errorf("unmarshaling scopes: %w", err)
		}
	}

	return &cred, nil
}

// Replace deletes any existing credential and stores cred as the single
// active one with version 1.
func (s *credentialStore) Replace(ctx context.Context, cred *domain.OAuthCredential) error {
	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return fmt.Errorf("marshalling scopes: %w", err)
	}

	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, refresh_token, expires_at, scopes, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scopes = excluded.scopes,
			version = 1,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, credentialRowID, cred.AccessToken, nullString(cred.RefreshToken),
		nullTime(cred.ExpiresAt), string(scopesJSON), cred.CreatedAt, cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("replacing credential: %w", err)
	}
	cred.Version = 1
	return nil
}

// Update persists changed token fields guarded by the version check.
func (s *credentialStore) Update(ctx context.Context, cred *domain.OAuthCredential) error {
	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return fmt.Errorf("marshalling scopes: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE credentials SET
			access_token = ?,
			refresh_token = ?,
			expires_at = ?,
			scopes = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`, cred.AccessToken, nullString(cred.RefreshToken), nullTime(cred.ExpiresAt),
		string(scopesJSON), time.Now().UTC(), credentialRowID, cred.Version)

	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrCredentialConflict
	}
	return nil
}

// Delete removes the stored credential.
func (s *credentialStore) Delete(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM credentials WHERE id = ?", credentialRowID); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// ==================== Folder Binding Store ====================

// folderBindingStore implements driven.FolderBindingStore.
type folderBindingStore struct {
	store *Store
}

var _ driven.FolderBindingStore = (*folderBindingStore)(nil)

// Get retrieves the binding for a customer.
func (s *folderBindingStore) Get(ctx context.Context, customerID string) (*domain.FolderBinding, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT customer_id, folder_id, created_at
		FROM folder_bindings WHERE customer_id = ?
	`, customerID)

	var binding domain.FolderBinding
	if err := row.Scan(&binding.CustomerID, &binding.FolderID, &binding.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning folder binding: %w", err)
	}
	return &binding, nil
}

// Save stores or updates a binding.
func (s *folderBindingStore) Save(ctx context.Context, binding *domain.FolderBinding) error {
	if binding.CreatedAt.IsZero() {
		binding.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO folder_bindings (customer_id, folder_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(customer_id) DO UPDATE SET
			folder_id = excluded.folder_id
	`, binding.CustomerID, binding.FolderID, binding.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving folder binding: %w", err)
	}
	return nil
}

// ==================== Generated Document Store ====================

// generatedDocumentStore implements driven.GeneratedDocumentStore.
type generatedDocumentStore struct {
	store *Store
}

var _ driven.GeneratedDocumentStore = (*generatedDocumentStore)(nil)

// Upsert creates the record or updates the existing record for the same
// key, preserving the original row id and CreatedAt.
func (s *generatedDocumentStore) Upsert(ctx context.Context, doc *domain.GeneratedDocument) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO generated_documents (
			id, subject_kind, subject_id, template_kind, status,
			remote_document_id, remote_artifact_id, document_url, artifact_url,
			backup_path, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_kind, subject_id, template_kind) DO UPDATE SET
			status = excluded.status,
			remote_document_id = excluded.remote_document_id,
			remote_artifact_id = excluded.remote_artifact_id,
			document_url = excluded.document_url,
			artifact_url = excluded.artifact_url,
			backup_path = excluded.backup_path,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Key.Subject.Kind, doc.Key.Subject.ID, doc.Key.Template, doc.Status,
		doc.RemoteDocumentID, doc.RemoteArtifactID, nullString(doc.DocumentURL),
		nullString(doc.ArtifactURL), nullString(doc.BackupPath), doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving generated document: %w", err)
	}

	// Reflect the surviving id and creation time back to the caller.
	stored, err := s.GetByKey(ctx, doc.Key)
	if err != nil {
		return fmt.Errorf("reloading generated document: %w", err)
	}
	doc.ID = stored.ID
	doc.CreatedAt = stored.CreatedAt
	return nil
}

// GetByKey returns the current record for a key.
func (s *generatedDocumentStore) GetByKey(ctx context.Context, key domain.DocumentKey) (*domain.GeneratedDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, subject_kind, subject_id, template_kind, status,
			remote_document_id, remote_artifact_id, document_url, artifact_url,
			backup_path, created_at, updated_at
		FROM generated_documents
		WHERE subject_kind = ? AND subject_id = ? AND template_kind = ?
	`, key.Subject.Kind, key.Subject.ID, key.Template)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListBySubject returns all records for a subject, newest first.
func (s *generatedDocumentStore) ListBySubject(ctx context.Context, subject domain.SubjectRef) ([]domain.GeneratedDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, subject_kind, subject_id, template_kind, status,
			remote_document_id, remote_artifact_id, document_url, artifact_url,
			backup_path, created_at, updated_at
		FROM generated_documents
		WHERE subject_kind = ? AND subject_id = ?
		ORDER BY updated_at DESC
	`, subject.Kind, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("querying generated documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.GeneratedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generated documents: %w", err)
	}
	return docs, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans one generated document row.
func scanDocument(row rowScanner) (*domain.GeneratedDocument, error) {
	var doc domain.GeneratedDocument
	var documentURL, artifactURL, backupPath sql.NullString
	if err := row.Scan(&doc.ID, &doc.Key.Subject.Kind, &doc.Key.Subject.ID,
		&doc.Key.Template, &doc.Status, &doc.RemoteDocumentID, &doc.RemoteArtifactID,
		&documentURL, &artifactURL, &backupPath, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning generated document: %w", err)
	}

	doc.DocumentURL = documentURL.String
	doc.ArtifactURL = artifactURL.String
	doc.BackupPath = backupPath.String
	return &doc, nil
}

// ==================== Helpers ====================

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime converts a zero time to NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
