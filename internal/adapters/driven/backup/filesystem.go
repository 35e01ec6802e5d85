// Package backup stores exported artifacts on the local filesystem.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// Ensure FilesystemStore implements the interface.
var _ driven.BackupStore = (*FilesystemStore)(nil)

// FilesystemStore writes artifact backups below a base directory, one
// subdirectory per subject.
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore creates a backup store rooted at baseDir.
func NewFilesystemStore(baseDir string) *FilesystemStore {
	return &FilesystemStore{baseDir: baseDir}
}

// Write stores data under <baseDir>/<subjectID>/<fileName> and returns
// that path. Writing the same name again overwrites the prior backup,
// mirroring the replace-on-regeneration behaviour of the remote side.
func (s *FilesystemStore) Write(_ context.Context, subjectID, fileName string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, sanitize(subjectID))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	path := filepath.Join(dir, sanitize(fileName))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing backup file: %w", err)
	}

	return path, nil
}

// sanitize strips path separators so ids and names cannot escape the
// backup directory.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	return strings.ReplaceAll(name, "..", "_")
}
