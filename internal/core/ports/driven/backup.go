package driven

import "context"

// BackupStore persists exported artifacts locally. Backup is
// best-effort: the orchestrator logs failures and continues.
type BackupStore interface {
	// Write stores data under a path derived from the subject id and
	// file name and returns that path.
	Write(ctx context.Context, subjectID, fileName string, data []byte) (string, error)
}
