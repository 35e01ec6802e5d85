package driven

import "context"

// RemoteFile describes a file created at the remote document provider.
type RemoteFile struct {
	// ID is the provider file id.
	ID string
	// Name is the file name.
	Name string
	// URL is the browser link to the file.
	URL string
}

// DocumentProvider is the capability interface for folder, file and
// permission operations against the remote document storage and editing
// service. Implementations wrap every failure in *domain.ProviderError
// tagged transient or permanent; the orchestrator and job layer decide
// retry behaviour from that tag.
type DocumentProvider interface {
	// CreateFolder creates a new folder under parentID and returns its id.
	// Not idempotent by itself; callers use FindFolderByName first.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)

	// FindFolderByName returns the id of an existing folder with that
	// exact name under parentID, or "" if none exists.
	FindFolderByName(ctx context.Context, name, parentID string) (string, error)

	// DeleteByName deletes all items with that exact name under parentID.
	// A no-op when nothing matches.
	DeleteByName(ctx context.Context, parentID, name string) error

	// CopyTemplate instantiates a copy of the template document under
	// parentID with the given name.
	CopyTemplate(ctx context.Context, templateID, name, parentID string) (*RemoteFile, error)

	// ReplacePlaceholders applies all substitutions as one batch
	// operation. Fails atomically when the document structure is
	// incompatible; such failures are permanent and never retried.
	ReplacePlaceholders(ctx context.Context, documentID string, replacements map[string]string) error

	// ExportPDF produces the fixed-format artifact for the document and
	// stores it under parentID with the given name.
	ExportPDF(ctx context.Context, documentID, parentID, name string) (*RemoteFile, error)

	// AllowLinkSharing grants anyone-with-link read access to a file.
	AllowLinkSharing(ctx context.Context, fileID string) error

	// Download retrieves the raw content of a file for local backup.
	Download(ctx context.Context, fileID string) ([]byte, error)
}
