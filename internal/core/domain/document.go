package domain

import (
	"fmt"
	"time"
)

// GenerationStatus is the lifecycle state of a generated document record.
type GenerationStatus string

const (
	// StatusGenerated marks a completed generation.
	StatusGenerated GenerationStatus = "generated"
)

// ArtifactExtension is the file extension of exported artifacts.
const ArtifactExtension = ".pdf"

// DocumentKey identifies the single current generated document for a
// subject and template kind. Regeneration updates the record for this
// key in place, never creating a second row.
type DocumentKey struct {
	Subject  SubjectRef   `json:"subject"`
	Template TemplateKind `json:"template"`
}

// GeneratedDocument records the outcome of one successful generation:
// the editable remote document, its exported artifact and the local
// backup location.
type GeneratedDocument struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Key identifies the subject and template kind.
	Key DocumentKey `json:"key"`

	// Status is the generation status.
	Status GenerationStatus `json:"status"`

	// RemoteDocumentID is the provider id of the editable document.
	RemoteDocumentID string `json:"remote_document_id"`
	// RemoteArtifactID is the provider id of the exported artifact.
	RemoteArtifactID string `json:"remote_artifact_id"`
	// DocumentURL is the shareable link to the editable document.
	DocumentURL string `json:"document_url"`
	// ArtifactURL is the shareable link to the exported artifact.
	ArtifactURL string `json:"artifact_url"`

	// BackupPath is the local backup file path. Empty when the
	// best-effort backup failed.
	BackupPath string `json:"backup_path,omitempty"`

	// CreatedAt is when the record was first written.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the record was last regenerated.
	UpdatedAt time.Time `json:"updated_at"`
}

// FolderBinding associates a customer with its remote folder. Created at
// most once per customer; later generations reuse the bound folder.
type FolderBinding struct {
	// CustomerID is the owning customer.
	CustomerID string `json:"customer_id"`
	// FolderID is the remote folder id.
	FolderID string `json:"folder_id"`
	// CreatedAt is when the binding was created.
	CreatedAt time.Time `json:"created_at"`
}

// DocumentName derives the deterministic remote file name for an offer
// and template kind. The name is stable across regenerations so prior
// artifacts can be located and replaced by name.
func DocumentName(offer *Offer, kind TemplateKind) string {
	return fmt.Sprintf("%s_%s_%s", offer.Customer.Number, offer.Number, kind)
}

// FolderName derives the remote folder name for a customer.
func FolderName(c *Customer) string {
	return fmt.Sprintf("%s %s", c.Number, c.Name)
}
