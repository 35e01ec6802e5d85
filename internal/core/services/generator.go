package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
	"github.com/atelier-labs/docmill/internal/core/ports/driving"
	"github.com/atelier-labs/docmill/internal/logger"
)

// Ensure Generator implements the interfaces.
var (
	_ driving.Generator       = (*Generator)(nil)
	_ driving.DocumentQueries = (*Generator)(nil)
)

// Generator orchestrates document generation: folder resolution,
// template instantiation, placeholder substitution, PDF export, link
// sharing, local backup and record upsert.
type Generator struct {
	provider  driven.DocumentProvider
	templates driven.TemplateSource
	bindings  driven.FolderBindingStore
	documents driven.GeneratedDocumentStore
	backups   driven.BackupStore

	// now is injectable for tests.
	now func() time.Time
}

// NewGenerator creates the generation orchestrator.
func NewGenerator(
	provider driven.DocumentProvider,
	templates driven.TemplateSource,
	bindings driven.FolderBindingStore,
	documents driven.GeneratedDocumentStore,
	backups driven.BackupStore,
) *Generator {
	return &Generator{
		provider:  provider,
		templates: templates,
		bindings:  bindings,
		documents: documents,
		backups:   backups,
		now:       time.Now,
	}
}

// Generate runs the full generation sequence for one template kind.
//
// Returns (nil, nil) when no template id is configured for the kind.
// Any failure before the final record write aborts the call without
// writing a GeneratedDocument; remote side effects already performed
// (a copied document, a created folder) are not rolled back.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (g *Generator) Generate(
	ctx context.Context,
	offer *domain.Offer,
	kind domain.TemplateKind,
) (*domain.GeneratedDocument, error) {
	if err := offer.Validate(); err != nil {
		return nil, err
	}

	// 1. Template lookup. Unconfigured kinds are skipped, never fatal.
	templateID, ok := g.templates.TemplateID(kind)
	if !ok {
		logger.Warn("No template configured for kind %q, skipping offer %s", kind, offer.Number)
		return nil, nil
	}

	// 2. Resolve the customer's folder.
	folderID, err := g.resolveFolder(ctx, offer.Customer)
	if err != nil {
		return nil, err
	}

	// 3. Deterministic file name, stable across regenerations.
	name := domain.DocumentName(offer, kind)

	// 4. Delete prior artifacts by name so regeneration yields exactly
	// one current artifact set.
	if err := g.provider.DeleteByName(ctx, folderID, name); err != nil {
		return nil, fmt.Errorf("delete prior document: %w", err)
	}
	if err := g.provider.DeleteByName(ctx, folderID, name+domain.ArtifactExtension); err != nil {
		return nil, fmt.Errorf("delete prior artifact: %w", err)
	}

	// 5. Instantiate the template.
	document, err := g.provider.CopyTemplate(ctx, templateID, name, folderID)
	if err != nil {
		return nil, fmt.Errorf("copy template: %w", err)
	}

	// 6. Substitute placeholders in one batch. An offer without its own
	// lead-time range falls back to the configured per-kind constants.
	filled := *offer
	if filled.LeadTime.IsZero() {
		if lt, ok := g.templates.LeadTime(kind); ok {
			filled.LeadTime = lt
		}
	}
	replacements := domain.BuildReplacements(&filled)
	if err := g.provider.ReplacePlaceholders(ctx, document.ID, replacements); err != nil {
		return nil, fmt.Errorf("replace placeholders: %w", err)
	}

	// 7. Export the artifact and share both files.
	artifact, err := g.provider.ExportPDF(ctx, document.ID, folderID, name+domain.ArtifactExtension)
	if err != nil {
		return nil, fmt.Errorf("export artifact: %w", err)
	}
	if err := g.provider.AllowLinkSharing(ctx, document.ID); err != nil {
		return nil, fmt.Errorf("share document: %w", err)
	}
	if err := g.provider.AllowLinkSharing(ctx, artifact.ID); err != nil {
		return nil, fmt.Errorf("share artifact: %w", err)
	}

	// 8. Best-effort local backup.
	backupPath := g.backupArtifact(ctx, offer, artifact, name)

	// 9. Upsert the record; replaces any prior record for the same key.
	now := g.now()
	doc := &domain.GeneratedDocument{
		ID: uuid.New().String(),
		Key: domain.DocumentKey{
			Subject:  offer.Ref(),
			Template: kind,
		},
		Status:           domain.StatusGenerated,
		RemoteDocumentID: document.ID,
		RemoteArtifactID: artifact.ID,
		DocumentURL:      document.URL,
		ArtifactURL:      artifact.URL,
		BackupPath:       backupPath,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := g.documents.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("save generated document: %w", err)
	}

	logger.Info("Generated %s for offer %s (document %s)", kind, offer.Number, document.ID)
	return doc, nil
}

// resolveFolder returns the remote folder for a customer, binding it
// lazily on first use. Find-before-create approximates idempotence; a
// concurrent first-time race can still create a duplicate folder (see
// the store contract), which later calls resolve to the bound id.
func (g *Generator) resolveFolder(ctx context.Context, customer *domain.Customer) (string, error) {
	binding, err := g.bindings.Get(ctx, customer.ID)
	if err == nil {
		return binding.FolderID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("load folder binding: %w", err)
	}

	name := domain.FolderName(customer)
	root := g.templates.RootFolderID()

	folderID, err := g.provider.FindFolderByName(ctx, name, root)
	if err != nil {
		return "", fmt.Errorf("find folder: %w", err)
	}
	if folderID == "" {
		folderID, err = g.provider.CreateFolder(ctx, name, root)
		if err != nil {
			return "", fmt.Errorf("create folder: %w", err)
		}
		logger.Debug("Created folder %s for customer %s", folderID, customer.Number)
	}

	if err := g.bindings.Save(ctx, &domain.FolderBinding{
		CustomerID: customer.ID,
		FolderID:   folderID,
		CreatedAt:  g.now(),
	}); err != nil {
		return "", fmt.Errorf("save folder binding: %w", err)
	}

	return folderID, nil
}

// backupArtifact downloads the exported artifact and stores it locally.
// Failures are logged and reported as an empty path; backup never
// aborts the overall generation.
func (g *Generator) backupArtifact(
	ctx context.Context,
	offer *domain.Offer,
	artifact *driven.RemoteFile,
	name string,
) string {
	data, err := g.provider.Download(ctx, artifact.ID)
	if err != nil {
		logger.Warn("Backup download failed for offer %s: %v", offer.Number, err)
		return ""
	}

	path, err := g.backups.Write(ctx, offer.ID, name+domain.ArtifactExtension, data)
	if err != nil {
		logger.Warn("Backup write failed for offer %s: %v", offer.Number, err)
		return ""
	}

	logger.Debug("Backed up artifact to %s", path)
	return path
}

// ListBySubject returns all generated document records for a subject.
func (g *Generator) ListBySubject(
	ctx context.Context,
	subject domain.SubjectRef,
) ([]domain.GeneratedDocument, error) {
	return g.documents.ListBySubject(ctx, subject)
}
