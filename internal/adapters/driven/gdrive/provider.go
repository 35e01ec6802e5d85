package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
	"github.com/atelier-labs/docmill/internal/logger"
)

// MIME types used by the provider.
const (
	MimeTypeFolder    = "application/vnd.google-apps.folder"
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypePDF       = "application/pdf"
)

// Ensure Provider implements the interface.
var _ driven.DocumentProvider = (*Provider)(nil)

// Provider implements the document provider port on Google Drive and
// Google Docs.
type Provider struct {
	drive   *drive.Service
	docs    *docs.Service
	limiter *RateLimiter
}

// NewProvider creates a provider over the given API services. A nil
// limiter gets the default rate limit.
func NewProvider(driveSvc *drive.Service, docsSvc *docs.Service, limiter *RateLimiter) *Provider {
	if limiter == nil {
		limiter = NewRateLimiter()
	}
	return &Provider{
		drive:   driveSvc,
		docs:    docsSvc,
		limiter: limiter,
	}
}

// CreateFolder creates a new folder under parentID and returns its id.
func (p *Provider) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	const op = "create folder"
	if err := p.limiter.Wait(ctx); err != nil {
		return "", classify(op, err)
	}

	folder := &drive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	}
	created, err := p.drive.Files.Create(folder).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", p.fail(op, err)
	}

	logger.Debug("Created folder %q (%s)", name, created.Id)
	return created.Id, nil
}

// FindFolderByName returns the id of an existing folder with that exact
// name under parentID, or "" when none exists.
func (p *Provider) FindFolderByName(ctx context.Context, name, parentID string) (string, error) {
	const op = "find folder"
	if err := p.limiter.Wait(ctx); err != nil {
		return "", classify(op, err)
	}

	query := fmt.Sprintf(
		"name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), MimeTypeFolder, escapeQuery(parentID),
	)
	list, err := p.drive.Files.List().Q(query).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", p.fail(op, err)
	}

	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// DeleteByName deletes all items with that exact name under parentID.
// A no-op when nothing matches.
func (p *Provider) DeleteByName(ctx context.Context, parentID, name string) error {
	const op = "delete by name"
	if err := p.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}

	query := fmt.Sprintf(
		"name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), escapeQuery(parentID),
	)
	list, err := p.drive.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return p.fail(op, err)
	}

	for _, f := range list.Files {
		if err := p.limiter.Wait(ctx); err != nil {
			return classify(op, err)
		}
		if err := p.drive.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
			return p.fail(op, err)
		}
		logger.Debug("Deleted prior file %q (%s)", name, f.Id)
	}
	return nil
}

// CopyTemplate instantiates a copy of the template document under
// parentID with the given name.
func (p *Provider) CopyTemplate(ctx context.Context, templateID, name, parentID string) (*driven.RemoteFile, error) {
	const op = "copy template"
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}

	target := &drive.File{
		Name:    name,
		Parents: []string{parentID},
	}
	created, err := p.drive.Files.Copy(templateID, target).Fields("id, name, webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, p.fail(op, err)
	}

	return &driven.RemoteFile{
		ID:   created.Id,
		Name: created.Name,
		URL:  created.WebViewLink,
	}, nil
}

// ReplacePlaceholders applies all substitutions in a single batch
// update, then removes any lines carrying the remove-line sentinel.
// Docs rejects the whole batch when the document is incompatible, so a
// partially substituted document is never left behind.
func (p *Provider) ReplacePlaceholders(ctx context.Context, documentID string, replacements map[string]string) error {
	const op = "replace placeholders"
	if len(replacements) == 0 {
		return nil
	}

	// Stable request order keeps batches reproducible across runs.
	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	requests := make([]*docs.Request, 0, len(keys))
	sentinelUsed := false
	for _, k := range keys {
		v := replacements[k]
		if strings.Contains(v, domain.RemoveLineSentinel) {
			sentinelUsed = true
		}
		requests = append(requests, &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{
					Text:      k,
					MatchCase: true,
				},
				ReplaceText: v,
			},
		})
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}
	batch := &docs.BatchUpdateDocumentRequest{Requests: requests}
	if _, err := p.docs.Documents.BatchUpdate(documentID, batch).Context(ctx).Do(); err != nil {
		return p.fail(op, err)
	}

	if sentinelUsed {
		return p.removeSentinelLines(ctx, documentID)
	}
	return nil
}

// removeSentinelLines deletes every paragraph containing the
// remove-line sentinel from the document.
func (p *Provider) removeSentinelLines(ctx context.Context, documentID string) error {
	const op = "remove sentinel lines"
	if err := p.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}

	doc, err := p.docs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return p.fail(op, err)
	}

	ranges := sentinelRanges(doc)
	if len(ranges) == 0 {
		return nil
	}

	// Delete bottom-up so earlier ranges keep their indices.
	requests := make([]*docs.Request, 0, len(ranges))
	for i := len(ranges) - 1; i >= 0; i-- {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{Range: ranges[i]},
		})
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}
	batch := &docs.BatchUpdateDocumentRequest{Requests: requests}
	if _, err := p.docs.Documents.BatchUpdate(documentID, batch).Context(ctx).Do(); err != nil {
		return p.fail(op, err)
	}
	return nil
}

// sentinelRanges collects the content ranges of paragraphs containing
// the remove-line sentinel, in document order.
func sentinelRanges(doc *docs.Document) []*docs.Range {
	if doc.Body == nil {
		return nil
	}

	var ranges []*docs.Range
	content := doc.Body.Content
	for i, se := range content {
		if se.Paragraph == nil {
			continue
		}
		var text strings.Builder
		for _, el := range se.Paragraph.Elements {
			if el.TextRun != nil {
				text.WriteString(el.TextRun.Content)
			}
		}
		if !strings.Contains(text.String(), domain.RemoveLineSentinel) {
			continue
		}

		end := se.EndIndex
		if i == len(content)-1 {
			// The final newline of a document body cannot be deleted.
			end--
		}
		if end <= se.StartIndex {
			continue
		}
		ranges = append(ranges, &docs.Range{
			StartIndex: se.StartIndex,
			EndIndex:   end,
		})
	}
	return ranges
}

// ExportPDF renders the document to PDF and stores the result as a new
// file under parentID.
func (p *Provider) ExportPDF(ctx context.Context, documentID, parentID, name string) (*driven.RemoteFile, error) {
	const op = "export pdf"
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}

	resp, err := p.drive.Files.Export(documentID, MimeTypePDF).Context(ctx).Download()
	if err != nil {
		return nil, p.fail(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.fail(op, err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}
	file := &drive.File{
		Name:     name,
		MimeType: MimeTypePDF,
		Parents:  []string{parentID},
	}
	created, err := p.drive.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, p.fail(op, err)
	}

	return &driven.RemoteFile{
		ID:   created.Id,
		Name: created.Name,
		URL:  created.WebViewLink,
	}, nil
}

// AllowLinkSharing grants anyone-with-link read access to a file.
func (p *Provider) AllowLinkSharing(ctx context.Context, fileID string) error {
	const op = "share file"
	if err := p.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}

	permission := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}
	if _, err := p.drive.Permissions.Create(fileID, permission).Context(ctx).Do(); err != nil {
		return p.fail(op, err)
	}
	return nil
}

// Download retrieves the raw content of a file.
func (p *Provider) Download(ctx context.Context, fileID string) ([]byte, error) {
	const op = "download file"
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}

	resp, err := p.drive.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, p.fail(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.fail(op, err)
	}
	return data, nil
}

// fail records rate limit responses for backoff and classifies the
// error for the retry layer.
func (p *Provider) fail(op string, err error) error {
	if isRateLimited(err) {
		p.limiter.RecordRateLimitError(0)
	}
	return classify(op, err)
}

// escapeQuery escapes a value for use inside a Drive query string.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
