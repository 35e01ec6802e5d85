package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockCredentialStore implements driven.CredentialStore in memory.
type mockCredentialStore struct {
	mu   sync.Mutex
	cred *domain.OAuthCredential

	replaceCalls int
	updateCalls  int
	updateErr    error
}

var _ driven.CredentialStore = (*mockCredentialStore)(nil)

func (m *mockCredentialStore) Get(_ context.Context) (*domain.OAuthCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil, domain.ErrNotFound
	}
	c := *m.cred
	return &c, nil
}

func (m *mockCredentialStore) Replace(_ context.Context, cred *domain.OAuthCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	c := *cred
	c.Version = 1
	m.cred = &c
	return nil
}

func (m *mockCredentialStore) Update(_ context.Context, cred *domain.OAuthCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.cred == nil || m.cred.Version != cred.Version {
		return domain.ErrCredentialConflict
	}
	c := *cred
	c.Version++
	m.cred = &c
	return nil
}

func (m *mockCredentialStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

// mockOAuthClient implements driven.OAuthClient.
type mockOAuthClient struct {
	refreshCalls  int
	refreshErr    error
	refreshResult *domain.OAuthCredential

	exchangeCalls  int
	exchangeErr    error
	exchangeResult *domain.OAuthCredential
}

var _ driven.OAuthClient = (*mockOAuthClient)(nil)

func (m *mockOAuthClient) Exchange(_ context.Context, _ string) (*domain.OAuthCredential, error) {
	m.exchangeCalls++
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	c := *m.exchangeResult
	return &c, nil
}

func (m *mockOAuthClient) Refresh(_ context.Context, _ string) (*domain.OAuthCredential, error) {
	m.refreshCalls++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	c := *m.refreshResult
	return &c, nil
}

// mockProvider implements driven.DocumentProvider and records calls.
type mockProvider struct {
	mu    sync.Mutex
	calls []string

	folders map[string]string // name -> id

	createFolderErr error
	deleteErr       error
	copyErr         error
	replaceErr      error
	exportErr       error
	shareErr        error
	downloadErr     error

	// failFirstN makes CopyTemplate fail with a transient error for the
	// first n calls, then succeed.
	failFirstN int
	copyCalls  int

	lastReplacements map[string]string
	downloadData     []byte
}

var _ driven.DocumentProvider = (*mockProvider)(nil)

func newMockProvider() *mockProvider {
	return &mockProvider{
		folders:      make(map[string]string),
		downloadData: []byte("%PDF-1.4 test"),
	}
}

func (m *mockProvider) callNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockProvider) countCalls(name string) int {
	n := 0
	for _, c := range m.callNames() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockProvider) setCopyErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyErr = err
}

func (m *mockProvider) CreateFolder(_ context.Context, name, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "CreateFolder")
	if m.createFolderErr != nil {
		return "", m.createFolderErr
	}
	id := fmt.Sprintf("folder-%d", len(m.folders)+1)
	m.folders[name] = id
	return id, nil
}

func (m *mockProvider) FindFolderByName(_ context.Context, name, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "FindFolderByName")
	return m.folders[name], nil
}

func (m *mockProvider) DeleteByName(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "DeleteByName")
	return m.deleteErr
}

func (m *mockProvider) CopyTemplate(_ context.Context, _, name, _ string) (*driven.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "CopyTemplate")
	m.copyCalls++
	if m.failFirstN > 0 && m.copyCalls <= m.failFirstN {
		return nil, &domain.ProviderError{Op: "copy template", Transient: true, Err: fmt.Errorf("backend unavailable")}
	}
	if m.copyErr != nil {
		return nil, m.copyErr
	}
	return &driven.RemoteFile{
		ID:   fmt.Sprintf("doc-%d", m.copyCalls),
		Name: name,
		URL:  fmt.Sprintf("https://docs.example.com/doc-%d", m.copyCalls),
	}, nil
}

func (m *mockProvider) ReplacePlaceholders(_ context.Context, _ string, repl map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ReplacePlaceholders")
	m.lastReplacements = repl
	return m.replaceErr
}

func (m *mockProvider) ExportPDF(_ context.Context, docID, _, name string) (*driven.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ExportPDF")
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return &driven.RemoteFile{
		ID:   "pdf-" + docID,
		Name: name,
		URL:  "https://drive.example.com/pdf-" + docID,
	}, nil
}

func (m *mockProvider) AllowLinkSharing(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "AllowLinkSharing")
	return m.shareErr
}

func (m *mockProvider) Download(_ context.Context, _ string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Download")
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return m.downloadData, nil
}

// mockTemplateSource implements driven.TemplateSource.
type mockTemplateSource struct {
	templates map[domain.TemplateKind]string
	leadTimes map[domain.TemplateKind]domain.LeadTime
	root      string
}

var _ driven.TemplateSource = (*mockTemplateSource)(nil)

func (m *mockTemplateSource) TemplateID(kind domain.TemplateKind) (string, bool) {
	id, ok := m.templates[kind]
	return id, ok && id != ""
}

func (m *mockTemplateSource) LeadTime(kind domain.TemplateKind) (domain.LeadTime, bool) {
	lt, ok := m.leadTimes[kind]
	return lt, ok
}

func (m *mockTemplateSource) RootFolderID() string {
	return m.root
}

// mockBindingStore implements driven.FolderBindingStore in memory.
type mockBindingStore struct {
	mu       sync.Mutex
	bindings map[string]*domain.FolderBinding
}

var _ driven.FolderBindingStore = (*mockBindingStore)(nil)

func newMockBindingStore() *mockBindingStore {
	return &mockBindingStore{bindings: make(map[string]*domain.FolderBinding)}
}

func (m *mockBindingStore) Get(_ context.Context, customerID string) (*domain.FolderBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[customerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *mockBindingStore) Save(_ context.Context, binding *domain.FolderBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := *binding
	m.bindings[binding.CustomerID] = &b
	return nil
}

// mockDocumentStore implements driven.GeneratedDocumentStore in memory.
type mockDocumentStore struct {
	mu   sync.Mutex
	docs map[domain.DocumentKey]*domain.GeneratedDocument
}

var _ driven.GeneratedDocumentStore = (*mockDocumentStore)(nil)

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{docs: make(map[domain.DocumentKey]*domain.GeneratedDocument)}
}

func (m *mockDocumentStore) Upsert(_ context.Context, doc *domain.GeneratedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prior, ok := m.docs[doc.Key]; ok {
		doc.ID = prior.ID
		doc.CreatedAt = prior.CreatedAt
	}
	d := *doc
	m.docs[doc.Key] = &d
	return nil
}

func (m *mockDocumentStore) GetByKey(_ context.Context, key domain.DocumentKey) (*domain.GeneratedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (m *mockDocumentStore) ListBySubject(_ context.Context, subject domain.SubjectRef) ([]domain.GeneratedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GeneratedDocument
	for key, d := range m.docs {
		if key.Subject == subject {
			out = append(out, *d)
		}
	}
	return out, nil
}

// mockBackupStore implements driven.BackupStore.
type mockBackupStore struct {
	writeErr  error
	lastPath  string
	lastData  []byte
	writeCall int
}

var _ driven.BackupStore = (*mockBackupStore)(nil)

func (m *mockBackupStore) Write(_ context.Context, subjectID, fileName string, data []byte) (string, error) {
	m.writeCall++
	if m.writeErr != nil {
		return "", m.writeErr
	}
	m.lastPath = "/backups/" + subjectID + "/" + fileName
	m.lastData = data
	return m.lastPath, nil
}

// mockOfferStore implements driven.OfferStore.
type mockOfferStore struct {
	mu     sync.Mutex
	offers map[string]*domain.Offer
}

var _ driven.OfferStore = (*mockOfferStore)(nil)

func newMockOfferStore(offers ...*domain.Offer) *mockOfferStore {
	m := &mockOfferStore{offers: make(map[string]*domain.Offer)}
	for _, o := range offers {
		m.offers[o.ID] = o
	}
	return m
}

func (m *mockOfferStore) Get(_ context.Context, id string) (*domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *o
	return &c, nil
}

// fakeSleeper records sleeps instead of waiting.
type fakeSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

var _ Sleeper = (*fakeSleeper)(nil)

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return nil
}

// testOffer returns a fully populated offer for service tests.
func testOffer() *domain.Offer {
	return &domain.Offer{
		ID:     "offer-1",
		Number: "A-2042",
		Date:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Customer: &domain.Customer{
			ID:     "cust-1",
			Number: "K-1001",
			Name:   "Musterbau GmbH",
		},
		TotalNetCents:   123456,
		VATCents:        23457,
		TotalGrossCents: 146913,
		ShippingCents:   500,
		LeadTime:        domain.LeadTime{MinWeeks: 6, MaxWeeks: 8},
	}
}

// testGenerator wires a Generator with fresh mocks.
func testGenerator(provider *mockProvider) (*Generator, *mockBindingStore, *mockDocumentStore, *mockBackupStore) {
	templates := &mockTemplateSource{
		templates: map[domain.TemplateKind]string{
			domain.TemplateInstallation: "tmpl-install",
			domain.TemplateItems:        "tmpl-items",
		},
		root: "root-folder",
	}
	bindings := newMockBindingStore()
	documents := newMockDocumentStore()
	backups := &mockBackupStore{}
	return NewGenerator(provider, templates, bindings, documents, backups), bindings, documents, backups
}
