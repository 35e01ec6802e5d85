package cli

import (
	"context"
	"time"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// stubTokenService returns canned credentials.
type stubTokenService struct {
	cred      *domain.OAuthCredential
	statusErr error

	handledCodes []string
	callbackErr  error
}

func (s *stubTokenService) EnsureValid(_ context.Context) (*domain.OAuthCredential, error) {
	if s.cred == nil {
		return nil, domain.ErrAuthRequired
	}
	return s.cred, nil
}

func (s *stubTokenService) HandleCallback(_ context.Context, code string) error {
	s.handledCodes = append(s.handledCodes, code)
	return s.callbackErr
}

func (s *stubTokenService) Status(_ context.Context) (*domain.OAuthCredential, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.cred, nil
}

// stubGenerator returns one canned document per requested kind.
type stubGenerator struct {
	err error
	// skipKinds report as unconfigured.
	skipKinds map[domain.TemplateKind]bool
	generated []domain.TemplateKind
}

func (g *stubGenerator) Generate(_ context.Context, offer *domain.Offer, kind domain.TemplateKind) (*domain.GeneratedDocument, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.skipKinds[kind] {
		return nil, nil
	}
	g.generated = append(g.generated, kind)
	return &domain.GeneratedDocument{
		ID:          "doc-" + string(kind),
		Key:         domain.DocumentKey{Subject: offer.Ref(), Template: kind},
		Status:      domain.StatusGenerated,
		DocumentURL: "https://example.com/doc/" + string(kind),
		ArtifactURL: "https://example.com/pdf/" + string(kind),
		BackupPath:  "/backups/" + string(kind) + ".pdf",
		UpdatedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}, nil
}

// stubQueries serves a fixed document list.
type stubQueries struct {
	docs []domain.GeneratedDocument
	err  error
}

func (q *stubQueries) ListBySubject(_ context.Context, _ domain.SubjectRef) ([]domain.GeneratedDocument, error) {
	return q.docs, q.err
}

// stubDispatcher is inert; Start returns when the context ends.
type stubDispatcher struct {
	startErr error
	stopped  bool
}

func (d *stubDispatcher) Start(ctx context.Context) error {
	if d.startErr != nil {
		return d.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *stubDispatcher) Stop() error {
	d.stopped = true
	return nil
}

func (d *stubDispatcher) Enqueue(_ domain.SubjectRef, _ []domain.TemplateKind) error {
	return nil
}

// stubSpool ends as soon as it runs.
type stubSpool struct {
	runErr error
}

func (s *stubSpool) Run(_ context.Context) error {
	return s.runErr
}

// stubAuthURL returns a fixed authorisation URL.
type stubAuthURL struct{}

func (stubAuthURL) AuthCodeURL(state string) string {
	return "https://auth.example.com/authorize?state=" + state
}

// setupTestServices wires stub services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	prevToken := tokenService
	prevAuthURL := authURLProvider
	prevGenerator := generatorSvc
	prevQueries := documentQueries
	prevDispatcher := dispatcherSvc
	prevSpool := spoolRunner

	tokenService = &stubTokenService{
		cred: &domain.OAuthCredential{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
			UpdatedAt:    time.Now(),
		},
	}
	authURLProvider = stubAuthURL{}
	generatorSvc = &stubGenerator{}
	documentQueries = &stubQueries{}
	dispatcherSvc = &stubDispatcher{}
	spoolRunner = &stubSpool{}

	return func() {
		tokenService = prevToken
		authURLProvider = prevAuthURL
		generatorSvc = prevGenerator
		documentQueries = prevQueries
		dispatcherSvc = prevDispatcher
		spoolRunner = prevSpool
	}
}
