package spool

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-labs/docmill/internal/adapters/driven/storage/memory"
	"github.com/atelier-labs/docmill/internal/core/domain"
)

// fakeDispatcher records enqueued jobs.
type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []domain.SubjectRef
}

func (d *fakeDispatcher) Start(_ context.Context) error { return nil }
func (d *fakeDispatcher) Stop() error                   { return nil }

func (d *fakeDispatcher) Enqueue(subject domain.SubjectRef, _ []domain.TemplateKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, subject)
	return nil
}

func (d *fakeDispatcher) jobs() []domain.SubjectRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.SubjectRef(nil), d.enqueued...)
}

const offerFile = `
id = "offer-1"
number = "A-2042"
date = "2026-03-14"
total_net_cents = 1000

[customer]
id = "cust-1"
number = "K-1001"
name = "Musterbau GmbH"
`

func startWatcher(t *testing.T, dir string) (*fakeDispatcher, *memory.OfferStore, context.CancelFunc) {
	t.Helper()

	dispatcher := &fakeDispatcher{}
	offers := memory.NewOfferStore()
	watcher := NewWatcher(dir, offers, dispatcher)
	watcher.delay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = watcher.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return dispatcher, offers, cancel
}

func TestWatcher_EnqueuesDroppedOffer(t *testing.T) {
	dir := t.TempDir()
	dispatcher, offers, _ := startWatcher(t, dir)

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "offer-1.toml"), []byte(offerFile), 0600))

	assert.Eventually(t, func() bool {
		return len(dispatcher.jobs()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	jobs := dispatcher.jobs()
	assert.Equal(t, domain.SubjectRef{Kind: domain.SubjectOffer, ID: "offer-1"}, jobs[0])

	offer, err := offers.Get(context.Background(), "offer-1")
	require.NoError(t, err)
	assert.Equal(t, "A-2042", offer.Number)
}

func TestWatcher_ProcessesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "offer-1.toml"), []byte(offerFile), 0600))

	dispatcher, _, _ := startWatcher(t, dir)

	assert.Eventually(t, func() bool {
		return len(dispatcher.jobs()) == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresNonOfferFiles(t *testing.T) {
	dir := t.TempDir()
	dispatcher, _, _ := startWatcher(t, dir)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an offer"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("not [valid"), 0600))

	// Neither file may produce a job.
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, dispatcher.jobs())
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	dispatcher, _, _ := startWatcher(t, dir)

	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(dir, "offer-1.toml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(offerFile), 0600))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return len(dispatcher.jobs()) >= 1
	}, 3*time.Second, 20*time.Millisecond)

	// The write burst collapses into few jobs, not one per write.
	assert.Less(t, len(dispatcher.jobs()), 5)
}

func TestIsOfferFile(t *testing.T) {
	assert.True(t, isOfferFile("offer.toml"))
	assert.True(t, isOfferFile("/spool/OFFER.TOML"))
	assert.False(t, isOfferFile("offer.json"))
	assert.False(t, isOfferFile("toml"))
}
