// Package spool watches a directory for dropped offer files and turns
// each one into a subject-saved trigger for the dispatcher.
package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atelier-labs/docmill/internal/adapters/driven/config/file"
	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driving"
	"github.com/atelier-labs/docmill/internal/logger"
)

// debounceDelay coalesces the burst of events an editor or copy
// produces for a single file.
const debounceDelay = 500 * time.Millisecond

// OfferRegistry receives offers loaded from the spool directory so the
// job runner can look them up by id.
type OfferRegistry interface {
	Save(ctx context.Context, offer *domain.Offer) error
}

// Watcher observes the spool directory. Every complete *.toml offer
// file is registered and a generation job is enqueued for it.
type Watcher struct {
	dir        string
	registry   OfferRegistry
	dispatcher driving.Dispatcher

	mu     sync.Mutex
	timers map[string]*time.Timer

	// delay is the debounce interval, injectable for tests.
	delay time.Duration
}

// NewWatcher creates a watcher for the given spool directory.
func NewWatcher(dir string, registry OfferRegistry, dispatcher driving.Dispatcher) *Watcher {
	return &Watcher{
		dir:        dir,
		registry:   registry,
		dispatcher: dispatcher,
		timers:     make(map[string]*time.Timer),
		delay:      debounceDelay,
	}
}

// Run watches the spool directory until the context is cancelled.
// Files already present at startup are processed once before watching.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("creating spool directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching spool directory: %w", err)
	}

	w.processExisting(ctx)

	logger.Info("Watching spool directory %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelTimers()
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isOfferFile(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Spool watcher error: %v", err)
		}
	}
}

// processExisting handles offer files already in the spool directory.
func (w *Watcher) processExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Reading spool directory: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isOfferFile(entry.Name()) {
			continue
		}
		w.processFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// schedule queues a debounced processing of the file. Repeated events
// for the same path reset the timer.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.processFile(ctx, path)
	})
}

// cancelTimers stops all pending debounce timers.
func (w *Watcher) cancelTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// processFile loads one offer file, registers the offer and enqueues a
// generation job for the default template kinds. Errors are logged and
// never stop the watcher.
func (w *Watcher) processFile(ctx context.Context, path string) {
	offer, err := file.LoadOffer(path)
	if err != nil {
		logger.Warn("Skipping spool file %s: %v", path, err)
		return
	}

	if err := w.registry.Save(ctx, offer); err != nil {
		logger.Error("Registering offer %s: %v", offer.ID, err)
		return
	}

	if err := w.dispatcher.Enqueue(offer.Ref(), nil); err != nil {
		logger.Error("Enqueueing generation for offer %s: %v", offer.ID, err)
		return
	}

	logger.Info("Queued generation for offer %s (%s)", offer.Number, filepath.Base(path))
}

// isOfferFile reports whether the path looks like an offer file.
func isOfferFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
