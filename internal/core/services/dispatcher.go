package services

import (
	"context"
	"sync"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driving"
	"github.com/atelier-labs/docmill/internal/logger"
)

// defaultQueueSize bounds the number of pending jobs.
const defaultQueueSize = 64

// Ensure Dispatcher implements the interface.
var _ driving.Dispatcher = (*Dispatcher)(nil)

// Dispatcher runs generation jobs from a bounded queue. Jobs for
// different subjects are independent; this dispatcher processes them
// one at a time, which also serialises concurrent first-time folder
// creation for the same customer.
type Dispatcher struct {
	runner *JobRunner

	mu      sync.Mutex
	running bool
	queue   chan GenerationJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher for the given runner.
func NewDispatcher(runner *JobRunner) *Dispatcher {
	return &Dispatcher{
		runner: runner,
		queue:  make(chan GenerationJob, defaultQueueSize),
	}
}

// Start runs the worker loop. Blocks until Stop is called or the
// context is cancelled. Job errors are handled by the runner's retry
// policy and terminal handler; they never stop the loop.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil // Already running
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.stopCh:
			return nil
		case job := <-d.queue:
			d.wg.Add(1)
			d.runJob(ctx, job)
			d.wg.Done()
		}
	}
}

// Stop shuts the worker loop down and waits for the running job.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stopCh)
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}

// Enqueue schedules one job for the subject. A nil or empty kind list
// requests the default kinds.
func (d *Dispatcher) Enqueue(subject domain.SubjectRef, kinds []domain.TemplateKind) error {
	if !subject.Kind.Valid() || subject.ID == "" {
		return domain.ErrInvalidInput
	}
	if len(kinds) == 0 {
		kinds = domain.DefaultTemplateKinds()
	}

	job := GenerationJob{Subject: subject, Kinds: kinds}
	select {
	case d.queue <- job:
		logger.Debug("Enqueued generation for %s %s (kinds %v)", subject.Kind, subject.ID, kinds)
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// runJob executes one job; errors end in the runner's terminal handler.
func (d *Dispatcher) runJob(ctx context.Context, job GenerationJob) {
	if err := d.runner.Run(ctx, job); err != nil {
		logger.Debug("Job for %s %s ended in failure: %v", job.Subject.Kind, job.Subject.ID, err)
	}
}
