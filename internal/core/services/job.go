package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-labs/docmill/internal/core/domain"
	"github.com/atelier-labs/docmill/internal/core/ports/driven"
	"github.com/atelier-labs/docmill/internal/core/ports/driving"
	"github.com/atelier-labs/docmill/internal/logger"
)

// Sleeper waits between retry attempts. Injectable so tests can assert
// backoff behaviour without real delays.
type Sleeper interface {
	// Sleep waits for d or until the context is cancelled.
	Sleep(ctx context.Context, d time.Duration) error
}

// clockSleeper sleeps on the wall clock.
type clockSleeper struct{}

func (clockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewClockSleeper returns a Sleeper backed by the wall clock.
func NewClockSleeper() Sleeper {
	return clockSleeper{}
}

// GenerationJob is one asynchronous trigger unit: generate all
// requested template kinds for one subject, with bounded retry.
type GenerationJob struct {
	// Subject identifies the business record to document.
	Subject domain.SubjectRef
	// Kinds are generated in order. The first error aborts the
	// remaining kinds of that run.
	Kinds []domain.TemplateKind
}

// JobRunner executes generation jobs under the retry policy.
type JobRunner struct {
	offers    driven.OfferStore
	generator driving.Generator
	policy    domain.RetryPolicy
	sleeper   Sleeper

	// onTerminalFailure is called after the final attempt fails. The
	// default logs the subject and kind list; no further automatic
	// action is taken.
	onTerminalFailure func(job GenerationJob, err error)
}

// NewJobRunner creates a job runner.
func NewJobRunner(
	offers driven.OfferStore,
	generator driving.Generator,
	policy domain.RetryPolicy,
	sleeper Sleeper,
) *JobRunner {
	if policy.Attempts <= 0 {
		policy = domain.DefaultRetryPolicy()
	}
	if sleeper == nil {
		sleeper = NewClockSleeper()
	}
	r := &JobRunner{
		offers:    offers,
		generator: generator,
		policy:    policy,
		sleeper:   sleeper,
	}
	r.onTerminalFailure = r.logTerminalFailure
	return r
}

// SetTerminalFailureHandler overrides the terminal-failure handler.
func (r *JobRunner) SetTerminalFailureHandler(fn func(job GenerationJob, err error)) {
	if fn != nil {
		r.onTerminalFailure = fn
	}
}

// Run executes the job: up to policy.Attempts attempts with a fixed
// delay in between. Permanent provider errors, authorisation failures
// and subject data errors abort immediately; only transient provider
// errors are retried. After the final failure the terminal handler is
// invoked and the last error returned.
func (r *JobRunner) Run(ctx context.Context, job GenerationJob) error {
	if len(job.Kinds) == 0 {
		job.Kinds = domain.DefaultTemplateKinds()
	}

	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		lastErr = r.runOnce(ctx, job)
		if lastErr == nil {
			return nil
		}

		logger.Warn("Generation attempt %d/%d failed for %s %s: %v",
			attempt, r.policy.Attempts, job.Subject.Kind, job.Subject.ID, lastErr)

		if !retryable(lastErr) {
			break
		}
		if attempt == r.policy.Attempts {
			break
		}
		if err := r.sleeper.Sleep(ctx, r.policy.Backoff); err != nil {
			lastErr = err
			break
		}
	}

	r.onTerminalFailure(job, lastErr)
	return lastErr
}

// runOnce performs a single attempt over all requested kinds.
func (r *JobRunner) runOnce(ctx context.Context, job GenerationJob) error {
	offer, err := r.offers.Get(ctx, job.Subject.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: offer %s not found", domain.ErrSubjectData, job.Subject.ID)
		}
		return fmt.Errorf("load offer: %w", err)
	}

	for _, kind := range job.Kinds {
		if _, err := r.generator.Generate(ctx, offer, kind); err != nil {
			return fmt.Errorf("generate %s: %w", kind, err)
		}
	}
	return nil
}

// logTerminalFailure is the default terminal-failure handler.
func (r *JobRunner) logTerminalFailure(job GenerationJob, err error) {
	logger.Error("Generation failed terminally for %s %s (kinds %v): %v",
		job.Subject.Kind, job.Subject.ID, job.Kinds, err)
}

// retryable reports whether another attempt may succeed. Authorisation
// failures, subject data errors and permanent provider errors are not
// transient.
func retryable(err error) bool {
	if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrSubjectData) {
		return false
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return perr.Transient
	}
	// Unknown infrastructure failures are treated as transient.
	return true
}
