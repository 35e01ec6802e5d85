package driving

import (
	"context"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// Dispatcher schedules generation jobs triggered by subject-saved
// notifications and runs them with the retry policy.
type Dispatcher interface {
	// Start runs the worker loop. Blocks until Stop is called or the
	// context is cancelled.
	Start(ctx context.Context) error

	// Stop shuts the worker loop down and waits for the running job.
	Stop() error

	// Enqueue schedules one job for the subject and template kinds.
	// A nil or empty kind list requests the default kinds. Returns
	// domain.ErrQueueFull when the queue cannot accept the job.
	Enqueue(subject domain.SubjectRef, kinds []domain.TemplateKind) error
}
