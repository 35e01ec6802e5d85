package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atelier-labs/docmill/internal/logger"
)

// SpoolRunner watches the spool directory until the context ends.
type SpoolRunner interface {
	Run(ctx context.Context) error
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the generation worker",
	Long: `Run the background generation worker.

The worker watches the spool directory for dropped offer files and
processes the generation queue. Each complete offer file triggers a
retryable job that generates all configured template kinds.

Stop with Ctrl+C.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if dispatcherSvc == nil {
		return errors.New("dispatcher not configured")
	}
	if spoolRunner == nil {
		return errors.New("spool watcher not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		if err := dispatcherSvc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("dispatcher: %w", err)
			return
		}
		errChan <- nil
	}()

	go func() {
		if err := spoolRunner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("spool watcher: %w", err)
			return
		}
		errChan <- nil
	}()

	cmd.Println("Worker running. Press Ctrl+C to stop.")

	// The first failure or the signal ends the run; the context tears
	// the other goroutine down.
	var runErr error
	select {
	case err := <-errChan:
		runErr = err
		stop()
	case <-ctx.Done():
	}

	if err := dispatcherSvc.Stop(); err != nil {
		logger.Warn("Stopping dispatcher: %v", err)
	}

	if runErr != nil {
		return runErr
	}
	cmd.Println("Worker stopped.")
	return nil
}
