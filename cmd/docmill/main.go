// docmill generates customer documents from priced offers via a remote
// document provider.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atelier-labs/docmill/internal/adapters/driven/backup"
	"github.com/atelier-labs/docmill/internal/adapters/driven/config/file"
	"github.com/atelier-labs/docmill/internal/adapters/driven/gdrive"
	"github.com/atelier-labs/docmill/internal/adapters/driven/oauth"
	"github.com/atelier-labs/docmill/internal/adapters/driven/storage/memory"
	"github.com/atelier-labs/docmill/internal/adapters/driven/storage/sqlite"
	"github.com/atelier-labs/docmill/internal/adapters/driving/cli"
	"github.com/atelier-labs/docmill/internal/adapters/driving/spool"
	"github.com/atelier-labs/docmill/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// DOCMILL_DATA_DIR overrides the default ~/.docmill location.
	dataDir := os.Getenv("DOCMILL_DATA_DIR")

	settings, err := file.NewSettingsStore(dataDir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	cfg := settings.Settings()

	store, err := sqlite.NewStore(filepath.Join(cfg.DataDir, "data"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	oauthClient := oauth.NewClient(cfg.OAuth)
	tokens := services.NewTokenLifecycle(store.CredentialStore(), oauthClient)

	tokenSource := gdrive.NewTokenSource(ctx, tokens)
	driveSvc, err := gdrive.NewDriveService(ctx, tokenSource)
	if err != nil {
		return fmt.Errorf("creating drive client: %w", err)
	}
	docsSvc, err := gdrive.NewDocsService(ctx, tokenSource)
	if err != nil {
		return fmt.Errorf("creating docs client: %w", err)
	}
	provider := gdrive.NewProvider(driveSvc, docsSvc, nil)

	backups := backup.NewFilesystemStore(cfg.BackupDir)

	generator := services.NewGenerator(
		provider,
		settings,
		store.FolderBindingStore(),
		store.GeneratedDocumentStore(),
		backups,
	)

	// Spool-dropped offers are registered here for the job runner.
	offers := memory.NewOfferStore()
	runner := services.NewJobRunner(offers, generator, cfg.Retry, nil)
	dispatcher := services.NewDispatcher(runner)
	watcher := spool.NewWatcher(cfg.SpoolDir, offers, dispatcher)

	cli.Configure(cli.Services{
		Settings:        settings,
		TokenService:    tokens,
		AuthURL:         oauthClient,
		Generator:       generator,
		DocumentQueries: generator,
		Dispatcher:      dispatcher,
		Spool:           watcher,
	})

	return cli.Execute()
}
