package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Inspect generated documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list [offer-id]",
	Short: "List generated documents for an offer",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsList,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	if documentQueries == nil {
		return errors.New("document query service not configured")
	}

	subject := domain.SubjectRef{Kind: domain.SubjectOffer, ID: args[0]}
	docs, err := documentQueries.ListBySubject(context.Background(), subject)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No generated documents for offer %s.\n", subject.ID)
		return nil
	}

	cmd.Printf("Generated documents for offer %s:\n\n", subject.ID)
	for i := range docs {
		doc := &docs[i]
		cmd.Printf("  %s (%s)\n", doc.Key.Template, doc.Status)
		cmd.Printf("    Document: %s\n", doc.DocumentURL)
		cmd.Printf("    PDF:      %s\n", doc.ArtifactURL)
		if doc.BackupPath != "" {
			cmd.Printf("    Backup:   %s\n", doc.BackupPath)
		}
		cmd.Printf("    Updated:  %s\n", doc.UpdatedAt.Format(time.RFC3339))
		cmd.Println()
	}
	return nil
}
