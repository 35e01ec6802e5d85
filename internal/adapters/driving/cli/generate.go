package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelier-labs/docmill/internal/adapters/driven/config/file"
	"github.com/atelier-labs/docmill/internal/core/domain"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documents for an offer file",
	Long: `Generate the configured documents for one offer.

Reads the offer from a TOML file and runs the full generation sequence
for each requested template kind: copy the template into the customer
folder, fill in the offer data, export a PDF, share both files via link
and back the PDF up locally.

Examples:
  # Generate all configured kinds
  docmill generate --file offer.toml

  # Generate a single kind
  docmill generate --file offer.toml --kind installation`,
	RunE: runGenerate,
}

var (
	generateFile string
	generateKind string
)

func init() {
	generateCmd.Flags().StringVarP(
		&generateFile, "file", "f", "", "Path to the offer TOML file (required)")
	generateCmd.Flags().StringVarP(
		&generateKind, "kind", "k", "", "Template kind to generate (default: all configured kinds)")
	_ = generateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if generatorSvc == nil {
		return errors.New("generator service not configured")
	}

	offer, err := file.LoadOffer(generateFile)
	if err != nil {
		return fmt.Errorf("loading offer: %w", err)
	}

	kinds := domain.DefaultTemplateKinds()
	if generateKind != "" {
		kind, err := domain.ParseTemplateKind(generateKind)
		if err != nil {
			return err
		}
		kinds = []domain.TemplateKind{kind}
	}

	ctx := context.Background()
	generated := 0
	for _, kind := range kinds {
		doc, err := generatorSvc.Generate(ctx, offer, kind)
		if err != nil {
			return fmt.Errorf("generating %s for offer %s: %w", kind, offer.Number, err)
		}
		if doc == nil {
			cmd.Printf("Skipped %s: no template configured\n", kind)
			continue
		}
		generated++
		printDocument(cmd, doc)
	}

	if generated == 0 {
		cmd.Println("Nothing generated. Configure template ids with: docmill auth setup")
	}
	return nil
}

// printDocument renders one generation outcome.
func printDocument(cmd *cobra.Command, doc *domain.GeneratedDocument) {
	cmd.Printf("Generated %s for offer %s\n", doc.Key.Template, doc.Key.Subject.ID)
	cmd.Printf("  Document: %s\n", doc.DocumentURL)
	cmd.Printf("  PDF:      %s\n", doc.ArtifactURL)
	if doc.BackupPath != "" {
		cmd.Printf("  Backup:   %s\n", doc.BackupPath)
	} else {
		cmd.Println("  Backup:   not written")
	}
}
