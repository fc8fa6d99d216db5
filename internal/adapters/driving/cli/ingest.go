package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a PDF file or directory",
	Long: `Ingest a PDF file, or every PDF in a directory, into the searchable
index. Each page is rendered to an image, embedded, and stored in the
vector database. Files already ingested (same content checksum) are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var ingestJSON bool

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	summary, err := ingestionService.IngestPath(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, summary *domain.IngestionSummary) {
	cmd.Printf("Status: %s\n", summary.Status)
	cmd.Printf("Pages processed: %d\n", summary.PagesProcessed)
	cmd.Printf("Embeddings generated: %d\n", summary.EmbeddingsGenerated)

	if len(summary.FilesProcessed) > 0 {
		cmd.Println("\nProcessed:")
		for _, f := range summary.FilesProcessed {
			cmd.Printf("  %s\n", f)
		}
	}
	if len(summary.FilesSkipped) > 0 {
		cmd.Println("\nSkipped (already ingested):")
		for _, f := range summary.FilesSkipped {
			cmd.Printf("  %s\n", f)
		}
	}
	if len(summary.Errors) > 0 {
		cmd.Println("\nErrors:")
		for _, e := range summary.Errors {
			cmd.Printf("  %s: %s\n", e.Filename, e.Reason)
		}
	}
}
