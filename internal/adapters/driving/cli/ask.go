package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your documents",
	Long: `Ask a question and get an answer grounded in your ingested documents.

The answer always discloses its source: document pages with citations,
web search results, or general knowledge when nothing better is
available. Use --agent to bias routing towards a specific source.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var (
	askAgent string
	askTopK  int
	askJSON  bool
)

func init() {
	askCmd.Flags().StringVarP(&askAgent, "agent", "a", "", "Routing hint: document, web or general")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "Number of pages to retrieve (default 5)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.AnswerQuery(cmd.Context(), args[0], driving.QueryOptions{
		AgentHint: askAgent,
		TopK:      askTopK,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.SynthesizedAnswer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.SynthesizedAnswer) error {
	cmd.Printf("[%s]\n\n", answer.Source)
	cmd.Println(answer.Response)

	if len(answer.Citations) > 0 {
		cmd.Println("\nSources:")
		for _, c := range answer.Citations {
			cmd.Printf("  - %s, page %d (%.2f)\n", c.Filename, c.PageNumber, c.Confidence)
		}
	}

	cmd.Printf("\nAnswered in %.2fs\n", answer.ProcessingTime)
	return nil
}
