package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/docsage-labs/docsage-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-and-answer session",
	Long: `Launch an interactive chat session against your ingested documents.

Controls:
  Enter - Ask the typed question
  Esc   - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	return tui.Run(cmd.Context(), queryService)
}
