// Package cli provides the cobra command tree. Commands talk to the core
// exclusively through the driving ports; wiring happens in the app package
// and is injected via SetServices before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

// Injected services. Commands check for nil so that a partially wired
// binary fails with a clear message instead of a panic.
var (
	queryService     driving.QueryService
	ingestionService driving.IngestionService
	documentService  driving.DocumentService
	configStore      driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Ask questions about your PDF documents",
	Long: `DocSage ingests PDF documents as page images, indexes them in a
vector database, and answers questions grounded in their content.

When the documents cannot answer a question, it falls back to web search
and finally to general knowledge, always disclosing which source the
answer came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services bundles everything the command tree needs.
type Services struct {
	Query     driving.QueryService
	Ingestion driving.IngestionService
	Document  driving.DocumentService
	Config    driven.ConfigStore
}

// SetServices injects the wired services into the command tree.
func SetServices(s Services) {
	queryService = s.Query
	ingestionService = s.Ingestion
	documentService = s.Document
	configStore = s.Config
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
