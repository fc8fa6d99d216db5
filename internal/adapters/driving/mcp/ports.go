package mcp

import (
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions over the document corpus.
	Query driving.QueryService

	// Ingestion converts uploaded PDFs into indexed pages.
	Ingestion driving.IngestionService

	// Document manages the ingested document registry.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	// Document is optional; the list_documents tool is skipped without it.
	return nil
}
