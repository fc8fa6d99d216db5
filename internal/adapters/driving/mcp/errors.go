// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants ingest PDFs and ask questions over the local
// document corpus.
package mcp

import "errors"

// Errors returned when required services are not provided.
var (
	ErrMissingQueryService     = errors.New("mcp: query service is required")
	ErrMissingIngestionService = errors.New("mcp: ingestion service is required")
)
