package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

// AnswerQueryInput is the input schema for the answer_query tool.
type AnswerQueryInput struct {
	Query string `json:"query" jsonschema:"the question to answer from ingested documents"`
	Agent string `json:"agent,omitempty" jsonschema:"routing hint: document, web or general (optional)"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of pages to retrieve (default 5)"`
}

// AnswerQueryOutput is the output schema for the answer_query tool.
type AnswerQueryOutput struct {
	Status         string           `json:"status"`
	Response       string           `json:"response"`
	Source         string           `json:"source"`
	Citations      []CitationOutput `json:"citations,omitempty"`
	RetrievedCount int              `json:"retrieved_count"`
}

// CitationOutput points at one page that grounded the answer.
type CitationOutput struct {
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	Confidence float64 `json:"confidence"`
}

// IngestInput is the input schema for the ingest_documents tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"path to a PDF file or a directory of PDFs"`
}

// IngestOutput is the output schema for the ingest_documents tool.
type IngestOutput struct {
	Status              string   `json:"status"`
	PagesProcessed      int      `json:"pages_processed"`
	FilesProcessed      []string `json:"files_processed"`
	FilesSkipped        []string `json:"files_skipped,omitempty"`
	EmbeddingsGenerated int      `json:"embeddings_generated"`
	Errors              []string `json:"errors,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents one registered document.
type DocumentOutput struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
	Status    string `json:"status"`
	Uploaded  string `json:"uploaded_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_query",
		Description: "Answer a question from ingested PDF documents, with web and general-knowledge fallback",
	}, s.handleAnswerQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_documents",
		Description: "Ingest a PDF file or a directory of PDFs into the searchable index",
	}, s.handleIngest)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List all ingested documents with their indexing status",
		}, s.handleListDocuments)
	}
}

// handleAnswerQuery handles the answer_query tool invocation.
func (s *Server) handleAnswerQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerQueryInput,
) (*mcp.CallToolResult, AnswerQueryOutput, error) {
	answer, err := s.ports.Query.AnswerQuery(ctx, input.Query, driving.QueryOptions{
		AgentHint: input.Agent,
		TopK:      input.TopK,
	})
	if err != nil {
		return nil, AnswerQueryOutput{}, err
	}

	output := AnswerQueryOutput{
		Status:         string(answer.Status),
		Response:       answer.Response,
		Source:         string(answer.Source),
		RetrievedCount: answer.RetrievedCount,
	}
	for _, c := range answer.Citations {
		output.Citations = append(output.Citations, CitationOutput{
			Filename:   c.Filename,
			PageNumber: c.PageNumber,
			Confidence: c.Confidence,
		})
	}

	return nil, output, nil
}

// handleIngest handles the ingest_documents tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	summary, err := s.ports.Ingestion.IngestPath(ctx, input.Path)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	output := IngestOutput{
		Status:              summary.Status,
		PagesProcessed:      summary.PagesProcessed,
		FilesProcessed:      summary.FilesProcessed,
		FilesSkipped:        summary.FilesSkipped,
		EmbeddingsGenerated: summary.EmbeddingsGenerated,
	}
	for _, e := range summary.Errors {
		output.Errors = append(output.Errors, fmt.Sprintf("%s: %s", e.Filename, e.Reason))
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, doc := range docs {
		output.Documents[i] = documentOutput(doc)
	}

	return nil, output, nil
}

func documentOutput(doc domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:        doc.ID,
		Filename:  doc.Filename,
		PageCount: doc.PageCount,
		Status:    string(doc.Status),
		Uploaded:  doc.UploadedAt.Format("2006-01-02 15:04:05"),
	}
}
