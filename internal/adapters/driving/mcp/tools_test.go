package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

// --- Mock implementations of the driving ports ---

type mockQueryService struct {
	answer   *domain.SynthesizedAnswer
	err      error
	lastOpts driving.QueryOptions
}

func (m *mockQueryService) AnswerQuery(_ context.Context, _ string, opts driving.QueryOptions) (*domain.SynthesizedAnswer, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type mockIngestionService struct {
	summary  *domain.IngestionSummary
	err      error
	lastPath string
}

func (m *mockIngestionService) IngestDocuments(_ context.Context, _ []driving.FileUpload) (*domain.IngestionSummary, error) {
	return m.summary, m.err
}

func (m *mockIngestionService) IngestPath(_ context.Context, path string) (*domain.IngestionSummary, error) {
	m.lastPath = path
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

type mockDocumentService struct {
	docs []domain.Document
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return nil
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	s, err := NewServer(ports)
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresServices(t *testing.T) {
	_, err := NewServer(&Ports{Ingestion: &mockIngestionService{}})
	assert.ErrorIs(t, err, ErrMissingQueryService)

	_, err = NewServer(&Ports{Query: &mockQueryService{}})
	assert.ErrorIs(t, err, ErrMissingIngestionService)
}

func TestHandleAnswerQuery(t *testing.T) {
	query := &mockQueryService{answer: &domain.SynthesizedAnswer{
		Status:   domain.AnswerSuccess,
		Response: "Revenue grew 12%.",
		Source:   domain.SourceDocument,
		Citations: []domain.Citation{
			{Filename: "report.pdf", PageNumber: 4, Confidence: 0.91},
		},
		RetrievedCount: 2,
	}}
	s := newTestServer(t, &Ports{Query: query, Ingestion: &mockIngestionService{}})

	_, output, err := s.handleAnswerQuery(context.Background(), nil, AnswerQueryInput{
		Query: "how did revenue do?",
		Agent: "document",
		TopK:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, "success", output.Status)
	assert.Equal(t, "document", output.Source)
	assert.Equal(t, "Revenue grew 12%.", output.Response)
	require.Len(t, output.Citations, 1)
	assert.Equal(t, "report.pdf", output.Citations[0].Filename)
	assert.Equal(t, driving.QueryOptions{AgentHint: "document", TopK: 3}, query.lastOpts)
}

func TestHandleIngest(t *testing.T) {
	ingestion := &mockIngestionService{summary: &domain.IngestionSummary{
		Status:              domain.IngestPartial,
		PagesProcessed:      5,
		FilesProcessed:      []string{"a.pdf"},
		EmbeddingsGenerated: 5,
		Errors:              []domain.FileError{{Filename: "b.pdf", Reason: "document unreadable"}},
	}}
	s := newTestServer(t, &Ports{Query: &mockQueryService{}, Ingestion: ingestion})

	_, output, err := s.handleIngest(context.Background(), nil, IngestInput{Path: "/docs"})
	require.NoError(t, err)

	assert.Equal(t, "/docs", ingestion.lastPath)
	assert.Equal(t, "partial", output.Status)
	assert.Equal(t, 5, output.PagesProcessed)
	assert.Equal(t, []string{"b.pdf: document unreadable"}, output.Errors)
}

func TestHandleListDocuments(t *testing.T) {
	docs := &mockDocumentService{docs: []domain.Document{
		{
			ID:         "doc-1",
			Filename:   "report.pdf",
			PageCount:  12,
			Status:     domain.StatusIndexed,
			UploadedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		},
	}}
	s := newTestServer(t, &Ports{
		Query:     &mockQueryService{},
		Ingestion: &mockIngestionService{},
		Document:  docs,
	})

	_, output, err := s.handleListDocuments(context.Background(), nil, ListDocumentsInput{})
	require.NoError(t, err)

	assert.Equal(t, 1, output.Count)
	require.Len(t, output.Documents, 1)
	assert.Equal(t, "doc-1", output.Documents[0].ID)
	assert.Equal(t, "indexed", output.Documents[0].Status)
	assert.Equal(t, "2025-03-10 09:30:00", output.Documents[0].Uploaded)
}
