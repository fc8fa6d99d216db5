package cli

import (
	"context"
	"errors"
	"time"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

// --- Mock services shared by the command tests ---

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
	docs    []domain.Document
	err     error
	deleted []string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockConfigStore struct {
	values map[string]any
	setErr error
	path   string
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any), path: "/tmp/config.toml"}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	if v, ok := m.values[key].(float64); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }

func (m *mockConfigStore) Path() string { return m.path }

var errMockFailure = errors.New("mock failure")

// setupTestServices swaps in a full set of mocks and returns a cleanup
// function that restores the previous services.
func setupTestServices() func() {
	oldQuery := queryService
	oldIngestion := ingestionService
	oldDocument := documentService
	oldConfig := configStore

	queryService = &mockQueryService{answer: &domain.SynthesizedAnswer{
		Status:   domain.AnswerSuccess,
		Response: "A grounded answer.",
		Source:   domain.SourceDocument,
		Citations: []domain.Citation{
			{Filename: "report.pdf", PageNumber: 4, Confidence: 0.91},
		},
		RetrievedCount: 2,
		ProcessingTime: 0.42,
	}}
	ingestionService = &mockIngestionService{summary: &domain.IngestionSummary{
		Status:              domain.IngestSuccess,
		PagesProcessed:      12,
		FilesProcessed:      []string{"report.pdf"},
		EmbeddingsGenerated: 12,
	}}
	documentService = &mockDocumentService{docs: []domain.Document{
		{
			ID:         "doc-1",
			Filename:   "report.pdf",
			PageCount:  12,
			Status:     domain.StatusIndexed,
			UploadedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		},
	}}
	configStore = newMockConfigStore()

	return func() {
		queryService = oldQuery
		ingestionService = oldIngestion
		documentService = oldDocument
		configStore = oldConfig
	}
}
