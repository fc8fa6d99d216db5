package services

import (
	"context"
	"sync"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
)

// --- Mock implementations of the driven ports ---

// mockRasterizer implements driven.Rasterizer for testing. Behavior can
// be keyed per filename for mixed-outcome batches; pages is the default
// for files not listed in pagesFor.
type mockRasterizer struct {
	pages    []domain.Page
	pagesFor map[string][]domain.Page
	errFor   map[string]error
	err      error
}

func (m *mockRasterizer) Rasterize(_ context.Context, _, documentID, filename string) ([]domain.Page, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.errFor[filename]; ok {
		return nil, err
	}
	src := m.pages
	if p, ok := m.pagesFor[filename]; ok {
		src = p
	}
	pages := make([]domain.Page, len(src))
	copy(pages, src)
	for i := range pages {
		pages[i].DocumentID = documentID
	}
	return pages, nil
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	texts []string
	err   error
}

func (m *mockExtractor) ExtractPages(_ context.Context, _ string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.texts, nil
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	mu         sync.Mutex
	vector     []float32
	textErr    error
	imageErr   error
	textCalls  int
	imageCalls int
}

func (m *mockEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	m.textCalls++
	m.mu.Unlock()
	if m.textErr != nil {
		return nil, m.textErr
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedImage(_ context.Context, _ []byte) ([]float32, error) {
	m.mu.Lock()
	m.imageCalls++
	m.mu.Unlock()
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	return m.vector, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.vector) }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	mu        sync.Mutex
	records   []domain.VectorRecord
	hits      []driven.VectorHit
	ensureErr error
	upsertErr error
	searchErr error
	deleted   []string
}

func (m *mockVectorStore) EnsureCollection(_ context.Context, _ string, _ int, _ string) error {
	return m.ensureErr
}

func (m *mockVectorStore) Upsert(_ context.Context, records []domain.VectorRecord) (int, error) {
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return len(records), nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, limit int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:limit], nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *mockVectorStore) DeleteByDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockDocStore implements driven.DocumentStore for testing.
type mockDocStore struct {
	mu      sync.Mutex
	byID    map[string]*domain.Document
	saveErr error
	getErr  error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{byID: make(map[string]*domain.Document)}
}

func (m *mockDocStore) Save(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.byID[doc.ID] = &copied
	return nil
}

func (m *mockDocStore) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, pageCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.byID[id]; ok {
		doc.Status = status
		doc.PageCount = pageCount
	}
	return nil
}

func (m *mockDocStore) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocStore) GetByChecksum(_ context.Context, checksum string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.byID {
		if doc.Checksum == checksum {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocStore) List(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]domain.Document, 0, len(m.byID))
	for _, doc := range m.byID {
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (m *mockDocStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockDocStore) CountIndexed(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, doc := range m.byID {
		if doc.Status == domain.StatusIndexed {
			count++
		}
	}
	return count, nil
}

// mockWebSearch implements driven.WebSearch for testing.
type mockWebSearch struct {
	results []driven.WebResult
	err     error
	calls   int
}

func (m *mockWebSearch) Search(_ context.Context, _ string, _ int) ([]driven.WebResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockGenerator implements driven.Generator for testing.
type mockGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastImages [][]byte
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, images [][]byte) (string, error) {
	m.lastPrompt = prompt
	m.lastImages = images
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerator) ModelName() string { return "mock-gen" }

func (m *mockGenerator) Ping(_ context.Context) error { return nil }

func (m *mockGenerator) Close() error { return nil }
