package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

func newTestPipeline(r *mockRasterizer, x driven.TextExtractor, e *mockEmbedder, v *mockVectorStore, d *mockDocStore) *IngestionPipeline {
	return NewIngestionPipeline(r, x, e, v, d, PipelineConfig{Dimension: 4})
}

func twoPages() []domain.Page {
	return []domain.Page{
		{PageNumber: 1, Image: []byte("png1"), ImagePath: "/tmp/p1.png"},
		{PageNumber: 2, Image: []byte("png2"), ImagePath: "/tmp/p2.png"},
	}
}

func TestIngestDocuments_Success(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	docs := newMockDocStore()
	p := newTestPipeline(rast, &mockExtractor{texts: []string{"alpha", "beta"}}, embed, vectors, docs)

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "report.pdf", Reader: bytes.NewReader([]byte("%PDF-fake"))},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestSuccess, summary.Status)
	assert.Equal(t, 2, summary.PagesProcessed)
	assert.Equal(t, 2, summary.EmbeddingsGenerated)
	assert.Equal(t, []string{"report.pdf"}, summary.FilesProcessed)
	assert.Empty(t, summary.Errors)

	require.Len(t, vectors.records, 2)
	assert.Equal(t, "report.pdf", vectors.records[0].Payload.Filename)
	assert.Equal(t, 1, vectors.records[0].Payload.PageNumber)
	assert.Equal(t, "alpha", vectors.records[0].Payload.Text)
	assert.Equal(t, domain.SourceTagUpload, vectors.records[0].Payload.SourceTag)
	assert.NotEmpty(t, vectors.records[0].Payload.DocumentID)

	listed, err := docs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.StatusIndexed, listed[0].Status)
	assert.Equal(t, 2, listed[0].PageCount)
}

func TestIngestDocuments_EmptyBatch(t *testing.T) {
	p := newTestPipeline(&mockRasterizer{}, nil, &mockEmbedder{}, &mockVectorStore{}, newMockDocStore())

	_, err := p.IngestDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestDocuments_DuplicateChecksumSkipped(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	docs := newMockDocStore()
	p := newTestPipeline(rast, &mockExtractor{texts: []string{"a", "b"}}, embed, vectors, docs)

	content := []byte("%PDF-same-bytes")
	first, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "one.pdf", Reader: bytes.NewReader(content)},
	})
	require.NoError(t, err)
	require.Equal(t, domain.IngestSuccess, first.Status)

	second, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "copy-of-one.pdf", Reader: bytes.NewReader(content)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"copy-of-one.pdf"}, second.FilesSkipped)
	assert.Empty(t, second.FilesProcessed)
	assert.Equal(t, 0, second.PagesProcessed)
	assert.Len(t, vectors.records, 2, "duplicate must not add vectors")
}

func TestIngestDocuments_FailedIngestionIsRetried(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{upsertErr: domain.ErrIndexUnavailable}
	docs := newMockDocStore()
	p := newTestPipeline(rast, &mockExtractor{texts: []string{"a", "b"}}, embed, vectors, docs)

	content := []byte("%PDF-retry-me")
	first, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "flaky.pdf", Reader: bytes.NewReader(content)},
	})
	require.NoError(t, err)
	require.Equal(t, domain.IngestError, first.Status)

	// Index back up: the failed attempt must not block the retry.
	vectors.upsertErr = nil
	second, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "flaky.pdf", Reader: bytes.NewReader(content)},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestSuccess, second.Status)
	assert.Equal(t, []string{"flaky.pdf"}, second.FilesProcessed)
	assert.Empty(t, second.FilesSkipped)
	assert.Len(t, vectors.records, 2)

	listed, err := docs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1, "the failed row must be replaced, not duplicated")
	assert.Equal(t, domain.StatusIndexed, listed[0].Status)
}

func TestIngestDocuments_UnreadableFileContinuesBatch(t *testing.T) {
	rast := &mockRasterizer{err: domain.ErrDocumentUnreadable}
	docs := newMockDocStore()
	p := newTestPipeline(rast, nil, &mockEmbedder{vector: []float32{1}}, &mockVectorStore{}, docs)

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "broken.pdf", Reader: strings.NewReader("not a pdf")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestError, summary.Status)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "broken.pdf", summary.Errors[0].Filename)
	assert.Equal(t, "document unreadable", summary.Errors[0].Reason)

	listed, _ := docs.List(context.Background())
	require.Len(t, listed, 1)
	assert.Equal(t, domain.StatusFailed, listed[0].Status)
}

func TestIngestDocuments_OneCorruptFileInBatchOfThree(t *testing.T) {
	rast := &mockRasterizer{
		pages: twoPages(),
		pagesFor: map[string][]domain.Page{
			"short.pdf": {{PageNumber: 1, Image: []byte("png")}},
		},
		errFor: map[string]error{
			"broken.pdf": domain.ErrDocumentUnreadable,
		},
	}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	docs := newMockDocStore()
	p := newTestPipeline(rast, &mockExtractor{texts: []string{"a", "b"}}, embed, vectors, docs)

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "long.pdf", Reader: bytes.NewReader([]byte("%PDF-long"))},
		{Filename: "broken.pdf", Reader: bytes.NewReader([]byte("%PDF-broken"))},
		{Filename: "short.pdf", Reader: bytes.NewReader([]byte("%PDF-short"))},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestPartial, summary.Status)
	assert.ElementsMatch(t, []string{"long.pdf", "short.pdf"}, summary.FilesProcessed)
	assert.Equal(t, 3, summary.PagesProcessed, "pages from both valid files")
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "broken.pdf", summary.Errors[0].Filename)
	assert.Equal(t, "document unreadable", summary.Errors[0].Reason)
	assert.Len(t, vectors.records, 3)
}

func TestIngestDocuments_NilExtractorUsesPlaceholders(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	p := newTestPipeline(rast, nil, embed, vectors, newMockDocStore())

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "scan.pdf", Reader: strings.NewReader("%PDF-scan")},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSuccess, summary.Status)

	require.Len(t, vectors.records, 2)
	assert.Equal(t, domain.PlaceholderText("scan.pdf", 1), vectors.records[0].Payload.Text)
	assert.Equal(t, domain.PlaceholderText("scan.pdf", 2), vectors.records[1].Payload.Text)
}

func TestIngestDocuments_PlaceholderWhenExtractionFails(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	p := newTestPipeline(rast, &mockExtractor{err: errors.New("boom")}, embed, vectors, newMockDocStore())

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "scanned.pdf", Reader: strings.NewReader("%PDF-scan")},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSuccess, summary.Status)

	require.Len(t, vectors.records, 2)
	assert.Equal(t, domain.PlaceholderText("scanned.pdf", 1), vectors.records[0].Payload.Text)
	assert.Equal(t, domain.PlaceholderText("scanned.pdf", 2), vectors.records[1].Payload.Text)
}

func TestIngestDocuments_ImageEmbedFallsBackToText(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}, imageErr: domain.ErrEmbeddingFailure}
	vectors := &mockVectorStore{}
	p := newTestPipeline(rast, &mockExtractor{texts: []string{"a", "b"}}, embed, vectors, newMockDocStore())

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "doc.pdf", Reader: strings.NewReader("%PDF-x")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.EmbeddingsGenerated)
	assert.Equal(t, 2, embed.textCalls, "every page should fall back to text embedding")
	assert.Len(t, vectors.records, 2)
}

func TestIngestDocuments_AllEmbeddingsFailMarksFileFailed(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{imageErr: errors.New("down"), textErr: errors.New("down")}
	docs := newMockDocStore()
	p := newTestPipeline(rast, &mockExtractor{texts: []string{"a", "b"}}, embed, &mockVectorStore{}, docs)

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "doc.pdf", Reader: strings.NewReader("%PDF-x")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestError, summary.Status)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "no page could be embedded", summary.Errors[0].Reason)

	listed, _ := docs.List(context.Background())
	require.Len(t, listed, 1)
	assert.Equal(t, domain.StatusFailed, listed[0].Status)
}

func TestIngestDocuments_RecordOrderFollowsPageOrder(t *testing.T) {
	pages := make([]domain.Page, 8)
	for i := range pages {
		pages[i] = domain.Page{PageNumber: i + 1, Image: []byte("png")}
	}
	rast := &mockRasterizer{pages: pages}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	p := newTestPipeline(rast, nil, embed, vectors, newMockDocStore())

	_, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "big.pdf", Reader: strings.NewReader("%PDF-big")},
	})
	require.NoError(t, err)

	require.Len(t, vectors.records, 8)
	for i, rec := range vectors.records {
		assert.Equal(t, i+1, rec.Payload.PageNumber)
	}
}

func TestIngestDocuments_IndexUnavailable(t *testing.T) {
	rast := &mockRasterizer{pages: twoPages()}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{upsertErr: domain.ErrIndexUnavailable}
	p := newTestPipeline(rast, nil, embed, vectors, newMockDocStore())

	summary, err := p.IngestDocuments(context.Background(), []driving.FileUpload{
		{Filename: "doc.pdf", Reader: strings.NewReader("%PDF-x")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestError, summary.Status)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "vector index unavailable", summary.Errors[0].Reason)
}

func TestIngestPath_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF-a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF-b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	rast := &mockRasterizer{pages: []domain.Page{{PageNumber: 1, Image: []byte("png")}}}
	embed := &mockEmbedder{vector: []float32{1, 0, 0, 0}}
	vectors := &mockVectorStore{}
	p := newTestPipeline(rast, nil, embed, vectors, newMockDocStore())

	summary, err := p.IngestPath(context.Background(), dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, summary.FilesProcessed)
	assert.Equal(t, 2, summary.PagesProcessed)
}

func TestIngestPath_MissingPath(t *testing.T) {
	p := newTestPipeline(&mockRasterizer{}, nil, &mockEmbedder{}, &mockVectorStore{}, newMockDocStore())

	_, err := p.IngestPath(context.Background(), "/nonexistent/nowhere.pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestDocuments_CancelledContextStopsBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rast := &mockRasterizer{pages: twoPages()}
	p := newTestPipeline(rast, nil, &mockEmbedder{vector: []float32{1}}, &mockVectorStore{}, newMockDocStore())

	summary, err := p.IngestDocuments(ctx, []driving.FileUpload{
		{Filename: "doc.pdf", Reader: strings.NewReader("%PDF-x")},
	})
	require.NoError(t, err)
	assert.Empty(t, summary.FilesProcessed)
	assert.Equal(t, 0, summary.PagesProcessed)
}
