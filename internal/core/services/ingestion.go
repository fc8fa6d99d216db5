package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// Default pipeline tuning.
const (
	DefaultEmbedWorkers = 4
	DefaultCollection   = "documents"
	DefaultDimension    = 768
)

// PipelineConfig tunes the ingestion pipeline.
type PipelineConfig struct {
	// Collection is the vector collection name.
	Collection string

	// Dimension is the vector size; must match the embedding service.
	Dimension int

	// EmbedWorkers bounds per-page embedding parallelism.
	EmbedWorkers int
}

// IngestionPipeline orchestrates rasterisation, text extraction, embedding
// and indexing for batches of uploaded PDFs.
//
// Files are processed independently: an unreadable PDF is recorded in the
// summary and the remaining files still go through. Per-page embedding
// runs on a bounded worker pool; the final upsert for a file is batched.
type IngestionPipeline struct {
	rasterizer driven.Rasterizer
	extractor  driven.TextExtractor
	embedder   driven.EmbeddingService
	vectors    driven.VectorStore
	docs       driven.DocumentStore
	cfg        PipelineConfig
}

// NewIngestionPipeline creates the ingestion pipeline. All dependencies
// are required except extractor, which may be nil (pages then carry
// placeholder text).
func NewIngestionPipeline(
	rasterizer driven.Rasterizer,
	extractor driven.TextExtractor,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	docs driven.DocumentStore,
	cfg PipelineConfig,
) *IngestionPipeline {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = DefaultEmbedWorkers
	}
	return &IngestionPipeline{
		rasterizer: rasterizer,
		extractor:  extractor,
		embedder:   embedder,
		vectors:    vectors,
		docs:       docs,
		cfg:        cfg,
	}
}

// IngestDocuments processes a batch of uploads. Each upload is spooled to
// a temporary file for the renderer, then ingested independently.
func (p *IngestionPipeline) IngestDocuments(
	ctx context.Context, files []driving.FileUpload,
) (*domain.IngestionSummary, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", domain.ErrInvalidInput)
	}

	logger.Section("Document Ingestion")
	logger.Info("Ingesting %d file(s)", len(files))

	summary := &domain.IngestionSummary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			// Cancellation keeps already-completed files' results.
			logger.Warn("Ingestion cancelled after %d file(s)", len(summary.FilesProcessed))
			break
		}

		tempPath, err := spoolUpload(file)
		if err != nil {
			summary.Errors = append(summary.Errors, domain.FileError{
				Filename: file.Filename,
				Reason:   fmt.Sprintf("saving upload: %v", err),
			})
			continue
		}

		p.ingestFile(ctx, tempPath, file.Filename, summary)
		os.Remove(tempPath)
	}

	summary.Finalize()
	logger.Info("Ingestion complete: %d pages, %d embeddings, %d errors",
		summary.PagesProcessed, summary.EmbeddingsGenerated, len(summary.Errors))
	return summary, nil
}

// IngestPath ingests a single PDF file or every PDF in a directory.
func (p *IngestionPipeline) IngestPath(ctx context.Context, path string) (*domain.IngestionSummary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, path)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no PDF files under %s", domain.ErrInvalidInput, path)
	}

	logger.Section("Document Ingestion")
	logger.Info("Ingesting %d file(s) from %s", len(paths), path)

	summary := &domain.IngestionSummary{}
	for _, filePath := range paths {
		if err := ctx.Err(); err != nil {
			logger.Warn("Ingestion cancelled after %d file(s)", len(summary.FilesProcessed))
			break
		}
		p.ingestFile(ctx, filePath, filepath.Base(filePath), summary)
	}

	summary.Finalize()
	return summary, nil
}

// ingestFile runs the full pipeline for one file and records the outcome
// in the batch summary. It never returns an error: every failure mode is
// converted into a summary entry so the batch can continue.
func (p *IngestionPipeline) ingestFile(
	ctx context.Context, path, filename string, summary *domain.IngestionSummary,
) {
	checksum, err := checksumFile(path)
	if err != nil {
		summary.Errors = append(summary.Errors, domain.FileError{
			Filename: filename,
			Reason:   fmt.Sprintf("reading file: %v", err),
		})
		return
	}

	// Re-ingestion policy: a checksum that made it into the index is
	// skipped, never silently re-indexed under a new document id. A
	// pending or failed row is a previous attempt that stored nothing;
	// it is replaced so transient failures stay retryable.
	if existing, err := p.docs.GetByChecksum(ctx, checksum); err == nil && existing != nil {
		if existing.Status == domain.StatusIndexed {
			logger.Info("Skipping %s: already ingested as document %s", filename, existing.ID)
			summary.FilesSkipped = append(summary.FilesSkipped, filename)
			return
		}
		logger.Info("Retrying %s: previous attempt %s left status %s", filename, existing.ID, existing.Status)
		if err := p.docs.Delete(ctx, existing.ID); err != nil {
			logger.Warn("Failed to drop stale document %s: %v", existing.ID, err)
		}
	}

	doc := &domain.Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		Checksum:   checksum,
		Status:     domain.StatusPending,
		UploadedAt: time.Now().UTC(),
	}
	if err := p.docs.Save(ctx, doc); err != nil {
		summary.Errors = append(summary.Errors, domain.FileError{
			Filename: filename,
			Reason:   fmt.Sprintf("registering document: %v", err),
		})
		return
	}

	pages, err := p.rasterizer.Rasterize(ctx, path, doc.ID, filename)
	if err != nil {
		logger.Warn("Rasterisation failed for %s: %v", filename, err)
		p.markFailed(ctx, doc.ID)
		summary.Errors = append(summary.Errors, domain.FileError{
			Filename: filename,
			Reason:   reasonFor(err),
		})
		return
	}

	if len(pages) == 0 {
		// A zero-page PDF is not an error; there is just nothing to index.
		logger.Info("%s has no pages", filename)
		p.markIndexed(ctx, doc.ID, 0)
		summary.FilesProcessed = append(summary.FilesProcessed, filename)
		return
	}

	p.attachText(ctx, path, filename, pages)

	// Embedding always waits on extraction: every page has text content
	// (real or placeholder) before anything reaches the index.
	records, embedded := p.embedPages(ctx, filename, pages)
	summary.EmbeddingsGenerated += embedded

	if len(records) == 0 {
		p.markFailed(ctx, doc.ID)
		summary.Errors = append(summary.Errors, domain.FileError{
			Filename: filename,
			Reason:   "no page could be embedded",
		})
		return
	}

	if err := p.vectors.EnsureCollection(ctx, p.cfg.Collection, p.cfg.Dimension, driven.Cosine); err != nil {
		p.markFailed(ctx, doc.ID)
		summary.Errors = append(summary.Errors, domain.FileError{
			Filename: filename,
			Reason:   reasonFor(err),
		})
		return
	}

	stored, err := p.vectors.Upsert(ctx, records)
	if err != nil {
		logger.Warn("Upsert for %s stored %d/%d records: %v", filename, stored, len(records), err)
		if stored == 0 {
			p.markFailed(ctx, doc.ID)
			summary.Errors = append(summary.Errors, domain.FileError{
				Filename: filename,
				Reason:   reasonFor(err),
			})
			return
		}
		// Partial storage still counts as processed, but the shortfall
		// is surfaced rather than swallowed.
		summary.Errors = append(summary.Errors, domain.FileError{
			Filename: filename,
			Reason:   fmt.Sprintf("stored %d of %d page vectors", stored, len(records)),
		})
	}

	p.markIndexed(ctx, doc.ID, len(pages))
	summary.PagesProcessed += len(pages)
	summary.FilesProcessed = append(summary.FilesProcessed, filename)
	logger.Info("Indexed %s: %d pages, %d vectors stored", filename, len(pages), stored)
}

// attachText fills each page's text content from the extractor, falling
// back to a placeholder identifying document and page.
func (p *IngestionPipeline) attachText(ctx context.Context, path, filename string, pages []domain.Page) {
	var texts []string
	if p.extractor != nil {
		var err error
		texts, err = p.extractor.ExtractPages(ctx, path)
		if err != nil {
			logger.Warn("Text extraction failed for %s: %v", filename, err)
			texts = nil
		}
	}

	for i := range pages {
		n := pages[i].PageNumber
		if n-1 < len(texts) {
			pages[i].Text = strings.TrimSpace(texts[n-1])
		}
		if pages[i].Text == "" {
			pages[i].Text = domain.PlaceholderText(filename, n)
		}
	}
}

// embedPages embeds pages on a bounded worker pool and builds vector
// records for the ones that succeed. Result order follows page order
// regardless of completion order. Failed pages are skipped and recorded;
// they never abort the file.
func (p *IngestionPipeline) embedPages(ctx context.Context, filename string, pages []domain.Page) ([]domain.VectorRecord, int) {
	vectors := make([][]float32, len(pages))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.EmbedWorkers)
	for i := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			vectors[i] = p.embedPage(ctx, &pages[i])
		}(i)
	}
	wg.Wait()

	now := time.Now().UTC().Format(time.RFC3339)
	var records []domain.VectorRecord
	embedded := 0
	for i := range pages {
		if vectors[i] == nil {
			continue
		}
		embedded++
		records = append(records, domain.VectorRecord{
			RecordID: uuid.New().String(),
			Vector:   vectors[i],
			Payload: domain.PagePayload{
				DocumentID: pages[i].DocumentID,
				PageNumber: pages[i].PageNumber,
				Filename:   filename,
				Text:       pages[i].Text,
				ImagePath:  pages[i].ImagePath,
				SourceTag:  domain.SourceTagUpload,
				Timestamp:  now,
			},
		})
	}
	return records, embedded
}

// embedPage produces one page's vector, preferring the page image when a
// multimodal embedder is available and falling back to the page text.
func (p *IngestionPipeline) embedPage(ctx context.Context, page *domain.Page) []float32 {
	if len(page.Image) > 0 {
		vec, err := p.embedder.EmbedImage(ctx, page.Image)
		if err == nil {
			page.EmbeddingGenerated = true
			// The raster is only needed for embedding; drop it here.
			page.Image = nil
			return vec
		}
		logger.Debug("Image embedding failed for page %d, trying text: %v", page.PageNumber, err)
	}

	vec, err := p.embedder.EmbedText(ctx, page.Text)
	if err != nil {
		logger.Warn("Embedding failed for %s page %d: %v", page.DocumentID, page.PageNumber, err)
		page.EmbeddingGenerated = false
		return nil
	}
	page.EmbeddingGenerated = true
	page.Image = nil
	return vec
}

func (p *IngestionPipeline) markFailed(ctx context.Context, id string) {
	if err := p.docs.UpdateStatus(ctx, id, domain.StatusFailed, 0); err != nil {
		logger.Warn("Failed to mark document %s failed: %v", id, err)
	}
}

func (p *IngestionPipeline) markIndexed(ctx context.Context, id string, pageCount int) {
	if err := p.docs.UpdateStatus(ctx, id, domain.StatusIndexed, pageCount); err != nil {
		logger.Warn("Failed to mark document %s indexed: %v", id, err)
	}
}

// spoolUpload writes an upload stream to a temporary file so the renderer
// can work from a path, the way the underlying PDF tools expect.
func spoolUpload(file driving.FileUpload) (string, error) {
	if file.Filename == "" || file.Reader == nil {
		return "", fmt.Errorf("%w: upload missing filename or content", domain.ErrInvalidInput)
	}

	f, err := os.CreateTemp("", "docsage-upload-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, file.Reader); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// checksumFile fingerprints file content for re-ingestion detection.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// reasonFor extracts a stable, user-facing reason from a pipeline error.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrDocumentUnreadable):
		return "document unreadable"
	case errors.Is(err, domain.ErrIndexUnavailable):
		return "vector index unavailable"
	case errors.Is(err, domain.ErrEmbeddingFailure):
		return "embedding failure"
	case errors.Is(err, domain.ErrDimensionMismatch):
		return "collection dimension mismatch"
	default:
		return err.Error()
	}
}
