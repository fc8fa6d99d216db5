package driven

import (
	"context"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// Rasterizer converts a PDF file into one raster image per page.
//
// Pages come back in page order with 1-based page numbers. Each page's
// raw image is also written to disk and the location returned alongside
// the in-memory bytes: the on-disk copy serves later display and
// multimodal prompting, the in-memory copy serves embedding.
//
// An unreadable file returns domain.ErrDocumentUnreadable. A zero-page
// PDF returns an empty slice and no error. A corrupt page in the middle
// of an otherwise readable document is skipped with a warning; partial
// information beats none in a retrieval setting.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, documentID, filename string) ([]domain.Page, error)
}

// TextExtractor derives per-page text from a PDF, used for embedding
// context and citation snippets. Implementations are best-effort: a page
// whose text cannot be extracted yields an empty string and the pipeline
// substitutes a placeholder.
type TextExtractor interface {
	// ExtractPages returns one string per physical page, in page order.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}
