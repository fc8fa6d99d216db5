package driving

import (
	"context"
	"io"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// FileUpload is one uploaded file: a name and its byte stream.
type FileUpload struct {
	Filename string
	Reader   io.Reader
}

// IngestionService converts uploaded PDFs into indexed, searchable pages.
type IngestionService interface {
	// IngestDocuments processes a batch of uploads. Files are handled
	// independently: one file's failure is recorded in the summary and
	// does not stop the rest. An empty batch returns
	// domain.ErrInvalidInput.
	IngestDocuments(ctx context.Context, files []FileUpload) (*domain.IngestionSummary, error)

	// IngestPath ingests a single PDF file or every PDF in a directory.
	IngestPath(ctx context.Context, path string) (*domain.IngestionSummary, error)
}
