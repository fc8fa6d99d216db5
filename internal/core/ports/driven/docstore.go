package driven

import (
	"context"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// DocumentStore persists the document registry: upload metadata, ingestion
// status, and content checksums. Backed by SQLite.
//
// The registry exists for idempotent re-ingestion and listing; all
// citation metadata is denormalised into the vector payload, so queries
// never depend on this store beyond the empty-corpus check.
type DocumentStore interface {
	// Save stores or updates a document.
	Save(ctx context.Context, doc *domain.Document) error

	// UpdateStatus moves a document through its lifecycle and records
	// the final page count.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, pageCount int) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetByChecksum retrieves a document by content checksum, used to
	// detect re-ingestion of an already-seen file.
	GetByChecksum(ctx context.Context, checksum string) (*domain.Document, error)

	// List returns all documents, most recent first.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document from the registry.
	Delete(ctx context.Context, id string) error

	// CountIndexed returns the number of successfully indexed documents.
	CountIndexed(ctx context.Context) (int, error)
}
