package driving

import (
	"context"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// DocumentService manages the ingested document registry.
type DocumentService interface {
	// List returns all registered documents, most recent first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document from the registry and drops its vectors
	// from the index.
	Delete(ctx context.Context, id string) error
}
