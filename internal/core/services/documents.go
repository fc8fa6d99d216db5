package services

import (
	"context"
	"fmt"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

var _ driving.DocumentService = (*DocumentManager)(nil)

// DocumentManager serves the document registry: listing, lookup, and
// deletion with vector cleanup.
type DocumentManager struct {
	docs    driven.DocumentStore
	vectors driven.VectorStore
}

// NewDocumentManager creates a document manager. vectors may be nil when
// no index is configured; deletion then only touches the registry.
func NewDocumentManager(docs driven.DocumentStore, vectors driven.VectorStore) *DocumentManager {
	return &DocumentManager{docs: docs, vectors: vectors}
}

// List returns all registered documents, most recent first.
func (m *DocumentManager) List(ctx context.Context) ([]domain.Document, error) {
	return m.docs.List(ctx)
}

// Get retrieves a document by ID.
func (m *DocumentManager) Get(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	return m.docs.Get(ctx, id)
}

// Delete removes a document from the registry and drops its vectors.
// The registry row is authoritative: vector cleanup is best-effort and a
// failure there is logged, not returned, because the document is already
// gone from the user's point of view.
func (m *DocumentManager) Delete(ctx context.Context, id string) error {
	doc, err := m.docs.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := m.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}

	if m.vectors != nil {
		if err := m.vectors.DeleteByDocument(ctx, id); err != nil {
			logger.Warn("Vector cleanup for %s (%s) failed: %v", id, doc.Filename, err)
		}
	}

	logger.Info("Deleted document %s (%s)", id, doc.Filename)
	return nil
}
