package driven

import (
	"context"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// VectorStore stores (vector, payload) pairs in a named collection and
// supports nearest-neighbour search with score output.
//
// Emptiness and failure are distinct: a search that finds nothing returns
// an empty slice, a search that cannot run returns an error wrapping
// domain.ErrIndexUnavailable. Callers use emptiness to drive the fallback
// decision, so the two must never be conflated.
type VectorStore interface {
	// EnsureCollection creates the collection if absent; it is
	// idempotent. An existing collection with a different dimensionality
	// yields domain.ErrDimensionMismatch: schema changes require an
	// explicit migration, never in-place reinterpretation.
	EnsureCollection(ctx context.Context, name string, dimension int, distance string) error

	// Upsert stores records in batches; a record with an existing id
	// overwrites in place. A failed batch is retried at most once, then
	// reported with the count of records actually stored and an error
	// for the remainder — never silently dropped.
	Upsert(ctx context.Context, records []domain.VectorRecord) (stored int, err error)

	// Search returns up to limit hits ordered by descending similarity,
	// with ties broken deterministically by record id.
	Search(ctx context.Context, vector []float32, limit int) ([]VectorHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// DeleteByDocument removes all records belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

// VectorHit is one similarity search result, normalised at the adapter
// boundary so core logic never sees SDK-specific result shapes.
type VectorHit struct {
	// RecordID is the matched record's id, used for tie-breaking.
	RecordID string

	// Payload carries the citation metadata stored with the vector.
	Payload domain.PagePayload

	// Score is the similarity score (cosine, 0-1, higher is better).
	Score float64
}

// Cosine is the distance metric used by the reference collection.
const Cosine = "Cosine"
