// Package memory provides an in-memory vector store with brute-force
// cosine search. It backs tests and the zero-config offline mode; nothing
// survives process exit.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory vector store.
type Store struct {
	mu        sync.RWMutex
	dimension int
	records   map[string]domain.VectorRecord
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string]domain.VectorRecord)}
}

// EnsureCollection fixes the store's dimensionality on first call and
// refuses a different dimension afterwards.
func (s *Store) EnsureCollection(_ context.Context, _ string, dimension int, _ string) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrInvalidInput, dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dimension
		return nil
	}
	if s.dimension != dimension {
		return fmt.Errorf("%w: store has dimension %d, need %d",
			domain.ErrDimensionMismatch, s.dimension, dimension)
	}
	return nil
}

// Upsert stores records, overwriting by record id.
func (s *Store) Upsert(_ context.Context, records []domain.VectorRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if s.dimension > 0 && len(rec.Vector) != s.dimension {
			return 0, fmt.Errorf("%w: record %s has %d dimensions, need %d",
				domain.ErrDimensionMismatch, rec.RecordID, len(rec.Vector), s.dimension)
		}
		s.records[rec.RecordID] = rec
	}
	return len(records), nil
}

// Search brute-forces cosine similarity over all records. Ties are broken
// by record id so results are stable.
func (s *Store) Search(_ context.Context, vector []float32, limit int) ([]driven.VectorHit, error) {
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(s.records))
	for id, rec := range s.records {
		hits = append(hits, driven.VectorHit{
			RecordID: id,
			Payload:  rec.Payload,
			Score:    cosine(vector, rec.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RecordID < hits[j].RecordID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// DeleteByDocument removes all records belonging to a document.
func (s *Store) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.Payload.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosine computes cosine similarity; mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
