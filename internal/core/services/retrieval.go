package services

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// DefaultTopK is the retrieval depth when the caller does not override it.
const DefaultTopK = 5

// RetrievalEngine embeds a query, searches the vector index, and judges
// whether the retrieved pages are sufficient to answer from.
type RetrievalEngine struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	docs     driven.DocumentStore
	policy   domain.SufficiencyPolicy
	topK     int
}

// NewRetrievalEngine creates a retrieval engine with the given sufficiency
// policy. A topK of zero or less falls back to DefaultTopK.
func NewRetrievalEngine(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	docs driven.DocumentStore,
	policy domain.SufficiencyPolicy,
	topK int,
) *RetrievalEngine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalEngine{
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		policy:   policy,
		topK:     topK,
	}
}

// Retrieve runs one retrieval round for a query. An empty corpus
// short-circuits to an insufficient verdict without touching the embedder
// or the index. Embedding and search failures are fatal to the round and
// surface as wrapped sentinel errors; the caller decides how to degrade.
func (e *RetrievalEngine) Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = e.topK
	}

	if e.docs != nil {
		indexed, err := e.docs.CountIndexed(ctx)
		if err == nil && indexed == 0 {
			logger.Debug("No indexed documents, skipping retrieval")
			return &domain.RetrievalResult{
				Verdict: domain.SufficiencyVerdict{
					Sufficient: false,
					Confidence: domain.ConfidenceLow,
					Reason:     "no documents have been ingested",
				},
			}, nil
		}
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrEmbeddingFailure, err)
	}

	hits, err := e.vectors.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	contexts := make([]domain.RetrievedContext, 0, len(hits))
	scores := make([]float64, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, domain.RetrievedContext{
			Payload: hit.Payload,
			Score:   hit.Score,
			Image:   loadPageImage(hit.Payload.ImagePath),
		})
		scores = append(scores, hit.Score)
	}

	// Adapters already return hits best-first, but the verdict depends
	// on ordering, so enforce it here rather than trust every backend.
	sort.SliceStable(contexts, func(i, j int) bool { return contexts[i].Score > contexts[j].Score })
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	verdict := e.policy.Evaluate(scores)
	logger.Debug("Retrieved %d context(s), sufficient=%t (%s)", len(contexts), verdict.Sufficient, verdict.Reason)

	return &domain.RetrievalResult{Contexts: contexts, Verdict: verdict}, nil
}

// loadPageImage reads a stored page raster for multimodal prompting.
// Best-effort: a missing or unreadable image degrades to text-only
// synthesis for that page.
func loadPageImage(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("Page image unavailable at %s: %v", path, err)
		return nil
	}
	return data
}
