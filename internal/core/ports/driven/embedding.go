package driven

import "context"

// EmbeddingService maps text or page images to fixed-length vectors.
//
// The same service (or one guaranteed to share its metric space) must be
// used for ingestion-time page embeddings and query-time embeddings;
// mixing spaces silently degrades retrieval with no observable error, so
// the composition root constructs exactly one.
//
// Implementations may include:
//   - ColPali-style multimodal inference servers (text + page images)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large), text only
//   - A deterministic hash-based generator for degraded/offline mode
type EmbeddingService interface {
	// EmbedText generates a vector for the given text. For identical
	// input the result is deterministic, so re-indexing is idempotent.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedImage generates a vector for a rendered page image (PNG
	// bytes). Text-only implementations return an error wrapping
	// domain.ErrEmbeddingFailure; callers fall back to EmbedText.
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)

	// Dimensions returns the embedding vector size. It must match the
	// vector collection's configured dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
