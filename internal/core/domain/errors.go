package domain

import "errors"

// Domain errors represent expected pipeline failure modes. Leaf provider
// failures are converted into these at the component boundary; nothing in
// the core lets a raw provider error propagate uncaught to the caller.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a malformed request (empty query, no
	// files). This is the only error class surfaced to callers as-is.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDocumentUnreadable indicates the rasteriser could not open or
	// decode a PDF. Recorded per file; the batch continues.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrEmbeddingFailure indicates the embedding provider failed or
	// timed out. Per-page failures are skipped and recorded during
	// ingestion; a query-time failure is fatal to that query.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrIndexUnavailable indicates the vector store is unreachable.
	// Fatal to an ingestion batch; queries fall back to web search.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationFailure indicates the generative model is unreachable
	// or errored. Synthesis degrades to a templated answer.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrWebSearchFailure indicates the web search provider is
	// unreachable. The router proceeds to the general-knowledge tier.
	ErrWebSearchFailure = errors.New("web search failure")

	// ErrEmbeddingUnavailable indicates no embedding service is
	// configured at all.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates no generative model is
	// configured. Answers are built from templates instead.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrDimensionMismatch indicates an existing collection was created
	// with a different vector dimensionality. Schema changes require an
	// explicit migration, never an in-place reinterpretation.
	ErrDimensionMismatch = errors.New("collection dimension mismatch")
)
