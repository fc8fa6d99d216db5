// Package hash provides a deterministic offline embedding generator.
// Vectors are drawn from a Gaussian seeded by the MD5 of the input, so
// identical content always maps to an identical vector. There is no
// semantic signal; it exists so the pipeline stays exercisable with no
// inference server configured.
package hash

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions matches the reference collection dimensionality.
const DefaultDimensions = 768

// EmbeddingService generates deterministic pseudo-embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hash embedding service. A dimensions of
// zero or less falls back to DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// EmbedText generates a deterministic vector for the given text.
func (s *EmbeddingService) EmbedText(_ context.Context, text string) ([]float32, error) {
	return s.fromSeed([]byte(text)), nil
}

// EmbedImage generates a deterministic vector for the given image bytes.
func (s *EmbeddingService) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	return s.fromSeed(image), nil
}

// fromSeed draws a unit-normalised Gaussian vector from an MD5-derived
// seed. Normalisation keeps cosine scores in a sane range.
func (s *EmbeddingService) fromSeed(content []byte) []float32 {
	sum := md5.Sum(content)
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, s.dimensions)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return "hash-deterministic"
}

// Ping always succeeds; there is no remote service.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
