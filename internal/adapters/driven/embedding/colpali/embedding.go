// Package colpali provides a multimodal embedding adapter for a
// ColPali-style inference server: text and page images map into the same
// vector space, which is what makes page-image retrieval work.
package colpali

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8200"
	DefaultModel      = "vidore/colpali-v1.2"
	DefaultDimensions = 768
	DefaultTimeout    = 120 * time.Second

	// DefaultRequestsPerSecond throttles calls to the inference server;
	// page embedding fans out from a worker pool and GPU servers fall
	// over ungracefully when hammered.
	DefaultRequestsPerSecond = 8
)

// Config holds configuration for the ColPali embedding service.
type Config struct {
	// BaseURL is the inference server URL (default: http://localhost:8200).
	BaseURL string

	// APIKey is an optional bearer token.
	APIKey string

	// Model is the model identifier (default: vidore/colpali-v1.2).
	Model string

	// Dimensions is the embedding vector size (default: 768).
	Dimensions int

	// Timeout is the request timeout (default: 120s; image inference
	// is slow on cold GPUs).
	Timeout time.Duration

	// RequestsPerSecond caps the request rate (default: 8).
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings via a ColPali inference server.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

// embedRequest is the inference server request format. Exactly one of
// Text or Image is set.
type embedRequest struct {
	Model string `json:"model"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"` // base64 PNG
}

// embedResponse is the inference server response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// NewEmbeddingService creates a new ColPali embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedText generates a vector embedding for the given text.
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, embedRequest{Model: s.model, Text: text})
}

// EmbedImage generates a vector embedding for a rendered page image.
func (s *EmbeddingService) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrEmbeddingFailure)
	}
	return s.embed(ctx, embedRequest{
		Model: s.model,
		Image: base64.StdEncoding.EncodeToString(image),
	})
}

func (s *EmbeddingService) embed(ctx context.Context, reqBody embedRequest) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("colpali: rate limit wait: %w", err)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embed",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embedResp embedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if embedResp.Error != "" {
		return nil, fmt.Errorf("colpali error: %s", embedResp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("colpali error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("colpali: no embedding returned")
	}

	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable via its health endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("colpali: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("colpali: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("colpali: server returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
