// Package qdrant provides a vector store adapter over the Qdrant REST
// API. It keeps to the HTTP interface rather than the gRPC SDK so the
// dependency surface stays a plain http.Client.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "documents"
	DefaultTimeout    = 30 * time.Second

	// upsertBatchSize bounds one upsert request; Qdrant accepts larger
	// bodies but failure isolation is better with small batches.
	upsertBatchSize = 64
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant base URL (default: http://localhost:6333).
	URL string

	// APIKey is an optional API key, sent as the api-key header.
	APIKey string

	// Collection is the collection name (default: documents).
	Collection string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a Qdrant-backed vector store.
type Store struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string
}

// NewStore creates a new Qdrant store.
func NewStore(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// collectionInfo is the subset of the collection response we inspect.
type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection if absent. An existing
// collection with a different vector size is refused: reusing it would
// silently corrupt search, so schema changes need an explicit migration.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimension int, distance string) error {
	if name != "" {
		s.collection = name
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrInvalidInput, dimension)
	}
	if distance == "" {
		distance = driven.Cosine
	}

	var info collectionInfo
	status, err := s.getJSON(ctx, s.collectionURL(), &info)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	if status == http.StatusOK {
		existing := info.Result.Config.Params.Vectors.Size
		if existing != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, need %d",
				domain.ErrDimensionMismatch, s.collection, existing, dimension)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": distance,
		},
	}
	if err := s.putJSON(ctx, s.collectionURL(), body); err != nil {
		return fmt.Errorf("%w: creating collection: %v", domain.ErrIndexUnavailable, err)
	}
	logger.Debug("Created Qdrant collection %q (dim=%d, %s)", s.collection, dimension, distance)
	return nil
}

// point is the Qdrant upsert point format.
type point struct {
	ID      string             `json:"id"`
	Vector  []float32          `json:"vector"`
	Payload domain.PagePayload `json:"payload"`
}

// Upsert stores records in sub-batches. A failed batch is retried once;
// if the retry fails too, the count of records stored so far is returned
// with the error so callers can report partial storage honestly.
func (s *Store) Upsert(ctx context.Context, records []domain.VectorRecord) (int, error) {
	stored := 0
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		points := make([]point, len(batch))
		for i, rec := range batch {
			points[i] = point{ID: rec.RecordID, Vector: rec.Vector, Payload: rec.Payload}
		}
		body := map[string]any{"points": points}
		url := s.collectionURL() + "/points?wait=true"

		err := s.putJSON(ctx, url, body)
		if err != nil {
			logger.Debug("Upsert batch failed, retrying once: %v", err)
			err = s.putJSON(ctx, url, body)
		}
		if err != nil {
			return stored, fmt.Errorf("%w: upsert stored %d of %d: %v",
				domain.ErrIndexUnavailable, stored, len(records), err)
		}
		stored += len(batch)
	}
	return stored, nil
}

// searchResponse is the Qdrant search response format.
type searchResponse struct {
	Result []struct {
		ID      any                `json:"id"`
		Score   float64            `json:"score"`
		Payload domain.PagePayload `json:"payload"`
	} `json:"result"`
}

// Search returns the top hits for a query vector, best first. Ties are
// broken by record id so results are stable across runs.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]driven.VectorHit, error) {
	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var resp searchResponse
	status, err := s.postJSON(ctx, s.collectionURL()+"/points/search", body, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned status %d", domain.ErrIndexUnavailable, status)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			RecordID: fmt.Sprintf("%v", r.ID),
			Payload:  r.Payload,
			Score:    r.Score,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RecordID < hits[j].RecordID
	})
	return hits, nil
}

// countResponse is the Qdrant count response format.
type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp countResponse
	status, err := s.postJSON(ctx, s.collectionURL()+"/points/count", map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: count returned status %d", domain.ErrIndexUnavailable, status)
	}
	return resp.Result.Count, nil
}

// DeleteByDocument removes all points whose payload references the
// document, via a filtered delete.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "document_id",
					"match": map[string]any{"value": documentID},
				},
			},
		},
	}
	status, err := s.postJSON(ctx, s.collectionURL()+"/points/delete?wait=true", body, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: delete returned status %d", domain.ErrIndexUnavailable, status)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant PUT %s: status %d: %s", url, resp.StatusCode, msg)
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (s *Store) getJSON(ctx context.Context, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
