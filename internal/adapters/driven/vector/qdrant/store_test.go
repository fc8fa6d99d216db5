package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStore(Config{URL: srv.URL, Collection: "documents"})
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	var created atomic.Bool
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			var body struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 768, body.Vectors.Size)
			assert.Equal(t, "Cosine", body.Vectors.Distance)
			created.Store(true)
			w.WriteHeader(http.StatusOK)
		}
	})

	err := store.EnsureCollection(context.Background(), "documents", 768, driven.Cosine)
	require.NoError(t, err)
	assert.True(t, created.Load())
}

func TestEnsureCollection_ExistingSameDimensionIsIdempotent(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "existing collection must not be recreated")
		w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":768,"distance":"Cosine"}}}}}`))
	})

	err := store.EnsureCollection(context.Background(), "documents", 768, driven.Cosine)
	assert.NoError(t, err)
}

func TestEnsureCollection_DimensionMismatchRefused(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":384,"distance":"Cosine"}}}}}`))
	})

	err := store.EnsureCollection(context.Background(), "documents", 768, driven.Cosine)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestUpsert_RetriesFailedBatchOnce(t *testing.T) {
	var calls atomic.Int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	stored, err := store.Upsert(context.Background(), []domain.VectorRecord{
		{RecordID: "r1", Vector: []float32{1, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUpsert_PersistentFailureReportsStoredCount(t *testing.T) {
	var calls atomic.Int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		// First batch (2 requests incl. retry allowance) succeeds, rest fail.
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	records := make([]domain.VectorRecord, upsertBatchSize+1)
	for i := range records {
		records[i] = domain.VectorRecord{RecordID: "r", Vector: []float32{1}}
	}

	stored, err := store.Upsert(context.Background(), records)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Equal(t, upsertBatchSize, stored)
}

func TestSearch_OrdersByScoreThenID(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[
			{"id":"b","score":0.9,"payload":{"filename":"x.pdf","page_number":2}},
			{"id":"a","score":0.9,"payload":{"filename":"x.pdf","page_number":1}},
			{"id":"c","score":0.95,"payload":{"filename":"x.pdf","page_number":3}}
		]}`))
	})

	hits, err := store.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "c", hits[0].RecordID)
	assert.Equal(t, "a", hits[1].RecordID, "equal scores tie-break by record id")
	assert.Equal(t, "b", hits[2].RecordID)
	assert.Equal(t, 1, hits[1].Payload.PageNumber)
}

func TestSearch_ServerDownIsIndexUnavailable(t *testing.T) {
	store := NewStore(Config{URL: "http://127.0.0.1:1", Collection: "documents"})

	_, err := store.Search(context.Background(), []float32{1}, 5)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestCount(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/documents/points/count", r.URL.Path)
		w.Write([]byte(`{"result":{"count":42}}`))
	})

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestDeleteByDocument_SendsFilter(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter struct {
				Must []struct {
					Key   string `json:"key"`
					Match struct {
						Value string `json:"value"`
					} `json:"match"`
				} `json:"must"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Filter.Must, 1)
		assert.Equal(t, "document_id", body.Filter.Must[0].Key)
		assert.Equal(t, "doc-1", body.Filter.Must[0].Match.Value)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, store.DeleteByDocument(context.Background(), "doc-1"))
}
