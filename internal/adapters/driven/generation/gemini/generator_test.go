package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

func TestGenerate_TextAndImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Equal(t, "describe this page", req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/png", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")),
			req.Contents[0].Parts[1].InlineData.Data)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"The page shows "},{"text":"a chart."}]}}]}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), "describe this page", [][]byte{[]byte("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "The page shows a chart.", text)
}

func TestGenerate_APIErrorWrapsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(Config{})
	assert.Error(t, err)
}
