package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderOptionsOverrideDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key",
		WithEmbeddingModel("custom-model"),
		WithEmbeddingDimension(42),
	)

	assert.Equal(t, "custom-model", embedder.ModelName())
	assert.Equal(t, 42, embedder.Dimension())
	assert.Equal(t, 100, embedder.MaxBatchSize())
}

func TestEmbedder_BatchEmbedOrdersByIndex(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "object": "list",
		  "model": "sentence-transformers/all-MiniLM-L6-v2",
		  "data": [
		    {"object": "embedding", "index": 1, "embedding": [0.3, 0.4]},
		    {"object": "embedding", "index": 0, "embedding": [0.1, 0.2]}
		  ],
		  "usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	}))
	defer server.Close()

	embedder := NewEmbedder("dummy-key",
		WithEmbeddingBaseURL(server.URL),
		WithEmbeddingModel("sentence-transformers/all-MiniLM-L6-v2"),
		WithEmbeddingDimension(2),
	)

	vectors, err := embedder.BatchEmbed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.InDeltaSlice(t, []float32{0.1, 0.2}, vectors[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0.3, 0.4}, vectors[1], 1e-6)

	// text-embedding-3 系以外には dimensions を送らない
	_, hasDimensions := body["dimensions"]
	assert.False(t, hasDimensions)
}

func TestEmbedder_BatchEmbedValidatesInput(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	_, err := embedder.BatchEmbed(context.Background(), nil)
	assert.Error(t, err)

	_, err = embedder.BatchEmbed(context.Background(), make([]string, 101))
	assert.Error(t, err)
}
