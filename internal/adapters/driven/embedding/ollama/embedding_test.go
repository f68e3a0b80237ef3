package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Prompt)

		vector := make([]float64, dims)
		for i := range vector {
			vector[i] = 0.1 * float64(i+1)
		}
		require.NoError(t, json.NewEncoder(w).Encode(embedResponse{Embedding: vector}))
	}))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
}

func TestNewEmbeddingService_KnownModelDimensions(t *testing.T) {
	assert.Equal(t, 384, NewEmbeddingService(Config{Model: "all-minilm"}).Dimensions())
	assert.Equal(t, 1024, NewEmbeddingService(Config{Model: "mxbai-embed-large"}).Dimensions())
}

func TestNewEmbeddingService_ExplicitDimensionsWin(t *testing.T) {
	svc := NewEmbeddingService(Config{Model: "nomic-embed-text", Dimensions: 512})

	assert.Equal(t, 512, svc.Dimensions())
}

func TestEmbeddingService_Embed(t *testing.T) {
	server := embeddingServer(t, 4)
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 4})

	vector, err := svc.Embed(context.Background(), "wire transfer request")

	require.NoError(t, err)
	require.Len(t, vector, 4)
	assert.InDelta(t, 0.1, vector[0], 1e-6)
	assert.InDelta(t, 0.4, vector[3], 1e-6)
}

func TestEmbeddingService_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprintf(w, `{"embedding": [%d, 0, 0]}`, calls)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 3})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, 3, calls)
	// Results stay aligned with input order.
	assert.InDelta(t, 1, vectors[0][0], 1e-6)
	assert.InDelta(t, 2, vectors[1][0], 1e-6)
	assert.InDelta(t, 3, vectors[2][0], 1e-6)
}

func TestEmbeddingService_EmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	vectors, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEmbeddingService_Ping_Down(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	assert.Error(t, svc.Ping(context.Background()))
}
