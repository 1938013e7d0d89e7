package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model == "missing" {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
			return
		}
		resp := embedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i, in := range req.Input {
			resp.Embeddings[i] = []float32{float32(len(in)), 1}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultBatchSize, svc.batchSize)
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_SplitsRequests(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, &requests)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "all-minilm", BatchSize: 2})

	out, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), requests.Load())
	require.Len(t, out, 5)
	for i, v := range out {
		assert.Equal(t, []float32{float32(i + 1), 1}, v)
	}
}

func TestEmbed(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, &requests)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	v, err := svc.Embed(context.Background(), "consent")
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 1}, v)
}

func TestEmbed_ErrorStatus(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, &requests)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "missing"})

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbed_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer srv.Close()

	_, err := NewEmbeddingService(Config{BaseURL: srv.URL}).EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "1 embeddings for 2 inputs")
}

func TestEmbed_RateLimitHonoursContext(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, &requests)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, RequestsPerSecond: 0.001})

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Embed(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestPing(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, &requests)
	assert.NoError(t, NewEmbeddingService(Config{BaseURL: srv.URL}).Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer down.Close()
	err := NewEmbeddingService(Config{BaseURL: down.URL}).Ping(context.Background())
	assert.ErrorContains(t, err, "status 500")
}
