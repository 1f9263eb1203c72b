package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Ollama is running"))
	})
	mux.HandleFunc("/api/show", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["model"] != "nomic-embed-text" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := make([][]float32, len(req.Input))
		for i := range req.Input {
			out[i] = []float32{float32(i), float32(len(req.Input[i]))}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "embeddings": out})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())

	_, err = NewEmbeddingService(Config{BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestEmbedBatch(t *testing.T) {
	srv := newTestServer(t)
	svc, err := NewEmbeddingService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 3}}, got)

	one, err := svc.Embed(context.Background(), "cc")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2}, one)
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	svc, err := NewEmbeddingService(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))

	missing, err := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "missing"})
	require.NoError(t, err)
	assert.ErrorContains(t, missing.Ping(context.Background()), "ollama pull missing")
}
