package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req struct {
			Model    string           `json:"model"`
			Stream   bool             `json:"stream"`
			Messages []map[string]any `json:"messages"`
			Options  map[string]any   `json:"options"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		assert.Len(t, req.Messages, 2)
		assert.EqualValues(t, 256, req.Options["num_predict"])

		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Готово"},"done":true}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "policy"},
		{Role: driven.RoleUser, Content: "питання"},
	}, driven.ChatOptions{MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "Готово", got)
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorContains(t, err, "boom")
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}
