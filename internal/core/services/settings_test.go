package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

func newTestSettings(t *testing.T, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	t.Helper()
	store := memory.NewConfigStore()
	service := NewSettingsService(store, "/data")
	service.getenv = func(k string) string { return env[k] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(t, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding, settings.Embedding)
	assert.Equal(t, defaults.LLM, settings.LLM)
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, filepath.Join("/data", "index"), settings.Index.Dir)
	assert.Equal(t, filepath.Join("/data", "weldsafe.db"), settings.Storage.DSN)
	assert.Equal(t, filepath.Join("/data", "logs", "weldsafe.log"), settings.Log.File)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettings(t, nil)
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("embedding.model", "nomic-embed-text")
	_ = store.Set("chunking.max_tokens", int64(400))
	_ = store.Set("retrieval.max_distance", 0.9)
	_ = store.Set("tracing.enabled", true)
	_ = store.Set("index.dir", "/srv/index")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, 400, settings.Chunking.MaxTokens)
	assert.InDelta(t, 0.9, settings.Retrieval.MaxDistance, 1e-9)
	assert.True(t, settings.Tracing.Enabled)
	assert.Equal(t, "/srv/index", settings.Index.Dir)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettings(t, nil)
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("storage.driver", "mysql")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Driver)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	service, store := newTestSettings(t, map[string]string{
		EnvOpenAIKey:    "sk-env",
		EnvAnthropicKey: "ant-env",
		EnvDatabaseURL:  "postgres://u:p@db/weldsafe",
	})
	_ = store.Set("llm.provider", "anthropic")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "ant-env", settings.LLM.APIKey)
	assert.Equal(t, "sk-env", settings.Transcription.APIKey)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db/weldsafe", settings.Storage.DSN)
}

func TestSettingsService_Get_ConfigKeyWinsOverEnvironment(t *testing.T) {
	service, store := newTestSettings(t, map[string]string{EnvOpenAIKey: "sk-env"})
	_ = store.Set("embedding.api_key", "sk-file")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-file", settings.Embedding.APIKey)
}

func TestSettingsService_Get_OllamaHost(t *testing.T) {
	service, store := newTestSettings(t, map[string]string{EnvOllamaHost: "gpu-box:11434"})
	_ = store.Set("embedding.provider", "ollama")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", settings.Embedding.BaseURL)
	assert.Empty(t, settings.LLM.BaseURL)
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettings(t, nil)

	require.NoError(t, service.Set("retrieval.top_k", "5"))
	require.NoError(t, service.Set("retrieval.max_distance", "0.75"))
	require.NoError(t, service.Set("tracing.enabled", "true"))
	require.NoError(t, service.Set("llm.model", " gpt-4.1 "))

	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.75, store.GetFloat("retrieval.max_distance"), 1e-9)
	assert.True(t, store.GetBool("tracing.enabled"))
	assert.Equal(t, "gpt-4.1", store.GetString("llm.model"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, settings.Retrieval.TopK)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"not a number", "retrieval.top_k", "many"},
		{"zero top k", "retrieval.top_k", "0"},
		{"negative overlap", "chunking.overlap", "-5"},
		{"unknown provider", "llm.provider", "cohere"},
		{"provider without embeddings", "embedding.provider", "anthropic"},
		{"unknown driver", "storage.driver", "mysql"},
		{"not a bool", "tracing.enabled", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettings(t, nil)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, stored := store.Get(tt.key)
			assert.False(t, stored)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettings(t, nil)

	keys := service.Keys()

	assert.Contains(t, keys, "embedding.provider")
	assert.Contains(t, keys, "answer.block_threshold")
	assert.Contains(t, keys, "bot.support_url")
	for _, k := range keys {
		_, ok := kindOf(k)
		assert.True(t, ok, k)
	}
}

func TestSettingsService_DataDirAndDefaults(t *testing.T) {
	service, _ := newTestSettings(t, nil)

	assert.Equal(t, "/data", service.DataDir())
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.NotContains(t, expandHome("~/x"), "~")
}
