// Package ai builds AI provider adapters from settings and wraps them in
// the retry, rate-limit and tracing policy.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/weldsafe/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/weldsafe/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/weldsafe/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/weldsafe/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/weldsafe/internal/adapters/driven/llm/openai"
	openaistt "github.com/custodia-labs/weldsafe/internal/adapters/driven/transcription/openai"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the provider adapters used by one process.
type Services struct {
	Embedding   driven.EmbeddingService
	LLM         driven.LLMService
	Transcriber driven.Transcriber // nil when voice is not configured
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// CreateAndValidateEmbeddingService creates an embedding service, pings it,
// and wraps it in policy. Any failure is reported as ErrEmbeddingUnavailable.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, policy *Policy) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured. Run 'weldsafe settings set embedding.provider <name>' to fix",
			domain.ErrEmbeddingUnavailable)
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'weldsafe settings show' to check", domain.ErrEmbeddingUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'weldsafe settings show' to check",
			domain.ErrEmbeddingUnavailable, err)
	}

	if policy == nil {
		return svc, nil
	}
	return NewResilientEmbedding(svc, policy), nil
}

// CreateAndValidateLLMService creates an LLM service, pings it, and wraps
// it in policy. Any failure is reported as ErrLLMUnavailable.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings, policy *Policy) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured. Run 'weldsafe settings set llm.provider <name>' to fix",
			domain.ErrLLMUnavailable)
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'weldsafe settings show' to check", domain.ErrLLMUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'weldsafe settings show' to check",
			domain.ErrLLMUnavailable, err)
	}

	if policy == nil {
		return svc, nil
	}
	return NewResilientLLM(svc, policy), nil
}

// CreateEmbeddingService creates the embedding adapter named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the LLM adapter named by settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateTranscriber creates the speech-to-text adapter. The transcription
// key falls back to the OpenAI LLM key. Returns nil, nil when no key is
// available, which disables voice messages.
func CreateTranscriber(settings *domain.TranscriptionSettings, llm *domain.LLMSettings, policy *Policy) (driven.Transcriber, error) {
	if settings == nil {
		return nil, nil
	}
	key := settings.APIKey
	if key == "" && llm != nil && llm.Provider == domain.AIProviderOpenAI {
		key = llm.APIKey
	}
	if key == "" {
		return nil, nil
	}

	tr, err := openaistt.NewTranscriber(openaistt.Config{
		APIKey:  key,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return tr, nil
	}
	return NewResilientTranscriber(tr, policy), nil
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
